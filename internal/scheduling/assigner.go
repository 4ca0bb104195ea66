// Package scheduling distributes generated posts across the target calendar
// week and balances them over the persona pool.
package scheduling

import (
	"math/rand"
	"time"

	"github.com/jordan/content-calendar/internal/types"
)

// maxPostsPerPersona caps how many posts a single persona receives in one
// run. The cap is soft: when the pool is too small relative to the slot
// count, the least-loaded persona is reused anyway.
const maxPostsPerPersona = 3

// timeWindow is a half-open [Start, End) hour range within a day.
type timeWindow struct {
	Start int
	End   int
}

var timeWindows = []timeWindow{
	{Start: 9, End: 12},
	{Start: 12, End: 15},
	{Start: 15, End: 19},
}

// Assigner produces persona-to-timeslot assignments. The random source and
// clock are injected so day, window, and minute selection can be replayed
// deterministically in tests.
type Assigner struct {
	rng *rand.Rand
	now func() time.Time
}

// NewAssigner builds an assigner. A nil rng or now falls back to a
// time-seeded source and the wall clock.
func NewAssigner(rng *rand.Rand, now func() time.Time) *Assigner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &Assigner{rng: rng, now: now}
}

// WeekStart returns midnight on the Monday of the week containing t, in t's
// location.
func WeekStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	// time.Weekday counts Sunday as 0; shift so Monday starts the week.
	offset := (weekday + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

// Assign returns n assignments, each pairing a persona with a timestamp in
// the current week. Returns nil when the persona pool is empty.
func (a *Assigner) Assign(personas []types.Persona, n int) []types.Assignment {
	if len(personas) == 0 || n <= 0 {
		return nil
	}

	slots := a.weekSlots(n)
	counts := make(map[string]int, len(personas))
	assignments := make([]types.Assignment, 0, n)

	for i := 0; i < n; i++ {
		persona := pickPersona(personas, counts)
		counts[persona.PersonaUsername]++
		assignments = append(assignments, types.Assignment{Persona: persona, Date: slots[i]})
	}
	return assignments
}

// weekSlots picks n timestamps within the target week: distinct days while
// the week lasts, then the shuffled week repeats once seven slots are
// exhausted. Each slot gets a uniform time-of-day window, a uniform hour
// within it, and a uniform minute.
func (a *Assigner) weekSlots(n int) []time.Time {
	start := WeekStart(a.now())

	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	a.rng.Shuffle(len(days), func(i, j int) {
		days[i], days[j] = days[j], days[i]
	})

	slots := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		day := days[i%len(days)]
		window := timeWindows[a.rng.Intn(len(timeWindows))]
		hour := window.Start + a.rng.Intn(window.End-window.Start)
		minute := a.rng.Intn(60)
		slots = append(slots, time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()))
	}
	return slots
}

// pickPersona selects the first persona, in pool order, among those with the
// fewest assignments so far. While the minimum load is under
// maxPostsPerPersona this is exactly "fewest under the cap"; once every
// persona has reached the cap it degrades to least-loaded reuse.
func pickPersona(personas []types.Persona, counts map[string]int) types.Persona {
	least := personas[0]
	leastCount := counts[least.PersonaUsername]
	for _, p := range personas[1:] {
		if counts[p.PersonaUsername] < leastCount {
			least = p
			leastCount = counts[p.PersonaUsername]
		}
	}
	return least
}
