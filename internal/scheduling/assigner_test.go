package scheduling

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordan/content-calendar/internal/types"
)

func fixedNow() time.Time {
	// A Wednesday.
	return time.Date(2025, time.June, 4, 10, 30, 0, 0, time.UTC)
}

func testAssigner(seed int64) *Assigner {
	return NewAssigner(rand.New(rand.NewSource(seed)), fixedNow)
}

func pool(usernames ...string) []types.Persona {
	personas := make([]types.Persona, 0, len(usernames))
	for _, u := range usernames {
		personas = append(personas, types.Persona{PersonaUsername: u, PersonaDescription: "desc " + u})
	}
	return personas
}

func TestWeekStart_Monday(t *testing.T) {
	start := WeekStart(fixedNow())
	assert.Equal(t, time.Monday, start.Weekday())
	assert.Equal(t, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), start)

	// Monday maps to itself, Sunday maps back six days.
	monday := time.Date(2025, time.June, 2, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), WeekStart(monday))
	sunday := time.Date(2025, time.June, 8, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC), WeekStart(sunday))
}

func TestAssign_TimestampsWithinWeekAndWindows(t *testing.T) {
	a := testAssigner(1)
	assignments := a.Assign(pool("a", "b", "c"), 5)
	require.Len(t, assignments, 5)

	weekStart := WeekStart(fixedNow())
	weekEnd := weekStart.AddDate(0, 0, 7)

	for _, asg := range assignments {
		assert.False(t, asg.Date.Before(weekStart), "timestamp before week start: %s", asg.Date)
		assert.True(t, asg.Date.Before(weekEnd), "timestamp after week end: %s", asg.Date)

		hour := asg.Date.Hour()
		assert.True(t, hour >= 9 && hour < 19, "hour outside posting windows: %d", hour)
	}
}

func TestAssign_DistinctDaysUpToSeven(t *testing.T) {
	a := testAssigner(2)
	assignments := a.Assign(pool("a", "b", "c"), 7)
	require.Len(t, assignments, 7)

	days := make(map[string]bool)
	for _, asg := range assignments {
		days[asg.Date.Format("2006-01-02")] = true
	}
	assert.Len(t, days, 7)
}

func TestAssign_DayReuseBeyondSeven(t *testing.T) {
	// More slots than days in the week: days repeat only after the week is
	// exhausted, so 10 slots land on all 7 days.
	a := testAssigner(3)
	assignments := a.Assign(pool("a", "b", "c", "d"), 10)
	require.Len(t, assignments, 10)

	perDay := make(map[string]int)
	for _, asg := range assignments {
		perDay[asg.Date.Format("2006-01-02")]++
	}
	assert.Len(t, perDay, 7)
	for day, count := range perDay {
		assert.LessOrEqual(t, count, 2, "day %s over-used", day)
	}
}

func TestAssign_PersonaLoadBalance(t *testing.T) {
	cases := []struct {
		name     string
		poolSize int
		n        int
	}{
		{"under cap", 3, 5},
		{"exactly cap", 2, 6},
		{"pool too small", 2, 9},
		{"single persona", 1, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			usernames := make([]string, tc.poolSize)
			for i := range usernames {
				usernames[i] = string(rune('a' + i))
			}
			a := testAssigner(int64(tc.n))
			assignments := a.Assign(pool(usernames...), tc.n)
			require.Len(t, assignments, tc.n)

			counts := make(map[string]int)
			for _, asg := range assignments {
				counts[asg.Persona.PersonaUsername]++
			}

			bound := math.Max(3, math.Ceil(float64(tc.n)/float64(tc.poolSize)))
			for username, count := range counts {
				assert.LessOrEqual(t, float64(count), bound, "persona %s over-assigned", username)
			}
		})
	}
}

func TestAssign_TiesBrokenByPoolOrder(t *testing.T) {
	a := testAssigner(4)
	assignments := a.Assign(pool("first", "second", "third"), 3)
	require.Len(t, assignments, 3)

	// With an empty count map every pick is a tie; pool order decides.
	assert.Equal(t, "first", assignments[0].Persona.PersonaUsername)
	assert.Equal(t, "second", assignments[1].Persona.PersonaUsername)
	assert.Equal(t, "third", assignments[2].Persona.PersonaUsername)
}

func TestAssign_Deterministic(t *testing.T) {
	first := testAssigner(42).Assign(pool("a", "b"), 4)
	second := testAssigner(42).Assign(pool("a", "b"), 4)
	assert.Equal(t, first, second)
}

func TestAssign_EmptyPool(t *testing.T) {
	a := testAssigner(5)
	assert.Nil(t, a.Assign(nil, 3))
	assert.Nil(t, a.Assign(pool("a"), 0))
}
