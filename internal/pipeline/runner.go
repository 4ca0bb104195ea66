// Package pipeline orchestrates one generation job end to end: input
// resolution, keyword selection, slot assignment, post and comment
// generation, and the final commit. One Runner serves the whole process;
// jobs run concurrently but each job's steps are strictly sequential.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/jordan/content-calendar/internal/genservice"
	"github.com/jordan/content-calendar/internal/jobs"
	"github.com/jordan/content-calendar/internal/scheduling"
	"github.com/jordan/content-calendar/internal/store"
	"github.com/jordan/content-calendar/internal/threading"
	"github.com/jordan/content-calendar/internal/types"
)

// Job-level error codes. These are the only codes a job can terminate with;
// anything deeper is folded into one of them with details attached.
const (
	CodeStoreRequired        = "store_required"
	CodeKeywordScoringFailed = "keyword_scoring_failed"
	CodeGenerationFailed     = "generation_failed"
	CodePersistFailed        = "persist_failed"
)

// Gateway is the slice of the persistence gateway the runner needs.
type Gateway interface {
	Available() bool
	Resolve(ctx context.Context, req *types.GenerationRequest) *store.ResolvedInputs
	Commit(ctx context.Context, in *store.ResolvedInputs, posts []types.Post, comments []types.Comment) error
}

// Runner executes generation jobs. Safe for concurrent use; per-job
// randomness comes from a fresh source seeded off the shared one.
type Runner struct {
	gateway  Gateway
	gen      genservice.Generator
	registry jobs.Registry

	mu  sync.Mutex // guards rng
	rng *rand.Rand
	now func() time.Time
}

// NewRunner builds a runner. A nil rng or now falls back to a time-seeded
// source and the wall clock.
func NewRunner(gateway Gateway, gen genservice.Generator, registry jobs.Registry, rng *rand.Rand, now func() time.Time) *Runner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &Runner{
		gateway:  gateway,
		gen:      gen,
		registry: registry,
		rng:      rng,
		now:      now,
	}
}

// jobRand derives an independent random source for one job. The shared
// source is not goroutine-safe, so seeding is serialized.
func (r *Runner) jobRand() *rand.Rand {
	r.mu.Lock()
	seed := r.rng.Int63()
	r.mu.Unlock()
	return rand.New(rand.NewSource(seed))
}

// Run executes the job identified by jobID and writes its terminal status
// into the registry. Intended to run as a detached task; it never returns an
// error to the dispatcher because the registry is the only observer.
func (r *Runner) Run(ctx context.Context, jobID string, req *types.GenerationRequest) {
	if err := r.registry.SetStatus(jobID, jobs.StatusRunning, nil, ""); err != nil {
		log.Printf("job %s: marking running: %v", jobID, err)
		return
	}

	outcome := r.RunSync(ctx, req)

	status := jobs.StatusSuccess
	if !outcome.OK {
		status = jobs.StatusError
	}
	if err := r.registry.SetStatus(jobID, status, outcome, outcome.Error); err != nil {
		log.Printf("job %s: writing terminal status: %v", jobID, err)
	}
}

// RunSync executes one generation run and returns the outcome directly. A
// panic anywhere in the run is converted to a generation_failed outcome so
// the process survives misbehaving backends.
func (r *Runner) RunSync(ctx context.Context, req *types.GenerationRequest) (outcome *types.GenerationOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("generation run panicked: %v", rec)
			outcome = types.ErrorOutcome(CodeGenerationFailed, fmt.Sprintf("internal panic: %v", rec))
		}
	}()
	return r.execute(ctx, req)
}

func (r *Runner) execute(ctx context.Context, req *types.GenerationRequest) *types.GenerationOutcome {
	if req != nil && req.RequireStore && !r.gateway.Available() {
		return types.ErrorOutcome(CodeStoreRequired, "durable store required by request but not configured")
	}

	in := r.gateway.Resolve(ctx, req)

	selected, err := r.gen.SelectKeywords(ctx, in.Company.CompanyDescription, in.Keywords, in.PostsPerWeek)
	if err != nil {
		return types.ErrorOutcome(CodeKeywordScoringFailed, err.Error())
	}
	if len(selected) > in.PostsPerWeek {
		selected = selected[:in.PostsPerWeek]
	}

	rng := r.jobRand()
	assigner := scheduling.NewAssigner(rng, r.now)
	assignments := assigner.Assign(in.Personas, len(selected))

	var commentSeq int
	nextCommentID := func() string {
		commentSeq++
		return fmt.Sprintf("C%d", commentSeq)
	}
	builder := threading.NewBuilder(r.gen, rng)

	var (
		posts    []types.Post
		comments []types.Comment
	)
	for i, keyword := range selected {
		assignment := assignments[i]

		draft, err := r.gen.GeneratePost(ctx, in.Subreddit, keyword.KeywordPhrase, assignment.Persona.PersonaDescription, in.Company.CompanyDescription)
		if err != nil {
			return types.ErrorOutcome(CodeGenerationFailed, err.Error())
		}

		post := types.Post{
			PostID:          fmt.Sprintf("P%d", i+1),
			Subreddit:       in.Subreddit,
			PersonaUsername: assignment.Persona.PersonaUsername,
			Title:           draft.Title,
			Body:            draft.Body,
			Timestamp:       assignment.Date,
			KeywordIDs:      []string{keyword.KeywordID},
		}

		thread, err := builder.Build(ctx, &post, commenters(in.Personas, assignment.Persona), in.Company.CompanyDescription, nextCommentID)
		if err != nil {
			return types.ErrorOutcome(CodeGenerationFailed, err.Error())
		}

		posts = append(posts, post)
		comments = append(comments, thread...)
	}

	if r.gateway.Available() {
		if err := r.gateway.Commit(ctx, in, posts, comments); err != nil {
			return types.ErrorOutcome(CodePersistFailed, err.Error())
		}
	}

	return types.SuccessOutcome(posts, comments)
}

// commenters returns the persona pool minus the post's author.
func commenters(pool []types.Persona, author types.Persona) []types.Persona {
	out := make([]types.Persona, 0, len(pool))
	for _, p := range pool {
		if p.PersonaUsername != author.PersonaUsername {
			out = append(out, p)
		}
	}
	return out
}
