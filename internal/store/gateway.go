package store

import (
	"context"
	"math/rand"
	"time"

	"github.com/jordan/content-calendar/internal/types"
)

// ResolvedInputs is the authoritative input set for one generation run.
type ResolvedInputs struct {
	Company      types.Company
	Personas     []types.Persona
	Keywords     []types.Keyword
	Subreddit    string
	PostsPerWeek int
}

// Gateway resolves generation inputs with strict precedence and commits
// generated content. A nil row store is legal: every resolution degrades to
// request overrides and built-in defaults, and commits are skipped by the
// caller.
type Gateway struct {
	rows Rows
	rng  *rand.Rand
}

// NewGateway builds a gateway over an optional row store. The random source
// drives subreddit selection and is injectable for tests; nil falls back to
// a time-seeded source.
func NewGateway(rows Rows, rng *rand.Rand) *Gateway {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Gateway{rows: rows, rng: rng}
}

// Available reports whether the durable store is configured.
func (g *Gateway) Available() bool {
	return g.rows != nil
}

// source attempts to produce a value from one precedence level; ok reports
// whether this level resolved. Store-backed sources swallow their errors and
// report not-ok, so a broken store silently defers to the next level.
type source[T any] func(ctx context.Context) (T, bool)

// resolveFirst walks the sources in precedence order and returns the first
// resolved value, or the fallback when every source defers.
func resolveFirst[T any](ctx context.Context, sources []source[T], fallback T) T {
	for _, src := range sources {
		if v, ok := src(ctx); ok {
			return v
		}
	}
	return fallback
}

// Resolve produces the input set for a run. Each field is resolved
// independently: durable-store rows beat client-supplied values, which beat
// built-in defaults. The subreddit is the exception, where a client override
// wins.
func (g *Gateway) Resolve(ctx context.Context, req *types.GenerationRequest) *ResolvedInputs {
	if req == nil {
		req = &types.GenerationRequest{}
	}

	company := resolveFirst(ctx, []source[types.Company]{
		g.storeCompany(req.CompanyID),
		requestCompany(req),
	}, DefaultCompany())

	personas := resolveFirst(ctx, []source[[]types.Persona]{
		g.storePersonas(company.CompanyID),
		requestPersonas(req),
	}, DefaultPersonas())

	keywords := resolveFirst(ctx, []source[[]types.Keyword]{
		g.storeKeywords(company.CompanyID),
		requestKeywords(req),
	}, DefaultKeywords())

	subreddit := resolveFirst(ctx, []source[string]{
		requestSubreddit(req),
		g.storeSubreddit(company.CompanyID),
		companySubreddit(company),
	}, SubredditUnknown)

	postsPerWeek := req.PostsPerWeek
	if postsPerWeek <= 0 {
		postsPerWeek = company.PostsPerWeek
	}
	if postsPerWeek <= 0 {
		postsPerWeek = DefaultPostsPerWeek
	}

	return &ResolvedInputs{
		Company:      company,
		Personas:     personas,
		Keywords:     keywords,
		Subreddit:    subreddit,
		PostsPerWeek: postsPerWeek,
	}
}

func (g *Gateway) storeCompany(companyID string) source[types.Company] {
	return func(ctx context.Context) (types.Company, bool) {
		if g.rows == nil {
			return types.Company{}, false
		}
		company, err := g.rows.GetCompany(ctx, companyID)
		if err != nil || company == nil {
			return types.Company{}, false
		}
		return *company, true
	}
}

func requestCompany(req *types.GenerationRequest) source[types.Company] {
	return func(context.Context) (types.Company, bool) {
		if req.Company == nil {
			return types.Company{}, false
		}
		return *req.Company, true
	}
}

func (g *Gateway) storePersonas(companyID string) source[[]types.Persona] {
	return func(ctx context.Context) ([]types.Persona, bool) {
		if g.rows == nil {
			return nil, false
		}
		personas, err := g.rows.ListPersonas(ctx, companyID)
		if err != nil || len(personas) == 0 {
			return nil, false
		}
		return personas, true
	}
}

func requestPersonas(req *types.GenerationRequest) source[[]types.Persona] {
	return func(context.Context) ([]types.Persona, bool) {
		if len(req.Personas) == 0 {
			return nil, false
		}
		return req.Personas, true
	}
}

func (g *Gateway) storeKeywords(companyID string) source[[]types.Keyword] {
	return func(ctx context.Context) ([]types.Keyword, bool) {
		if g.rows == nil {
			return nil, false
		}
		keywords, err := g.rows.ListKeywords(ctx, companyID)
		if err != nil || len(keywords) == 0 {
			return nil, false
		}
		return keywords, true
	}
}

func requestKeywords(req *types.GenerationRequest) source[[]types.Keyword] {
	return func(context.Context) ([]types.Keyword, bool) {
		if len(req.Keywords) == 0 {
			return nil, false
		}
		return req.Keywords, true
	}
}

func requestSubreddit(req *types.GenerationRequest) source[string] {
	return func(context.Context) (string, bool) {
		return req.Subreddit, req.Subreddit != ""
	}
}

// storeSubreddit picks uniformly among the subreddits scoped to the company.
func (g *Gateway) storeSubreddit(companyID string) source[string] {
	return func(ctx context.Context) (string, bool) {
		if g.rows == nil {
			return "", false
		}
		subreddits, err := g.rows.ListSubreddits(ctx, companyID)
		if err != nil || len(subreddits) == 0 {
			return "", false
		}
		return subreddits[g.rng.Intn(len(subreddits))].SubredditName, true
	}
}

func companySubreddit(company types.Company) source[string] {
	return func(context.Context) (string, bool) {
		return company.Subreddit, company.Subreddit != ""
	}
}
