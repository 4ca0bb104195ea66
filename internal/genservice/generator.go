// Package genservice is the boundary to the content generation backend. It
// exposes three operations - keyword scoring, post generation, and comment
// generation - and ships two implementations: a remote HTTP client for a
// dedicated generation service, and a direct Gemini provider.
package genservice

import (
	"context"
	"fmt"
	"time"

	"github.com/jordan/content-calendar/internal/types"
)

// Generator is the contract the job runner generates content through. Each
// call is a single bounded attempt; retry policy, if any, belongs to the
// caller.
type Generator interface {
	// SelectKeywords scores the keyword pool against the company
	// description and returns up to count keywords, best first. The count
	// is a hint; callers truncate.
	SelectKeywords(ctx context.Context, companyDescription string, keywords []types.Keyword, count int) ([]types.Keyword, error)
	// GeneratePost produces a post title and body for one keyword.
	GeneratePost(ctx context.Context, subreddit, keywordPhrase, personaDescription, companyDescription string) (*PostDraft, error)
	// GenerateComment produces one comment in reply to parentText.
	GenerateComment(ctx context.Context, personaDescription, parentText, postTitle, postBody, companyDescription string) (string, error)
}

// PostDraft is the raw title/body pair returned by a generation backend.
type PostDraft struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Provider names a generation backend implementation.
type Provider string

// Supported providers.
const (
	ProviderRemote Provider = "remote"
	ProviderGemini Provider = "gemini"
)

// Config selects and configures a generation backend.
type Config struct {
	Provider     Provider
	BaseURL      string        // remote service base URL
	Timeout      time.Duration // per-call bound for the remote provider
	GeminiAPIKey string
	GeminiModel  string
}

// New builds the configured generation backend. The remote provider is the
// default.
func New(ctx context.Context, cfg Config) (Generator, error) {
	switch cfg.Provider {
	case ProviderGemini:
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case ProviderRemote, "":
		return NewClient(cfg.BaseURL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}
