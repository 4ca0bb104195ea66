package store

import "github.com/jordan/content-calendar/internal/types"

// SubredditUnknown is the sentinel used when no subreddit resolves from any
// source.
const SubredditUnknown = "unknown"

// DefaultPostsPerWeek applies when neither the request nor the company sets
// a cadence.
const DefaultPostsPerWeek = 3

// DefaultCompany is the built-in demo company used when neither the store
// nor the request supplies one.
func DefaultCompany() types.Company {
	return types.Company{
		CompanyID:          "demo-company",
		CompanyName:        "DemoCorp",
		CompanyDescription: "AI-powered slide tooling for marketers to plan Reddit content.",
		WebsiteURL:         "https://demo.example.com",
		Subreddit:          "DemoTrials",
		PostsPerWeek:       3,
	}
}

// DefaultPersonas is the built-in persona trio.
func DefaultPersonas() []types.Persona {
	return []types.Persona{
		{PersonaUsername: "brandvoice", PersonaDescription: "Helpful marketer sharing slide tips"},
		{PersonaUsername: "curious_dev", PersonaDescription: "Curious engineer who builds side projects"},
		{PersonaUsername: "ops_guru", PersonaDescription: "Operations lead who loves efficiency hacks"},
	}
}

// DefaultKeywords is the built-in keyword trio.
func DefaultKeywords() []types.Keyword {
	return []types.Keyword{
		{KeywordID: "k1", KeywordPhrase: "content calendar"},
		{KeywordID: "k2", KeywordPhrase: "reddit engagement"},
		{KeywordID: "k3", KeywordPhrase: "slide deck tips"},
	}
}
