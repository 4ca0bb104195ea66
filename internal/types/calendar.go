// Package types defines the shared domain model for the content calendar
// generation service: companies, personas, keywords, and the posts and
// comment threads a generation run produces.
package types

import "time"

// Company is the authoritative description of the business content is
// generated for. Resolved once per generation run.
type Company struct {
	CompanyID          string `json:"company_id"`
	CompanyName        string `json:"company_name"`
	CompanyDescription string `json:"company_description"`
	WebsiteURL         string `json:"website_url" validate:"omitempty,url"`
	Subreddit          string `json:"subreddit,omitempty"`
	PostsPerWeek       int    `json:"posts_per_week"`
}

// Persona is a named synthetic author. Personas are referenced by username
// from posts and comments, never embedded.
type Persona struct {
	PersonaUsername    string `json:"persona_username"`
	PersonaDescription string `json:"persona_description"`
}

// Keyword is a topic phrase that drives one post's content.
type Keyword struct {
	KeywordID     string  `json:"keyword_id"`
	KeywordPhrase string  `json:"keyword_phrase"`
	Score         float64 `json:"score,omitempty"`
}

// Post is one generated calendar entry. Timestamp falls within the target
// calendar week.
type Post struct {
	PostID          string    `json:"post_id"`
	Subreddit       string    `json:"subreddit"`
	PersonaUsername string    `json:"persona_username"`
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	Timestamp       time.Time `json:"timestamp"`
	KeywordIDs      []string  `json:"keyword_ids"`
}

// Comment belongs to exactly one post. ParentCommentID is nil for top-level
// comments and otherwise names an earlier comment on the same post. Its
// timestamp is strictly later than its parent's.
type Comment struct {
	CommentID       string    `json:"comment_id"`
	PostID          string    `json:"post_id"`
	ParentCommentID *string   `json:"parent_comment_id"`
	PersonaUsername string    `json:"persona_username"`
	CommentText     string    `json:"comment_text"`
	Timestamp       time.Time `json:"timestamp"`
}

// Assignment pairs a persona with the timeslot its post is scheduled for.
// Transient: consumed by the runner, never persisted.
type Assignment struct {
	Persona Persona
	Date    time.Time
}

// GenerationRequest is the body accepted by the generation endpoints. All
// fields are optional; resolution precedence is handled by the store gateway.
type GenerationRequest struct {
	CompanyID    string    `json:"company_id,omitempty"`
	Company      *Company  `json:"company,omitempty"`
	Personas     []Persona `json:"personas,omitempty"`
	Keywords     []Keyword `json:"keywords,omitempty"`
	Subreddit    string    `json:"subreddit,omitempty"`
	PostsPerWeek int       `json:"posts_per_week,omitempty" validate:"omitempty,min=1,max=21"`
	RequireStore bool      `json:"require_store,omitempty"`
}

// GenerationOutcome is the terminal result of a generation run. Either the
// full batch of posts and comments, or an error code with details - never a
// partial batch.
type GenerationOutcome struct {
	OK       bool      `json:"ok"`
	Posts    []Post    `json:"posts,omitempty"`
	Comments []Comment `json:"comments,omitempty"`
	Error    string    `json:"error,omitempty"`
	Details  string    `json:"details,omitempty"`
}

// SuccessOutcome builds a successful outcome carrying the full batch.
func SuccessOutcome(posts []Post, comments []Comment) *GenerationOutcome {
	return &GenerationOutcome{OK: true, Posts: posts, Comments: comments}
}

// ErrorOutcome builds a failed outcome with a stable error code and
// human-readable details.
func ErrorOutcome(code, details string) *GenerationOutcome {
	return &GenerationOutcome{OK: false, Error: code, Details: details}
}
