// Package store resolves authoritative generation inputs from the durable
// PostgreSQL store with defined fallbacks, and commits generated content
// back to it.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jordan/content-calendar/internal/types"
)

// Subreddit is a durable subreddit row scoped to a company.
type Subreddit struct {
	SubredditID   string `json:"subreddit_id"`
	SubredditName string `json:"subreddit_name"`
	CompanyID     string `json:"company_id"`
}

// CommentRecord is the shape of a comment insert. PostID and
// ParentCommentID are store-generated identifiers, already remapped from the
// in-memory ids.
type CommentRecord struct {
	PostID          string
	ParentCommentID *string
	PersonaUsername string
	CommentText     string
	Timestamp       time.Time
}

// Rows is the row-level store contract the gateway runs on. *DB implements
// it against PostgreSQL; tests substitute a fake.
type Rows interface {
	GetCompany(ctx context.Context, companyID string) (*types.Company, error)
	ListPersonas(ctx context.Context, companyID string) ([]types.Persona, error)
	ListKeywords(ctx context.Context, companyID string) ([]types.Keyword, error)
	ListSubreddits(ctx context.Context, companyID string) ([]Subreddit, error)
	UpsertPersonas(ctx context.Context, companyID string, personas []types.Persona) error
	CreateSubreddit(ctx context.Context, companyID, name string) (*Subreddit, error)
	InsertPosts(ctx context.Context, companyID string, subredditID *string, posts []types.Post) ([]string, error)
	InsertComment(ctx context.Context, record CommentRecord) (string, error)
}

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// GetCompany retrieves a company row by id, or an arbitrary row when no id
// is given. Returns nil with no error when nothing matches.
func (db *DB) GetCompany(ctx context.Context, companyID string) (*types.Company, error) {
	query := `SELECT company_id, company_name, company_description, website_url,
	                 COALESCE(subreddit, ''), posts_per_week
	          FROM companies`
	args := []any{}
	if companyID != "" {
		query += ` WHERE company_id = $1`
		args = append(args, companyID)
	}
	query += ` LIMIT 1`

	var c types.Company
	err := db.pool.QueryRow(ctx, query, args...).Scan(
		&c.CompanyID, &c.CompanyName, &c.CompanyDescription, &c.WebsiteURL,
		&c.Subreddit, &c.PostsPerWeek,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &c, nil
}

// ListPersonas retrieves the personas scoped to a company.
func (db *DB) ListPersonas(ctx context.Context, companyID string) ([]types.Persona, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT persona_username, persona_description FROM personas WHERE company_id = $1`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}
	defer rows.Close()

	var personas []types.Persona
	for rows.Next() {
		var p types.Persona
		if err := rows.Scan(&p.PersonaUsername, &p.PersonaDescription); err != nil {
			return nil, fmt.Errorf("failed to scan persona: %w", err)
		}
		personas = append(personas, p)
	}
	return personas, rows.Err()
}

// ListKeywords retrieves the keywords scoped to a company.
func (db *DB) ListKeywords(ctx context.Context, companyID string) ([]types.Keyword, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT keyword_id, keyword_phrase FROM keywords WHERE company_id = $1`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	defer rows.Close()

	var keywords []types.Keyword
	for rows.Next() {
		var k types.Keyword
		if err := rows.Scan(&k.KeywordID, &k.KeywordPhrase); err != nil {
			return nil, fmt.Errorf("failed to scan keyword: %w", err)
		}
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}

// ListSubreddits retrieves the subreddit rows scoped to a company.
func (db *DB) ListSubreddits(ctx context.Context, companyID string) ([]Subreddit, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT subreddit_id, subreddit_name, company_id FROM subreddits WHERE company_id = $1`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list subreddits: %w", err)
	}
	defer rows.Close()

	var subreddits []Subreddit
	for rows.Next() {
		var s Subreddit
		if err := rows.Scan(&s.SubredditID, &s.SubredditName, &s.CompanyID); err != nil {
			return nil, fmt.Errorf("failed to scan subreddit: %w", err)
		}
		subreddits = append(subreddits, s)
	}
	return subreddits, rows.Err()
}

// UpsertPersonas inserts personas keyed by username, updating the
// description on conflict.
func (db *DB) UpsertPersonas(ctx context.Context, companyID string, personas []types.Persona) error {
	for _, p := range personas {
		_, err := db.pool.Exec(ctx,
			`INSERT INTO personas (persona_username, persona_description, company_id)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (persona_username) DO UPDATE SET persona_description = $2`,
			p.PersonaUsername, p.PersonaDescription, companyID,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert persona %s: %w", p.PersonaUsername, err)
		}
	}
	return nil
}

// CreateSubreddit inserts a subreddit row for the company.
func (db *DB) CreateSubreddit(ctx context.Context, companyID, name string) (*Subreddit, error) {
	var s Subreddit
	err := db.pool.QueryRow(ctx,
		`INSERT INTO subreddits (subreddit_name, company_id)
		 VALUES ($1, $2)
		 RETURNING subreddit_id, subreddit_name, company_id`,
		name, companyID,
	).Scan(&s.SubredditID, &s.SubredditName, &s.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to create subreddit: %w", err)
	}
	return &s, nil
}

// InsertPosts inserts posts in order, letting the store generate ids, and
// returns the generated ids in the same order.
func (db *DB) InsertPosts(ctx context.Context, companyID string, subredditID *string, posts []types.Post) ([]string, error) {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		var id string
		err := db.pool.QueryRow(ctx,
			`INSERT INTO posts (company_id, subreddit_id, persona_username, title, body, timestamp, keyword_ids)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING post_id`,
			companyID, subredditID, p.PersonaUsername, p.Title, p.Body, p.Timestamp, p.KeywordIDs,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to insert post %q: %w", p.Title, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// InsertComment inserts one comment row and returns the generated id.
func (db *DB) InsertComment(ctx context.Context, record CommentRecord) (string, error) {
	var id string
	err := db.pool.QueryRow(ctx,
		`INSERT INTO comments (post_id, parent_comment_id, persona_username, comment_text, timestamp)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING comment_id`,
		record.PostID, record.ParentCommentID, record.PersonaUsername, record.CommentText, record.Timestamp,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert comment: %w", err)
	}
	return id, nil
}
