package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jordan/content-calendar/internal/types"
)

// PostsForWeek retrieves the posts scheduled within [weekStart, weekEnd],
// with subreddit names joined in.
func (db *DB) PostsForWeek(ctx context.Context, weekStart, weekEnd time.Time) ([]types.Post, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT p.post_id, COALESCE(s.subreddit_name, ''), p.persona_username,
		        p.title, p.body, p.timestamp, p.keyword_ids
		 FROM posts p
		 LEFT JOIN subreddits s ON s.subreddit_id = p.subreddit_id
		 WHERE p.timestamp >= $1 AND p.timestamp <= $2
		 ORDER BY p.timestamp ASC`,
		weekStart, weekEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts for week: %w", err)
	}
	defer rows.Close()

	var posts []types.Post
	for rows.Next() {
		var p types.Post
		if err := rows.Scan(&p.PostID, &p.Subreddit, &p.PersonaUsername, &p.Title, &p.Body, &p.Timestamp, &p.KeywordIDs); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// PostWithComments retrieves one post and its full comment thread. Returns
// nils with no error when the post does not exist.
func (db *DB) PostWithComments(ctx context.Context, postID string) (*types.Post, []types.Comment, error) {
	var p types.Post
	err := db.pool.QueryRow(ctx,
		`SELECT p.post_id, COALESCE(s.subreddit_name, ''), p.persona_username,
		        p.title, p.body, p.timestamp, p.keyword_ids
		 FROM posts p
		 LEFT JOIN subreddits s ON s.subreddit_id = p.subreddit_id
		 WHERE p.post_id = $1`,
		postID,
	).Scan(&p.PostID, &p.Subreddit, &p.PersonaUsername, &p.Title, &p.Body, &p.Timestamp, &p.KeywordIDs)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to get post: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT comment_id, post_id, parent_comment_id, persona_username, comment_text, timestamp
		 FROM comments WHERE post_id = $1 ORDER BY timestamp ASC`,
		postID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []types.Comment
	for rows.Next() {
		var c types.Comment
		if err := rows.Scan(&c.CommentID, &c.PostID, &c.ParentCommentID, &c.PersonaUsername, &c.CommentText, &c.Timestamp); err != nil {
			return nil, nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return &p, comments, rows.Err()
}
