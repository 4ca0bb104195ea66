package store

import (
	"context"
	"fmt"

	"github.com/jordan/content-calendar/internal/types"
)

// Commit writes a generated batch to the durable store: personas are
// upserted by username, the subreddit row is looked up or created, posts are
// inserted first so their store-generated ids can replace the in-memory
// ones, then comments follow with both post and parent references remapped.
// Thread structure is preserved in storage; a parent always precedes its
// children in the batch, so a single ordered pass suffices.
//
// Any failure aborts the commit as a whole. The store is left without the
// batch's comments when posts cannot be inserted, never the other way
// around.
func (g *Gateway) Commit(ctx context.Context, in *ResolvedInputs, posts []types.Post, comments []types.Comment) error {
	if g.rows == nil {
		return fmt.Errorf("durable store not configured")
	}

	if err := g.rows.UpsertPersonas(ctx, in.Company.CompanyID, usedPersonas(in, posts, comments)); err != nil {
		return fmt.Errorf("upserting personas: %w", err)
	}

	subredditID := g.ensureSubreddit(ctx, in)

	storePostIDs, err := g.rows.InsertPosts(ctx, in.Company.CompanyID, subredditID, posts)
	if err != nil {
		return fmt.Errorf("inserting posts: %w", err)
	}
	if len(storePostIDs) != len(posts) {
		return fmt.Errorf("inserting posts: store returned %d ids for %d posts", len(storePostIDs), len(posts))
	}

	postIDMap := make(map[string]string, len(posts))
	for i, p := range posts {
		postIDMap[p.PostID] = storePostIDs[i]
	}

	commentIDMap := make(map[string]string, len(comments))
	for _, c := range comments {
		record := CommentRecord{
			PostID:          postIDMap[c.PostID],
			PersonaUsername: c.PersonaUsername,
			CommentText:     c.CommentText,
			Timestamp:       c.Timestamp,
		}
		if c.ParentCommentID != nil {
			mapped, ok := commentIDMap[*c.ParentCommentID]
			if !ok {
				return fmt.Errorf("inserting comments: parent %s not committed before child %s", *c.ParentCommentID, c.CommentID)
			}
			record.ParentCommentID = &mapped
		}

		storeID, err := g.rows.InsertComment(ctx, record)
		if err != nil {
			return fmt.Errorf("inserting comments: %w", err)
		}
		commentIDMap[c.CommentID] = storeID
	}

	return nil
}

// usedPersonas collects every persona that authored a post or comment in the
// batch, carrying descriptions from the resolved pool when known.
func usedPersonas(in *ResolvedInputs, posts []types.Post, comments []types.Comment) []types.Persona {
	descriptions := make(map[string]string, len(in.Personas))
	for _, p := range in.Personas {
		descriptions[p.PersonaUsername] = p.PersonaDescription
	}

	seen := make(map[string]bool)
	var used []types.Persona
	add := func(username string) {
		if seen[username] {
			return
		}
		seen[username] = true
		used = append(used, types.Persona{
			PersonaUsername:    username,
			PersonaDescription: descriptions[username],
		})
	}

	for _, p := range posts {
		add(p.PersonaUsername)
	}
	for _, c := range comments {
		add(c.PersonaUsername)
	}
	return used
}

// ensureSubreddit finds the resolved subreddit's row for the company,
// preferring an exact name match, and creates it when absent. Lookup and
// creation failures are tolerated; posts then carry no subreddit reference.
func (g *Gateway) ensureSubreddit(ctx context.Context, in *ResolvedInputs) *string {
	subreddits, err := g.rows.ListSubreddits(ctx, in.Company.CompanyID)
	if err == nil {
		for _, s := range subreddits {
			if s.SubredditName == in.Subreddit {
				return &s.SubredditID
			}
		}
		if len(subreddits) > 0 {
			return &subreddits[0].SubredditID
		}
	}

	if in.Subreddit == "" {
		return nil
	}
	created, err := g.rows.CreateSubreddit(ctx, in.Company.CompanyID, in.Subreddit)
	if err != nil {
		return nil
	}
	return &created.SubredditID
}
