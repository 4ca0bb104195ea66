// Package threading builds the comment thread attached to one generated
// post: who comments, in reply to what, and when.
package threading

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jordan/content-calendar/internal/types"
)

// Comment count bounds per post.
const (
	minComments = 1
	maxComments = 3
)

// Child comments land 5-19 minutes after their parent.
const (
	minReplyDelayMinutes  = 5
	replyDelaySpanMinutes = 15
)

// CommentGenerator produces the text of a single comment. Satisfied by the
// generation service clients.
type CommentGenerator interface {
	GenerateComment(ctx context.Context, personaDescription, parentText, postTitle, postBody, companyDescription string) (string, error)
}

// Builder assembles a comment thread for a post. The random source drives
// commenter shuffling, comment count, and reply delays, and is injected so
// threads can be replayed deterministically.
type Builder struct {
	gen CommentGenerator
	rng *rand.Rand
}

// NewBuilder builds a thread builder. A nil rng falls back to a time-seeded
// source.
func NewBuilder(gen CommentGenerator, rng *rand.Rand) *Builder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Builder{gen: gen, rng: rng}
}

// Build generates between one and three comments for the post. Commenters
// must exclude the post's author; they are shuffled once per post and then
// rotated through so no single persona dominates a thread. The reply pattern
// alternates: each even-indexed comment becomes the parent of the next one,
// each odd-indexed comment resets the next parent to the post itself.
//
// A post with no eligible commenters gets no comments. Any generation
// failure aborts the whole thread.
func (b *Builder) Build(ctx context.Context, post *types.Post, commenters []types.Persona, companyDescription string, nextID func() string) ([]types.Comment, error) {
	if len(commenters) == 0 {
		return nil, nil
	}

	shuffled := make([]types.Persona, len(commenters))
	copy(shuffled, commenters)
	b.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	count := minComments + b.rng.Intn(maxComments-minComments+1)

	var (
		comments   []types.Comment
		parentID   *string
		parentText = post.Body
		parentTime = post.Timestamp
	)

	for c := 0; c < count; c++ {
		commenter := shuffled[c%len(shuffled)]

		text, err := b.gen.GenerateComment(ctx, commenter.PersonaDescription, parentText, post.Title, post.Body, companyDescription)
		if err != nil {
			return nil, fmt.Errorf("generating comment %d for post %s: %w", c+1, post.PostID, err)
		}

		delay := time.Duration(minReplyDelayMinutes+b.rng.Intn(replyDelaySpanMinutes)) * time.Minute
		comment := types.Comment{
			CommentID:       nextID(),
			PostID:          post.PostID,
			ParentCommentID: parentID,
			PersonaUsername: commenter.PersonaUsername,
			CommentText:     strings.TrimSpace(text),
			Timestamp:       parentTime.Add(delay),
		}
		comments = append(comments, comment)

		if c%2 == 0 {
			id := comment.CommentID
			parentID = &id
			parentText = comment.CommentText
			parentTime = comment.Timestamp
		} else {
			parentID = nil
			parentText = post.Body
			parentTime = post.Timestamp
		}
	}

	return comments, nil
}
