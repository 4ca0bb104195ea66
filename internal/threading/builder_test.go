package threading

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordan/content-calendar/internal/types"
)

type stubGenerator struct {
	calls    int
	failAt   int // 1-based call index to fail on; 0 never fails
	lastArgs []string
}

func (s *stubGenerator) GenerateComment(_ context.Context, personaDescription, parentText, postTitle, postBody, companyDescription string) (string, error) {
	s.calls++
	s.lastArgs = []string{personaDescription, parentText, postTitle, postBody, companyDescription}
	if s.failAt > 0 && s.calls == s.failAt {
		return "", errors.New("generation backend down")
	}
	return fmt.Sprintf("comment %d", s.calls), nil
}

func testPost() *types.Post {
	return &types.Post{
		PostID:          "P1",
		Subreddit:       "DemoTrials",
		PersonaUsername: "author",
		Title:           "Anyone tried content calendars?",
		Body:            "Curious how others plan their week.",
		Timestamp:       time.Date(2025, time.June, 3, 10, 0, 0, 0, time.UTC),
	}
}

func commenterPool(n int) []types.Persona {
	personas := make([]types.Persona, 0, n)
	for i := 0; i < n; i++ {
		personas = append(personas, types.Persona{
			PersonaUsername:    fmt.Sprintf("commenter_%d", i),
			PersonaDescription: fmt.Sprintf("description %d", i),
		})
	}
	return personas
}

func idSequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("C%d", n)
	}
}

func TestBuild_CommentCountBounds(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		b := NewBuilder(&stubGenerator{}, rand.New(rand.NewSource(seed)))
		comments, err := b.Build(context.Background(), testPost(), commenterPool(3), "company desc", idSequence())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(comments), 1, "seed %d", seed)
		assert.LessOrEqual(t, len(comments), 3, "seed %d", seed)
	}
}

func TestBuild_CommenterNeverPostAuthor(t *testing.T) {
	post := testPost()
	for seed := int64(0); seed < 20; seed++ {
		b := NewBuilder(&stubGenerator{}, rand.New(rand.NewSource(seed)))
		comments, err := b.Build(context.Background(), post, commenterPool(2), "company desc", idSequence())
		require.NoError(t, err)
		for _, c := range comments {
			assert.NotEqual(t, post.PersonaUsername, c.PersonaUsername)
		}
	}
}

func TestBuild_TimestampsFollowParents(t *testing.T) {
	post := testPost()
	for seed := int64(0); seed < 30; seed++ {
		b := NewBuilder(&stubGenerator{}, rand.New(rand.NewSource(seed)))
		comments, err := b.Build(context.Background(), post, commenterPool(3), "company desc", idSequence())
		require.NoError(t, err)

		byID := make(map[string]types.Comment)
		for _, c := range comments {
			byID[c.CommentID] = c
		}

		for _, c := range comments {
			parentTime := post.Timestamp
			if c.ParentCommentID != nil {
				parent, ok := byID[*c.ParentCommentID]
				require.True(t, ok, "parent %s must be a comment on the same post", *c.ParentCommentID)
				parentTime = parent.Timestamp
			}
			delta := c.Timestamp.Sub(parentTime)
			assert.GreaterOrEqual(t, delta, 5*time.Minute)
			assert.LessOrEqual(t, delta, 19*time.Minute)
		}
	}
}

func TestBuild_AlternatingReplyPattern(t *testing.T) {
	// Force a 3-comment thread by scanning seeds, then check the pattern:
	// comment 0 is a root, comment 1 replies to comment 0, comment 2 is a
	// root again.
	for seed := int64(0); seed < 50; seed++ {
		b := NewBuilder(&stubGenerator{}, rand.New(rand.NewSource(seed)))
		comments, err := b.Build(context.Background(), testPost(), commenterPool(3), "company desc", idSequence())
		require.NoError(t, err)
		if len(comments) < 3 {
			continue
		}

		assert.Nil(t, comments[0].ParentCommentID)
		require.NotNil(t, comments[1].ParentCommentID)
		assert.Equal(t, comments[0].CommentID, *comments[1].ParentCommentID)
		assert.Nil(t, comments[2].ParentCommentID)
		return
	}
	t.Fatal("no seed produced a 3-comment thread")
}

func TestBuild_ParentTextThreading(t *testing.T) {
	// The generator must see the post body for roots and the previous
	// comment's text for threaded replies.
	for seed := int64(0); seed < 50; seed++ {
		gen := &recordingGenerator{}
		b := NewBuilder(gen, rand.New(rand.NewSource(seed)))
		post := testPost()
		comments, err := b.Build(context.Background(), post, commenterPool(3), "company desc", idSequence())
		require.NoError(t, err)
		if len(comments) < 2 {
			continue
		}

		assert.Equal(t, post.Body, gen.parentTexts[0])
		assert.Equal(t, comments[0].CommentText, gen.parentTexts[1])
		return
	}
	t.Fatal("no seed produced a 2-comment thread")
}

type recordingGenerator struct {
	calls       int
	parentTexts []string
}

func (r *recordingGenerator) GenerateComment(_ context.Context, _, parentText, _, _, _ string) (string, error) {
	r.calls++
	r.parentTexts = append(r.parentTexts, parentText)
	return fmt.Sprintf("reply %d", r.calls), nil
}

func TestBuild_GeneratorFailureAborts(t *testing.T) {
	b := NewBuilder(&stubGenerator{failAt: 1}, rand.New(rand.NewSource(7)))
	comments, err := b.Build(context.Background(), testPost(), commenterPool(3), "company desc", idSequence())
	require.Error(t, err)
	assert.Nil(t, comments)
}

func TestBuild_NoEligibleCommenters(t *testing.T) {
	b := NewBuilder(&stubGenerator{}, rand.New(rand.NewSource(8)))
	comments, err := b.Build(context.Background(), testPost(), nil, "company desc", idSequence())
	require.NoError(t, err)
	assert.Empty(t, comments)
}
