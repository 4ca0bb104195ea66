package genservice

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jordan/content-calendar/internal/types"
)

// DefaultTimeout bounds each remote call. Local model backends can take
// minutes per generation, so this is deliberately far above a typical
// request timeout.
const DefaultTimeout = 10 * time.Minute

// Client calls a remote generation service over HTTP. Each operation is one
// POST to a fixed path under the base URL; the client never retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a remote client. A zero timeout falls back to
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type keywordsRequest struct {
	CompanyDescription string          `json:"company_description"`
	Keywords           []types.Keyword `json:"keywords"`
	PostsPerWeek       int             `json:"posts_per_week"`
}

type keywordsResponse struct {
	Selected []types.Keyword `json:"selected"`
}

type postRequest struct {
	Subreddit          string `json:"subreddit"`
	KeywordPhrase      string `json:"keyword_phrase"`
	PersonaDescription string `json:"persona_description"`
	CompanyDescription string `json:"company_description"`
}

type commentRequest struct {
	PersonaDescription string `json:"persona_description"`
	ParentText         string `json:"parent_text"`
	PostTitle          string `json:"post_title"`
	PostBody           string `json:"post_body"`
	CompanyDescription string `json:"company_description"`
}

type commentResponse struct {
	CommentText string `json:"comment_text"`
}

// SelectKeywords asks the service to score the keyword pool and returns the
// selected keywords, best first.
func (c *Client) SelectKeywords(ctx context.Context, companyDescription string, keywords []types.Keyword, count int) ([]types.Keyword, error) {
	raw, err := c.post(ctx, "select_keywords", "/generate/keywords", keywordsRequest{
		CompanyDescription: companyDescription,
		Keywords:           keywords,
		PostsPerWeek:       count,
	})
	if err != nil {
		return nil, err
	}

	if err := validateKeywordSelection(raw); err != nil {
		return nil, &ServiceError{Op: "select_keywords", Message: err.Error(), Cause: err}
	}

	var resp keywordsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ServiceError{Op: "select_keywords", Message: "malformed response", Cause: err}
	}
	return resp.Selected, nil
}

// GeneratePost asks the service for a post title and body.
func (c *Client) GeneratePost(ctx context.Context, subreddit, keywordPhrase, personaDescription, companyDescription string) (*PostDraft, error) {
	raw, err := c.post(ctx, "generate_post", "/generate/post", postRequest{
		Subreddit:          subreddit,
		KeywordPhrase:      keywordPhrase,
		PersonaDescription: personaDescription,
		CompanyDescription: companyDescription,
	})
	if err != nil {
		return nil, err
	}

	var draft PostDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, &ServiceError{Op: "generate_post", Message: "malformed response", Cause: err}
	}
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Body = strings.TrimSpace(draft.Body)
	return &draft, nil
}

// GenerateComment asks the service for one comment replying to parentText.
func (c *Client) GenerateComment(ctx context.Context, personaDescription, parentText, postTitle, postBody, companyDescription string) (string, error) {
	raw, err := c.post(ctx, "generate_comment", "/generate/comment", commentRequest{
		PersonaDescription: personaDescription,
		ParentText:         parentText,
		PostTitle:          postTitle,
		PostBody:           postBody,
		CompanyDescription: companyDescription,
	})
	if err != nil {
		return "", err
	}

	var resp commentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &ServiceError{Op: "generate_comment", Message: "malformed response", Cause: err}
	}
	return strings.TrimSpace(resp.CommentText), nil
}

// post performs one bounded request and returns the response body. Transport
// failures and non-2xx statuses become ServiceErrors.
func (c *Client) post(ctx context.Context, op, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ServiceError{Op: op, Message: "encoding request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &ServiceError{Op: op, Message: "building request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ServiceError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ServiceError{Op: op, Message: "reading response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServiceError{Op: op, StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	return respBody, nil
}
