package genservice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jordan/content-calendar/internal/types"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

const redditVoice = "You write Reddit-style content in a casual, curious, human tone. Avoid marketing language."

// Gemini generates content directly against the Gemini API instead of going
// through a remote generation service.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Gemini-backed generator.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// SelectKeywords ranks the keyword pool by relevance to the company
// description and returns the best count keywords.
func (g *Gemini) SelectKeywords(ctx context.Context, companyDescription string, keywords []types.Keyword, count int) ([]types.Keyword, error) {
	pool, err := json.Marshal(keywords)
	if err != nil {
		return nil, &ServiceError{Op: "select_keywords", Message: "encoding keyword pool", Cause: err}
	}

	prompt := fmt.Sprintf(
		"Rank these keywords by how relevant they are to the company below and return the best %d.\n"+
			"Company: %s\nKeywords: %s\n"+
			`Respond with JSON only, shaped as {"selected": [{"keyword_id": "...", "keyword_phrase": "...", "score": 0.0}]}, best first.`,
		count, companyDescription, pool,
	)

	text, err := g.generate(ctx, "select_keywords", prompt, true)
	if err != nil {
		return nil, err
	}

	raw := []byte(cleanJSONBlock(text))
	if err := validateKeywordSelection(raw); err != nil {
		return nil, &ServiceError{Op: "select_keywords", Message: err.Error(), Cause: err}
	}

	var resp keywordsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ServiceError{Op: "select_keywords", Message: "malformed model output", Cause: err}
	}
	return resp.Selected, nil
}

// GeneratePost produces a post title and body for one keyword.
func (g *Gemini) GeneratePost(ctx context.Context, subreddit, keywordPhrase, personaDescription, companyDescription string) (*PostDraft, error) {
	prompt := fmt.Sprintf(
		"%s\nWrite a Reddit post for r/%s about '%s'.\n"+
			"Persona: %s. Mention the company naturally using this description: '%s'.\n"+
			"The title has at most 12 words; the body is 1-2 casual sentences.\n"+
			`Respond with JSON only, shaped as {"title": "...", "body": "..."}.`,
		redditVoice, subreddit, keywordPhrase, personaDescription, companyDescription,
	)

	text, err := g.generate(ctx, "generate_post", prompt, true)
	if err != nil {
		return nil, err
	}

	var draft PostDraft
	if err := json.Unmarshal([]byte(cleanJSONBlock(text)), &draft); err != nil {
		return nil, &ServiceError{Op: "generate_post", Message: "malformed model output", Cause: err}
	}
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Body = strings.TrimSpace(draft.Body)
	return &draft, nil
}

// GenerateComment produces one short comment replying to parentText.
func (g *Gemini) GenerateComment(ctx context.Context, personaDescription, parentText, postTitle, postBody, companyDescription string) (string, error) {
	prompt := fmt.Sprintf(
		"%s\nReply as persona '%s'. Parent text: '%s'. Post context: '%s' - '%s'.\n"+
			"Write a natural one-line Reddit comment. You may reference the company naturally using this description: '%s'.\n"+
			"Only return the comment text.",
		redditVoice, personaDescription, parentText, postTitle, postBody, companyDescription,
	)

	text, err := g.generate(ctx, "generate_comment", prompt, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " ")), nil
}

// generate runs one model call and extracts the text of the first
// candidate.
func (g *Gemini) generate(ctx context.Context, op, prompt string, wantJSON bool) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.8)
	if wantJSON {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &ServiceError{Op: op, Cause: err}
	}

	text, err := extractText(resp)
	if err != nil {
		return "", &ServiceError{Op: op, Message: err.Error(), Cause: err}
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

// cleanJSONBlock strips markdown code fences that models wrap around JSON
// even when told not to.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
