package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"google.golang.org/genai"
)

// generateFunc sends one prompt and returns the raw JSON text.
type generateFunc func(ctx context.Context, prompt string, schema *genai.Schema) (string, error)

// Generator asks Gemini for listing copy and tags using JSON-constrained
// responses.
type Generator struct {
	generate generateFunc
	logger   *logger.Logger
}

func NewGenerator(ctx context.Context, apiKey, model string, log *logger.Logger) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	generate := func(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		})
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return &Generator{generate: generate, logger: log}, nil
}

var detailsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":       {Type: genai.TypeString},
		"description": {Type: genai.TypeString},
	},
	Required: []string{"title", "description"},
}

var tagsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"tags": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"tags"},
}

func (g *Generator) SuggestDetails(ctx context.Context, p domain.DetailsPrompt) (*domain.DetailsSuggestion, error) {
	prompt := fmt.Sprintf(
		"Write a classified ad for the category %q, subcategory %q. Seller keywords: %q. "+
			"Return JSON with a short catchy title (max 70 characters) and a description of 2 to 4 sentences. "+
			"Do not invent facts that are not implied by the keywords.",
		p.Category, p.Subcategory, p.Keywords)

	raw, err := g.generate(ctx, prompt, detailsSchema)
	if err != nil {
		g.logger.Warn("Generator.SuggestDetails: request failed", "category", p.Category, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrSuggestionFailed, err)
	}
	return parseDetails(raw)
}

func (g *Generator) SuggestTags(ctx context.Context, title, description string) ([]string, error) {
	prompt := fmt.Sprintf(
		"Suggest up to %d short search tags for this classified ad. Title: %q. Description: %q. "+
			"Return JSON with a tags array of lowercase strings.",
		domain.MaxSuggestedTags, title, description)

	raw, err := g.generate(ctx, prompt, tagsSchema)
	if err != nil {
		g.logger.Warn("Generator.SuggestTags: request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrSuggestionFailed, err)
	}
	return parseTags(raw)
}

func parseDetails(raw string) (*domain.DetailsSuggestion, error) {
	var s domain.DetailsSuggestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &s); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSuggestion, err)
	}
	s.Title = strings.TrimSpace(s.Title)
	s.Description = strings.TrimSpace(s.Description)
	if s.Title == "" || s.Description == "" {
		return nil, domain.ErrMalformedSuggestion
	}
	return &s, nil
}

// parseTags trims, drops blanks and case-insensitive duplicates, and caps the
// list.
func parseTags(raw string) ([]string, error) {
	var body struct {
		Tags []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSuggestion, err)
	}

	seen := make(map[string]bool, len(body.Tags))
	tags := make([]string, 0, len(body.Tags))
	for _, t := range body.Tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, t)
		if len(tags) == domain.MaxSuggestedTags {
			break
		}
	}
	if len(tags) == 0 {
		return nil, domain.ErrMalformedSuggestion
	}
	return tags, nil
}
