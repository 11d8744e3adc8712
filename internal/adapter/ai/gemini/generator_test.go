package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func fixed(raw string, err error) generateFunc {
	return func(context.Context, string, *genai.Schema) (string, error) { return raw, err }
}

func TestSuggestDetails(t *testing.T) {
	var gotPrompt string
	var gotSchema *genai.Schema
	g := &Generator{logger: logger.NewNop(), generate: func(_ context.Context, prompt string, schema *genai.Schema) (string, error) {
		gotPrompt, gotSchema = prompt, schema
		return `{"title":" Red city bike ","description":"Lightly used, new tyres."}`, nil
	}}

	s, err := g.SuggestDetails(context.Background(), domain.DetailsPrompt{Keywords: "red bike", Category: "Vehicles", Subcategory: "Bikes"})

	require.NoError(t, err)
	assert.Equal(t, "Red city bike", s.Title)
	assert.Equal(t, "Lightly used, new tyres.", s.Description)
	assert.Contains(t, gotPrompt, `"Vehicles"`)
	assert.Contains(t, gotPrompt, `"red bike"`)
	assert.Same(t, detailsSchema, gotSchema)
}

func TestSuggestDetails_FailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		callErr error
		want    error
	}{
		{name: "transport error", callErr: errors.New("503"), want: domain.ErrSuggestionFailed},
		{name: "not json", raw: "Here is your ad!", want: domain.ErrMalformedSuggestion},
		{name: "empty object", raw: "{}", want: domain.ErrMalformedSuggestion},
		{name: "missing description", raw: `{"title":"Bike"}`, want: domain.ErrMalformedSuggestion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Generator{logger: logger.NewNop(), generate: fixed(tt.raw, tt.callErr)}

			s, err := g.SuggestDetails(context.Background(), domain.DetailsPrompt{Category: "Vehicles", Subcategory: "Bikes"})

			assert.Nil(t, s)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSuggestTags_DedupesAndCaps(t *testing.T) {
	g := &Generator{logger: logger.NewNop(), generate: fixed(
		`{"tags":["bike","Bike"," ","red","city","used","cheap","commuter","steel","fixie","urban","vintage","road"]}`, nil)}

	tags, err := g.SuggestTags(context.Background(), "Bike", "Red bike")

	require.NoError(t, err)
	assert.Len(t, tags, domain.MaxSuggestedTags)
	assert.Equal(t, []string{"bike", "red", "city"}, tags[:3])
}

func TestSuggestTags_EmptyListIsMalformed(t *testing.T) {
	g := &Generator{logger: logger.NewNop(), generate: fixed(`{"tags":[]}`, nil)}

	_, err := g.SuggestTags(context.Background(), "Bike", "Red bike")
	assert.ErrorIs(t, err, domain.ErrMalformedSuggestion)
}

func TestNewGenerator_RequiresKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), "", "gemini-2.0-flash", logger.NewNop())
	assert.Error(t, err)
}
