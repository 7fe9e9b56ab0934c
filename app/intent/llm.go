package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/veslov/newspulse/app/geo"
	"github.com/veslov/newspulse/app/textsignal"
)

var _ Classifier = (*LLMClassifier)(nil)

// LLMClassifier asks an OpenAI-compatible model to extract intent and
// parameters from the query. Any transport or parse failure is returned to
// the Router, which falls back to the rule classifier.
type LLMClassifier struct {
	client *openai.Client
	model  string
	vocab  *Vocabulary
}

func NewLLMClassifier(apiKey, model string, vocab *Vocabulary) *LLMClassifier {
	return &LLMClassifier{
		client: openai.NewClient(apiKey),
		model:  model,
		vocab:  vocab,
	}
}

const classifyPrompt = `You extract structured information from user news queries.
Return a JSON object with fields: intent (one of category, source, score, search, nearby, trending),
entities (array of proper nouns), locations (array of place names), keywords (array of important search terms),
and confidence (number between 0 and 1).
Treat proximity hints like "near me" as the nearby intent.

Query: %s`

type llmPayload struct {
	Intent     string   `json:"intent"`
	Entities   []string `json:"entities"`
	Locations  []string `json:"locations"`
	Keywords   []string `json:"keywords"`
	Confidence float64  `json:"confidence"`
}

func (c *LLMClassifier) Classify(ctx context.Context, query string, location *geo.Location) (*RoutedQuery, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(classifyPrompt, query)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrBadResponse)
	}

	var payload llmPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	mode, err := ParseMode(payload.Intent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	return c.buildRouted(mode, payload, query, location), nil
}

// buildRouted resolves the model's loose output into concrete mode
// parameters, reusing the vocabulary for canonical names.
func (c *LLMClassifier) buildRouted(mode Mode, payload llmPayload, query string, location *geo.Location) *RoutedQuery {
	routed := &RoutedQuery{
		Mode:       mode,
		Keywords:   payload.Keywords,
		Confidence: payload.Confidence,
		Origin:     "llm",
	}
	if len(routed.Keywords) == 0 {
		routed.Keywords = textsignal.Extract(query).Keywords
	}

	if location == nil {
		for _, place := range payload.Locations {
			if loc, ok := c.vocab.MatchLocation(place); ok {
				location = loc
				break
			}
		}
	}
	routed.Location = location

	switch mode {
	case ModeCategory:
		if category, ok := c.vocab.MatchCategory(strings.Join(payload.Keywords, " ") + " " + query); ok {
			routed.Category = category
		}
		if routed.Category == "" {
			// The model named a category we do not know; search instead.
			routed.Mode = ModeSearch
		}
	case ModeSource:
		if source, ok := c.vocab.MatchSource(strings.Join(payload.Entities, " ") + " " + query); ok {
			routed.Source = source
		} else if len(payload.Entities) > 0 {
			routed.Source = payload.Entities[0]
		} else {
			routed.Mode = ModeSearch
		}
	case ModeScore:
		routed.Threshold = thresholdFromText(strings.ToLower(query))
	case ModeNearby:
		routed.RadiusKm = DefaultNearbyRadiusKm
		if routed.Location == nil {
			routed.Mode = ModeSearch
		}
	case ModeTrending:
		// Location stays optional; trending degrades to global aggregation.
	}

	return routed
}
