package summary

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Summarizer produces a short summary for an article. The LLM-backed
// implementation may fail; the extractive one never does.
type Summarizer interface {
	Summarize(ctx context.Context, title, description string) (string, error)
}

// New returns the LLM summarizer when an API key is configured, otherwise
// the deterministic extractive fallback.
func New(apiKey, model string) Summarizer {
	if apiKey == "" {
		return NewExtractive()
	}
	return &llmSummarizer{
		client:   openai.NewClient(apiKey),
		model:    model,
		fallback: NewExtractive(),
	}
}

const summarizePrompt = `Provide a 1-2 sentence concise summary of the following news article. Focus on the key facts.

Title: %s
Description: %s`

type llmSummarizer struct {
	client   *openai.Client
	model    string
	fallback Summarizer
}

func (s *llmSummarizer) Summarize(ctx context.Context, title, description string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(summarizePrompt, title, description)},
		},
	})
	if err != nil {
		// Degrade rather than leave the article without a summary.
		return s.fallback.Summarize(ctx, title, description)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return s.fallback.Summarize(ctx, title, description)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

const maxExtractiveLength = 280

var sentenceRe = regexp.MustCompile(`(?:[.!?])\s+`)

// Extractive takes the first two sentences of title and description, capped
// at 280 characters.
type Extractive struct{}

func NewExtractive() *Extractive {
	return &Extractive{}
}

func (e *Extractive) Summarize(_ context.Context, title, description string) (string, error) {
	text := strings.TrimSpace(title)
	if text != "" && !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}
	if description != "" {
		text = strings.TrimSpace(text + " " + strings.TrimSpace(description))
	}

	sentences := splitSentences(text)
	summary := strings.Join(sentences[:min(2, len(sentences))], " ")
	if len(summary) > maxExtractiveLength {
		summary = strings.TrimSpace(summary[:maxExtractiveLength])
	}
	return summary, nil
}

func splitSentences(text string) []string {
	if text == "" {
		return nil
	}

	var sentences []string
	last := 0
	for _, match := range sentenceRe.FindAllStringIndex(text, -1) {
		sentences = append(sentences, strings.TrimSpace(text[last:match[0]+1]))
		last = match[1]
	}
	if last < len(text) {
		sentences = append(sentences, strings.TrimSpace(text[last:]))
	}
	return sentences
}
