package summary

import (
	"context"
	"strings"
	"testing"
)

func TestExtractive_FirstTwoSentences(t *testing.T) {
	summarizer := NewExtractive()

	got, err := summarizer.Summarize(context.Background(),
		"City council approves transit plan",
		"The vote passed narrowly. Construction begins next spring. Critics remain unconvinced.")
	if err != nil {
		t.Fatalf("Extractive summarizer should never fail: %v", err)
	}

	if !strings.Contains(got, "City council approves transit plan") {
		t.Errorf("Expected summary to open with the title, got: %s", got)
	}
	if strings.Contains(got, "Construction begins") {
		t.Errorf("Expected summary capped at two sentences, got: %s", got)
	}
}

func TestExtractive_CapsLength(t *testing.T) {
	summarizer := NewExtractive()

	long := strings.Repeat("word ", 100)
	got, err := summarizer.Summarize(context.Background(), "Title", long)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if len(got) > 280 {
		t.Errorf("Expected summary capped at 280 chars, got %d", len(got))
	}
}

func TestExtractive_EmptyInput(t *testing.T) {
	summarizer := NewExtractive()

	got, err := summarizer.Summarize(context.Background(), "", "")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty summary for empty input, got: %q", got)
	}
}

func TestExtractive_Deterministic(t *testing.T) {
	summarizer := NewExtractive()

	first, _ := summarizer.Summarize(context.Background(), "Title here", "Body text. More text.")
	second, _ := summarizer.Summarize(context.Background(), "Title here", "Body text. More text.")

	if first != second {
		t.Errorf("Extractive summarizer is not deterministic: %q vs %q", first, second)
	}
}

func TestNew_WithoutKeyReturnsExtractive(t *testing.T) {
	if _, ok := New("", "gpt-4o-mini").(*Extractive); !ok {
		t.Error("Expected extractive summarizer when no API key is configured")
	}
}
