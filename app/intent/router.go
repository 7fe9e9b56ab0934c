package intent

import (
	"context"
	"log/slog"
	"time"

	"github.com/veslov/newspulse/app/geo"
)

// minLLMConfidence is the floor below which an LLM answer is discarded in
// favor of the deterministic rules.
const minLLMConfidence = 0.5

// Router picks between the LLM classifier and the rule-based fallback. The
// LLM path is bounded by a timeout; every failure mode degrades to the rules,
// so Route never fails.
type Router struct {
	llm     Classifier
	rules   *RuleClassifier
	timeout time.Duration
}

// NewRouter builds a router. llm may be nil when no API key is configured.
func NewRouter(llm Classifier, rules *RuleClassifier, timeout time.Duration) *Router {
	return &Router{
		llm:     llm,
		rules:   rules,
		timeout: timeout,
	}
}

func (r *Router) Route(ctx context.Context, query string, location *geo.Location) *RoutedQuery {
	if r.llm != nil {
		llmCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		routed, err := r.llm.Classify(llmCtx, query, location)
		if err == nil && routed.Confidence >= minLLMConfidence {
			slog.Debug("Query classified", "origin", routed.Origin, "mode", routed.Mode, "confidence", routed.Confidence)
			return routed
		}
		if err != nil {
			slog.Debug("LLM classification failed, using rules", "error", err)
		} else {
			slog.Debug("LLM classification below confidence floor, using rules", "confidence", routed.Confidence)
		}
	}

	routed, _ := r.rules.Classify(ctx, query, location)
	slog.Debug("Query classified", "origin", routed.Origin, "mode", routed.Mode, "confidence", routed.Confidence)
	return routed
}
