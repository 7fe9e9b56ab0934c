package intent

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/veslov/newspulse/app/geo"
	"github.com/veslov/newspulse/app/textsignal"
)

const (
	DefaultScoreThreshold = 0.7
	DefaultNearbyRadiusKm = 10.0
)

var _ Classifier = (*RuleClassifier)(nil)

// RuleClassifier is the deterministic fallback. It never fails: absence of
// any signal degrades to search mode with whatever keywords were extracted.
type RuleClassifier struct {
	vocab *Vocabulary
	title cases.Caser
}

func NewRuleClassifier(vocab *Vocabulary) *RuleClassifier {
	return &RuleClassifier{
		vocab: vocab,
		title: cases.Title(language.English),
	}
}

func (c *RuleClassifier) Classify(_ context.Context, query string, location *geo.Location) (*RoutedQuery, error) {
	lowered := strings.ToLower(query)
	signals := textsignal.Extract(query)

	routed := &RoutedQuery{
		Mode:       ModeSearch,
		Keywords:   signals.Keywords,
		Confidence: 0.4,
		Origin:     "rules",
	}
	if len(signals.Keywords) == 0 {
		routed.Confidence = 0.1
	}

	// A place mentioned in the query beats no location; an explicit location
	// from the caller beats both.
	if location == nil {
		if loc, ok := c.vocab.MatchLocation(query); ok {
			location = loc
		}
	}
	routed.Location = location

	if category, ok := c.vocab.MatchCategory(query); ok {
		routed.Mode = ModeCategory
		routed.Category = c.title.String(category)
		routed.Confidence = 0.9
		return routed, nil
	}

	if source, ok := c.vocab.MatchSource(query); ok {
		routed.Mode = ModeSource
		routed.Source = source
		routed.Confidence = 0.85
		return routed, nil
	}

	if strings.Contains(lowered, "score") {
		routed.Mode = ModeScore
		routed.Threshold = thresholdFromText(lowered)
		routed.Confidence = 0.8
		return routed, nil
	}

	// Trending works globally; a location only narrows the aggregation.
	if strings.Contains(lowered, "trending") {
		routed.Mode = ModeTrending
		routed.Confidence = 0.85
		return routed, nil
	}

	if mentionsProximity(lowered) && location != nil {
		routed.Mode = ModeNearby
		routed.RadiusKm = DefaultNearbyRadiusKm
		routed.Confidence = 0.85
		return routed, nil
	}

	return routed, nil
}

func mentionsProximity(lowered string) bool {
	for _, hint := range []string{"near", "nearby", "around"} {
		if strings.Contains(lowered, hint) {
			return true
		}
	}
	return false
}

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// thresholdFromText picks the first numeric token in [0,1], defaulting when
// the query names no usable threshold.
func thresholdFromText(text string) float64 {
	for _, token := range numberRe.FindAllString(text, -1) {
		value, err := strconv.ParseFloat(token, 64)
		if err == nil && value >= 0 && value <= 1 {
			return value
		}
	}
	return DefaultScoreThreshold
}
