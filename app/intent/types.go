package intent

import (
	"fmt"

	"github.com/veslov/newspulse/app/geo"
)

type Mode string

const (
	ModeCategory Mode = "category"
	ModeSource   Mode = "source"
	ModeScore    Mode = "score"
	ModeSearch   Mode = "search"
	ModeNearby   Mode = "nearby"
	ModeTrending Mode = "trending"
)

// ParseMode validates a mode name coming from outside the process.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCategory, ModeSource, ModeScore, ModeSearch, ModeNearby, ModeTrending:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown retrieval mode '%s'", s)
	}
}

// RoutedQuery is the classifier output: a retrieval mode plus the parameters
// that mode needs. Confidence is only consulted when deciding whether to
// discard an LLM answer; it is not exposed downstream.
type RoutedQuery struct {
	Mode       Mode
	Category   string
	Source     string
	Threshold  float64
	Keywords   []string
	Location   *geo.Location
	RadiusKm   float64
	Confidence float64
	Origin     string // "llm" or "rules", telemetry only
}
