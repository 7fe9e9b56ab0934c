package intent

import (
	"context"
	"errors"

	"github.com/veslov/newspulse/app/geo"
)

// Classifier maps a free-form query to a retrieval mode with parameters.
// Implementations may fail; the Router guarantees a usable result by
// degrading to the rule-based classifier.
type Classifier interface {
	Classify(ctx context.Context, query string, location *geo.Location) (*RoutedQuery, error)
}

var (
	ErrUnavailable = errors.New("classifier unavailable")
	ErrBadResponse = errors.New("classifier returned an unparseable response")
)
