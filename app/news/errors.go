package news

import (
	"errors"
)

// ErrInvalidParameter marks caller mistakes (bad limit, malformed
// coordinates, missing mode parameters). Surfaced as-is, never retried.
var ErrInvalidParameter = errors.New("invalid parameter")
