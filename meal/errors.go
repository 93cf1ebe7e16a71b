package meal

import (
	"errors"
	"fmt"
)

// ErrInvalidPrice is returned by [ParsePrice] for any input that is not of
// the form "<euros>,<two-digit cents>".
var ErrInvalidPrice = errors.New("meal: invalid price")

// DateParseError reports a date string that failed strict parsing, either in
// an upstream payload or in a caller supplied date spec.
type DateParseError struct {
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("meal: invalid date %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("meal: invalid date %q", e.Value)
}

func (e *DateParseError) Unwrap() error { return e.Err }

// AnomalyKey is the log attribute set on every data anomaly record so that
// anomalies can be filtered out of the general log stream.
const AnomalyKey = "anomaly"
