package upstream

import "fmt"

// TransportError reports that the upstream API could not be reached or
// answered with a non-2xx status. StatusCode is zero for network failures.
type TransportError struct {
	Facility   string
	Lang       string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream: fetch %s (%s): status %d", e.Facility, e.Lang, e.StatusCode)
	}
	return fmt.Sprintf("upstream: fetch %s (%s): %v", e.Facility, e.Lang, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a payload that was received but could not be decoded
// into a plan.
type ParseError struct {
	Facility string
	Lang     string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("upstream: parse %s (%s): %v", e.Facility, e.Lang, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
