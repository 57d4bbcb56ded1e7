package zones

import (
	"errors"
	"fmt"
)

// ErrZoneNotFound is returned when an operation references a zone id
// that doesn't exist.
var ErrZoneNotFound = errors.New("zone not found")

// ValidationError rejects a structurally invalid administrative write
// (missing name, degenerate ring, and so on). Surfaced as a 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid zone %s: %s", e.Field, e.Reason)
}

// MatchError is an unexpected failure while evaluating geometry, not
// the "no coverage" outcome — that one is a plain nil zone. ZoneID
// names the offending zone when the failure is attributable to one.
type MatchError struct {
	ZoneID string
	Err    error
}

func (e *MatchError) Error() string {
	if e.ZoneID != "" {
		return fmt.Sprintf("zone matching failed on zone %s: %v", e.ZoneID, e.Err)
	}
	return fmt.Sprintf("zone matching failed: %v", e.Err)
}

func (e *MatchError) Unwrap() error { return e.Err }
