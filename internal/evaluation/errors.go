package evaluation

import (
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound indicates that no question set exists for the
	// requested job position.
	ErrJobNotFound = errors.New("job position not found")

	// ErrCorruptRecord indicates that an existing evaluation record could
	// not be decoded. The record is never overwritten in this case, so
	// previously stored question evaluations are preserved.
	ErrCorruptRecord = errors.New("evaluation record is corrupt")
)

// ParseError reports an artifact name that does not match the expected
// naming convention.
type ParseError struct {
	// Filename is the offending artifact name.
	Filename string
	// Reason explains which part of the grammar was violated.
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing artifact name %q: %s", e.Filename, e.Reason)
}

// SchemaError reports a stored question set that exists but is missing
// required fields or is otherwise malformed.
type SchemaError struct {
	// Position is the job position whose record failed validation.
	Position string
	// Reasons lists the individual validation failures.
	Reasons []string
}

func (e *SchemaError) Error() string {
	if len(e.Reasons) == 1 {
		return fmt.Sprintf("invalid question set for position %q: %s", e.Position, e.Reasons[0])
	}
	return fmt.Sprintf("invalid question set for position %q: %v", e.Position, e.Reasons)
}
