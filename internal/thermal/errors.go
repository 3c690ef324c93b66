package thermal

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// Sentinel decode errors. Decoders wrap these with eris so callers can test
// the kind with eris.Is while keeping the full context chain.
var (
	// ErrUnsupportedVersion reports a metadata block whose signature or
	// version selects no known layout. The decoder refuses to guess.
	ErrUnsupportedVersion = eris.New("thermal: unsupported metadata version")

	// ErrMalformedBlock reports a structurally broken metadata block:
	// truncated data, an offset/length pair outside the segment, or a
	// declared pixel-array size that disagrees with the dimensions.
	ErrMalformedBlock = eris.New("thermal: malformed metadata block")
)

// MissingFieldError reports a required metadata field that is absent or has
// the wrong type. Key is the source-document name of the field.
type MissingFieldError struct {
	Key string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("thermal: missing or malformed field %q", e.Key)
}

// InvalidParameterError reports a parameter value that violates the model's
// validation rules. Values are never silently clamped into range.
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("thermal: invalid parameter %s: %s", e.Field, e.Reason)
}
