package schema

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// Error is a schema declaration error, with a source position when the
// schema came from a CUE file.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsSchemaError reports whether err is (or wraps) a schema Error.
func IsSchemaError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
