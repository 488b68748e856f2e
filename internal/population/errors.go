package population

import (
	"errors"
	"fmt"
)

// Error reports a problem in population source data. Line is 1-based and zero
// when the position is unknown.
type Error struct {
	Line    int
	Table   string
	Key     string
	Message string
}

func (e *Error) Error() string {
	where := e.Table
	if e.Key != "" {
		where += "." + e.Key
	}
	switch {
	case e.Line > 0 && where != "":
		return fmt.Sprintf("population: line %d: %s: %s", e.Line, where, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("population: line %d: %s", e.Line, e.Message)
	case where != "":
		return fmt.Sprintf("population: %s: %s", where, e.Message)
	default:
		return "population: " + e.Message
	}
}

// IsPopulationError reports whether err is (or wraps) a population Error.
func IsPopulationError(err error) bool {
	var pe *Error
	return errors.As(err, &pe)
}
