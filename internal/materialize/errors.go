package materialize

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes materialization errors.
type ErrorCode string

const (
	// ErrCodeDanglingRef indicates a symbolic reference to a population key
	// that its target table does not have.
	ErrCodeDanglingRef ErrorCode = "DANGLING_SYMBOLIC_REF"

	// ErrCodeUnknownTable indicates population data (or a created record) for
	// a table the schema does not declare.
	ErrCodeUnknownTable ErrorCode = "UNKNOWN_TABLE"

	// ErrCodeDuplicateID indicates the id generator returned the same id for
	// two keys of one table.
	ErrCodeDuplicateID ErrorCode = "DUPLICATE_ID"

	// ErrCodeEmptyID indicates the id generator returned an empty id.
	ErrCodeEmptyID ErrorCode = "EMPTY_ID"
)

// Error is a failed precondition of materialization. Table and Key locate the
// population entry being processed; Field is the dotted path inside its data
// when the problem is a reference.
type Error struct {
	Code    ErrorCode
	Table   string
	Key     string
	Field   string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	where := e.Table
	if e.Key != "" {
		where = fmt.Sprintf("%s[%s]", e.Table, e.Key)
	}
	if e.Field != "" {
		where += "." + e.Field
	}
	if where == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (at %s)", e.Code, e.Message, where)
}

// IsMaterializationError reports whether err is (or wraps) an Error.
func IsMaterializationError(err error) bool {
	var me *Error
	return errors.As(err, &me)
}

// IsDanglingRefError reports whether err is a dangling symbolic reference.
func IsDanglingRefError(err error) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Code == ErrCodeDanglingRef
	}
	return false
}
