package schema

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// LoadCUE compiles CUE source into a Schema. filename is used for error
// positions only.
//
// Expected shape:
//
//	table: People: {
//		fields: { name: string, age: int }
//		ref: { favouriteCoWorker: "self", colleagues: ["People"] }
//	}
//
// A reference target written as a one-element list declares a many-reference.
func LoadCUE(src []byte, filename string) (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileCUE(v)
}

// LoadCUEFile reads and compiles a CUE schema file.
func LoadCUEFile(path string) (*Schema, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return LoadCUE(src, path)
}

// CompileCUE converts a CUE value holding a top-level "table" struct into a
// Schema. Tables keep their CUE declaration order.
func CompileCUE(v cue.Value) (*Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return nil, &Error{
			Field:   "table",
			Message: "at least one table is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var tables []Table
	for iter.Next() {
		t, err := compileTable(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	s, err := New(tables...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func compileTable(name string, v cue.Value) (Table, error) {
	t := Table{Name: name}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if fieldsVal.Exists() {
		iter, err := fieldsVal.Fields(cue.Optional(true))
		if err != nil {
			return t, formatCUEError(err)
		}
		for iter.Next() {
			kind, err := extractKind(iter.Value())
			if err != nil {
				return t, err
			}
			t.Fields = append(t.Fields, Scalar(iter.Selector().Unquoted(), kind))
		}
	}

	refVal := v.LookupPath(cue.ParsePath("ref"))
	if refVal.Exists() {
		iter, err := refVal.Fields()
		if err != nil {
			return t, formatCUEError(err)
		}
		for iter.Next() {
			f, err := compileRef(name, iter.Selector().Unquoted(), iter.Value())
			if err != nil {
				return t, err
			}
			t.Fields = append(t.Fields, f)
		}
	}

	return t, nil
}

// compileRef parses a reference target: "Table", "self" or ["Table"].
func compileRef(table, path string, v cue.Value) (Field, error) {
	if target, err := v.String(); err == nil {
		return Ref(path, target), nil
	}

	if v.IncompleteKind() == cue.ListKind {
		list, err := v.List()
		if err != nil {
			return Field{}, formatCUEError(err)
		}
		var targets []string
		for list.Next() {
			target, err := list.Value().String()
			if err != nil {
				return Field{}, formatCUEError(err)
			}
			targets = append(targets, target)
		}
		if len(targets) == 1 {
			return RefMany(path, targets[0]), nil
		}
	}

	return Field{}, &Error{
		Field:   fmt.Sprintf("table.%s.ref.%s", table, path),
		Message: `reference target must be a table name, "self", or a one-element list`,
		Pos:     v.Pos(),
	}
}

// extractKind converts a CUE type to a FieldKind.
func extractKind(v cue.Value) (FieldKind, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return KindString, nil
	case cue.IntKind:
		return KindInt, nil
	case cue.FloatKind, cue.NumberKind:
		return KindFloat, nil
	case cue.BoolKind:
		return KindBool, nil
	case cue.ListKind:
		return KindArray, nil
	case cue.StructKind:
		return KindObject, nil
	case cue.TopKind:
		return KindAny, nil
	default:
		return "", &Error{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &Error{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
