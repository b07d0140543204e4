package domain

import "fmt"

// RawReference is a physical column reference as written in a cube model.
// Models accept three encodings:
//
//   - a dot-delimited string: "table.column"
//   - a list: [table, column] or [schema, table, column]
//   - a record: {schema, table, column} with column required
//
// The closed set of implementations replaces runtime shape inspection; the
// mapper's coalescer resolves any of them to a canonical triple.
type RawReference interface {
	rawRef()
}

// StringRef is the "table.column" (or bare "column") encoding.
type StringRef string

func (StringRef) rawRef() {}

// ListRef is the ordered [table, column] or [schema, table, column]
// encoding. Any other length is rejected by the coalescer.
type ListRef []string

func (ListRef) rawRef() {}

// RecordRef is the keyed encoding. Column is required; empty Schema or
// Table fall back to the coalescer defaults.
type RecordRef struct {
	Schema string
	Table  string
	Column string
}

func (RecordRef) rawRef() {}

// String renders the reference roughly as it would appear in a model file.
func (r RecordRef) String() string {
	switch {
	case r.Schema != "":
		return fmt.Sprintf("%s.%s.%s", r.Schema, r.Table, r.Column)
	case r.Table != "":
		return fmt.Sprintf("%s.%s", r.Table, r.Column)
	default:
		return r.Column
	}
}
