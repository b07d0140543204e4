// Package mapper resolves logical analytical references (dimension and
// attribute names) into physical storage references (schema, table, column)
// and computes the join closure needed to reach a set of tables from the
// fact table.
package mapper

import (
	"strings"

	"cubemap/internal/domain"
)

// PhysicalReference is the concrete storage address of a column. Schema and
// Table use "" for "absent"; SQL identifiers are never empty, so nothing is
// lost and the struct stays comparable. Note that Table might be an aliased
// table name as declared in a join.
type PhysicalReference struct {
	Schema string
	Table  string
	Column string
}

// TableRef identifies a (possibly aliased) table within a schema.
type TableRef struct {
	Schema string
	Table  string
}

// TableRef returns the reference's (schema, table) pair.
func (r PhysicalReference) TableRef() TableRef {
	return TableRef{Schema: r.Schema, Table: r.Table}
}

// String renders the reference with whatever qualifiers are present.
func (r PhysicalReference) String() string {
	parts := make([]string, 0, 3)
	if r.Schema != "" {
		parts = append(parts, r.Schema)
	}
	if r.Table != "" {
		parts = append(parts, r.Table)
	}
	return strings.Join(append(parts, r.Column), ".")
}

// Join is one edge of the star schema. Master identifies the "one" side
// (the fact table or an already-joined table), Detail the table being
// pulled in. Alias, when set, is the name under which the detail table is
// referenced in the query and in join resolution.
type Join struct {
	Master PhysicalReference
	Detail PhysicalReference
	Alias  string
}

// DetailRef returns the (schema, alias-or-table) pair the join's detail
// side is matched on.
func (j Join) DetailRef() TableRef {
	table := j.Alias
	if table == "" {
		table = j.Detail.Table
	}
	return TableRef{Schema: j.Detail.Schema, Table: table}
}

// Coalesce normalizes a raw model reference into a PhysicalReference.
// A missing table falls back to defaultTable, a missing schema to
// defaultSchema; explicitly supplied values always win. A dot-delimited
// string splits on the first dot only, so "dim.sub.path" yields table
// "dim" and column "sub.path". A list of length other than 2 or 3, or a
// record without a column, fails with InvalidReferenceError.
func Coalesce(ref domain.RawReference, defaultTable, defaultSchema string) (PhysicalReference, error) {
	switch r := ref.(type) {
	case domain.StringRef:
		table, column, found := strings.Cut(string(r), ".")
		if !found {
			return PhysicalReference{Schema: defaultSchema, Table: defaultTable, Column: string(r)}, nil
		}
		return PhysicalReference{Schema: defaultSchema, Table: table, Column: column}, nil

	case domain.ListRef:
		switch len(r) {
		case 2:
			return PhysicalReference{Schema: defaultSchema, Table: r[0], Column: r[1]}, nil
		case 3:
			return PhysicalReference{Schema: r[0], Table: r[1], Column: r[2]}, nil
		default:
			return PhysicalReference{}, domain.ErrInvalidReference(
				"reference list should have 2 (table, column) or 3 (schema, table, column) items, got %d", len(r))
		}

	case domain.RecordRef:
		if r.Column == "" {
			return PhysicalReference{}, domain.ErrInvalidReference("reference record has no column")
		}
		out := PhysicalReference{Schema: r.Schema, Table: r.Table, Column: r.Column}
		if out.Schema == "" {
			out.Schema = defaultSchema
		}
		if out.Table == "" {
			out.Table = defaultTable
		}
		return out, nil

	default:
		return PhysicalReference{}, domain.ErrInvalidReference("unrecognized reference shape %T", ref)
	}
}
