// Package sqlgen generates SELECT statements from resolved physical
// references and the mapper's join closure.
package sqlgen

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"cubemap/internal/domain"
	"cubemap/internal/mapper"
)

// Cut is an equality filter on a logical attribute reference. Values are
// bound as placeholder arguments, never interpolated.
type Cut struct {
	Ref   string      `json:"ref"`
	Value interface{} `json:"value"`
}

// AggregateRequest describes one aggregation: measures to sum, drilldown
// attributes to group by, and cuts to filter on.
type AggregateRequest struct {
	Measures  []string `json:"measures"`
	Drilldown []string `json:"drilldown"`
	Cuts      []Cut    `json:"cuts"`
	Locale    string   `json:"locale"`
	Limit     uint64   `json:"limit"`
}

// Builder generates SQL for one cube. Joins are emitted in the mapper's
// discovery order; no performance-motivated reordering happens here.
type Builder struct {
	m *mapper.Mapper
}

// NewBuilder creates a builder over the given mapper.
func NewBuilder(m *mapper.Mapper) *Builder {
	return &Builder{m: m}
}

// Aggregate builds a grouped SUM query. At least one measure is required.
// It returns the SQL, its placeholder arguments, and the joins the query
// uses.
func (b *Builder) Aggregate(req AggregateRequest) (string, []interface{}, []mapper.Join, error) {
	if len(req.Measures) == 0 {
		return "", nil, nil, domain.ErrValidation("at least one measure is required")
	}

	var selects []string
	var groupBy []string
	var refs []mapper.PhysicalReference

	for _, logical := range req.Drilldown {
		ref, err := b.resolve(logical, req.Locale)
		if err != nil {
			return "", nil, nil, err
		}
		refs = append(refs, ref)
		col := columnExpr(ref)
		selects = append(selects, col+" AS "+sqlAlias(logical))
		groupBy = append(groupBy, col)
	}

	for _, logical := range req.Measures {
		ref, err := b.resolve(logical, req.Locale)
		if err != nil {
			return "", nil, nil, err
		}
		refs = append(refs, ref)
		selects = append(selects, "SUM("+columnExpr(ref)+") AS "+sqlAlias(logical))
	}

	where := sq.Eq{}
	for _, cut := range req.Cuts {
		ref, err := b.resolve(cut.Ref, req.Locale)
		if err != nil {
			return "", nil, nil, err
		}
		refs = append(refs, ref)
		where[columnExpr(ref)] = cut.Value
	}

	joins := b.m.RelevantJoins(refs)

	query := sq.Select(selects...).From(b.fromExpr())
	for _, join := range joins {
		query = query.LeftJoin(joinExpr(join))
	}
	if len(where) > 0 {
		query = query.Where(where)
	}
	if len(groupBy) > 0 {
		query = query.GroupBy(groupBy...).OrderBy(groupBy...)
	}
	if req.Limit > 0 {
		query = query.Limit(req.Limit)
	}

	sqlText, args, err := query.ToSql()
	if err != nil {
		return "", nil, nil, err
	}
	return sqlText, args, joins, nil
}

// Facts builds a denormalized row listing of the given attributes.
func (b *Builder) Facts(attrs []string, cuts []Cut, locale string, limit uint64) (string, []interface{}, []mapper.Join, error) {
	if len(attrs) == 0 {
		return "", nil, nil, domain.ErrValidation("at least one attribute is required")
	}

	var selects []string
	var refs []mapper.PhysicalReference
	for _, logical := range attrs {
		ref, err := b.resolve(logical, locale)
		if err != nil {
			return "", nil, nil, err
		}
		refs = append(refs, ref)
		selects = append(selects, columnExpr(ref)+" AS "+sqlAlias(logical))
	}

	where := sq.Eq{}
	for _, cut := range cuts {
		ref, err := b.resolve(cut.Ref, locale)
		if err != nil {
			return "", nil, nil, err
		}
		refs = append(refs, ref)
		where[columnExpr(ref)] = cut.Value
	}

	joins := b.m.RelevantJoins(refs)

	query := sq.Select(selects...).From(b.fromExpr())
	for _, join := range joins {
		query = query.LeftJoin(joinExpr(join))
	}
	if len(where) > 0 {
		query = query.Where(where)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	sqlText, args, err := query.ToSql()
	if err != nil {
		return "", nil, nil, err
	}
	return sqlText, args, joins, nil
}

// resolve maps a logical reference to its physical reference.
func (b *Builder) resolve(logical, locale string) (mapper.PhysicalReference, error) {
	attr, ok := b.m.AttributeForRef(logical)
	if !ok {
		return mapper.PhysicalReference{}, domain.ErrValidation("unknown attribute %q in cube %q", logical, b.m.Cube().Name)
	}
	return b.m.Physical(attr, locale)
}

func (b *Builder) fromExpr() string {
	return tableExpr(b.m.Schema(), b.m.FactName())
}

// joinExpr renders one LEFT JOIN clause body: the detail table (aliased
// when the join declares an alias) and the master = detail condition.
func joinExpr(join mapper.Join) string {
	var sb strings.Builder
	sb.WriteString(tableExpr(join.Detail.Schema, join.Detail.Table))
	if join.Alias != "" {
		sb.WriteString(" AS ")
		sb.WriteString(join.Alias)
	}
	sb.WriteString(" ON ")
	sb.WriteString(columnExpr(join.Master))
	sb.WriteString(" = ")

	if join.Alias != "" {
		// The alias is the sole qualifier; schema-qualifying an alias
		// would be invalid SQL.
		sb.WriteString(join.Alias + "." + join.Detail.Column)
	} else {
		sb.WriteString(columnExpr(join.Detail))
	}
	return sb.String()
}

func tableExpr(schema, table string) string {
	if schema != "" {
		return schema + "." + table
	}
	return table
}

func columnExpr(ref mapper.PhysicalReference) string {
	return ref.String()
}

// sqlAlias turns a logical reference into a valid result column name.
func sqlAlias(logical string) string {
	return strings.ReplaceAll(logical, ".", "_")
}
