package mapper

import (
	"fmt"
	"sort"
	"strings"

	"cubemap/internal/domain"
)

// Config captures the mapping conventions for one cube. The zero value is
// usable: no default schema, no dimension prefix, flat-dimension
// simplification enabled.
type Config struct {
	// Locale is the default locale used by Physical when the caller does
	// not request one.
	Locale string

	// Schema is the default database schema.
	Schema string

	// FactName overrides the fact table name. When empty the cube's
	// declared fact table is used, and when that is empty too, the cube
	// name.
	FactName string

	// DimensionPrefix is prepended to dimension names when a dimension
	// table name is derived by convention.
	DimensionPrefix string

	// DisableFlatSimplification turns off the default behavior of
	// collapsing references for flat dimensions without details to just
	// the dimension name.
	DisableFlatSimplification bool
}

func (c Config) simplify() bool { return !c.DisableFlatSimplification }

// Mapper translates the logical model of one cube to its physical database
// schema. It is immutable after construction and safe for concurrent use;
// when the underlying cube or its mappings change, build a replacement with
// Rebuild rather than mutating in place.
type Mapper struct {
	cube     *domain.Cube
	cfg      Config
	factName string

	// attributes indexes every cube attribute by its logical reference.
	attributes map[string]*domain.Attribute

	// joins keeps model order: join resolution matches the first join
	// whose detail side equals a requested table, so input order is a
	// caller-visible tie-breaking contract.
	joins []Join
}

// New creates a mapper for cube. It fails with MissingCubeError when cube
// is nil and with InvalidReferenceError when a join declaration cannot be
// coalesced.
func New(cube *domain.Cube, cfg Config) (*Mapper, error) {
	if cube == nil {
		return nil, domain.ErrMissingCube("cube for mapper should not be nil")
	}

	factName := cfg.FactName
	if factName == "" {
		factName = cube.FactTable
	}
	if factName == "" {
		factName = cube.Name
	}

	m := &Mapper{cube: cube, cfg: cfg, factName: factName}
	m.collectAttributes()
	if err := m.collectJoins(); err != nil {
		return nil, err
	}
	return m, nil
}

// Rebuild constructs a fresh mapper from the same cube and configuration.
// Callers use this after changing the cube model; existing readers keep the
// old instance.
func (m *Mapper) Rebuild() (*Mapper, error) {
	return New(m.cube, m.cfg)
}

// Cube returns the mapped cube.
func (m *Mapper) Cube() *domain.Cube { return m.cube }

// FactName returns the resolved fact table name.
func (m *Mapper) FactName() string { return m.factName }

// Schema returns the default database schema.
func (m *Mapper) Schema() string { return m.cfg.Schema }

// collectAttributes builds the attribute catalog: fact measures, fact
// details, then every dimension level's attributes. A later attribute with
// a colliding logical reference overwrites an earlier one.
func (m *Mapper) collectAttributes() {
	m.attributes = make(map[string]*domain.Attribute)

	for _, attr := range m.cube.Measures {
		m.attributes[m.Logical(attr)] = attr
	}
	for _, attr := range m.cube.Details {
		m.attributes[m.Logical(attr)] = attr
	}
	for _, dim := range m.cube.Dimensions {
		for _, level := range dim.Levels {
			for _, attr := range level.Attributes {
				m.attributes[m.Logical(attr)] = attr
			}
		}
	}
}

// collectJoins coalesces the cube's join declarations. The master side
// defaults to the fact table; the detail side has no table default.
func (m *Mapper) collectJoins() error {
	m.joins = nil
	for i, spec := range m.cube.Joins {
		master, err := Coalesce(spec.Master, m.factName, "")
		if err != nil {
			return fmt.Errorf("join %d master: %w", i, err)
		}
		detail, err := Coalesce(spec.Detail, "", "")
		if err != nil {
			return fmt.Errorf("join %d detail: %w", i, err)
		}
		m.joins = append(m.joins, Join{Master: master, Detail: detail, Alias: spec.Alias})
	}
	return nil
}

// Logical returns the logical reference string for attribute:
//
//   - "attribute" for fact measures and details
//   - "dimension" for attributes of flat dimensions without details (unless
//     simplification is disabled)
//   - "dimension.attribute" otherwise
func (m *Mapper) Logical(attr *domain.Attribute) string {
	dim := attr.Dimension
	if dim == nil {
		return attr.Name
	}
	if m.cfg.simplify() && dim.IsFlat() && !dim.HasDetails() {
		return dim.Name
	}
	return dim.Name + "." + attr.Name
}

// SplitLogical splits a logical reference into its dimension and attribute
// parts. References without a dot have no dimension part.
func (m *Mapper) SplitLogical(reference string) (dimension, attribute string) {
	dim, attr, found := strings.Cut(reference, ".")
	if !found {
		return "", reference
	}
	return dim, attr
}

// AttributeForRef looks up a cube attribute by its logical reference.
func (m *Mapper) AttributeForRef(reference string) (*domain.Attribute, bool) {
	attr, ok := m.attributes[reference]
	return attr, ok
}

// Refs returns every logical reference in the catalog, sorted.
func (m *Mapper) Refs() []string {
	refs := make([]string, 0, len(m.attributes))
	for ref := range m.attributes {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// Joins returns a copy of the coalesced join list, in model order.
func (m *Mapper) Joins() []Join {
	return append([]Join(nil), m.joins...)
}

// Physical resolves attribute to a physical reference. An empty locale
// falls back to the configured default locale.
//
// When the attribute is localizable, the requested locale is used if the
// attribute supports it, otherwise the attribute's first declared locale;
// non-localizable attributes ignore the request entirely. The cube's
// mapping table is consulted first (logical reference plus ".<locale>"
// suffix when localized); without a matching entry the reference is derived
// by convention: the attribute name as column (plus "_<locale>" suffix),
// the prefixed dimension name as table — or the fact table for fact
// attributes and simplified flat dimensions.
func (m *Mapper) Physical(attr *domain.Attribute, locale string) (PhysicalReference, error) {
	if locale == "" {
		locale = m.cfg.Locale
	}

	if attr.IsLocalizable() {
		supported := false
		for _, l := range attr.Locales {
			if l == locale {
				supported = true
				break
			}
		}
		if !supported {
			locale = attr.Locales[0]
		}
	} else {
		locale = ""
	}

	if len(m.cube.Mappings) > 0 {
		key := m.Logical(attr)
		if locale != "" {
			key += "." + locale
		}
		if raw, ok := m.cube.Mappings[key]; ok {
			return Coalesce(raw, m.factName, m.cfg.Schema)
		}
	}

	column := attr.Name
	if locale != "" {
		column += "_" + locale
	}

	table := m.factName
	if dim := attr.Dimension; dim != nil && !(m.cfg.simplify() && dim.IsFlat() && !dim.HasDetails()) {
		table = m.cfg.DimensionPrefix + dim.Name
	}

	return PhysicalReference{Schema: m.cfg.Schema, Table: table, Column: column}, nil
}

// TableMap returns references to all tables the mapper knows about: the
// fact table and both sides of every join. Keys are aliased tables
// (schema, alias-or-table-name), values are the real tables. It fails with
// InvalidJoinError when a join's detail table is missing or names the fact
// table.
func (m *Mapper) TableMap() (map[TableRef]TableRef, error) {
	fact := TableRef{Schema: m.cfg.Schema, Table: m.factName}
	tables := map[TableRef]TableRef{fact: fact}

	for i, join := range m.joins {
		if join.Detail.Table == "" {
			return nil, domain.ErrInvalidJoin("join %d has no detail table", i)
		}
		if join.Detail.Table == m.factName {
			return nil, domain.ErrInvalidJoin("join %d detail table %q is the fact table", i, join.Detail.Table)
		}

		master := join.Master.TableRef()
		tables[master] = master
		tables[join.DetailRef()] = join.Detail.TableRef()
	}
	return tables, nil
}

// RelevantJoins returns the joins required to access the tables referenced
// by refs, walking from each referenced table toward the fact table. The
// detail side of a join is matched on (schema, alias-or-table); when
// several joins share a detail side the first one in model order wins.
// Tables that are no join's detail side (the fact table itself, typically)
// need no join. The result is in discovery order: a FIFO walk seeded with
// the distinct tables of refs in input order, so output is deterministic
// for a given input, though callers needing a canonical order should sort
// themselves.
func (m *Mapper) RelevantJoins(refs []PhysicalReference) []Join {
	var queue []TableRef
	seen := make(map[TableRef]bool)
	for _, ref := range refs {
		table := ref.TableRef()
		if !seen[table] {
			seen[table] = true
			queue = append(queue, table)
		}
	}

	joins := []Join{}
	for len(queue) > 0 {
		table := queue[0]
		queue = queue[1:]

		for _, join := range m.joins {
			if table != join.DetailRef() {
				continue
			}
			joins = append(joins, join)

			master := join.Master.TableRef()
			if !seen[master] {
				seen[master] = true
				queue = append(queue, master)
			}
			break
		}
	}
	return joins
}
