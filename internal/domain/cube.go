package domain

// Cube describes one analytical cube: its fact table, measure and detail
// attributes, dimensions, optional logical-to-physical mapping overrides,
// and the join specifications connecting dimension tables to the fact.
type Cube struct {
	Name        string
	Label       string
	Description string

	// FactTable is the physical fact table name. When empty the cube name
	// doubles as the fact table name.
	FactTable string

	Measures []*Attribute
	Details  []*Attribute

	Dimensions []*Dimension

	// Mappings overrides convention-derived physical references. Keys are
	// logical references, optionally suffixed with ".<locale>" for
	// localized attributes.
	Mappings map[string]RawReference

	Joins []JoinSpec
}

// Dimension finds a dimension by name, nil when absent.
func (c *Cube) Dimension(name string) *Dimension {
	for _, d := range c.Dimensions {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// JoinSpec is the raw, model-level join declaration. Master and Detail are
// coalesced into physical references by the mapper; Alias renames the detail
// table within the query.
type JoinSpec struct {
	Master RawReference
	Detail RawReference
	Alias  string
}

// Dimension is a hierarchy of classificatory levels used to group and
// filter measures.
type Dimension struct {
	Name   string
	Label  string
	Levels []*Level
}

// IsFlat reports whether the dimension has exactly one level.
func (d *Dimension) IsFlat() bool { return len(d.Levels) == 1 }

// HasDetails reports whether any level carries attributes beyond its key.
func (d *Dimension) HasDetails() bool {
	for _, l := range d.Levels {
		if l.HasDetails() {
			return true
		}
	}
	return false
}

// Attributes returns every attribute of every level, in level order.
func (d *Dimension) Attributes() []*Attribute {
	var attrs []*Attribute
	for _, l := range d.Levels {
		attrs = append(attrs, l.Attributes...)
	}
	return attrs
}

// Level is one step of a dimension hierarchy.
type Level struct {
	Name  string
	Label string

	// Key names the level's key attribute. Defaults to the first attribute
	// when empty.
	Key string

	Attributes []*Attribute
}

// KeyAttribute returns the level's key attribute, nil for an empty level.
func (l *Level) KeyAttribute() *Attribute {
	if l.Key != "" {
		for _, a := range l.Attributes {
			if a.Name == l.Key {
				return a
			}
		}
	}
	if len(l.Attributes) > 0 {
		return l.Attributes[0]
	}
	return nil
}

// HasDetails reports whether the level carries attributes beyond its key.
func (l *Level) HasDetails() bool {
	key := l.KeyAttribute()
	for _, a := range l.Attributes {
		if a != key {
			return true
		}
	}
	return false
}

// Attribute is a single analytical attribute: a measure or detail of the
// fact table, or a member of a dimension level.
type Attribute struct {
	Name  string
	Label string

	// Locales lists the locale identifiers the attribute is available in.
	// Nil or empty means the attribute is not localizable.
	Locales []string

	// Dimension is the owning dimension, nil for fact-level attributes.
	Dimension *Dimension
}

// String returns the attribute name.
func (a *Attribute) String() string { return a.Name }

// IsLocalizable reports whether the attribute declares any locales.
func (a *Attribute) IsLocalizable() bool { return len(a.Locales) > 0 }
