// Package model loads cube models from YAML files and converts them to the
// domain types consumed by the mapper.
package model

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"cubemap/internal/domain"
)

// modelFile is the top-level document: a list of cube definitions.
type modelFile struct {
	Cubes []cubeDef `yaml:"cubes"`
}

type cubeDef struct {
	Name        string            `yaml:"name"`
	Label       string            `yaml:"label"`
	Description string            `yaml:"description"`
	Fact        string            `yaml:"fact"`
	Measures    []attrDef         `yaml:"measures"`
	Details     []attrDef         `yaml:"details"`
	Dimensions  []dimensionDef    `yaml:"dimensions"`
	Mappings    map[string]rawRef `yaml:"mappings"`
	Joins       []joinDef         `yaml:"joins"`
}

type dimensionDef struct {
	Name   string     `yaml:"name"`
	Label  string     `yaml:"label"`
	Levels []levelDef `yaml:"levels"`

	// Attributes is the single-level shorthand: a dimension with
	// attributes but no levels gets one implicit "default" level.
	Attributes []attrDef `yaml:"attributes"`
}

type levelDef struct {
	Name       string    `yaml:"name"`
	Label      string    `yaml:"label"`
	Key        string    `yaml:"key"`
	Attributes []attrDef `yaml:"attributes"`
}

type joinDef struct {
	Master rawRef `yaml:"master"`
	Detail rawRef `yaml:"detail"`
	Alias  string `yaml:"alias"`
}

// attrDef accepts either a bare scalar ("amount") or a mapping with name,
// label, and locales.
type attrDef struct {
	Name    string
	Label   string
	Locales []string
}

func (a *attrDef) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return value.Decode(&a.Name)
	case yaml.MappingNode:
		var full struct {
			Name    string   `yaml:"name"`
			Label   string   `yaml:"label"`
			Locales []string `yaml:"locales"`
		}
		if err := value.Decode(&full); err != nil {
			return err
		}
		a.Name = full.Name
		a.Label = full.Label
		a.Locales = full.Locales
		return nil
	default:
		return fmt.Errorf("line %d: attribute must be a string or a mapping", value.Line)
	}
}

// rawRef accepts the three physical reference encodings: scalar
// ("table.column"), sequence ([table, column] / [schema, table, column]),
// and mapping ({schema, table, column}).
type rawRef struct {
	Ref domain.RawReference
}

func (r *rawRef) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		r.Ref = domain.StringRef(s)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		r.Ref = domain.ListRef(list)
		return nil
	case yaml.MappingNode:
		var rec struct {
			Schema string `yaml:"schema"`
			Table  string `yaml:"table"`
			Column string `yaml:"column"`
		}
		if err := value.Decode(&rec); err != nil {
			return err
		}
		r.Ref = domain.RecordRef{Schema: rec.Schema, Table: rec.Table, Column: rec.Column}
		return nil
	default:
		return fmt.Errorf("line %d: reference must be a string, sequence, or mapping", value.Line)
	}
}
