package model

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"cubemap/internal/domain"
)

// LoadFile reads one YAML model file and returns its cubes.
func LoadFile(path string) ([]*domain.Cube, error) {
	data, err := os.ReadFile(path) //nolint:gosec // intentional: reading user-specified model files
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var file modelFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cubes := make([]*domain.Cube, 0, len(file.Cubes))
	seen := make(map[string]bool)
	for _, def := range file.Cubes {
		cube, err := buildCube(def)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if seen[cube.Name] {
			return nil, domain.ErrValidation("%s: duplicate cube %q", path, cube.Name)
		}
		seen[cube.Name] = true
		cubes = append(cubes, cube)
	}
	return cubes, nil
}

// LoadDir loads every .yaml/.yml file in dir, sorted by file name. Cube
// names must be unique across the whole directory.
func LoadDir(dir string) ([]*domain.Cube, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("model directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	var cubes []*domain.Cube
	seen := make(map[string]string)
	for _, path := range paths {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		for _, cube := range loaded {
			if prev, ok := seen[cube.Name]; ok {
				return nil, domain.ErrValidation("cube %q defined in both %s and %s", cube.Name, prev, path)
			}
			seen[cube.Name] = path
			cubes = append(cubes, cube)
		}
	}
	return cubes, nil
}

func buildCube(def cubeDef) (*domain.Cube, error) {
	if def.Name == "" {
		return nil, domain.ErrValidation("cube has no name")
	}

	cube := &domain.Cube{
		Name:        def.Name,
		Label:       def.Label,
		Description: def.Description,
		FactTable:   def.Fact,
	}

	for _, a := range def.Measures {
		cube.Measures = append(cube.Measures, buildAttribute(a, nil))
	}
	for _, a := range def.Details {
		cube.Details = append(cube.Details, buildAttribute(a, nil))
	}

	dimNames := make(map[string]bool)
	for _, d := range def.Dimensions {
		dim, err := buildDimension(def.Name, d)
		if err != nil {
			return nil, err
		}
		if dimNames[dim.Name] {
			return nil, domain.ErrValidation("cube %q: duplicate dimension %q", def.Name, dim.Name)
		}
		dimNames[dim.Name] = true
		cube.Dimensions = append(cube.Dimensions, dim)
	}

	if len(def.Mappings) > 0 {
		cube.Mappings = make(map[string]domain.RawReference, len(def.Mappings))
		for key, ref := range def.Mappings {
			cube.Mappings[key] = ref.Ref
		}
	}

	for _, j := range def.Joins {
		if j.Master.Ref == nil || j.Detail.Ref == nil {
			return nil, domain.ErrValidation("cube %q: join needs both master and detail", def.Name)
		}
		cube.Joins = append(cube.Joins, domain.JoinSpec{
			Master: j.Master.Ref,
			Detail: j.Detail.Ref,
			Alias:  j.Alias,
		})
	}

	return cube, nil
}

func buildDimension(cubeName string, def dimensionDef) (*domain.Dimension, error) {
	if def.Name == "" {
		return nil, domain.ErrValidation("cube %q: dimension has no name", cubeName)
	}

	dim := &domain.Dimension{Name: def.Name, Label: def.Label}

	levels := def.Levels
	if len(levels) == 0 {
		if len(def.Attributes) == 0 {
			return nil, domain.ErrValidation("cube %q: dimension %q has no levels", cubeName, def.Name)
		}
		// Single-level shorthand.
		levels = []levelDef{{Name: "default", Attributes: def.Attributes}}
	}

	for _, l := range levels {
		if len(l.Attributes) == 0 {
			return nil, domain.ErrValidation("cube %q: dimension %q level %q has no attributes",
				cubeName, def.Name, l.Name)
		}
		level := &domain.Level{Name: l.Name, Label: l.Label, Key: l.Key}
		for _, a := range l.Attributes {
			level.Attributes = append(level.Attributes, buildAttribute(a, dim))
		}
		dim.Levels = append(dim.Levels, level)
	}

	return dim, nil
}

func buildAttribute(def attrDef, dim *domain.Dimension) *domain.Attribute {
	return &domain.Attribute{
		Name:      def.Name,
		Label:     def.Label,
		Locales:   def.Locales,
		Dimension: dim,
	}
}
