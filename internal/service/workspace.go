// Package service wires loaded cube models, their mappers, and the query
// engine into the operations exposed over HTTP and the CLI.
package service

import (
	"context"
	"log/slog"

	"cubemap/internal/domain"
	"cubemap/internal/engine"
	"cubemap/internal/mapper"
	"cubemap/internal/sqlgen"
)

type cubeEntry struct {
	cube    *domain.Cube
	mapper  *mapper.Mapper
	builder *sqlgen.Builder
}

// Workspace holds every loaded cube together with its mapper and SQL
// builder. The executor is optional: a workspace without one can still
// list cubes, resolve attributes, and plan SQL, but not execute it.
type Workspace struct {
	logger *slog.Logger
	exec   *engine.Executor

	entries map[string]*cubeEntry
	names   []string
}

// New builds a workspace from the loaded cubes. Mapper construction
// validates each cube's join declarations, so a broken model fails here
// rather than at query time. exec may be nil.
func New(cubes []*domain.Cube, cfg mapper.Config, exec *engine.Executor, logger *slog.Logger) (*Workspace, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ws := &Workspace{
		logger:  logger,
		exec:    exec,
		entries: make(map[string]*cubeEntry, len(cubes)),
	}
	for _, cube := range cubes {
		m, err := mapper.New(cube, cfg)
		if err != nil {
			return nil, domain.ErrValidation("cube %q: %v", cube.Name, err)
		}
		// The table map validates join details (non-empty, not the fact
		// table), so broken joins fail here instead of at query time.
		if _, err := m.TableMap(); err != nil {
			return nil, domain.ErrValidation("cube %q: %v", cube.Name, err)
		}
		ws.entries[cube.Name] = &cubeEntry{
			cube:    cube,
			mapper:  m,
			builder: sqlgen.NewBuilder(m),
		}
		ws.names = append(ws.names, cube.Name)
	}

	logger.Info("workspace ready", "cubes", len(ws.names), "executable", exec != nil)
	return ws, nil
}

// ListCubes returns a summary of every cube, in model load order.
func (ws *Workspace) ListCubes() []CubeInfo {
	infos := make([]CubeInfo, 0, len(ws.names))
	for _, name := range ws.names {
		cube := ws.entries[name].cube

		measures := make([]string, 0, len(cube.Measures))
		for _, m := range cube.Measures {
			measures = append(measures, m.Name)
		}
		dimensions := make([]string, 0, len(cube.Dimensions))
		for _, d := range cube.Dimensions {
			dimensions = append(dimensions, d.Name)
		}

		infos = append(infos, CubeInfo{
			Name:        cube.Name,
			Label:       cube.Label,
			Description: cube.Description,
			Measures:    measures,
			Dimensions:  dimensions,
		})
	}
	return infos
}

// Cube returns one cube by name.
func (ws *Workspace) Cube(name string) (*domain.Cube, error) {
	entry, ok := ws.entries[name]
	if !ok {
		return nil, domain.ErrNotFound("cube %q not found", name)
	}
	return entry.cube, nil
}

// Mapper returns the mapper for one cube.
func (ws *Workspace) Mapper(name string) (*mapper.Mapper, error) {
	entry, ok := ws.entries[name]
	if !ok {
		return nil, domain.ErrNotFound("cube %q not found", name)
	}
	return entry.mapper, nil
}

// Attributes resolves every logical reference of the cube to its physical
// column under the given locale, sorted by reference.
func (ws *Workspace) Attributes(cubeName, locale string) ([]AttributeInfo, error) {
	entry, ok := ws.entries[cubeName]
	if !ok {
		return nil, domain.ErrNotFound("cube %q not found", cubeName)
	}

	refs := entry.mapper.Refs()
	infos := make([]AttributeInfo, 0, len(refs))
	for _, ref := range refs {
		attr, _ := entry.mapper.AttributeForRef(ref)
		physical, err := entry.mapper.Physical(attr, locale)
		if err != nil {
			return nil, err
		}
		infos = append(infos, AttributeInfo{
			Ref:      ref,
			Label:    attr.Label,
			Locales:  attr.Locales,
			Physical: physical.String(),
		})
	}
	return infos, nil
}

// RelevantJoins resolves the given logical attributes and returns the joins
// needed to reach every table they touch, in discovery order.
func (ws *Workspace) RelevantJoins(cubeName string, attrs []string, locale string) ([]JoinInfo, error) {
	m, err := ws.Mapper(cubeName)
	if err != nil {
		return nil, err
	}

	var refs []mapper.PhysicalReference
	for _, logical := range attrs {
		attr, ok := m.AttributeForRef(logical)
		if !ok {
			return nil, domain.ErrValidation("unknown attribute %q in cube %q", logical, cubeName)
		}
		ref, err := m.Physical(attr, locale)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	infos := []JoinInfo{}
	for _, j := range m.RelevantJoins(refs) {
		infos = append(infos, JoinInfo{
			Master: j.Master.String(),
			Detail: j.Detail.String(),
			Alias:  j.Alias,
		})
	}
	return infos, nil
}

// ExplainAggregate plans an aggregation without executing it.
func (ws *Workspace) ExplainAggregate(cubeName string, req sqlgen.AggregateRequest) (*SQLPlan, error) {
	entry, ok := ws.entries[cubeName]
	if !ok {
		return nil, domain.ErrNotFound("cube %q not found", cubeName)
	}

	sqlText, args, joins, err := entry.builder.Aggregate(req)
	if err != nil {
		return nil, err
	}
	return newPlan(sqlText, args, joins), nil
}

// ExplainFacts plans a fact listing without executing it.
func (ws *Workspace) ExplainFacts(cubeName string, attrs []string, cuts []sqlgen.Cut, locale string, limit uint64) (*SQLPlan, error) {
	entry, ok := ws.entries[cubeName]
	if !ok {
		return nil, domain.ErrNotFound("cube %q not found", cubeName)
	}

	sqlText, args, joins, err := entry.builder.Facts(attrs, cuts, locale, limit)
	if err != nil {
		return nil, err
	}
	return newPlan(sqlText, args, joins), nil
}

// Aggregate plans and executes an aggregation.
func (ws *Workspace) Aggregate(ctx context.Context, cubeName string, req sqlgen.AggregateRequest) (*engine.QueryResult, error) {
	if ws.exec == nil {
		return nil, domain.ErrValidation("no database configured, cannot execute queries")
	}

	plan, err := ws.ExplainAggregate(cubeName, req)
	if err != nil {
		return nil, err
	}

	ws.logger.Info("aggregate", "cube", cubeName, "measures", req.Measures, "drilldown", req.Drilldown)
	return ws.exec.Query(ctx, plan.SQL, plan.Args...)
}

func newPlan(sqlText string, args []interface{}, joins []mapper.Join) *SQLPlan {
	plan := &SQLPlan{SQL: sqlText, Args: args, Joins: []JoinInfo{}}
	if plan.Args == nil {
		plan.Args = []interface{}{}
	}
	for _, j := range joins {
		plan.Joins = append(plan.Joins, JoinInfo{
			Master: j.Master.String(),
			Detail: j.Detail.String(),
			Alias:  j.Alias,
		})
	}
	return plan
}
