package api

import "cubemap/internal/domain"

type attributeResponse struct {
	Name    string   `json:"name"`
	Label   string   `json:"label,omitempty"`
	Locales []string `json:"locales,omitempty"`
}

type levelResponse struct {
	Name       string              `json:"name"`
	Label      string              `json:"label,omitempty"`
	Key        string              `json:"key,omitempty"`
	Attributes []attributeResponse `json:"attributes"`
}

type dimensionResponse struct {
	Name   string          `json:"name"`
	Label  string          `json:"label,omitempty"`
	Flat   bool            `json:"flat"`
	Levels []levelResponse `json:"levels"`
}

type cubeResponse struct {
	Name        string              `json:"name"`
	Label       string              `json:"label,omitempty"`
	Description string              `json:"description,omitempty"`
	FactTable   string              `json:"fact_table,omitempty"`
	Measures    []attributeResponse `json:"measures"`
	Details     []attributeResponse `json:"details"`
	Dimensions  []dimensionResponse `json:"dimensions"`
}

func newAttributeResponses(attrs []*domain.Attribute) []attributeResponse {
	out := make([]attributeResponse, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, attributeResponse{Name: a.Name, Label: a.Label, Locales: a.Locales})
	}
	return out
}

func newCubeResponse(cube *domain.Cube) cubeResponse {
	resp := cubeResponse{
		Name:        cube.Name,
		Label:       cube.Label,
		Description: cube.Description,
		FactTable:   cube.FactTable,
		Measures:    newAttributeResponses(cube.Measures),
		Details:     newAttributeResponses(cube.Details),
		Dimensions:  []dimensionResponse{},
	}

	for _, dim := range cube.Dimensions {
		dr := dimensionResponse{Name: dim.Name, Label: dim.Label, Flat: dim.IsFlat()}
		for _, level := range dim.Levels {
			dr.Levels = append(dr.Levels, levelResponse{
				Name:       level.Name,
				Label:      level.Label,
				Key:        level.Key,
				Attributes: newAttributeResponses(level.Attributes),
			})
		}
		resp.Dimensions = append(resp.Dimensions, dr)
	}
	return resp
}
