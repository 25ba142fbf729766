package domain

import (
	"encoding/json"
	"fmt"
)

// Geometry is a GeoJSON geometry drawn by the user. The backend never
// interprets the coordinates; they are forwarded verbatim to Earth Engine,
// which does all geometric work server-side.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// IsZero reports whether no geometry was supplied at all.
func (g Geometry) IsZero() bool {
	return g.Type == "" && len(g.Coordinates) == 0
}

// Validate checks that the geometry is a usable GeoJSON object.
func (g Geometry) Validate() error {
	if g.Type == "" {
		return fmt.Errorf("%w: type is required", ErrInvalidGeometry)
	}
	if len(g.Coordinates) == 0 || string(g.Coordinates) == "null" {
		return fmt.Errorf("%w: coordinates are required", ErrInvalidGeometry)
	}
	return nil
}

// AsMap re-expands the geometry into the generic form embedded as a
// constant value in Earth Engine expression graphs.
func (g Geometry) AsMap() (map[string]interface{}, error) {
	var coords interface{}
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return nil, fmt.Errorf("decode geometry coordinates: %w", err)
	}
	return map[string]interface{}{
		"type":        g.Type,
		"coordinates": coords,
	}, nil
}
