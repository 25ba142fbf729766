package domain

import (
	"errors"
	"strings"
)

// Layer selects which composite is rendered for a region.
type Layer string

const (
	LayerRGB  Layer = "RGB"
	LayerNDVI Layer = "NDVI"
)

// ParseLayer normalizes a layer name. Anything other than NDVI renders the
// RGB composite, matching how the platform has always behaved.
func ParseLayer(s string) Layer {
	if strings.EqualFold(s, string(LayerNDVI)) {
		return LayerNDVI
	}
	return LayerRGB
}

// Defaults applied when a request omits optional tuning parameters.
const (
	DefaultCloudThreshold = 20  // max CLOUDY_PIXEL_PERCENTAGE
	DefaultBufferMeters   = 500 // clip region padding
	DefaultScaleMeters    = 10  // Sentinel-2 native resolution
	MaxObservations       = 256 // cap on time series length
)

// ErrNoGeometry is returned when a request carries no region to analyze.
var ErrNoGeometry = errors.New("no geometry provided")

// ErrInvalidGeometry is returned when a region is present but unusable.
var ErrInvalidGeometry = errors.New("invalid geometry")

// TileQuery describes a composite tile layer request. Start and End are
// calendar dates (YYYY-MM-DD); date filtering is skipped unless both are
// present.
type TileQuery struct {
	Geometry       Geometry
	Layer          Layer
	Start          string
	End            string
	CloudThreshold int
	BufferMeters   int
}

// SeriesQuery describes an NDVI time series request over a region.
type SeriesQuery struct {
	Geometry       Geometry
	Start          string
	End            string
	ScaleMeters    int
	CloudThreshold int
}

// Observation is a single dated NDVI sample averaged over a region.
// Value is nil when the reducer saw no unmasked pixels on that date.
type Observation struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}
