package ports

import (
	"context"

	"github.com/earthlens/earthlens/internal/core/domain"
)

// ImageryProvider is the boundary to the remote geospatial analysis
// service. All filtering, compositing, and aggregation happen on the
// provider's side; implementations only build queries and reshape results.
type ImageryProvider interface {
	// TileURL returns a slippy-map tile URL template for a composite of
	// the query layer, clipped to the (buffered) query region.
	TileURL(ctx context.Context, q domain.TileQuery) (string, error)

	// TimeSeries returns dated NDVI means over the query region, ordered
	// by acquisition time.
	TimeSeries(ctx context.Context, q domain.SeriesQuery) ([]domain.Observation, error)

	// Ready reports whether the provider's credentials were resolved and
	// it can accept queries.
	Ready() bool
}
