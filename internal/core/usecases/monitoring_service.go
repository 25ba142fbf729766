package usecases

import (
	"context"

	"github.com/earthlens/earthlens/internal/core/domain"
	"github.com/earthlens/earthlens/internal/core/ports"
	"github.com/earthlens/earthlens/internal/pkg/logging"
	"github.com/earthlens/earthlens/internal/pkg/metrics"
)

// MonitoringService handles remote-sensing monitoring requests. All heavy
// lifting is delegated to the imagery provider; the service validates the
// region and records outcome metrics.
type MonitoringService struct {
	imagery ports.ImageryProvider
}

// NewMonitoringService creates a new MonitoringService.
func NewMonitoringService(imagery ports.ImageryProvider) *MonitoringService {
	return &MonitoringService{imagery: imagery}
}

// TileLayer returns a tile URL template for the requested composite layer.
func (s *MonitoringService) TileLayer(ctx context.Context, q domain.TileQuery) (string, error) {
	if q.Geometry.IsZero() {
		return "", domain.ErrNoGeometry
	}
	if err := q.Geometry.Validate(); err != nil {
		return "", err
	}

	url, err := s.imagery.TileURL(ctx, q)
	if err != nil {
		return "", err
	}

	metrics.TileLayersServed.WithLabelValues(string(q.Layer)).Inc()
	logging.FromContext(ctx).Debug("tile layer issued",
		"layer", q.Layer, "start", q.Start, "end", q.End)
	return url, nil
}

// NDVISeries returns the dated NDVI means for a region, ordered by
// acquisition time.
func (s *MonitoringService) NDVISeries(ctx context.Context, q domain.SeriesQuery) ([]domain.Observation, error) {
	if q.Geometry.IsZero() {
		return nil, domain.ErrNoGeometry
	}
	if err := q.Geometry.Validate(); err != nil {
		return nil, err
	}

	series, err := s.imagery.TimeSeries(ctx, q)
	if err != nil {
		return nil, err
	}

	metrics.SeriesObservations.Observe(float64(len(series)))
	return series, nil
}

// Ready reports whether the imagery provider can accept queries.
func (s *MonitoringService) Ready() bool {
	return s.imagery.Ready()
}
