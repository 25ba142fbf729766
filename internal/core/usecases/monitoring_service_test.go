package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/earthlens/earthlens/internal/core/domain"
	"github.com/earthlens/earthlens/internal/core/usecases"
)

type mockImagery struct {
	tileURLFn    func(ctx context.Context, q domain.TileQuery) (string, error)
	timeSeriesFn func(ctx context.Context, q domain.SeriesQuery) ([]domain.Observation, error)
	ready        bool
}

func (m *mockImagery) TileURL(ctx context.Context, q domain.TileQuery) (string, error) {
	return m.tileURLFn(ctx, q)
}

func (m *mockImagery) TimeSeries(ctx context.Context, q domain.SeriesQuery) ([]domain.Observation, error) {
	return m.timeSeriesFn(ctx, q)
}

func (m *mockImagery) Ready() bool { return m.ready }

func validGeometry() domain.Geometry {
	return domain.Geometry{
		Type:        "Polygon",
		Coordinates: json.RawMessage(`[[[0,0],[1,0],[1,1],[0,0]]]`),
	}
}

func TestTileLayer_NoGeometry(t *testing.T) {
	svc := usecases.NewMonitoringService(&mockImagery{})

	_, err := svc.TileLayer(context.Background(), domain.TileQuery{})
	if !errors.Is(err, domain.ErrNoGeometry) {
		t.Fatalf("expected ErrNoGeometry, got %v", err)
	}
}

func TestTileLayer_InvalidGeometry(t *testing.T) {
	svc := usecases.NewMonitoringService(&mockImagery{})

	q := domain.TileQuery{
		Geometry: domain.Geometry{Type: "Polygon"}, // no coordinates
	}
	_, err := svc.TileLayer(context.Background(), q)
	if !errors.Is(err, domain.ErrInvalidGeometry) {
		t.Fatalf("expected ErrInvalidGeometry, got %v", err)
	}
}

func TestTileLayer_PassesThrough(t *testing.T) {
	var captured domain.TileQuery
	svc := usecases.NewMonitoringService(&mockImagery{
		tileURLFn: func(ctx context.Context, q domain.TileQuery) (string, error) {
			captured = q
			return "https://tiles.example/{z}/{x}/{y}", nil
		},
	})

	q := domain.TileQuery{
		Geometry:       validGeometry(),
		Layer:          domain.LayerNDVI,
		Start:          "2024-01-01",
		End:            "2024-12-31",
		CloudThreshold: 15,
		BufferMeters:   250,
	}
	url, err := svc.TileLayer(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://tiles.example/{z}/{x}/{y}" {
		t.Errorf("unexpected url %q", url)
	}
	if captured.Layer != domain.LayerNDVI || captured.CloudThreshold != 15 {
		t.Errorf("query not forwarded intact: %+v", captured)
	}
}

func TestTileLayer_ProviderFailure(t *testing.T) {
	boom := errors.New("earth engine: quota exceeded")
	svc := usecases.NewMonitoringService(&mockImagery{
		tileURLFn: func(ctx context.Context, q domain.TileQuery) (string, error) {
			return "", boom
		},
	})

	_, err := svc.TileLayer(context.Background(), domain.TileQuery{Geometry: validGeometry()})
	if !errors.Is(err, boom) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestNDVISeries_NoGeometry(t *testing.T) {
	svc := usecases.NewMonitoringService(&mockImagery{})

	_, err := svc.NDVISeries(context.Background(), domain.SeriesQuery{})
	if !errors.Is(err, domain.ErrNoGeometry) {
		t.Fatalf("expected ErrNoGeometry, got %v", err)
	}
}

func TestNDVISeries_PassesThrough(t *testing.T) {
	v := 0.5
	want := []domain.Observation{{Date: "2024-01-03", Value: &v}}
	svc := usecases.NewMonitoringService(&mockImagery{
		timeSeriesFn: func(ctx context.Context, q domain.SeriesQuery) ([]domain.Observation, error) {
			return want, nil
		},
	})

	got, err := svc.NDVISeries(context.Background(), domain.SeriesQuery{Geometry: validGeometry()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Date != "2024-01-03" {
		t.Errorf("unexpected series: %+v", got)
	}
}

func TestReady_Delegates(t *testing.T) {
	if usecases.NewMonitoringService(&mockImagery{ready: true}).Ready() != true {
		t.Error("expected ready")
	}
	if usecases.NewMonitoringService(&mockImagery{ready: false}).Ready() != false {
		t.Error("expected not ready")
	}
}
