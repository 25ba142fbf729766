package earthengine_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/earthlens/earthlens/internal/adapters/earthengine"
	"github.com/earthlens/earthlens/internal/core/domain"
	"github.com/earthlens/earthlens/internal/pkg/config"
)

func testConfig() config.EarthEngineConfig {
	return config.EarthEngineConfig{
		Project:        "test-project",
		Collection:     "COPERNICUS/S2_SR_HARMONIZED",
		TimeoutSeconds: 5,
	}
}

func newTestClient(t *testing.T, cfg config.EarthEngineConfig, handler http.HandlerFunc) (*earthengine.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := earthengine.New(context.Background(), cfg,
		earthengine.WithBaseURL(srv.URL),
		earthengine.WithHTTPClient(srv.Client()),
	)
	if !c.Ready() {
		t.Fatal("client with injected HTTP client must be ready")
	}
	return c, srv
}

func geom() domain.Geometry {
	return domain.Geometry{
		Type:        "Polygon",
		Coordinates: json.RawMessage(`[[[0,0],[1,0],[1,1],[0,0]]]`),
	}
}

func TestTileURL(t *testing.T) {
	var gotPath string
	var gotBody []byte
	c, srv := newTestClient(t, testConfig(), func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		fmt.Fprint(w, `{"name":"projects/test-project/maps/abc123"}`)
	})

	url, err := c.TileURL(context.Background(), domain.TileQuery{
		Geometry:       geom(),
		Layer:          domain.LayerNDVI,
		Start:          "2024-01-01",
		End:            "2024-12-31",
		CloudThreshold: 20,
		BufferMeters:   500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/v1/projects/test-project/maps" {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if !strings.Contains(string(gotBody), `"expression"`) {
		t.Error("request body missing expression")
	}
	want := srv.URL + "/v1/projects/test-project/maps/abc123/tiles/{z}/{x}/{y}"
	if url != want {
		t.Errorf("got tile URL %q, want %q", url, want)
	}
}

func TestTileURL_LegacyProjectFallback(t *testing.T) {
	cfg := testConfig()
	cfg.Project = ""

	var gotPath string
	c, _ := newTestClient(t, cfg, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"name":"projects/earthengine-legacy/maps/xyz"}`)
	})

	if _, err := c.TileURL(context.Background(), domain.TileQuery{Geometry: geom()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v1/projects/earthengine-legacy/maps" {
		t.Errorf("expected legacy project path, got %q", gotPath)
	}
}

func TestTileURL_EmptyMapName(t *testing.T) {
	c, _ := newTestClient(t, testConfig(), func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	_, err := c.TileURL(context.Background(), domain.TileQuery{Geometry: geom()})
	if err == nil || !strings.Contains(err.Error(), "empty map name") {
		t.Fatalf("expected empty map name error, got %v", err)
	}
}

func TestTileURL_SurfacesAPIError(t *testing.T) {
	c, _ := newTestClient(t, testConfig(), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(400)
		fmt.Fprint(w, `{"error":{"code":400,"message":"Image.load: asset not found"}}`)
	})

	_, err := c.TileURL(context.Background(), domain.TileQuery{Geometry: geom()})
	if err == nil || !strings.Contains(err.Error(), "asset not found") {
		t.Fatalf("expected upstream message surfaced, got %v", err)
	}
}

func TestTimeSeries(t *testing.T) {
	// The client aggregates dates first, then values, in two compute calls.
	call := 0
	c, _ := newTestClient(t, testConfig(), func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/projects/test-project/value:compute" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		call++
		if call == 1 {
			fmt.Fprint(w, `{"result":["2024-01-03","2024-01-13","2024-01-23"]}`)
		} else {
			fmt.Fprint(w, `{"result":[0.42,null,0.58]}`)
		}
	})

	series, err := c.TimeSeries(context.Background(), domain.SeriesQuery{
		Geometry:       geom(),
		Start:          "2024-01-01",
		End:            "2024-02-01",
		ScaleMeters:    10,
		CloudThreshold: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call != 2 {
		t.Fatalf("expected 2 compute calls, got %d", call)
	}
	if len(series) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(series))
	}

	if series[0].Date != "2024-01-03" || series[0].Value == nil || *series[0].Value != 0.42 {
		t.Errorf("unexpected first observation: %+v", series[0])
	}
	if series[1].Value != nil {
		t.Errorf("expected nil value for masked observation, got %v", *series[1].Value)
	}
	if series[2].Date != "2024-01-23" || series[2].Value == nil || *series[2].Value != 0.58 {
		t.Errorf("unexpected last observation: %+v", series[2])
	}
}

func TestTimeSeries_TruncatesToShorterList(t *testing.T) {
	call := 0
	c, _ := newTestClient(t, testConfig(), func(w http.ResponseWriter, r *http.Request) {
		call++
		if call == 1 {
			fmt.Fprint(w, `{"result":["2024-01-03","2024-01-13","2024-01-23"]}`)
		} else {
			fmt.Fprint(w, `{"result":[0.42,0.58]}`)
		}
	})

	series, err := c.TimeSeries(context.Background(), domain.SeriesQuery{Geometry: geom(), ScaleMeters: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("expected truncation to 2 observations, got %d", len(series))
	}
}

func TestTimeSeries_FirstCallFails(t *testing.T) {
	c, _ := newTestClient(t, testConfig(), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(429)
		fmt.Fprint(w, `{"error":{"code":429,"message":"quota exceeded"}}`)
	})

	_, err := c.TimeSeries(context.Background(), domain.SeriesQuery{Geometry: geom(), ScaleMeters: 10})
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected quota error, got %v", err)
	}
}
