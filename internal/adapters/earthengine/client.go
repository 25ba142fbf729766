package earthengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/earthlens/earthlens/internal/core/domain"
	"github.com/earthlens/earthlens/internal/pkg/config"
	"github.com/earthlens/earthlens/internal/pkg/metrics"
)

const defaultBaseURL = "https://earthengine.googleapis.com"

// legacyProject is the catch-all project Earth Engine accepts when the
// credential carries no cloud project of its own.
const legacyProject = "earthengine-legacy"

// Client talks to the Earth Engine v1 REST API. A failed credential
// resolution does not prevent construction: the client stays not-ready and
// every query reports the initialization error, so the HTTP layer can keep
// serving uniform error envelopes.
type Client struct {
	baseURL    string
	project    string
	collection string
	httpClient *http.Client
	tracer     trace.Tracer
	ready      bool
	initErr    error
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the Earth Engine endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient supplies a pre-authorized HTTP client and skips credential
// resolution entirely.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// New builds a client, resolving credentials per the configured mode.
func New(ctx context.Context, cfg config.EarthEngineConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		project:    cfg.Project,
		collection: cfg.Collection,
		tracer:     otel.Tracer("earthengine"),
	}
	for _, o := range opts {
		o(c)
	}

	if c.httpClient != nil {
		if c.project == "" {
			c.project = legacyProject
		}
		c.ready = true
		return c
	}

	creds, mode, err := resolveCredentials(ctx, cfg)
	if err != nil {
		c.initErr = err
		slog.Warn("earth engine initialization failed", "error", err)
		return c
	}

	c.httpClient = oauth2.NewClient(ctx, creds.TokenSource)
	c.httpClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second

	if c.project == "" {
		c.project = creds.ProjectID
	}
	if c.project == "" {
		c.project = legacyProject
	}

	c.ready = true
	slog.Info("earth engine initialized",
		"mode", mode, "project", c.project, "collection", c.collection)
	return c
}

// Ready reports whether credentials were resolved.
func (c *Client) Ready() bool {
	return c.ready
}

func (c *Client) notInitialized() error {
	return fmt.Errorf("earth engine not initialized: %v", c.initErr)
}

// TileURL creates a server-side map for the visualized composite and
// returns its slippy tile URL template.
func (c *Client) TileURL(ctx context.Context, q domain.TileQuery) (string, error) {
	if !c.ready {
		return "", c.notInitialized()
	}

	geomJSON, err := q.Geometry.AsMap()
	if err != nil {
		return "", err
	}

	expr := tileExpression(c.collection, q, geomJSON)

	var resp struct {
		Name string `json:"name"`
	}
	path := fmt.Sprintf("/v1/projects/%s/maps", c.project)
	if err := c.post(ctx, "maps.create", path, map[string]interface{}{"expression": expr}, &resp); err != nil {
		return "", err
	}
	if resp.Name == "" {
		return "", fmt.Errorf("could not generate tile URL: empty map name")
	}

	return fmt.Sprintf("%s/v1/%s/tiles/{z}/{x}/{y}", c.baseURL, resp.Name), nil
}

// TimeSeries evaluates the dated NDVI means for the query region. The date
// and value arrays are aggregated server-side in two compute calls and
// zipped here.
func (c *Client) TimeSeries(ctx context.Context, q domain.SeriesQuery) ([]domain.Observation, error) {
	if !c.ready {
		return nil, c.notInitialized()
	}

	geomJSON, err := q.Geometry.AsMap()
	if err != nil {
		return nil, err
	}

	dates, err := c.computeList(ctx, seriesExpression(c.collection, q, geomJSON, "date"))
	if err != nil {
		return nil, err
	}
	values, err := c.computeList(ctx, seriesExpression(c.collection, q, geomJSON, "mean_ndvi"))
	if err != nil {
		return nil, err
	}

	n := len(dates)
	if len(values) < n {
		n = len(values)
	}

	series := make([]domain.Observation, 0, n)
	for i := 0; i < n; i++ {
		var obs domain.Observation
		if s, ok := dates[i].(string); ok {
			obs.Date = s
		}
		if f, ok := values[i].(float64); ok {
			v := f
			obs.Value = &v
		}
		series = append(series, obs)
	}
	return series, nil
}

func (c *Client) computeList(ctx context.Context, expr Expression) ([]interface{}, error) {
	var resp struct {
		Result []interface{} `json:"result"`
	}
	path := fmt.Sprintf("/v1/projects/%s/value:compute", c.project)
	if err := c.post(ctx, "value.compute", path, map[string]interface{}{"expression": expr}, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// post issues one REST call with tracing and metrics around it.
func (c *Client) post(ctx context.Context, op, path string, body, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, "earthengine."+op,
		trace.WithAttributes(attribute.String("ee.project", c.project)))
	defer span.End()

	start := time.Now()
	err := c.doPost(ctx, path, body, out)
	metrics.ObserveEECall(op, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (c *Client) doPost(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode earth engine request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build earth engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("earth engine request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read earth engine response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("earth engine: %s", apiErr.Error.Message)
		}
		return fmt.Errorf("earth engine: unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode earth engine response: %w", err)
		}
	}
	return nil
}
