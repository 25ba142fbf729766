package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/earthlens/earthlens/internal/core/domain"
)

// tileRequest is the POST /tiles body. Optional numeric knobs are pointers
// so that an absent field falls back to the documented default.
type tileRequest struct {
	Geometry       domain.Geometry `json:"geometry"`
	Layer          string          `json:"layer"`
	Start          string          `json:"start"`
	End            string          `json:"end"`
	CloudThreshold *int            `json:"cloud_threshold"`
	Buffer         *int            `json:"buffer"`
}

// seriesRequest is the POST /timeseries body.
type seriesRequest struct {
	Geometry       domain.Geometry `json:"geometry"`
	Start          string          `json:"start"`
	End            string          `json:"end"`
	Scale          *int            `json:"scale"`
	CloudThreshold *int            `json:"cloud_threshold"`
}

func monitoringError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrNoGeometry) || errors.Is(err, domain.ErrInvalidGeometry) {
		return errBadRequest(c, err.Error())
	}
	return errInternal(c, err.Error())
}

// TilesHandler returns a tile URL for an RGB or NDVI composite clipped to
// the posted region.
func TilesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req tileRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		q := domain.TileQuery{
			Geometry:       req.Geometry,
			Layer:          domain.ParseLayer(req.Layer),
			Start:          req.Start,
			End:            req.End,
			CloudThreshold: domain.DefaultCloudThreshold,
			BufferMeters:   domain.DefaultBufferMeters,
		}
		if req.CloudThreshold != nil {
			q.CloudThreshold = *req.CloudThreshold
		}
		if req.Buffer != nil {
			q.BufferMeters = *req.Buffer
		}

		tileURL, err := deps.Monitoring.TileLayer(c.UserContext(), q)
		if err != nil {
			return monitoringError(c, err)
		}

		return c.JSON(fiber.Map{
			"status":   "ok",
			"tile_url": tileURL,
		})
	}
}

// TimeSeriesHandler returns the NDVI time series averaged over the posted
// region, ordered by acquisition time.
func TimeSeriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req seriesRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		q := domain.SeriesQuery{
			Geometry:       req.Geometry,
			Start:          req.Start,
			End:            req.End,
			ScaleMeters:    domain.DefaultScaleMeters,
			CloudThreshold: domain.DefaultCloudThreshold,
		}
		if req.Scale != nil {
			q.ScaleMeters = *req.Scale
		}
		if req.CloudThreshold != nil {
			q.CloudThreshold = *req.CloudThreshold
		}

		series, err := deps.Monitoring.NDVISeries(c.UserContext(), q)
		if err != nil {
			return monitoringError(c, err)
		}
		if series == nil {
			series = []domain.Observation{}
		}

		return c.JSON(fiber.Map{
			"status": "ok",
			"series": series,
		})
	}
}
