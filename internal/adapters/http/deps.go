package http

import (
	"github.com/earthlens/earthlens/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Monitoring *usecases.MonitoringService
}
