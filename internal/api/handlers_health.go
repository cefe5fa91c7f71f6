// handlers_health.go - Health check handlers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// healthProbeTimeout bounds the backend check so health stays fast
const healthProbeTimeout = 3 * time.Second

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	probe   BackendProbe
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, probe BackendProbe) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		probe:   probe,
	}
}

// HandleHealth returns frontend health plus backend reachability
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthProbeTimeout)
	defer cancel()

	backendStatus := map[string]interface{}{}
	status, code := "ok", http.StatusOK

	res, err := h.probe.Health(ctx)
	if err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
		backendStatus["status"] = "unreachable"
		backendStatus["error"] = err.Error()
	} else {
		backendStatus["status"] = res.Status
	}

	return c.JSON(code, map[string]interface{}{
		"status":  status,
		"version": h.version,
		"backend": backendStatus,
	})
}
