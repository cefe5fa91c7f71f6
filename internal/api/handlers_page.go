// handlers_page.go - Server-rendered page
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/docchat/frontend/internal/web"
)

// PageHandlerImpl implements the PageHandler interface
type PageHandlerImpl struct {
	ctrl Controller
}

// NewPageHandler creates a new page handler
func NewPageHandler(ctrl Controller) PageHandler {
	return &PageHandlerImpl{ctrl: ctrl}
}

// HandlePage renders the current snapshot. Pending notices are shown once.
func (h *PageHandlerImpl) HandlePage(c echo.Context) error {
	snap := h.ctrl.Snapshot()
	notices := h.ctrl.TakeNotices()
	return c.Render(http.StatusOK, web.PageTemplate, web.Project(snap, notices))
}
