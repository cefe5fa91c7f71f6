// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/docchat/frontend/internal/models"
	"github.com/docchat/frontend/internal/session"
)

// PageHandler renders the single page
type PageHandler interface {
	HandlePage(c echo.Context) error
}

// SessionHandler turns browser actions into controller operations
type SessionHandler interface {
	HandleUpload(c echo.Context) error
	HandleAsk(c echo.Context) error
	HandleNewDocument(c echo.Context) error
}

// StateHandler exposes the current snapshot
type StateHandler interface {
	HandleState(c echo.Context) error
	HandleStateMsgpack(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// Controller is the part of the session controller the handlers drive.
// This allows mocking in tests
type Controller interface {
	SelectFile(ctx context.Context, file models.FileHandle, source models.FileSource) error
	SendMessage(ctx context.Context, text string) error
	NewDocument(ctx context.Context)
	Snapshot() models.Snapshot
	TakeNotices() []models.Notice
	Subscribe(fn func(session.Event)) func()
}

// BackendProbe reports whether the document backend is up
type BackendProbe interface {
	Health(ctx context.Context) (*models.HealthResponse, error)
}
