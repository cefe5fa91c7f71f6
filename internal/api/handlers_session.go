// handlers_session.go - Upload, ask and new-document actions
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/docchat/frontend/internal/models"
)

// SessionHandlerImpl implements the SessionHandler interface
type SessionHandlerImpl struct {
	ctrl   Controller
	logger *zap.Logger
}

// NewSessionHandler creates a new session action handler
func NewSessionHandler(ctrl Controller, logger *zap.Logger) SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandlerImpl{ctrl: ctrl, logger: logger}
}

// HandleUpload accepts a multipart file with an optional "source" field
// (browse, picker or drop) and hands it to the controller.
func (h *SessionHandlerImpl) HandleUpload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	handle := models.FileHandle{
		Name:    file.Filename,
		Size:    file.Size,
		Content: src,
	}
	source := models.ParseFileSource(c.FormValue("source"))

	err = h.ctrl.SelectFile(actionContext(c), handle, source)
	return h.respond(c, "upload", err)
}

// HandleAsk relays a question from a form post or a JSON body
func (h *SessionHandlerImpl) HandleAsk(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	err := h.ctrl.SendMessage(actionContext(c), req.Question)
	return h.respond(c, "ask", err)
}

// HandleNewDocument clears the backend and resets the session
func (h *SessionHandlerImpl) HandleNewDocument(c echo.Context) error {
	h.ctrl.NewDocument(actionContext(c))
	return h.respond(c, "new document", nil)
}

// respond answers JSON clients with the snapshot or the error, and sends
// browsers back to the page where notices and bubbles already tell the story.
func (h *SessionHandlerImpl) respond(c echo.Context, action string, err error) error {
	if wantsJSON(c) {
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, h.ctrl.Snapshot())
	}
	if err != nil {
		h.logger.Debug("action not applied", zap.String("action", action), zap.Error(err))
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

type askRequest struct {
	Question string `json:"question" form:"question"`
}

// actionContext keeps backend calls alive when the browser navigates away
// mid-request; the controller must always see its call finish.
func actionContext(c echo.Context) context.Context {
	return context.WithoutCancel(c.Request().Context())
}

func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
