// handlers_state.go - Snapshot export as JSON and msgpack
package api

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/docchat/frontend/internal/models"
)

// MIMEApplicationMsgpack is the content type of the binary snapshot
const MIMEApplicationMsgpack = "application/x-msgpack"

// StateHandlerImpl implements the StateHandler interface
type StateHandlerImpl struct {
	ctrl Controller
}

// NewStateHandler creates a new state handler
func NewStateHandler(ctrl Controller) StateHandler {
	return &StateHandlerImpl{ctrl: ctrl}
}

type stateResponse struct {
	State   models.Snapshot `json:"state"`
	Notices []models.Notice `json:"notices"`
}

// HandleState returns the snapshot and drains pending notices
func (h *StateHandlerImpl) HandleState(c echo.Context) error {
	resp := stateResponse{
		State:   h.ctrl.Snapshot(),
		Notices: h.ctrl.TakeNotices(),
	}
	if resp.Notices == nil {
		resp.Notices = []models.Notice{}
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleStateMsgpack returns the snapshot msgpack-encoded with the JSON
// field names. Notices are left pending.
func (h *StateHandlerImpl) HandleStateMsgpack(c echo.Context) error {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(h.ctrl.Snapshot()); err != nil {
		return NewInternalError("failed to encode snapshot", err)
	}
	return c.Blob(http.StatusOK, MIMEApplicationMsgpack, buf.Bytes())
}
