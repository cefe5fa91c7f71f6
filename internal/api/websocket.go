package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/docchat/frontend/internal/models"
	"github.com/docchat/frontend/internal/session"
)

// WebSocket message types for the state push protocol
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeState     = "state"
	MsgTypeNotice    = "notice"
	MsgTypePong      = "pong"
	MsgTypeError     = "error"
)

const (
	wsWriteWait  = 10 * time.Second
	wsSendBuffer = 64
)

// WSMessage is the envelope for every websocket frame
type WSMessage struct {
	Type      string           `json:"type"`
	State     *models.Snapshot `json:"state,omitempty"`
	Notice    *models.Notice   `json:"notice,omitempty"`
	Message   string           `json:"message,omitempty"`
	Timestamp int64            `json:"timestamp"`
}

// WebSocketHandler pushes controller snapshots and notices to browsers
type WebSocketHandler struct {
	ctrl     Controller
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new state push handler
func NewWebSocketHandler(ctrl Controller, logger *zap.Logger) *WebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketHandler{
		ctrl:   ctrl,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
		},
	}
}

// HandleWebSocket upgrades the connection, sends the current snapshot and
// then forwards every state change until the client goes away.
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	wsh.logger.Debug("websocket client connected", zap.String("remote", c.RealIP()))

	// Only this goroutine writes to ws; everything else goes through out.
	out := make(chan WSMessage, wsSendBuffer)
	unsubscribe := wsh.ctrl.Subscribe(func(ev session.Event) {
		wsh.enqueue(out, eventMessage(ev))
	})
	defer unsubscribe()

	snap := wsh.ctrl.Snapshot()
	if err := wsh.write(ws, WSMessage{Type: MsgTypeConnected, State: &snap, Timestamp: nowMillis()}); err != nil {
		return nil
	}

	done := make(chan struct{})
	go wsh.readLoop(ws, out, done)

	for {
		select {
		case <-done:
			wsh.logger.Debug("websocket client disconnected")
			return nil
		case msg := <-out:
			if err := wsh.write(ws, msg); err != nil {
				wsh.logger.Debug("websocket write failed", zap.Error(err))
				return nil
			}
		}
	}
}

func (wsh *WebSocketHandler) readLoop(ws *websocket.Conn, out chan<- WSMessage, done chan<- struct{}) {
	defer close(done)
	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				wsh.logger.Warn("websocket connection error", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case MsgTypePing:
			wsh.enqueue(out, WSMessage{Type: MsgTypePong, Timestamp: nowMillis()})
		default:
			wsh.enqueue(out, WSMessage{Type: MsgTypeError, Message: "Unknown message type: " + msg.Type, Timestamp: nowMillis()})
		}
	}
}

// enqueue never blocks: subscribers run on the controller's goroutines.
func (wsh *WebSocketHandler) enqueue(out chan<- WSMessage, msg WSMessage) {
	select {
	case out <- msg:
	default:
		wsh.logger.Warn("websocket send buffer full, dropping message", zap.String("type", msg.Type))
	}
}

func (wsh *WebSocketHandler) write(ws *websocket.Conn, msg WSMessage) error {
	if err := ws.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return ws.WriteJSON(msg)
}

func eventMessage(ev session.Event) WSMessage {
	if ev.Notice != nil {
		return WSMessage{Type: MsgTypeNotice, Notice: ev.Notice, Timestamp: nowMillis()}
	}
	return WSMessage{Type: MsgTypeState, State: ev.Snapshot, Timestamp: nowMillis()}
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
