// mock_backend.go - Fake document-chat backend for testing
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/docchat/frontend/internal/models"
)

// Reply is a canned response. Body is encoded as JSON unless it is a string,
// which is written raw so tests can send malformed payloads.
type Reply struct {
	Status int
	Body   interface{}
}

// UploadedFile records a file the backend received.
type UploadedFile struct {
	Name string
	Data []byte
}

// MockBackend serves the four backend endpoints from canned replies and
// records every call.
type MockBackend struct {
	server *httptest.Server

	mu        sync.Mutex
	calls     map[string]int
	uploads   []UploadedFile
	questions []string

	uploadReply Reply
	askReply    func(question string) Reply
	clearReply  Reply
	statusReply Reply
}

// NewMockBackend starts a backend with no document loaded that accepts
// uploads with three chunks and echoes questions back as answers.
func NewMockBackend() *MockBackend {
	m := &MockBackend{
		calls: make(map[string]int),
		uploadReply: Reply{Status: http.StatusOK, Body: models.UploadResponse{
			Success: true, Message: "Processed", ChunkCount: 3, TotalCharacters: 1200,
		}},
		askReply: func(q string) Reply {
			answer := "You asked: " + q
			return Reply{Status: http.StatusOK, Body: models.AskResponse{Answer: &answer}}
		},
		clearReply:  Reply{Status: http.StatusOK, Body: models.ClearResponse{Success: true}},
		statusReply: Reply{Status: http.StatusOK, Body: models.StatusResponse{HasDocument: false}},
	}

	e := echo.New()
	e.HideBanner = true
	e.POST("/api/upload", m.handleUpload)
	e.POST("/api/ask", m.handleAsk)
	e.POST("/api/clear", m.handleClear)
	e.GET("/api/status", m.handleStatus)
	e.GET("/api/health", func(c echo.Context) error {
		m.record("/api/health")
		return c.JSON(http.StatusOK, models.HealthResponse{Status: "healthy"})
	})

	m.server = httptest.NewServer(e)
	return m
}

// URL returns the base URL of the backend.
func (m *MockBackend) URL() string {
	return m.server.URL
}

// Close shuts the backend down. Later calls fail with a transport error.
func (m *MockBackend) Close() {
	m.server.Close()
}

// SetUploadReply replaces the upload response.
func (m *MockBackend) SetUploadReply(r Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadReply = r
}

// SetAskReply replaces the ask handler.
func (m *MockBackend) SetAskReply(fn func(question string) Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.askReply = fn
}

// SetClearReply replaces the clear response.
func (m *MockBackend) SetClearReply(r Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearReply = r
}

// SetStatusReply replaces the status response.
func (m *MockBackend) SetStatusReply(r Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusReply = r
}

// Calls returns how many times path was hit.
func (m *MockBackend) Calls(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[path]
}

// Uploads returns the files received so far.
func (m *MockBackend) Uploads() []UploadedFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]UploadedFile, len(m.uploads))
	copy(out, m.uploads)
	return out
}

// Questions returns the questions received so far.
func (m *MockBackend) Questions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.questions))
	copy(out, m.questions)
	return out
}

func (m *MockBackend) record(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[path]++
}

func (m *MockBackend) handleUpload(c echo.Context) error {
	m.record("/api/upload")

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "file field required"})
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.uploads = append(m.uploads, UploadedFile{Name: file.Filename, Data: data})
	reply := m.uploadReply
	m.mu.Unlock()

	return writeReply(c, reply)
}

func (m *MockBackend) handleAsk(c echo.Context) error {
	m.record("/api/ask")

	var req models.AskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"detail": "invalid body"})
	}

	m.mu.Lock()
	m.questions = append(m.questions, req.Question)
	fn := m.askReply
	m.mu.Unlock()

	return writeReply(c, fn(req.Question))
}

func (m *MockBackend) handleClear(c echo.Context) error {
	m.record("/api/clear")
	m.mu.Lock()
	reply := m.clearReply
	m.mu.Unlock()
	return writeReply(c, reply)
}

func (m *MockBackend) handleStatus(c echo.Context) error {
	m.record("/api/status")
	m.mu.Lock()
	reply := m.statusReply
	m.mu.Unlock()
	return writeReply(c, reply)
}

func writeReply(c echo.Context, r Reply) error {
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	if raw, ok := r.Body.(string); ok {
		return c.Blob(status, echo.MIMEApplicationJSON, []byte(raw))
	}
	if r.Body == nil {
		return c.NoContent(status)
	}
	return c.JSON(status, r.Body)
}
