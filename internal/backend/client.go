// Package backend is the HTTP client for the document-chat backend. It knows
// the four endpoints the frontend relies on and nothing about the view.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/docchat/frontend/internal/models"
)

// Endpoint paths on the backend.
const (
	PathUpload = "/api/upload"
	PathAsk    = "/api/ask"
	PathClear  = "/api/clear"
	PathStatus = "/api/status"
	PathHealth = "/api/health"
)

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 * 1024

// Client talks to the backend over HTTP.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	uploadClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout for ask, clear, status and health calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUploadTimeout sets the timeout for uploads, which include the
// backend's indexing time.
func WithUploadTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.uploadClient.Timeout = d
	}
}

// WithHTTPClient replaces both underlying HTTP clients.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
		c.uploadClient = hc
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		uploadClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload sends the file as multipart field "file". A response with
// success:false is returned as-is; the caller decides what it means.
// Non-2xx responses carrying a "detail" or "message" are turned into
// success:false responses as well.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (*models.UploadResponse, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	// The form is written while the request is sent; the file is never
	// held in memory as a whole.
	go func() {
		pw.CloseWithError(writeUploadForm(writer, name, r))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathUpload, pr)
	if err != nil {
		pr.CloseWithError(err)
		return nil, &TransportError{Op: "upload", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "upload", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg := readErrorMessage(resp.Body); msg != "" {
			return &models.UploadResponse{Success: false, Message: msg}, nil
		}
		return nil, &TransportError{Op: "upload", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var out models.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &TransportError{Op: "upload", Err: fmt.Errorf("decoding response: %w", err)}
	}
	return &out, nil
}

// Ask sends a question and returns the backend's answer. A response without
// an answer field is a TransportError.
func (c *Client) Ask(ctx context.Context, question string) (*models.AskResponse, error) {
	var out models.AskResponse
	if err := c.doJSON(ctx, "ask", http.MethodPost, PathAsk, models.AskRequest{Question: question}, &out); err != nil {
		return nil, err
	}
	if out.Answer == nil {
		return nil, &TransportError{Op: "ask", Err: fmt.Errorf("response has no answer")}
	}
	return &out, nil
}

// Clear asks the backend to drop the active document. The response body is
// not inspected.
func (c *Client) Clear(ctx context.Context) error {
	return c.doJSON(ctx, "clear", http.MethodPost, PathClear, nil, nil)
}

// Status returns whether the backend already holds a document.
func (c *Client) Status(ctx context.Context) (*models.StatusResponse, error) {
	var out models.StatusResponse
	if err := c.doJSON(ctx, "status", http.MethodGet, PathStatus, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health pings the backend health endpoint.
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var out models.HealthResponse
	if err := c.doJSON(ctx, "health", http.MethodGet, PathHealth, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encoding request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg := readErrorMessage(resp.Body); msg != "" {
			return &TransportError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, msg)}
		}
		return &TransportError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func writeUploadForm(writer *multipart.Writer, name string, r io.Reader) error {
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing form: %w", err)
	}
	return nil
}

// readErrorMessage extracts "detail" (string form) or "message" from an
// error body.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	var detail string
	if len(payload.Detail) > 0 && json.Unmarshal(payload.Detail, &detail) == nil && detail != "" {
		return detail
	}
	return payload.Message
}
