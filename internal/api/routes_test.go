package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/docchat/frontend/internal/session"
)

func TestSkipTimeout(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   bool
	}{
		{http.MethodPost, "/ui/upload", true},
		{http.MethodPost, "/ui/ask", true},
		{http.MethodPost, "/ui/new", true},
		{http.MethodGet, "/ui/ws", true},
		{http.MethodGet, "/", false},
		{http.MethodGet, "/ui/state", false},
		{http.MethodGet, "/api/health", false},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(tt.method, tt.path, nil), httptest.NewRecorder())
			assert.Equal(t, tt.want, skipTimeout(c))
		})
	}
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()

	t.Run("maps controller errors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/ui/ask", nil), rec)

		ErrorHandler(session.ErrEmptyQuestion, c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"VALIDATION_ERROR"`)
	})

	t.Run("committed response is left alone", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		assert.NoError(t, c.String(http.StatusOK, "done"))

		ErrorHandler(errors.New("late failure"), c)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "done", rec.Body.String())
	})
}
