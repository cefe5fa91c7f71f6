package backend

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/docchat/frontend/internal/models"
	"github.com/docchat/frontend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Upload(t *testing.T) {
	tests := []struct {
		name        string
		reply       testutil.Reply
		wantSuccess bool
		wantMessage string
		wantChunks  int
		wantErr     bool
	}{
		{
			name:        "processed",
			reply:       testutil.Reply{Status: http.StatusOK, Body: models.UploadResponse{Success: true, ChunkCount: 7}},
			wantSuccess: true,
			wantChunks:  7,
		},
		{
			name:        "backend reports failure",
			reply:       testutil.Reply{Status: http.StatusOK, Body: models.UploadResponse{Success: false, Message: "EOF marker not found"}},
			wantSuccess: false,
			wantMessage: "EOF marker not found",
		},
		{
			name:        "http error with detail",
			reply:       testutil.Reply{Status: http.StatusBadRequest, Body: map[string]string{"detail": "Only PDF files allowed"}},
			wantSuccess: false,
			wantMessage: "Only PDF files allowed",
		},
		{
			name:    "http error without body",
			reply:   testutil.Reply{Status: http.StatusInternalServerError},
			wantErr: true,
		},
		{
			name:    "malformed json",
			reply:   testutil.Reply{Status: http.StatusOK, Body: `{"success": tru`},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockBackend()
			defer mock.Close()
			mock.SetUploadReply(tt.reply)

			client := NewClient(mock.URL() + "/")
			res, err := client.Upload(context.Background(), "paper.pdf", strings.NewReader("%PDF-1.4"))

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsTransportError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, res.Success)
			assert.Equal(t, tt.wantMessage, res.Message)
			assert.Equal(t, tt.wantChunks, res.ChunkCount)

			uploads := mock.Uploads()
			require.Len(t, uploads, 1)
			assert.Equal(t, "paper.pdf", uploads[0].Name)
			assert.Equal(t, "%PDF-1.4", string(uploads[0].Data))
		})
	}
}

func TestClient_Ask(t *testing.T) {
	mock := testutil.NewMockBackend()
	defer mock.Close()
	client := NewClient(mock.URL())

	res, err := client.Ask(context.Background(), "what is chapter 2 about?")
	require.NoError(t, err)
	require.NotNil(t, res.Answer)
	assert.Equal(t, "You asked: what is chapter 2 about?", *res.Answer)
	assert.Equal(t, []string{"what is chapter 2 about?"}, mock.Questions())
}

func TestClient_AskMissingAnswer(t *testing.T) {
	mock := testutil.NewMockBackend()
	defer mock.Close()
	mock.SetAskReply(func(string) testutil.Reply {
		return testutil.Reply{Status: http.StatusOK, Body: map[string]bool{"success": false}}
	})

	_, err := NewClient(mock.URL()).Ask(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.Contains(t, err.Error(), "ask")
}

func TestClient_AskServerError(t *testing.T) {
	mock := testutil.NewMockBackend()
	defer mock.Close()
	mock.SetAskReply(func(string) testutil.Reply {
		return testutil.Reply{Status: http.StatusInternalServerError, Body: map[string]string{"detail": "boom"}}
	})

	_, err := NewClient(mock.URL()).Ask(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestClient_StatusAndClear(t *testing.T) {
	mock := testutil.NewMockBackend()
	defer mock.Close()
	mock.SetStatusReply(testutil.Reply{Body: models.StatusResponse{HasDocument: true, PDFName: "x.pdf", ChunkCount: 5}})
	mock.SetClearReply(testutil.Reply{Status: http.StatusOK})

	client := NewClient(mock.URL())

	status, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.HasDocument)
	assert.Equal(t, "x.pdf", status.PDFName)
	assert.Equal(t, 5, status.ChunkCount)

	// Empty clear body is fine.
	require.NoError(t, client.Clear(context.Background()))
	assert.Equal(t, 1, mock.Calls(PathClear))

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
}

func TestClient_Unreachable(t *testing.T) {
	mock := testutil.NewMockBackend()
	url := mock.URL()
	mock.Close()

	client := NewClient(url)
	_, err := client.Status(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.False(t, IsApplicationError(err))

	assert.Error(t, client.Clear(context.Background()))
}

func TestClient_UploadStreamsLargeFile(t *testing.T) {
	mock := testutil.NewMockBackend()
	defer mock.Close()

	data := bytes.Repeat([]byte("0123456789abcdef"), 256*1024) // 4MB
	res, err := NewClient(mock.URL()).Upload(context.Background(), "big.pdf", bytes.NewReader(data))
	require.NoError(t, err)
	assert.True(t, res.Success)

	uploads := mock.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, "big.pdf", uploads[0].Name)
	assert.True(t, bytes.Equal(data, uploads[0].Data), "uploaded bytes differ")
}

// failingReader returns some bytes and then an error.
type failingReader struct {
	sent bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.sent {
		return 0, errors.New("disk read failed")
	}
	f.sent = true
	return copy(p, "%PDF-1.4"), nil
}

func TestClient_UploadReaderError(t *testing.T) {
	mock := testutil.NewMockBackend()
	defer mock.Close()

	_, err := NewClient(mock.URL()).Upload(context.Background(), "paper.pdf", &failingReader{})
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.Empty(t, mock.Uploads())
}
