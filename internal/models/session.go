package models

import "time"

// View is the top-level screen the frontend shows.
type View string

const (
	ViewAwaitingUpload View = "awaiting_upload"
	ViewChatActive     View = "chat_active"
)

// Phase is the in-flight operation of the session. Any phase other than
// PhaseIdle means the session is busy.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseUploading Phase = "uploading"
	PhaseAsking    Phase = "asking"
)

// FileSource is how a file reached the controller.
type FileSource string

const (
	FileSourceBrowse FileSource = "browse"
	FileSourcePicker FileSource = "picker"
	FileSourceDrop   FileSource = "drop"
)

// ParseFileSource maps a form value to a FileSource, defaulting to browse.
func ParseFileSource(s string) FileSource {
	switch FileSource(s) {
	case FileSourceDrop:
		return FileSourceDrop
	case FileSourcePicker:
		return FileSourcePicker
	default:
		return FileSourceBrowse
	}
}

// DocumentRef identifies the active document by what the user sees.
type DocumentRef struct {
	Name       string `json:"name"`
	ChunkCount int    `json:"chunkCount"`
}

// Progress is the upload progress indicator.
type Progress struct {
	Visible bool   `json:"visible"`
	Percent int    `json:"percent"` // 0-100
	Label   string `json:"label"`
}

// StatusLabel is the header status text and its highlight.
type StatusLabel struct {
	Text   string `json:"text"`
	Active bool   `json:"active"`
}

// Composer is the state of the question input and send control.
type Composer struct {
	SendEnabled bool `json:"sendEnabled"`
	Focused     bool `json:"focused"`
}

// Notice is a blocking notification shown to the user once.
type Notice struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is a read-only copy of the session view model.
type Snapshot struct {
	View     View         `json:"view"`
	Phase    Phase        `json:"phase"`
	Progress Progress     `json:"progress"`
	Status   StatusLabel  `json:"status"`
	Header   string       `json:"header,omitempty"`
	Document *DocumentRef `json:"document,omitempty"`
	Messages []Message    `json:"messages"`
	Composer Composer     `json:"composer"`
	Version  uint64       `json:"version"`
}

// Busy reports whether an upload or ask is outstanding.
func (s Snapshot) Busy() bool {
	return s.Phase != PhaseIdle
}
