package models

import "io"

// FileHandle is a file the user picked or dropped, ready to be sent to the
// backend. Content is read once.
type FileHandle struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	Content io.Reader `json:"-"`
}
