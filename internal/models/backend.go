package models

// UploadResponse is the backend's answer to POST /api/upload.
type UploadResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message,omitempty"`
	ChunkCount      int    `json:"chunk_count,omitempty"`
	TotalCharacters int    `json:"total_characters,omitempty"`
}

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// ContextHit is one retrieved passage the backend used for an answer.
type ContextHit struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// AskResponse is the backend's answer to POST /api/ask. Answer is a pointer
// so a missing field can be told apart from an empty answer.
type AskResponse struct {
	Answer  *string      `json:"answer"`
	Success *bool        `json:"success,omitempty"`
	Cached  bool         `json:"cached,omitempty"`
	Context []ContextHit `json:"context,omitempty"`
}

// StatusResponse is the backend's answer to GET /api/status.
type StatusResponse struct {
	HasDocument bool   `json:"has_document"`
	PDFName     string `json:"pdf_name,omitempty"`
	ChunkCount  int    `json:"chunk_count,omitempty"`
}

// ClearResponse is the backend's answer to POST /api/clear.
type ClearResponse struct {
	Success bool `json:"success"`
}

// HealthResponse is the backend's answer to GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
}
