// Package upload tracks a single document upload attempt through the fixed
// progress checkpoints shown to the user.
package upload

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the upload processing status.
type Status string

const (
	StatusUploading  Status = "uploading"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Stage is a progress checkpoint: a percentage and the label shown with it.
type Stage struct {
	Percent int
	Label   string
}

// Checkpoints, in order. The backend reports nothing between request and
// response, so 70% is cosmetic.
var (
	StageStarting   = Stage{Percent: 0, Label: "Starting upload..."}
	StageUploading  = Stage{Percent: 30, Label: "Uploading document..."}
	StageProcessing = Stage{Percent: 70, Label: "Processing text & index..."}
	StageComplete   = Stage{Percent: 100, Label: "Complete!"}
)

// Job represents one upload attempt.
type Job struct {
	ID              string     `json:"id"`
	FileName        string     `json:"fileName"`
	Status          Status     `json:"status"`
	Progress        int        `json:"progress"`
	Stage           string     `json:"stage"`
	ChunkCount      int        `json:"chunkCount,omitempty"`
	TotalCharacters int        `json:"totalCharacters,omitempty"`
	Error           string     `json:"error,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// NewJob creates a job at the starting checkpoint.
func NewJob(fileName string) *Job {
	return &Job{
		ID:        uuid.New().String(),
		FileName:  fileName,
		Status:    StatusUploading,
		Progress:  StageStarting.Percent,
		Stage:     StageStarting.Label,
		CreatedAt: time.Now(),
	}
}

// Advance moves the job to a checkpoint. Checkpoints past the upload one
// switch the status to processing.
func (j *Job) Advance(stage Stage) {
	j.Progress = stage.Percent
	j.Stage = stage.Label
	if stage.Percent > StageUploading.Percent && j.Status == StatusUploading {
		j.Status = StatusProcessing
	}
}

// Complete marks the job as finished with the backend-reported counts.
func (j *Job) Complete(chunkCount, totalCharacters int) {
	j.Advance(StageComplete)
	j.Status = StatusComplete
	j.ChunkCount = chunkCount
	j.TotalCharacters = totalCharacters
	now := time.Now()
	j.CompletedAt = &now
}

// Fail marks the job as failed. Progress is left where it stopped.
func (j *Job) Fail(errMsg string) {
	j.Status = StatusError
	j.Error = errMsg
	now := time.Now()
	j.CompletedAt = &now
}

// Done reports whether the job reached a terminal status.
func (j *Job) Done() bool {
	return j.Status == StatusComplete || j.Status == StatusError
}

// ShortID returns the first eight characters of the id, for log lines.
func (j *Job) ShortID() string {
	if len(j.ID) < 8 {
		return j.ID
	}
	return j.ID[:8]
}
