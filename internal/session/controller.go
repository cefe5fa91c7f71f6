// Package session holds the session controller: the single owner of the
// frontend's view model and the only caller of the backend.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docchat/frontend/internal/backend"
	"github.com/docchat/frontend/internal/models"
	"github.com/docchat/frontend/internal/upload"
)

// DefaultCompletionDelay keeps "Complete!" on screen before switching views.
const DefaultCompletionDelay = 800 * time.Millisecond

// maxNotices bounds the undrained notice queue; the oldest are dropped.
const maxNotices = 50

// User-visible texts.
const (
	StatusWaiting  = "Waiting for document..."
	StatusReady    = "Ready to assist"
	NoticeNotPDF   = "Please upload a PDF file"
	AskFailureText = "Error: Could not get response."
	uploadErrorFmt = "Upload Error: %s"
)

var (
	ErrBusy          = errors.New("session is busy")
	ErrEmptyQuestion = errors.New("question is empty")
	ErrNotPDF        = errors.New("file is not a PDF")
)

// Backend is the part of the document-chat API the controller uses.
type Backend interface {
	Upload(ctx context.Context, name string, r io.Reader) (*models.UploadResponse, error)
	Ask(ctx context.Context, question string) (*models.AskResponse, error)
	Clear(ctx context.Context) error
	Status(ctx context.Context) (*models.StatusResponse, error)
}

// Event is delivered to subscribers. Exactly one field is set.
type Event struct {
	Snapshot *models.Snapshot
	Notice   *models.Notice
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithCompletionDelay sets how long "Complete!" stays visible after a
// successful upload.
func WithCompletionDelay(d time.Duration) Option {
	return func(c *Controller) {
		c.completionDelay = d
	}
}

// WithClock replaces time.Now, used for typing-indicator ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// Controller drives the two-view state machine (awaiting upload / chat
// active) and serializes uploads and asks through its phase.
type Controller struct {
	backend         Backend
	logger          *zap.Logger
	completionDelay time.Duration
	now             func() time.Time
	sleep           func(time.Duration)

	mu       sync.Mutex
	view     models.View
	phase    models.Phase
	job      *upload.Job
	progress models.Progress
	status   models.StatusLabel
	document *models.DocumentRef
	messages []models.Message
	focused  bool
	notices  []models.Notice
	version  uint64

	subMu     sync.Mutex
	subs      map[int]func(Event)
	nextSubID int
}

// NewController creates a controller in the awaiting-upload view.
func NewController(b Backend, opts ...Option) *Controller {
	c := &Controller{
		backend:         b,
		logger:          zap.NewNop(),
		completionDelay: DefaultCompletionDelay,
		now:             time.Now,
		sleep:           time.Sleep,
		view:            models.ViewAwaitingUpload,
		phase:           models.PhaseIdle,
		status:          models.StatusLabel{Text: StatusWaiting},
		subs:            make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectFile handles a file from the browse button, the file picker or a
// drop. Only drops are checked for the ".pdf" suffix.
func (c *Controller) SelectFile(ctx context.Context, file models.FileHandle, source models.FileSource) error {
	if source == models.FileSourceDrop && !strings.HasSuffix(file.Name, ".pdf") {
		c.logger.Info("rejected dropped file", zap.String("file", file.Name))
		c.raise(NoticeNotPDF)
		return ErrNotPDF
	}
	return c.Upload(ctx, file)
}

// Upload sends a file to the backend and, on success, switches to the chat
// view after the completion delay. The phase stays uploading until then.
func (c *Controller) Upload(ctx context.Context, file models.FileHandle) error {
	c.mu.Lock()
	if c.phase != models.PhaseIdle {
		phase := c.phase
		c.mu.Unlock()
		c.logger.Debug("upload ignored while busy", zap.String("file", file.Name), zap.String("phase", string(phase)))
		return ErrBusy
	}
	c.phase = models.PhaseUploading
	job := upload.NewJob(file.Name)
	c.job = job
	c.progress.Visible = true
	c.advanceLocked(job, upload.StageStarting)
	snap := c.commitLocked()
	c.mu.Unlock()
	c.emit(Event{Snapshot: &snap})

	c.update(func() {
		c.advanceLocked(job, upload.StageUploading)
	})

	log := c.logger.With(zap.String("job", job.ShortID()), zap.String("file", file.Name))
	log.Info("uploading document", zap.Int64("size", file.Size))

	res, err := c.backend.Upload(ctx, file.Name, file.Content)
	if err == nil && !res.Success {
		err = &backend.ApplicationError{Message: res.Message}
	}
	if err != nil {
		log.Warn("upload failed", zap.Error(err))
		c.update(func() {
			job.Fail(err.Error())
			c.progress.Visible = false
			c.phase = models.PhaseIdle
		})
		c.raise(fmt.Sprintf(uploadErrorFmt, err.Error()))
		return err
	}

	c.update(func() {
		c.advanceLocked(job, upload.StageProcessing)
	})
	c.update(func() {
		job.Complete(res.ChunkCount, res.TotalCharacters)
		c.advanceLocked(job, upload.StageComplete)
	})
	log.Info("upload complete", zap.Int("chunks", res.ChunkCount))

	c.sleep(c.completionDelay)

	c.update(func() {
		// A reset during the delay drops the job; don't resurrect the chat.
		if c.job == job {
			c.transitionToChatLocked(file.Name, res.ChunkCount)
		}
		c.phase = models.PhaseIdle
	})
	return nil
}

// TransitionToChat shows the chat view for the named document.
func (c *Controller) TransitionToChat(name string, chunkCount int) {
	c.update(func() {
		c.transitionToChatLocked(name, chunkCount)
	})
}

// ResetSession returns to the awaiting-upload view.
func (c *Controller) ResetSession() {
	c.update(c.resetLocked)
}

// NewDocument clears the backend and resets the session. A failed clear is
// logged and otherwise ignored.
func (c *Controller) NewDocument(ctx context.Context) {
	if err := c.backend.Clear(ctx); err != nil {
		c.logger.Warn("clear failed, resetting anyway", zap.Error(err))
	}
	c.ResetSession()
}

// SendMessage relays a question to the backend. Failures end up as an error
// bubble in the chat, not as a returned error; only the gating errors
// ErrEmptyQuestion and ErrBusy are returned.
func (c *Controller) SendMessage(ctx context.Context, text string) error {
	question := strings.TrimSpace(text)
	if question == "" {
		return ErrEmptyQuestion
	}

	c.mu.Lock()
	if c.phase != models.PhaseIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.phase = models.PhaseAsking
	c.focused = false
	now := c.now()
	typingID := fmt.Sprintf("typing-%d", now.UnixMilli())
	c.messages = append(c.messages,
		c.newMessageLocked(models.RoleUser, models.MessageKindText, question),
		models.Message{ID: typingID, Role: models.RoleBot, Kind: models.MessageKindTyping, CreatedAt: now},
	)
	snap := c.commitLocked()
	c.mu.Unlock()
	c.emit(Event{Snapshot: &snap})

	res, err := c.backend.Ask(ctx, question)
	if err == nil && res.Answer == nil {
		err = &backend.TransportError{Op: "ask", Err: errors.New("response has no answer")}
	}
	if err != nil {
		c.logger.Warn("ask failed", zap.Error(err))
	}

	c.update(func() {
		c.removeMessageLocked(typingID)
		if err != nil {
			c.messages = append(c.messages, c.newMessageLocked(models.RoleBot, models.MessageKindError, AskFailureText))
		} else {
			c.messages = append(c.messages, c.newMessageLocked(models.RoleBot, models.MessageKindText, *res.Answer))
		}
		c.phase = models.PhaseIdle
		c.focused = true
	})
	return nil
}

// CheckExistingSession asks the backend whether it already holds a document
// and, if so, goes straight to the chat view.
func (c *Controller) CheckExistingSession(ctx context.Context) error {
	status, err := c.backend.Status(ctx)
	if err != nil {
		c.logger.Warn("status check failed", zap.Error(err))
		return err
	}
	if !status.HasDocument {
		c.logger.Debug("no active document on backend")
		return nil
	}
	c.logger.Info("resuming session", zap.String("document", status.PDFName), zap.Int("chunks", status.ChunkCount))
	c.TransitionToChat(status.PDFName, status.ChunkCount)
	return nil
}

// Snapshot returns a copy of the current view model.
func (c *Controller) Snapshot() models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// TakeNotices returns and clears the pending notices.
func (c *Controller) TakeNotices() []models.Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}

// Subscribe registers fn for every state change and notice. The returned
// function unsubscribes. fn runs on the goroutine that made the change and
// must not block.
func (c *Controller) Subscribe(fn func(Event)) func() {
	c.subMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	snap := c.commitLocked()
	c.mu.Unlock()
	c.emit(Event{Snapshot: &snap})
}

func (c *Controller) raise(message string) {
	c.mu.Lock()
	notice := models.Notice{ID: uuid.New().String(), Message: message, CreatedAt: c.now()}
	c.notices = append(c.notices, notice)
	if len(c.notices) > maxNotices {
		c.notices = c.notices[len(c.notices)-maxNotices:]
	}
	c.mu.Unlock()
	c.emit(Event{Notice: &notice})
}

func (c *Controller) emit(ev Event) {
	c.subMu.Lock()
	fns := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (c *Controller) commitLocked() models.Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() models.Snapshot {
	snap := models.Snapshot{
		View:     c.view,
		Phase:    c.phase,
		Progress: c.progress,
		Status:   c.status,
		Messages: make([]models.Message, len(c.messages)),
		Composer: models.Composer{
			SendEnabled: c.phase == models.PhaseIdle,
			Focused:     c.focused,
		},
		Version: c.version,
	}
	copy(snap.Messages, c.messages)
	if c.document != nil {
		doc := *c.document
		snap.Document = &doc
		snap.Header = "📄 " + doc.Name
	}
	return snap
}

func (c *Controller) advanceLocked(job *upload.Job, stage upload.Stage) {
	job.Advance(stage)
	c.progress.Percent = stage.Percent
	c.progress.Label = stage.Label
}

func (c *Controller) transitionToChatLocked(name string, chunkCount int) {
	c.view = models.ViewChatActive
	c.document = &models.DocumentRef{Name: name, ChunkCount: chunkCount}
	c.status = models.StatusLabel{Text: StatusReady, Active: true}
	welcome := c.newMessageLocked(models.RoleBot, models.MessageKindText, welcomeText(name, chunkCount))
	welcome.Subject = name
	c.messages = []models.Message{welcome}
	c.focused = true
}

func (c *Controller) resetLocked() {
	c.view = models.ViewAwaitingUpload
	c.document = nil
	c.job = nil
	c.progress.Visible = false
	c.progress.Percent = 0
	c.status = models.StatusLabel{Text: StatusWaiting}
	c.focused = false
}

func (c *Controller) removeMessageLocked(id string) {
	for i, m := range c.messages {
		if m.ID == id {
			c.messages = append(c.messages[:i], c.messages[i+1:]...)
			return
		}
	}
}

func (c *Controller) newMessageLocked(role models.Role, kind models.MessageKind, text string) models.Message {
	return models.Message{
		ID:        uuid.New().String(),
		Role:      role,
		Kind:      kind,
		Text:      text,
		CreatedAt: c.now(),
	}
}

func welcomeText(name string, chunkCount int) string {
	return fmt.Sprintf("Hi! I've analyzed **%s** (%d chunks).\nAsk me anything about the document!", name, chunkCount)
}
