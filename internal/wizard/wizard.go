package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joescharf/boardcfg/internal/classify"
	"github.com/joescharf/boardcfg/internal/editor"
	"github.com/joescharf/boardcfg/internal/models"
)

var (
	// ErrNothingToRetry is returned by RetryFetch when no fetch has failed.
	ErrNothingToRetry = errors.New("no failed fetch to retry")
	// ErrNotEditable is returned when a table is edited outside its step.
	ErrNotEditable = errors.New("table is not editable in this step")
)

// Backend is what the wizard needs from the configuration service.
type Backend interface {
	Fetch(ctx context.Context) (models.TrackerMetadata, error)
	Commit(ctx context.Context, cfg models.Configuration) (models.Configuration, error)
	Validate(ctx context.Context) models.ValidationResult
}

// Session is one run of the wizard. It is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	id        string
	backend   Backend
	step      Step
	draft     *Draft
	err       error
	result    *models.ValidationResult
	updatedAt time.Time

	// Mirrors of step and updatedAt readable without mu, which is held for
	// the whole of a fetch or save.
	done       atomic.Bool
	lastActive atomic.Int64
}

// NewSession returns a session in the FETCH step. Call Start to fetch.
func NewSession(id string, b Backend) *Session {
	s := &Session{id: id, backend: b, step: StepFetch}
	s.touch()
	return s
}

func (s *Session) ID() string { return s.id }

// Step returns the current step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Err returns the error attached to the current step, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Start runs the FETCH step. On success the draft is populated with
// suggestions and the session moves to ISSUE_TYPES. On failure it stays in
// FETCH with the error attached.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepFetch {
		return fmt.Errorf("%w: start from %s", ErrIllegalTransition, s.step)
	}
	return s.fetch(ctx)
}

// RetryFetch re-runs a failed fetch. Nothing else about the session changes.
func (s *Session) RetryFetch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepFetch || s.err == nil {
		return ErrNothingToRetry
	}
	return s.fetch(ctx)
}

func (s *Session) fetch(ctx context.Context) error {
	meta, err := s.backend.Fetch(ctx)
	if err != nil {
		s.err = err
		s.touch()
		return err
	}
	next, err := transition(s.step, ActionFetched)
	if err != nil {
		return err
	}
	s.draft = newDraft(meta, classify.Suggest(meta))
	s.step = next
	s.err = nil
	s.touch()
	return nil
}

// Advance moves to the next step.
func (s *Session) Advance() error { return s.move(ActionNext) }

// Back moves to the previous step. It is not available from ISSUE_TYPES.
func (s *Session) Back() error { return s.move(ActionBack) }

// Cancel discards the draft. The store is never touched.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := transition(s.step, ActionCancel)
	if err != nil {
		return err
	}
	s.step = next
	s.draft = nil
	s.err = nil
	s.done.Store(true)
	s.touch()
	return nil
}

func (s *Session) move(action Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := transition(s.step, action)
	if err != nil {
		return err
	}
	s.step = next
	s.err = nil
	s.touch()
	return nil
}

// Save commits the draft table by table in commit order and validates the
// committed result. If a table fails to persist the session stays in
// REVIEW with the error attached; tables written before it stay written.
func (s *Session) Save(ctx context.Context) (models.ValidationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := transition(s.step, ActionSave)
	if err != nil {
		return models.ValidationResult{}, err
	}

	if _, err := s.backend.Commit(ctx, s.draft.Config()); err != nil {
		s.err = err
		s.touch()
		return models.ValidationResult{}, err
	}

	result := s.backend.Validate(ctx)
	s.result = &result
	s.step = next
	s.err = nil
	s.done.Store(true)
	s.touch()
	return result, nil
}

// Result returns the validation result of a successful save.
func (s *Session) Result() (models.ValidationResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return models.ValidationResult{}, false
	}
	return *s.result, true
}

// Summary returns the draft counts shown in REVIEW.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return Summary{Warnings: []string{}}
	}
	return s.draft.summary()
}

// Draft returns a deep copy of the draft configuration. Changing it does not
// change the session.
func (s *Session) Draft() (models.Configuration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return models.Configuration{}, false
	}
	return s.draft.Config().Clone(), true
}

func (s *Session) EditRoles(fn func(*editor.Rows[models.Role]) error) error {
	return s.edit(StepRoles, func(d *Draft) error { return fn(d.Roles) })
}

func (s *Session) EditIssueTypes(fn func(*editor.Rows[models.IssueTypeMapping]) error) error {
	return s.edit(StepIssueTypes, func(d *Draft) error { return fn(d.IssueTypes) })
}

func (s *Session) EditStatuses(fn func(*editor.Rows[models.StatusMapping]) error) error {
	return s.edit(StepStatuses, func(d *Draft) error { return fn(d.Statuses) })
}

func (s *Session) EditLinkTypes(fn func(*editor.Rows[models.LinkTypeMapping]) error) error {
	return s.edit(StepLinkTypes, func(d *Draft) error { return fn(d.LinkTypes) })
}

// SetIssueTypeCategory changes the board category of the i-th draft issue
// type, clearing its role when it stops being a SUBTASK.
func (s *Session) SetIssueTypeCategory(i int, c models.BoardCategory) error {
	return s.EditIssueTypes(func(rows *editor.Rows[models.IssueTypeMapping]) error {
		return editor.SetIssueTypeCategory(rows, i, c)
	})
}

func (s *Session) edit(step Step, fn func(*Draft) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != step || s.draft == nil {
		table, _ := step.Table()
		return fmt.Errorf("%w: %s in %s", ErrNotEditable, table, s.step)
	}
	if err := fn(s.draft); err != nil {
		return err
	}
	s.touch()
	return nil
}

func (s *Session) touch() {
	s.updatedAt = time.Now()
	s.lastActive.Store(s.updatedAt.UnixNano())
}

// finished reports whether the session reached SAVED or CANCELLED. It does
// not wait for an in-flight fetch or save.
func (s *Session) finished() bool { return s.done.Load() }

// lastChanged returns the time of the last change without waiting on mu.
func (s *Session) lastChanged() time.Time { return time.Unix(0, s.lastActive.Load()) }

// Snapshot is a point-in-time view of a session for transports.
type Snapshot struct {
	ID         string                   `json:"id"`
	Step       Step                     `json:"step"`
	Error      string                   `json:"error,omitempty"`
	CanBack    bool                     `json:"canBack"`
	CanNext    bool                     `json:"canNext"`
	CanSave    bool                     `json:"canSave"`
	CanRetry   bool                     `json:"canRetry"`
	CanCancel  bool                     `json:"canCancel"`
	Draft      *models.Configuration    `json:"draft,omitempty"`
	Summary    *Summary                 `json:"summary,omitempty"`
	Validation *models.ValidationResult `json:"validation,omitempty"`
	UpdatedAt  time.Time                `json:"updatedAt"`
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:         s.id,
		Step:       s.step,
		CanBack:    allowed(s.step, ActionBack),
		CanNext:    allowed(s.step, ActionNext),
		CanSave:    allowed(s.step, ActionSave),
		CanRetry:   s.step == StepFetch && s.err != nil,
		CanCancel:  allowed(s.step, ActionCancel),
		UpdatedAt:  s.updatedAt,
	}
	if s.result != nil {
		v := *s.result
		v.Errors = append([]string{}, v.Errors...)
		v.Warnings = append([]string{}, v.Warnings...)
		snap.Validation = &v
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	if s.draft != nil {
		cfg := s.draft.Config().Clone()
		sum := s.draft.summary()
		snap.Draft = &cfg
		snap.Summary = &sum
	}
	return snap
}
