// Package edit drives a single record through create, view, edit, and
// autosave flows. One Controller serves one record for its lifetime; a new
// target needs a new Controller.
package edit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"recordsync/internal/platform/logger"
	"recordsync/internal/platform/metrics"
	"recordsync/internal/records/form"
	"recordsync/internal/records/models"
	"recordsync/internal/records/nav"
)

// Client is the part of the record client an editor needs.
type Client interface {
	Get(ctx context.Context, id models.RecordID) (models.Record, error)
	Create(ctx context.Context, fields models.Fields) (models.Record, error)
	Update(ctx context.Context, id models.RecordID, fields models.Fields) (models.Record, error)
	Remove(ctx context.Context, id models.RecordID) error
}

// State is a copy of what the editor view renders.
type State struct {
	Mode  Mode
	Phase Phase
	ID    models.RecordID
	Form  form.State

	// EditCount counts local field changes in autosave mode, whatever became
	// of the saves they triggered.
	EditCount int
	// InvalidField is the field the presentation layer should focus, if any.
	InvalidField models.Field

	// Err is the last load, submit, or delete failure.
	Err error
	// SaveError is set when the newest answered autosave failed. Answers to
	// older edits arriving late do not change it.
	SaveError error
	// InFlight is the number of autosave requests not yet answered.
	InFlight int
}

// Message is the user-facing text for Err, empty when there is none.
func (s State) Message() string {
	return models.UserMessage(s.Err)
}

type Observer func(State)

// ErrorHandler receives autosave failures as they happen.
type ErrorHandler func(ctx context.Context, err error)

type Controller struct {
	client       Client
	logger       *slog.Logger
	metrics      *metrics.Metrics
	navigator    nav.Navigator
	observers    []Observer
	errorHandler ErrorHandler

	mu    sync.Mutex
	state State
	// answeredEdit is the newest edit whose autosave has been answered.
	answeredEdit int

	background errgroup.Group
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

func WithNavigator(n nav.Navigator) Option {
	return func(c *Controller) {
		c.navigator = n
	}
}

func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

func WithErrorHandler(h ErrorHandler) Option {
	return func(c *Controller) {
		c.errorHandler = h
	}
}

// New builds an editor. Create mode starts Ready with an empty form. Every
// other mode needs an id and starts Loading while the record is fetched in
// the background; a failed fetch is terminal.
func New(ctx context.Context, client Client, mode Mode, id models.RecordID, opts ...Option) (*Controller, error) {
	c, err := newController(client, mode, opts)
	if err != nil {
		return nil, err
	}
	if mode == ModeCreate {
		c.state.Phase = PhaseReady
		return c, nil
	}
	if id.IsZero() {
		return nil, fmt.Errorf("id is required in %s mode", mode)
	}
	c.state.ID = id
	c.state.Phase = PhaseLoading
	c.background.Go(func() error {
		c.load(ctx)
		return nil
	})
	return c, nil
}

// NewFromRecord builds a Ready editor around a record that is already known,
// such as a row picked from the list. Nothing is fetched.
func NewFromRecord(client Client, mode Mode, record models.Record, opts ...Option) (*Controller, error) {
	if mode == ModeCreate {
		return nil, fmt.Errorf("create mode does not take an existing record")
	}
	if record.ID.IsZero() {
		return nil, fmt.Errorf("record id is required")
	}
	c, err := newController(client, mode, opts)
	if err != nil {
		return nil, err
	}
	c.state.ID = record.ID
	c.state.Form = form.FromRecord(record)
	c.state.Phase = PhaseReady
	return c, nil
}

func newController(client Client, mode Mode, opts []Option) (*Controller, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("unknown edit mode %q", mode)
	}
	c := &Controller{
		client:    client,
		logger:    logger.Discard(),
		navigator: nav.Discard,
		state:     State{Mode: mode},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Discard()
	}
	if c.navigator == nil {
		c.navigator = nav.Discard
	}
	c.logger = c.logger.With("mode", string(mode))
	return c, nil
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Wait blocks until the initial load and every autosave have been answered.
func (c *Controller) Wait() {
	_ = c.background.Wait()
}

func (c *Controller) load(ctx context.Context) {
	c.mu.Lock()
	id := c.state.ID
	c.mu.Unlock()

	record, err := c.client.Get(ctx, id)

	c.mu.Lock()
	if err != nil {
		c.state.Phase = PhaseFailed
		c.state.Err = err
		c.unlockAndPublish()
		c.logger.WarnContext(ctx, "record load failed",
			"record_id", id.String(),
			"category", string(models.GetCategory(err)),
			"error", err,
		)
		return
	}
	c.state.Form = form.FromRecord(record)
	c.state.Phase = PhaseReady
	c.unlockAndPublish()
	c.logger.DebugContext(ctx, "record loaded", "record_id", id.String())
}

// checkEditableLocked reports why the current phase refuses input, if it does.
func (c *Controller) checkEditableLocked() error {
	switch phase := c.state.Phase; {
	case phase == PhaseReady:
		return nil
	case phase.Terminal():
		return ErrTerminal
	default:
		return ErrNotReady
	}
}

// OnFieldChange applies one field edit. In autosave mode a valid draft is
// sent to the store right away without waiting for earlier saves; an invalid
// one is held back and its first invalid field reported.
func (c *Controller) OnFieldChange(ctx context.Context, field models.Field, value string) error {
	c.mu.Lock()
	if err := c.checkEditableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.state.Mode == ModeView {
		c.mu.Unlock()
		return ErrReadOnly
	}
	next, err := c.state.Form.Update(field, value)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state.Form = next

	if c.state.Mode != ModeAutosave {
		c.unlockAndPublish()
		return nil
	}

	c.state.EditCount++
	c.metrics.IncrementAutosaveEdits()

	result := next.Validate()
	if !result.Valid() {
		c.state.InvalidField = result.Field
		c.unlockAndPublish()
		c.metrics.IncrementAutosaveSaves("skipped")
		c.logger.DebugContext(ctx, "autosave held back", "field", result.Field.String())
		return nil
	}

	c.state.InvalidField = ""
	c.state.InFlight++
	id := c.state.ID
	edit := c.state.EditCount
	payload := next.Payload()
	c.unlockAndPublish()

	// Saves outlive the event that triggered them.
	saveCtx := context.WithoutCancel(ctx)
	c.background.Go(func() error {
		c.autosave(saveCtx, id, edit, payload)
		return nil
	})
	return nil
}

func (c *Controller) autosave(ctx context.Context, id models.RecordID, edit int, payload models.Fields) {
	_, err := c.client.Update(ctx, id, payload)

	c.mu.Lock()
	c.state.InFlight--
	if edit >= c.answeredEdit {
		c.answeredEdit = edit
		c.state.SaveError = err
	}
	c.unlockAndPublish()

	if err != nil {
		c.metrics.IncrementAutosaveSaves("failed")
		c.logger.WarnContext(ctx, "autosave failed",
			"record_id", id.String(),
			"edit", edit,
			"category", string(models.GetCategory(err)),
			"error", err,
		)
		if c.errorHandler != nil {
			c.errorHandler(ctx, err)
		}
		return
	}
	c.metrics.IncrementAutosaveSaves("ok")
	c.logger.DebugContext(ctx, "autosaved", "record_id", id.String(), "edit", edit)
}

// OnSubmit validates the draft and, if it is valid, creates or replaces the
// record. Success is terminal and sends exactly one navigate signal. Failure
// returns to Ready with the draft intact.
func (c *Controller) OnSubmit(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.Mode.submits() {
		c.mu.Unlock()
		return ErrUnsupported
	}
	if err := c.checkEditableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}

	result := c.state.Form.Validate()
	if !result.Valid() {
		verr := result.Err()
		c.state.InvalidField = result.Field
		c.state.Err = verr
		c.unlockAndPublish()
		return verr
	}

	c.state.Phase = PhaseSubmitting
	c.state.InvalidField = ""
	c.state.Err = nil
	mode := c.state.Mode
	id := c.state.ID
	payload := c.state.Form.Payload()
	c.unlockAndPublish()

	var (
		saved models.Record
		err   error
	)
	if mode == ModeCreate {
		saved, err = c.client.Create(ctx, payload)
	} else {
		saved, err = c.client.Update(ctx, id, payload)
	}

	c.mu.Lock()
	if err != nil {
		c.state.Phase = PhaseReady
		c.state.Err = err
		if field, ok := models.InvalidField(err); ok {
			c.state.InvalidField = field
		}
		c.unlockAndPublish()
		c.logger.WarnContext(ctx, "submit failed",
			"record_id", id.String(),
			"category", string(models.GetCategory(err)),
			"error", err,
		)
		return err
	}
	c.state.Phase = PhaseSaved
	if !saved.ID.IsZero() {
		c.state.ID = saved.ID
	}
	id = c.state.ID
	c.unlockAndPublish()

	c.logger.InfoContext(ctx, "record saved", "record_id", id.String())
	if mode == ModeCreate {
		c.navigator.Navigate(ctx, nav.List())
	} else {
		c.navigator.Navigate(ctx, nav.Detail(id))
	}
	return nil
}

// OnEditRequested leaves view mode for the edit view of the same record.
func (c *Controller) OnEditRequested(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Mode != ModeView {
		c.mu.Unlock()
		return ErrUnsupported
	}
	if err := c.checkEditableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	id := c.state.ID
	c.mu.Unlock()

	c.navigator.Navigate(ctx, nav.Edit(id))
	return nil
}

// DeleteRecord removes the record after the caller has confirmed it. Success
// is terminal and navigates to the list.
func (c *Controller) DeleteRecord(ctx context.Context, confirmed bool) error {
	c.mu.Lock()
	if c.state.Mode == ModeCreate {
		c.mu.Unlock()
		return ErrUnsupported
	}
	if err := c.checkEditableLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if !confirmed {
		c.mu.Unlock()
		return models.ErrNotConfirmed
	}
	c.state.Phase = PhaseSubmitting
	c.state.Err = nil
	id := c.state.ID
	c.unlockAndPublish()

	err := c.client.Remove(ctx, id)

	c.mu.Lock()
	if err != nil {
		c.state.Phase = PhaseReady
		c.state.Err = err
		c.unlockAndPublish()
		c.logger.WarnContext(ctx, "delete failed",
			"record_id", id.String(),
			"category", string(models.GetCategory(err)),
			"error", err,
		)
		return err
	}
	c.state.Phase = PhaseSaved
	c.unlockAndPublish()

	c.logger.InfoContext(ctx, "record deleted", "record_id", id.String())
	c.navigator.Navigate(ctx, nav.List())
	return nil
}

// unlockAndPublish must be called with mu held. Observers run after the
// unlock.
func (c *Controller) unlockAndPublish() {
	st := c.state
	observers := c.observers
	c.mu.Unlock()
	for _, o := range observers {
		o(st)
	}
}
