// Package list owns the local snapshot of the record collection and keeps it
// in step with the store after every mutation.
package list

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"recordsync/internal/platform/logger"
	"recordsync/internal/platform/metrics"
	"recordsync/internal/records/models"
	"recordsync/internal/records/nav"
)

// Client is the part of the record client the list needs.
type Client interface {
	List(ctx context.Context) ([]models.Record, error)
	Remove(ctx context.Context, id models.RecordID) error
}

// State is a copy of what the list view renders.
type State struct {
	Snapshot []models.Record
	Status   models.Status
	// Loaded is false until the first successful refresh.
	Loaded bool
}

// Observer is called with a fresh State after every change.
type Observer func(State)

type Controller struct {
	client    Client
	logger    *slog.Logger
	metrics   *metrics.Metrics
	navigator nav.Navigator
	observers []Observer

	mu         sync.Mutex
	state      State
	generation uint64

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

// New builds a controller in the loading state and starts the first refresh
// in the background. Use Wait to block until it lands.
func New(ctx context.Context, client Client, opts ...Option) (*Controller, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	c := &Controller{
		client:    client,
		logger:    logger.Discard(),
		navigator: nav.Discard,
		state: State{
			Snapshot: []models.Record{},
			Status:   models.Loading(),
		},
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

	c.OnRefreshRequested(ctx)
	return c, nil
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyStateLocked()
}

// Wait blocks until every background intent has finished.
func (c *Controller) Wait() {
	_ = c.background.Wait()
}

// Refresh reloads the whole collection. Success replaces the snapshot;
// failure keeps it and moves to the error status. When refreshes overlap,
// only the one started last is applied.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.state.Status = models.Loading()
	c.unlockAndPublish()

	records, err := c.client.List(ctx)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.metrics.IncrementListRefreshes("stale")
		c.logger.DebugContext(ctx, "discarding superseded list refresh", "generation", gen)
		return err
	}
	if err != nil {
		c.state.Status = models.Failed(models.UserMessage(err))
		c.unlockAndPublish()
		c.metrics.IncrementListRefreshes("failed")
		c.logger.WarnContext(ctx, "list refresh failed",
			"category", string(models.GetCategory(err)),
			"error", err,
		)
		return err
	}
	c.state.Snapshot = records
	c.state.Status = models.Idle()
	c.state.Loaded = true
	c.unlockAndPublish()
	c.metrics.IncrementListRefreshes("ok")
	c.logger.DebugContext(ctx, "list refreshed", "count", len(records))
	return nil
}

// DeleteRecord removes one record after the caller has confirmed it, then
// refreshes and signals navigation to the list. On failure the snapshot is
// left as it was.
func (c *Controller) DeleteRecord(ctx context.Context, id models.RecordID, confirmed bool) error {
	if !confirmed {
		return models.ErrNotConfirmed
	}

	if err := c.client.Remove(ctx, id); err != nil {
		c.mu.Lock()
		c.state.Status = models.Failed(models.UserMessage(err))
		c.unlockAndPublish()
		c.logger.WarnContext(ctx, "delete failed",
			"record_id", id.String(),
			"category", string(models.GetCategory(err)),
			"error", err,
		)
		return err
	}

	c.logger.InfoContext(ctx, "record deleted", "record_id", id.String())
	// Refresh failures land in the status; the delete itself succeeded.
	_ = c.Refresh(ctx)
	c.navigator.Navigate(ctx, nav.List())
	return nil
}

// OnRefreshRequested runs Refresh in the background.
func (c *Controller) OnRefreshRequested(ctx context.Context) {
	c.background.Go(func() error {
		_ = c.Refresh(ctx)
		return nil
	})
}

// OnCreateRequested signals navigation to the create view.
func (c *Controller) OnCreateRequested(ctx context.Context) {
	c.navigator.Navigate(ctx, nav.Create())
}

// OnOpenRequested signals navigation to one record's detail view.
func (c *Controller) OnOpenRequested(ctx context.Context, id models.RecordID) {
	c.navigator.Navigate(ctx, nav.Detail(id))
}

// OnDeleteRequested runs DeleteRecord in the background.
func (c *Controller) OnDeleteRequested(ctx context.Context, id models.RecordID, confirmed bool) {
	c.background.Go(func() error {
		if err := c.DeleteRecord(ctx, id, confirmed); err != nil {
			c.logger.DebugContext(ctx, "delete intent ended without removal", "record_id", id.String(), "error", err)
		}
		return nil
	})
}

func (c *Controller) copyStateLocked() State {
	snap := make([]models.Record, len(c.state.Snapshot))
	copy(snap, c.state.Snapshot)
	return State{Snapshot: snap, Status: c.state.Status, Loaded: c.state.Loaded}
}

// unlockAndPublish must be called with mu held. Observers run after the
// unlock.
func (c *Controller) unlockAndPublish() {
	st := c.copyStateLocked()
	observers := c.observers
	c.mu.Unlock()
	for _, o := range observers {
		o(st)
	}
}
