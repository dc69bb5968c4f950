// Package nav carries the navigate signal controllers emit after a
// successful create, edit, or delete. Routing itself belongs to the
// presentation layer.
package nav

import (
	"context"
	"fmt"
	"sync"

	"recordsync/internal/records/models"
)

type View string

const (
	ViewList   View = "list"
	ViewDetail View = "detail"
	ViewEdit   View = "edit"
	ViewCreate View = "create"
)

// Destination is where the presentation layer should go next. ID is empty
// for the list and create views.
type Destination struct {
	View View
	ID   models.RecordID
}

func List() Destination                     { return Destination{View: ViewList} }
func Create() Destination                   { return Destination{View: ViewCreate} }
func Detail(id models.RecordID) Destination { return Destination{View: ViewDetail, ID: id} }
func Edit(id models.RecordID) Destination   { return Destination{View: ViewEdit, ID: id} }

func (d Destination) String() string {
	if d.ID.IsZero() {
		return string(d.View)
	}
	return fmt.Sprintf("%s/%s", d.View, d.ID)
}

type Navigator interface {
	Navigate(ctx context.Context, dest Destination)
}

// Func adapts a plain function to a Navigator.
type Func func(ctx context.Context, dest Destination)

func (f Func) Navigate(ctx context.Context, dest Destination) { f(ctx, dest) }

// Discard ignores every navigate signal.
var Discard Navigator = Func(func(context.Context, Destination) {})

// Recorder keeps every destination it is sent. Safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	dest []Destination
}

func (r *Recorder) Navigate(_ context.Context, dest Destination) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dest = append(r.dest, dest)
}

// Destinations returns a copy of what has been recorded so far.
func (r *Recorder) Destinations() []Destination {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Destination, len(r.dest))
	copy(out, r.dest)
	return out
}

// Last returns the most recent destination, if any.
func (r *Recorder) Last() (Destination, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.dest) == 0 {
		return Destination{}, false
	}
	return r.dest[len(r.dest)-1], true
}
