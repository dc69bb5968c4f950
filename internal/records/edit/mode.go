package edit

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects how the controller treats field changes.
type Mode string

const (
	// ModeCreate drafts a new record and posts it on submit.
	ModeCreate Mode = "create"
	// ModeView shows an existing record read-only.
	ModeView Mode = "view"
	// ModeEdit edits an existing record and replaces it on submit.
	ModeEdit Mode = "edit"
	// ModeAutosave replaces the record on every valid field change.
	ModeAutosave Mode = "autosave"
)

func (m Mode) IsValid() bool {
	switch m {
	case ModeCreate, ModeView, ModeEdit, ModeAutosave:
		return true
	}
	return false
}

func (m Mode) String() string { return string(m) }

// submits reports whether the mode has an explicit submit step.
func (m Mode) submits() bool { return m == ModeCreate || m == ModeEdit }

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("unknown edit mode %q", s)
	}
	return m, nil
}

type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseReady      Phase = "ready"
	PhaseSubmitting Phase = "submitting"
	PhaseSaved      Phase = "saved"
	PhaseFailed     Phase = "failed"
)

// Terminal phases accept no further intents.
func (p Phase) Terminal() bool { return p == PhaseSaved || p == PhaseFailed }

func (p Phase) String() string { return string(p) }

var (
	ErrNotReady    = errors.New("record is not ready for editing")
	ErrTerminal    = errors.New("editor is closed")
	ErrReadOnly    = errors.New("record is read-only in this mode")
	ErrUnsupported = errors.New("operation not available in this mode")
)
