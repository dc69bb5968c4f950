package models

// StatusKind is the discriminator of a RequestStatus.
type StatusKind string

const (
	StatusIdle    StatusKind = "idle"
	StatusLoading StatusKind = "loading"
	StatusError   StatusKind = "error"
)

// Status is the per-controller request status. Exactly one kind holds at a
// time; Message is only set for StatusError.
type Status struct {
	Kind    StatusKind
	Message string
}

func Idle() Status    { return Status{Kind: StatusIdle} }
func Loading() Status { return Status{Kind: StatusLoading} }

// Failed builds an error status. An empty message is replaced so the
// presentation layer always has something to display.
func Failed(message string) Status {
	if message == "" {
		message = "request failed"
	}
	return Status{Kind: StatusError, Message: message}
}

func (s Status) IsIdle() bool    { return s.Kind == StatusIdle }
func (s Status) IsLoading() bool { return s.Kind == StatusLoading }
func (s Status) IsError() bool   { return s.Kind == StatusError }

func (s Status) String() string {
	if s.Kind == StatusError {
		return string(s.Kind) + "(" + s.Message + ")"
	}
	return string(s.Kind)
}
