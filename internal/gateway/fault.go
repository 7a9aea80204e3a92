package gateway

import (
	"errors"
	"fmt"

	"github.com/desertthunder/continuum/internal/shared"
)

// Kind names the gateway operation a [Fault] came from.
type Kind int

const (
	KindAuth Kind = iota + 1
	KindSource
	KindEnrichment
	KindSolve
	KindSave
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindSource:
		return "source"
	case KindEnrichment:
		return "enrichment"
	case KindSolve:
		return "solve"
	case KindSave:
		return "save"
	default:
		return "unknown"
	}
}

// Fault is the error returned by every [Gateway] operation.
//
// Message is the backend's error text when it sent one, otherwise the transport error text.
// Status is the HTTP status code, or 0 when no response was received.
type Fault struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (f *Fault) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("%s failed (status %d): %s", f.Kind, f.Status, f.Message)
	}
	return fmt.Sprintf("%s failed: %s", f.Kind, f.Message)
}

// Unwrap exposes [shared.ErrAPIRequest] and the underlying transport error, if any.
func (f *Fault) Unwrap() []error {
	if f.Err != nil {
		return []error{shared.ErrAPIRequest, f.Err}
	}
	return []error{shared.ErrAPIRequest}
}

// KindOf returns the kind of the first [Fault] in err's chain, or 0.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}

// IsKind reports whether err is a [Fault] of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the human-readable message of a [Fault], or err.Error() for other errors.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var f *Fault
	if errors.As(err, &f) {
		return f.Message
	}
	return err.Error()
}

func transportFault(kind Kind, err error) *Fault {
	return &Fault{Kind: kind, Message: err.Error(), Err: err}
}
