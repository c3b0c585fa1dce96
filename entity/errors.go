package entity

import (
	"errors"
	"fmt"
	"strings"
)

var ErrConcurrentUpdate = errors.New("event was modified concurrently")

type FieldProblem struct {
	Field   string `json:"field"`
	Problem string `json:"problem"`
}

type ValidationError struct {
	Problems []FieldProblem
}

func (e ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Field+" "+p.Problem)
	}
	return "invalid event: " + strings.Join(parts, "; ")
}

type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("event %s not found", e.ID)
}

type InvalidStateError struct {
	Status Status
	Action string
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s event in status %s", e.Action, e.Status)
}

type ForbiddenError struct {
	PrincipalID string
	Action      string
}

func (e ForbiddenError) Error() string {
	return fmt.Sprintf("principal %q is not allowed to %s", e.PrincipalID, e.Action)
}

// NotificationDeliveryWarning reports that a committed mutation could not be
// propagated to the broker. It never fails the operation that produced it.
type NotificationDeliveryWarning struct {
	MessageType string
	Err         error
}

func (w NotificationDeliveryWarning) Error() string {
	return fmt.Sprintf("delivering %s: %s", w.MessageType, w.Err)
}

func (w NotificationDeliveryWarning) Unwrap() error {
	return w.Err
}

// Deferred reports whether the message was parked for later relay.
func (w NotificationDeliveryWarning) Deferred() bool {
	var te TransportError
	return errors.As(w.Err, &te) && te.Deferred
}

type TransportError struct {
	Op       string
	Deferred bool
	Err      error
}

func (e TransportError) Error() string {
	if e.Deferred {
		return fmt.Sprintf("%s (deferred to outbox): %s", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e TransportError) Unwrap() error {
	return e.Err
}

// ParseError marks an inbound payload that can never be handled.
type ParseError struct {
	Reason string
	Err    error
}

func (e ParseError) Error() string {
	if e.Err == nil {
		return "malformed message: " + e.Reason
	}
	return fmt.Sprintf("malformed message: %s: %s", e.Reason, e.Err)
}

func (e ParseError) Unwrap() error {
	return e.Err
}
