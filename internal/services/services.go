// Package services orchestrates the stores, the cashflow engine, the
// projection cache and change notifications behind the HTTP handlers and
// the worker.
package services

import (
	"context"
	"errors"
)

// ErrValidation marks input rejected before it reaches a store.
var ErrValidation = errors.New("validation failed")

// Publisher announces that a user's events changed. *amqp.Client satisfies it.
type Publisher interface {
	PublishEventsChanged(ctx context.Context, userID, eventID, reason string) error
}

// Invalidator drops cached projections of a user.
type Invalidator interface {
	Invalidate(userID string)
}
