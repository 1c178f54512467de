// Package store declares the persistence ports the services depend on.
// Adapters live in subpackages (memory, firestore) and in internal/storage
// (SQLite).
package store

import (
	"context"
	"errors"

	"budgetcal/internal/core"
)

//go:generate mockgen -source=ports.go -destination=ports_mock.go -package=store

// ErrNotFound is returned when a record does not exist or belongs to another user.
var ErrNotFound = errors.New("not found")

// Ports for outbound adapters. Every call is scoped to one user.
type (
	EventStore interface {
		ListEvents(ctx context.Context, userID string) ([]core.Event, error)
		GetEvent(ctx context.Context, userID, id string) (core.Event, error)
		// CreateEvent assigns ID and timestamps and returns the stored event.
		CreateEvent(ctx context.Context, e core.Event) (core.Event, error)
		UpdateEvent(ctx context.Context, e core.Event) (core.Event, error)
		DeleteEvent(ctx context.Context, userID, id string) error
	}

	GoalStore interface {
		ListGoals(ctx context.Context, userID string) ([]core.Goal, error)
		GetGoal(ctx context.Context, userID, id string) (core.Goal, error)
		CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		DeleteGoal(ctx context.Context, userID, id string) error
	}

	// SettingsStore returns ErrNotFound for users who never saved settings.
	SettingsStore interface {
		GetSettings(ctx context.Context, userID string) (core.Settings, error)
		PutSettings(ctx context.Context, userID string, s core.Settings) error
	}

	// UserLister enumerates users that own at least one event.
	UserLister interface {
		ListUsers(ctx context.Context) ([]string, error)
	}

	Store interface {
		EventStore
		GoalStore
		SettingsStore
		UserLister
	}
)
