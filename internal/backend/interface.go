package backend

import (
	"context"

	"budgetcal/internal/store"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// Result is a ready store plus its health probe and cleanup. Ping and
// Cleanup may be nil.
type Result struct {
	Store   store.Store
	Ping    func(context.Context) error
	Cleanup CleanupFunc
}

// Close runs Cleanup if there is one.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Firestore specific
	FirestoreProjectID string
	CredentialsFile    string

	// Memory specific: optional JSON export loaded for SeedUserID.
	SeedFile   string
	SeedUserID string
}

// Type names a storage backend.
type Type string

const (
	Memory    Type = "memory"
	SQLite    Type = "sqlite"
	Firestore Type = "firestore"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Firestore:
		return true
	default:
		return false
	}
}
