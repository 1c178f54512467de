package backend

import (
	"context"
	"fmt"
	"log/slog"

	"budgetcal/internal/storage"
	"budgetcal/internal/store/firestore"
	"budgetcal/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// Create validates config and opens the selected store.
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLite:
		return f.createSQLite(config)
	case Firestore:
		return f.createFirestore(ctx, config)
	case Memory:
		return f.createMemory(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLite(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Store:   repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createFirestore(ctx context.Context, config Config) (*Result, error) {
	fs, err := firestore.New(ctx, config.FirestoreProjectID, config.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("initialize Firestore client: %w", err)
	}

	f.logger.Info("Initialized Firestore backend",
		"project_id", config.FirestoreProjectID,
		"credentials_file", config.CredentialsFile != "")

	return &Result{
		Store:   fs,
		Cleanup: fs.Close,
	}, nil
}

func (f *DefaultFactory) createMemory(config Config) (*Result, error) {
	if config.SeedFile == "" {
		f.logger.Info("Initialized memory backend")
		return &Result{Store: memory.New()}, nil
	}

	st, err := memory.NewFromFile(config.SeedFile, config.SeedUserID)
	if err != nil {
		return nil, fmt.Errorf("load memory seed: %w", err)
	}
	f.logger.Info("Initialized memory backend",
		"seed_file", config.SeedFile,
		"user_id", config.SeedUserID)
	return &Result{Store: st}, nil
}
