package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"budgetcal/internal/config"
	"budgetcal/internal/core"
	"budgetcal/internal/storage"
	"budgetcal/internal/store/memory"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: Memory}, false},
		{"memory seed without user", Config{Type: Memory, SeedFile: "events.json"}, true},
		{"sqlite", Config{Type: SQLite, SQLiteDBPath: "data/x.db"}, false},
		{"sqlite without path", Config{Type: SQLite}, true},
		{"firestore without project", Config{Type: Firestore}, true},
		{"firestore", Config{Type: Firestore, FirestoreProjectID: "demo"}, false},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	got, err := FromAppConfig(&config.Config{
		DataBackend:        "firestore",
		FirestoreProjectID: "demo",
		CredentialsFile:    "sa.json",
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if got.Type != Firestore || got.FirestoreProjectID != "demo" || got.CredentialsFile != "sa.json" {
		t.Errorf("unexpected config %+v", got)
	}
}

func TestFactory_Create(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	t.Run("memory", func(t *testing.T) {
		res, err := f.Create(ctx, Config{Type: Memory})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, ok := res.Store.(*memory.Store); !ok {
			t.Errorf("store is %T", res.Store)
		}
		if err := res.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})

	t.Run("memory seeded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "events.json")
		if err := os.WriteFile(path, []byte(`[{"date":"2025-01-01","amount":10}]`), 0o644); err != nil {
			t.Fatal(err)
		}
		res, err := f.Create(ctx, Config{Type: Memory, SeedFile: path, SeedUserID: "u"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		events, _ := res.Store.ListEvents(ctx, "u")
		if len(events) != 1 {
			t.Errorf("seeded events = %d", len(events))
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		res, err := f.Create(ctx, Config{Type: SQLite, SQLiteDBPath: filepath.Join(t.TempDir(), "db", "b.db")})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		defer res.Close()
		if _, ok := res.Store.(*storage.SQLiteRepository); !ok {
			t.Errorf("store is %T", res.Store)
		}
		if err := res.Ping(ctx); err != nil {
			t.Errorf("Ping: %v", err)
		}
		if _, err := res.Store.CreateEvent(ctx, core.Event{UserID: "u", Date: "2025-01-01"}); err != nil {
			t.Errorf("CreateEvent: %v", err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := f.Create(ctx, Config{Type: SQLite}); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestResultCloseNil(t *testing.T) {
	var r *Result
	if err := r.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}
