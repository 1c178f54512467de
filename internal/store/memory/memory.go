package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"budgetcal/internal/core"
	"budgetcal/internal/store"
)

// Store keeps everything in process memory. It is the default backend for
// development and the fixture for handler tests.
type Store struct {
	mu       sync.Mutex
	events   map[string]core.Event
	goals    map[string]core.Goal
	settings map[string]core.Settings
	now      func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		events:   map[string]core.Event{},
		goals:    map[string]core.Goal{},
		settings: map[string]core.Settings{},
		now:      time.Now,
	}
}

// NewFromFile seeds the store with a JSON array of events. A missing file
// yields an empty store.
func NewFromFile(path, userID string) (*Store, error) {
	s := New()
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var events []core.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for _, e := range events {
		if e.UserID == "" {
			e.UserID = userID
		}
		if _, err := s.CreateEvent(context.Background(), e); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) ListEvents(_ context.Context, userID string) ([]core.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Event, 0)
	for _, e := range s.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	store.SortEvents(out)
	return out, nil
}

func (s *Store) GetEvent(_ context.Context, userID, id string) (core.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.UserID != userID {
		return core.Event{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) CreateEvent(_ context.Context, e core.Event) (core.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := s.now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	s.events[e.ID] = e
	return e, nil
}

func (s *Store) UpdateEvent(_ context.Context, e core.Event) (core.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.events[e.ID]
	if !ok || old.UserID != e.UserID {
		return core.Event{}, store.ErrNotFound
	}
	e.CreatedAt = old.CreatedAt
	e.UpdatedAt = s.now().UTC()
	s.events[e.ID] = e
	return e, nil
}

func (s *Store) DeleteEvent(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *Store) ListGoals(_ context.Context, userID string) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Goal, 0)
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	store.SortGoals(out)
	return out, nil
}

func (s *Store) GetGoal(_ context.Context, userID, id string) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return core.Goal{}, store.ErrNotFound
	}
	return g, nil
}

func (s *Store) CreateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.CreatedAt = s.now().UTC()
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) UpdateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.goals[g.ID]
	if !ok || old.UserID != g.UserID {
		return core.Goal{}, store.ErrNotFound
	}
	g.CreatedAt = old.CreatedAt
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) DeleteGoal(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}

func (s *Store) GetSettings(_ context.Context, userID string) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.settings[userID]
	if !ok {
		return core.Settings{}, store.ErrNotFound
	}
	return st, nil
}

func (s *Store) PutSettings(_ context.Context, userID string, st core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[userID] = st
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, e := range s.events {
		if _, ok := seen[e.UserID]; ok || e.UserID == "" {
			continue
		}
		seen[e.UserID] = struct{}{}
		out = append(out, e.UserID)
	}
	sort.Strings(out)
	return out, nil
}
