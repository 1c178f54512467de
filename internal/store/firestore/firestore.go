// Package firestore stores events, goals and settings in Cloud Firestore
// using the layout of the web client: a top-level "events" collection keyed
// by a uid field, goals under users/{uid}/goals and settings as a field of
// the users/{uid} document.
package firestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"budgetcal/internal/core"
	"budgetcal/internal/store"
)

const (
	eventsCollection = "events"
	usersCollection  = "users"
	goalsCollection  = "goals"
	settingsField    = "settings"
)

// Store implements store.Store on Firestore.
type Store struct {
	client *firestore.Client
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

// New opens a Firestore client for projectID. credentialsFile may be empty to
// use application default credentials.
func New(ctx context.Context, projectID, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return NewWithClient(client), nil
}

func NewWithClient(client *firestore.Client) *Store {
	return &Store{client: client, now: time.Now}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) ListEvents(ctx context.Context, userID string) ([]core.Event, error) {
	docs, err := s.client.Collection(eventsCollection).Where("uid", "==", userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	out := make([]core.Event, 0, len(docs))
	for _, doc := range docs {
		out = append(out, eventFromData(doc.Ref.ID, doc.Data()))
	}
	store.SortEvents(out)
	return out, nil
}

func (s *Store) GetEvent(ctx context.Context, userID, id string) (core.Event, error) {
	doc, err := s.client.Collection(eventsCollection).Doc(id).Get(ctx)
	if err != nil {
		return core.Event{}, notFound(err, "get event")
	}
	e := eventFromData(doc.Ref.ID, doc.Data())
	if e.UserID != userID {
		return core.Event{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) CreateEvent(ctx context.Context, e core.Event) (core.Event, error) {
	now := s.now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	ref := s.client.Collection(eventsCollection).NewDoc()
	if e.ID != "" {
		ref = s.client.Collection(eventsCollection).Doc(e.ID)
	}
	if _, err := ref.Create(ctx, toEventDoc(e)); err != nil {
		return core.Event{}, fmt.Errorf("create event: %w", err)
	}
	e.ID = ref.ID
	return e, nil
}

func (s *Store) UpdateEvent(ctx context.Context, e core.Event) (core.Event, error) {
	old, err := s.GetEvent(ctx, e.UserID, e.ID)
	if err != nil {
		return core.Event{}, err
	}
	e.CreatedAt = old.CreatedAt
	e.UpdatedAt = s.now().UTC()
	if _, err := s.client.Collection(eventsCollection).Doc(e.ID).Set(ctx, toEventDoc(e)); err != nil {
		return core.Event{}, fmt.Errorf("update event: %w", err)
	}
	return e, nil
}

func (s *Store) DeleteEvent(ctx context.Context, userID, id string) error {
	if _, err := s.GetEvent(ctx, userID, id); err != nil {
		return err
	}
	if _, err := s.client.Collection(eventsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *Store) goals(userID string) *firestore.CollectionRef {
	return s.client.Collection(usersCollection).Doc(userID).Collection(goalsCollection)
}

func (s *Store) ListGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	docs, err := s.goals(userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]core.Goal, 0, len(docs))
	for _, doc := range docs {
		out = append(out, goalFromData(userID, doc.Ref.ID, doc.Data()))
	}
	store.SortGoals(out)
	return out, nil
}

func (s *Store) GetGoal(ctx context.Context, userID, id string) (core.Goal, error) {
	doc, err := s.goals(userID).Doc(id).Get(ctx)
	if err != nil {
		return core.Goal{}, notFound(err, "get goal")
	}
	return goalFromData(userID, doc.Ref.ID, doc.Data()), nil
}

func (s *Store) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.CreatedAt = s.now().UTC()
	ref := s.goals(g.UserID).NewDoc()
	if g.ID != "" {
		ref = s.goals(g.UserID).Doc(g.ID)
	}
	if _, err := ref.Create(ctx, toGoalDoc(g)); err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	g.ID = ref.ID
	return g, nil
}

func (s *Store) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	old, err := s.GetGoal(ctx, g.UserID, g.ID)
	if err != nil {
		return core.Goal{}, err
	}
	g.CreatedAt = old.CreatedAt
	if _, err := s.goals(g.UserID).Doc(g.ID).Set(ctx, toGoalDoc(g)); err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	return g, nil
}

func (s *Store) DeleteGoal(ctx context.Context, userID, id string) error {
	if _, err := s.GetGoal(ctx, userID, id); err != nil {
		return err
	}
	if _, err := s.goals(userID).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}

func (s *Store) GetSettings(ctx context.Context, userID string) (core.Settings, error) {
	doc, err := s.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		return core.Settings{}, notFound(err, "get settings")
	}
	raw, ok := doc.Data()[settingsField].(map[string]any)
	if !ok {
		return core.Settings{}, store.ErrNotFound
	}
	return core.Settings{
		Currency:     str(raw, "currency"),
		ForecastDays: integer(raw, "forecastDays"),
		Theme:        str(raw, "theme"),
	}, nil
}

func (s *Store) PutSettings(ctx context.Context, userID string, st core.Settings) error {
	_, err := s.client.Collection(usersCollection).Doc(userID).Set(ctx, map[string]any{
		settingsField: map[string]any{
			"currency":     st.Currency,
			"forecastDays": st.ForecastDays,
			"theme":        st.Theme,
		},
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	docs, err := s.client.Collection(eventsCollection).Select("uid").Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, doc := range docs {
		uid := str(doc.Data(), "uid")
		if _, ok := seen[uid]; ok || uid == "" {
			continue
		}
		seen[uid] = struct{}{}
		out = append(out, uid)
	}
	sort.Strings(out)
	return out, nil
}

func notFound(err error, op string) error {
	if status.Code(err) == codes.NotFound {
		return store.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
