package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"budgetcal/internal/cache"
	"budgetcal/internal/cashflow"
	"budgetcal/internal/core"
	"budgetcal/internal/store"
)

type fakePublisher struct {
	calls   []string
	failing bool
}

func (f *fakePublisher) PublishEventsChanged(_ context.Context, userID, eventID, reason string) error {
	f.calls = append(f.calls, userID+"/"+eventID+"/"+reason)
	if f.failing {
		return errors.New("broker down")
	}
	return nil
}

type fakeInvalidator struct{ users []string }

func (f *fakeInvalidator) Invalidate(userID string) { f.users = append(f.users, userID) }

func TestEventService_Create(t *testing.T) {
	tests := []struct {
		name        string
		input       core.Event
		setupMock   func(m *store.MockEventStore)
		failPublish bool
		wantErr     error
		wantCents   int64
		wantCalls   int
	}{
		{
			name:  "expense stored negative",
			input: core.Event{Title: "Rent", Date: "2025-01-01", Amount: core.Money{Cents: 120000}, Type: core.TypeExpense, Recurring: "Monthly"},
			setupMock: func(m *store.MockEventStore) {
				m.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e core.Event) (core.Event, error) {
						if e.UserID != "user-1" {
							t.Errorf("expected uid user-1, got %q", e.UserID)
						}
						if e.Recurring != core.Monthly {
							t.Errorf("expected normalized recurrence, got %q", e.Recurring)
						}
						e.ID = "ev-1"
						return e, nil
					})
			},
			wantCents: -120000,
			wantCalls: 1,
		},
		{
			name:  "hourly income computed",
			input: core.Event{Date: "2025-01-03", Type: core.TypeIncome, Hours: 7.5, Rate: 20},
			setupMock: func(m *store.MockEventStore) {
				m.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e core.Event) (core.Event, error) {
						if e.Title != "Income" {
							t.Errorf("expected default title, got %q", e.Title)
						}
						e.ID = "ev-2"
						return e, nil
					})
			},
			wantCents: 15000,
			wantCalls: 1,
		},
		{
			name:      "malformed date rejected",
			input:     core.Event{Date: "01/02/2025", Amount: core.Money{Cents: 100}},
			setupMock: func(m *store.MockEventStore) {},
			wantErr:   ErrValidation,
		},
		{
			name:      "end before start rejected",
			input:     core.Event{Date: "2025-02-01", RecurringEnds: "2025-01-01", Recurring: core.Weekly},
			setupMock: func(m *store.MockEventStore) {},
			wantErr:   ErrValidation,
		},
		{
			name:  "publish failure does not fail the write",
			input: core.Event{Date: "2025-01-01", Amount: core.Money{Cents: 500}},
			setupMock: func(m *store.MockEventStore) {
				m.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e core.Event) (core.Event, error) {
						e.ID = "ev-3"
						return e, nil
					})
			},
			failPublish: true,
			wantCents:   500,
			wantCalls:   1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockStore := store.NewMockEventStore(ctrl)
			tc.setupMock(mockStore)
			pub := &fakePublisher{failing: tc.failPublish}
			inv := &fakeInvalidator{}
			svc := NewEventService(mockStore, pub, inv, nil)

			got, err := svc.Create(context.Background(), "user-1", tc.input)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if len(pub.calls) != 0 || len(inv.users) != 0 {
					t.Errorf("rejected input must not publish or invalidate")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Amount.Cents != tc.wantCents {
				t.Errorf("amount = %d, want %d", got.Amount.Cents, tc.wantCents)
			}
			if len(pub.calls) != tc.wantCalls {
				t.Errorf("publish calls = %v", pub.calls)
			}
			if len(inv.users) != 1 || inv.users[0] != "user-1" {
				t.Errorf("invalidations = %v", inv.users)
			}
		})
	}
}

func TestEventService_UpdateAndDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockEventStore(ctrl)
	pub := &fakePublisher{}
	svc := NewEventService(mockStore, pub, nil, nil)
	ctx := context.Background()

	mockStore.EXPECT().UpdateEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e core.Event) (core.Event, error) {
			if e.ID != "ev-1" || e.UserID != "user-1" {
				t.Errorf("update keyed on %q/%q", e.UserID, e.ID)
			}
			return e, nil
		})
	if _, err := svc.Update(ctx, "user-1", "ev-1", core.Event{ID: "spoofed", Date: "2025-01-01"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	mockStore.EXPECT().UpdateEvent(gomock.Any(), gomock.Any()).Return(core.Event{}, store.ErrNotFound)
	if _, err := svc.Update(ctx, "user-1", "missing", core.Event{Date: "2025-01-01"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mockStore.EXPECT().DeleteEvent(gomock.Any(), "user-1", "ev-1").Return(nil)
	if err := svc.Delete(ctx, "user-1", "ev-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	mockStore.EXPECT().DeleteEvent(gomock.Any(), "user-1", "ev-9").Return(store.ErrNotFound)
	if err := svc.Delete(ctx, "user-1", "ev-9"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	want := []string{"user-1/ev-1/event_updated", "user-1/ev-1/event_deleted"}
	if len(pub.calls) != len(want) || pub.calls[0] != want[0] || pub.calls[1] != want[1] {
		t.Errorf("publish calls = %v, want %v", pub.calls, want)
	}
}

func rentEvents() []core.Event {
	return []core.Event{
		{ID: "rent", UserID: "user-1", Title: "Rent", Date: "2025-01-01", Amount: core.Money{Cents: -120000}, Recurring: core.Monthly},
		{ID: "bad", UserID: "user-1", Date: "not-a-date", Amount: core.Money{Cents: 100}},
	}
}

func TestProjectionService_ProjectCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	c := cache.NewLRUCache[cashflow.Projection](10, time.Minute)
	svc := NewProjectionService(mockStore, c, core.Settings{ForecastDays: 30}, nil)
	ctx := context.Background()
	req := ProjectionRequest{Today: core.MustParseDate("2025-01-01")}

	mockStore.EXPECT().GetSettings(gomock.Any(), "user-1").Return(core.Settings{}, store.ErrNotFound).Times(3)
	mockStore.EXPECT().ListEvents(gomock.Any(), "user-1").Return(rentEvents(), nil).Times(2)

	p, hit, err := svc.Project(ctx, "user-1", req)
	if err != nil || hit {
		t.Fatalf("first Project: hit=%v err=%v", hit, err)
	}
	if len(p.Balances) != cashflow.DefaultHistoryDays || len(p.Forecast) != 30 {
		t.Errorf("segments = %d/%d", len(p.Balances), len(p.Forecast))
	}
	if p.Balances[0].Balance.Cents != -120000 {
		t.Errorf("first balance = %d", p.Balances[0].Balance.Cents)
	}
	if len(p.Warnings) != 1 || p.Warnings[0].EventID != "bad" {
		t.Errorf("warnings = %+v", p.Warnings)
	}

	if _, hit, _ := svc.Project(ctx, "user-1", req); !hit {
		t.Error("second Project should hit the cache")
	}

	svc.Invalidate("user-1")
	if _, hit, _ := svc.Project(ctx, "user-1", req); hit {
		t.Error("Project after invalidation should miss")
	}
}

func TestProjectionService_InvalidationDuringProjection(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	c := cache.NewLRUCache[cashflow.Projection](10, time.Minute)
	svc := NewProjectionService(mockStore, c, core.Settings{ForecastDays: 30}, nil)
	ctx := context.Background()
	req := ProjectionRequest{Today: core.MustParseDate("2025-01-01")}

	mockStore.EXPECT().GetSettings(gomock.Any(), "user-1").Return(core.Settings{}, store.ErrNotFound).AnyTimes()
	gomock.InOrder(
		// a write lands after the snapshot was read
		mockStore.EXPECT().ListEvents(gomock.Any(), "user-1").
			DoAndReturn(func(context.Context, string) ([]core.Event, error) {
				svc.Invalidate("user-1")
				return rentEvents(), nil
			}),
		mockStore.EXPECT().ListEvents(gomock.Any(), "user-1").Return(rentEvents(), nil),
	)

	if _, hit, err := svc.Project(ctx, "user-1", req); err != nil || hit {
		t.Fatalf("first Project: hit=%v err=%v", hit, err)
	}
	if _, hit, err := svc.Project(ctx, "user-1", req); err != nil || hit {
		t.Fatalf("projection computed across an invalidation was cached: hit=%v err=%v", hit, err)
	}
	if _, hit, _ := svc.Project(ctx, "user-1", req); !hit {
		t.Error("third Project should hit the cache")
	}
}

func TestProjectionService_UsesStoredForecastDays(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := NewProjectionService(mockStore, nil, core.Settings{}, nil)

	mockStore.EXPECT().GetSettings(gomock.Any(), "u").Return(core.Settings{ForecastDays: 90}, nil)
	mockStore.EXPECT().ListEvents(gomock.Any(), "u").Return(nil, nil)

	p, _, err := svc.Project(context.Background(), "u", ProjectionRequest{Today: core.MustParseDate("2025-03-01")})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(p.Forecast) != 90 {
		t.Errorf("forecast length = %d, want 90", len(p.Forecast))
	}
}

func TestProjectionService_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := NewProjectionService(mockStore, nil, core.Settings{}, nil)

	boom := errors.New("boom")
	mockStore.EXPECT().ListEvents(gomock.Any(), "u").Return(nil, boom)

	_, _, err := svc.Project(context.Background(), "u", ProjectionRequest{Today: core.MustParseDate("2025-03-01"), ForecastDays: 10})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestProjectionService_Settings(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := NewProjectionService(mockStore, nil, core.Settings{Currency: "USD"}, nil)
	ctx := context.Background()

	mockStore.EXPECT().GetSettings(gomock.Any(), "u").Return(core.Settings{}, store.ErrNotFound).AnyTimes()

	got, err := svc.Settings(ctx, "u")
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	want := core.Settings{Currency: "USD", ForecastDays: core.DefaultForecastDays, Theme: core.DefaultTheme}
	if got != want {
		t.Errorf("Settings = %+v, want %+v", got, want)
	}

	if _, err := svc.PutSettings(ctx, "u", core.Settings{Theme: "neon"}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	mockStore.EXPECT().PutSettings(gomock.Any(), "u", core.Settings{Currency: "USD", ForecastDays: 120, Theme: "dark"}).Return(nil)
	saved, err := svc.PutSettings(ctx, "u", core.Settings{ForecastDays: 120, Theme: "dark"})
	if err != nil || saved.ForecastDays != 120 {
		t.Fatalf("PutSettings = %+v, %v", saved, err)
	}
}

func TestProjectionService_BalancesAndSummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := NewProjectionService(mockStore, nil, core.Settings{}, nil)
	svc.SetClock(func() time.Time { return time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC) })
	ctx := context.Background()

	events := []core.Event{
		{ID: "pay", Date: "2025-01-15", Amount: core.Money{Cents: 200000}, Recurring: core.Monthly},
		{ID: "rent", Date: "2025-02-01", Amount: core.Money{Cents: -90000}},
	}
	mockStore.EXPECT().ListEvents(gomock.Any(), "u").Return(events, nil).AnyTimes()

	from, to := svc.CurrentMonth()
	if from.String() != "2025-02-01" || to.String() != "2025-02-28" {
		t.Fatalf("CurrentMonth = %s..%s", from, to)
	}

	series, err := svc.Balances(ctx, "u", from, to, core.Money{})
	if err != nil {
		t.Fatalf("Balances: %v", err)
	}
	if len(series) != 28 {
		t.Fatalf("len = %d", len(series))
	}
	if series[0].Balance.Cents != -90000 || series[27].Balance.Cents != 110000 {
		t.Errorf("balances = %d .. %d", series[0].Balance.Cents, series[27].Balance.Cents)
	}

	if _, err := svc.Balances(ctx, "u", to, from, core.Money{}); !errors.Is(err, cashflow.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
	far := from.AddDays(MaxRangeDays)
	if _, err := svc.Balances(ctx, "u", from, far, core.Money{}); !errors.Is(err, cashflow.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange for %d days, got %v", MaxRangeDays+1, err)
	}
	if _, err := svc.Occurrences(ctx, "u", from, far); !errors.Is(err, cashflow.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange for occurrences, got %v", err)
	}
	if series, err := svc.Balances(ctx, "u", from, far.AddDays(-1), core.Money{}); err != nil || len(series) != MaxRangeDays {
		t.Errorf("Balances at the cap = %d points, %v", len(series), err)
	}

	sum, err := svc.Summary(ctx, "u", from, to)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Income.Cents != 0 || sum.Expense.Cents != 90000 {
		t.Errorf("summary = %+v", sum)
	}

	exp, err := svc.Occurrences(ctx, "u", from, to)
	if err != nil || len(exp.Occurrences) != 2 {
		t.Errorf("Occurrences = %+v, %v", exp.Occurrences, err)
	}
}

func TestGoalService(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := NewGoalService(mockStore, mockStore, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u", core.Goal{Name: "  "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	goal := core.Goal{ID: "g1", UserID: "u", Name: "Trip", Target: core.Money{Cents: 100000}, Category: "savings"}
	mockStore.EXPECT().ListGoals(gomock.Any(), "u").Return([]core.Goal{goal}, nil)
	mockStore.EXPECT().ListEvents(gomock.Any(), "u").Return([]core.Event{
		{Date: "2025-01-01", Amount: core.Money{Cents: 25000}, Category: "Savings"},
		{Date: "2025-01-02", Amount: core.Money{Cents: 99999}, Category: "Salary"},
	}, nil)

	progress, err := svc.Progress(ctx, "u")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if len(progress) != 1 || progress[0].Saved.Cents != 25000 || progress[0].Percent != 25 {
		t.Errorf("progress = %+v", progress)
	}

	mockStore.EXPECT().ListGoals(gomock.Any(), "empty").Return(nil, nil)
	if p, err := svc.Progress(ctx, "empty"); err != nil || len(p) != 0 {
		t.Errorf("empty progress = %v, %v", p, err)
	}
}
