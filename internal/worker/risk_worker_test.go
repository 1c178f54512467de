package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"budgetcal/internal/amqp"
	"budgetcal/internal/auth"
	"budgetcal/internal/core"
	"budgetcal/internal/notify"
	"budgetcal/internal/services"
	"budgetcal/internal/store"
	"budgetcal/internal/store/memory"
)

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []notify.RiskAlert
	err    error
}

func (r *recordingAlerter) SendRiskAlert(_ context.Context, a notify.RiskAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.alerts = append(r.alerts, a)
	return nil
}

func (r *recordingAlerter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

func newProjector(t *testing.T, st store.Store) *services.ProjectionService {
	t.Helper()
	svc := services.NewProjectionService(st, nil, core.Settings{ForecastDays: 10}, nil)
	svc.SetClock(func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC) })
	return svc
}

func seed(t *testing.T, st *memory.Store, uid string, cents int64) {
	t.Helper()
	_, err := st.CreateEvent(context.Background(), core.Event{UserID: uid, Date: "2025-01-01", Amount: core.Money{Cents: cents}})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestRiskWorker_SweepAlertsOnce(t *testing.T) {
	st := memory.New()
	seed(t, st, "broke@example.com", -5000)
	seed(t, st, "fine@example.com", 5000)
	seed(t, st, "anonymous", -100)

	alerter := &recordingAlerter{}
	w := NewRiskWorker(newProjector(t, st), st, Config{
		Concurrency: 2,
		Alerter:     alerter,
		Directory:   auth.DevAuth{},
	})

	res, err := w.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res.Users != 3 || res.AtRisk != 2 || res.Alerted != 1 || res.Failed != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if alerter.alerts[0].To != "broke@example.com" || alerter.alerts[0].Currency != core.DefaultCurrency {
		t.Errorf("unexpected alert %+v", alerter.alerts[0])
	}
	if got := alerter.alerts[0].Days[0].Date.String(); got != "2025-01-01" {
		t.Errorf("first risk day = %s", got)
	}

	if _, err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if alerter.count() != 1 {
		t.Errorf("alert repeated: %d alerts", alerter.count())
	}
}

func TestRiskWorker_HandleEventsChanged(t *testing.T) {
	st := memory.New()
	seed(t, st, "u@example.com", 1000)

	alerter := &recordingAlerter{}
	w := NewRiskWorker(newProjector(t, st), st, Config{Alerter: alerter, Directory: auth.DevAuth{}})
	msg := amqp.NewEventsChangedMessage("u@example.com", "", amqp.ReasonEventCreated)

	if err := w.HandleEventsChanged(context.Background(), msg); err != nil {
		t.Fatalf("HandleEventsChanged: %v", err)
	}
	if alerter.count() != 0 {
		t.Fatal("no alert expected while solvent")
	}

	seed(t, st, "u@example.com", -3000)
	if err := w.HandleEventsChanged(context.Background(), msg); err != nil {
		t.Fatalf("HandleEventsChanged: %v", err)
	}
	if alerter.count() != 1 {
		t.Fatalf("expected one alert, got %d", alerter.count())
	}
}

func TestRiskWorker_AlertFailureIsReported(t *testing.T) {
	st := memory.New()
	seed(t, st, "u@example.com", -1)

	boom := errors.New("smtp down")
	w := NewRiskWorker(newProjector(t, st), st, Config{Alerter: &recordingAlerter{err: boom}, Directory: auth.DevAuth{}})

	if _, err := w.Check(context.Background(), "u@example.com"); !errors.Is(err, boom) {
		t.Fatalf("expected alert error, got %v", err)
	}
	res, err := w.Sweep(context.Background())
	if err != nil || res.Failed != 1 {
		t.Fatalf("Sweep = %+v, %v", res, err)
	}
}

func TestRiskWorker_ListUsersError(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := store.NewMockUserLister(ctrl)
	users.EXPECT().ListUsers(gomock.Any()).Return(nil, errors.New("offline"))

	w := NewRiskWorker(newProjector(t, memory.New()), users, Config{})
	if _, err := w.Sweep(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRiskWorker_Schedule(t *testing.T) {
	w := NewRiskWorker(newProjector(t, memory.New()), memory.New(), Config{})

	if _, err := w.Schedule(context.Background(), "not a cron spec"); err == nil {
		t.Fatal("expected invalid spec error")
	}
	c, err := w.Schedule(context.Background(), "0 7 * * *")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Errorf("entries = %d", len(c.Entries()))
	}
	<-c.Stop().Done()
}
