// Package worker recomputes projections outside the request path and sends
// low-balance alerts, both on change notifications and on a schedule.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"budgetcal/internal/amqp"
	"budgetcal/internal/auth"
	"budgetcal/internal/cashflow"
	"budgetcal/internal/core"
	"budgetcal/internal/log"
	"budgetcal/internal/notify"
	"budgetcal/internal/services"
	"budgetcal/internal/store"
)

// Projector is the part of services.ProjectionService the worker needs.
type Projector interface {
	Project(ctx context.Context, userID string, req services.ProjectionRequest) (cashflow.Projection, bool, error)
	Settings(ctx context.Context, userID string) (core.Settings, error)
	Invalidate(userID string)
}

var _ Projector = (*services.ProjectionService)(nil)

type Alerter interface {
	SendRiskAlert(ctx context.Context, a notify.RiskAlert) error
}

// RiskWorker checks users' projections against a threshold. An alert is
// sent once per user and first risk day; a later change that moves the
// first risk day triggers a new one.
type RiskWorker struct {
	projector   Projector
	users       store.UserLister
	directory   auth.Directory
	alerter     Alerter
	threshold   core.Money
	concurrency int
	logger      *log.Logger

	mu   sync.Mutex
	sent map[string]string
}

// Config tunes a RiskWorker. Alerter and Directory may be nil to only
// recompute projections.
type Config struct {
	Threshold   core.Money
	Concurrency int
	Alerter     Alerter
	Directory   auth.Directory
	Logger      *log.Logger
}

func NewRiskWorker(projector Projector, users store.UserLister, cfg Config) *RiskWorker {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = log.FromDefault(log.ComponentWorker)
	}
	return &RiskWorker{
		projector:   projector,
		users:       users,
		directory:   cfg.Directory,
		alerter:     cfg.Alerter,
		threshold:   cfg.Threshold,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger,
		sent:        map[string]string{},
	}
}

// HandleEventsChanged is the AMQP handler: drop the user's cached
// projections and re-check them.
func (w *RiskWorker) HandleEventsChanged(ctx context.Context, msg *amqp.EventsChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing events changed message",
		log.FieldUserID, msg.UserID,
		log.FieldEventID, msg.EventID,
		log.FieldReason, msg.Reason)

	w.projector.Invalidate(msg.UserID)
	_, err := w.Check(ctx, msg.UserID)
	return err
}

// SweepResult counts the outcome of one sweep.
type SweepResult struct {
	Users   int
	AtRisk  int
	Alerted int
	Failed  int
}

// Sweep checks every known user with bounded concurrency. Per-user failures
// are logged and counted; only listing users can fail the sweep.
func (w *RiskWorker) Sweep(ctx context.Context) (SweepResult, error) {
	uids, err := w.users.ListUsers(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list users: %w", err)
	}

	var atRisk, alerted, failed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, uid := range uids {
		uid := uid
		g.Go(func() error {
			res, err := w.Check(gctx, uid)
			if err != nil {
				atomic.AddInt64(&failed, 1)
				w.logger.ErrorContext(gctx, "Risk check failed",
					log.FieldUserID, uid,
					log.FieldError, err)
				return nil
			}
			if res.AtRisk {
				atomic.AddInt64(&atRisk, 1)
			}
			if res.Alerted {
				atomic.AddInt64(&alerted, 1)
			}
			return nil
		})
	}
	_ = g.Wait()

	out := SweepResult{Users: len(uids), AtRisk: int(atRisk), Alerted: int(alerted), Failed: int(failed)}
	w.logger.InfoContext(ctx, "Risk sweep complete",
		log.FieldOperation, log.OpSweep,
		"users", out.Users,
		"at_risk", out.AtRisk,
		"alerted", out.Alerted,
		"failed", out.Failed)
	return out, ctx.Err()
}

// CheckResult reports one user's risk status.
type CheckResult struct {
	AtRisk  bool
	Alerted bool
	Days    []core.BalancePoint
}

// Check projects one user and alerts if the balance dips below threshold.
func (w *RiskWorker) Check(ctx context.Context, uid string) (CheckResult, error) {
	p, _, err := w.projector.Project(ctx, uid, services.ProjectionRequest{Threshold: w.threshold})
	if err != nil {
		return CheckResult{}, fmt.Errorf("project: %w", err)
	}
	res := CheckResult{AtRisk: len(p.Risk) > 0, Days: p.Risk}
	if !res.AtRisk {
		w.forget(uid)
		return res, nil
	}
	if w.alerter == nil || w.directory == nil {
		return res, nil
	}

	key := p.Risk[0].Date.String()
	if w.alreadySent(uid, key) {
		return res, nil
	}

	to, err := w.directory.Email(ctx, uid)
	if errors.Is(err, auth.ErrNoEmail) {
		w.logger.DebugContext(ctx, "No alert address for user", log.FieldUserID, uid)
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("resolve alert address: %w", err)
	}

	settings, err := w.projector.Settings(ctx, uid)
	if err != nil {
		return res, err
	}
	err = w.alerter.SendRiskAlert(ctx, notify.RiskAlert{
		UserID:    uid,
		To:        to,
		Currency:  settings.Currency,
		Threshold: w.threshold,
		Days:      p.Risk,
	})
	if err != nil {
		return res, err
	}
	w.markSent(uid, key)
	res.Alerted = true
	return res, nil
}

func (w *RiskWorker) alreadySent(uid, key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sent[uid] == key
}

func (w *RiskWorker) markSent(uid, key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sent[uid] = key
}

func (w *RiskWorker) forget(uid string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.sent, uid)
}

// Schedule runs Sweep on the cron spec until ctx is done. The returned
// cron is already started; stop it to wait for a running sweep.
func (w *RiskWorker) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := w.Sweep(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Scheduled risk sweep failed", log.FieldError, err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule risk sweep %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
