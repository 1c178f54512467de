package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"budgetcal/internal/core"
	"budgetcal/internal/store"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so that text order in ORDER BY is time order.
// RFC3339Nano trims trailing zeros and would sort "05Z" after "05.5Z".
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const eventColumns = `id, user_id, title, date, amount_cents, type, category, recurring,
	recurring_ends, hours, rate, created_at, updated_at`

func (r *SQLiteRepository) ListEvents(ctx context.Context, userID string) ([]core.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE user_id = ? ORDER BY date, created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]core.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func (r *SQLiteRepository) GetEvent(ctx context.Context, userID, id string) (core.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Event{}, store.ErrNotFound
	}
	if err != nil {
		return core.Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) CreateEvent(ctx context.Context, e core.Event) (core.Event, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := r.now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Title, e.Date, e.Amount.Cents, string(e.Type), e.Category, string(e.Recurring),
		e.RecurringEnds, e.Hours, e.Rate, now.Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return core.Event{}, fmt.Errorf("create event: %w", err)
	}

	slog.InfoContext(ctx, "Event saved to SQLite",
		"id", e.ID,
		"user_id", e.UserID,
		"amount_cents", e.Amount.Cents,
		"date", e.Date,
		"recurring", e.Recurring)

	return e, nil
}

func (r *SQLiteRepository) UpdateEvent(ctx context.Context, e core.Event) (core.Event, error) {
	old, err := r.GetEvent(ctx, e.UserID, e.ID)
	if err != nil {
		return core.Event{}, err
	}
	e.CreatedAt = old.CreatedAt
	e.UpdatedAt = r.now().UTC()

	_, err = r.db.ExecContext(ctx,
		`UPDATE events SET title = ?, date = ?, amount_cents = ?, type = ?, category = ?, recurring = ?,
			recurring_ends = ?, hours = ?, rate = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		e.Title, e.Date, e.Amount.Cents, string(e.Type), e.Category, string(e.Recurring),
		e.RecurringEnds, e.Hours, e.Rate, e.UpdatedAt.Format(timeLayout), e.ID, e.UserID)
	if err != nil {
		return core.Event{}, fmt.Errorf("update event: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) DeleteEvent(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return requireAffected(res)
}

const goalColumns = `id, user_id, name, target_cents, start_date, deadline, category, created_at`

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]core.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return goals, nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, userID, id string) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, store.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.CreatedAt = r.now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, g.Target.Cents, g.StartDate, g.Deadline, g.Category, g.CreatedAt.Format(timeLayout))
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	old, err := r.GetGoal(ctx, g.UserID, g.ID)
	if err != nil {
		return core.Goal{}, err
	}
	g.CreatedAt = old.CreatedAt

	_, err = r.db.ExecContext(ctx,
		`UPDATE goals SET name = ?, target_cents = ?, start_date = ?, deadline = ?, category = ?
		WHERE id = ? AND user_id = ?`,
		g.Name, g.Target.Cents, g.StartDate, g.Deadline, g.Category, g.ID, g.UserID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireAffected(res)
}

func (r *SQLiteRepository) GetSettings(ctx context.Context, userID string) (core.Settings, error) {
	var s core.Settings
	err := r.db.QueryRowContext(ctx,
		`SELECT currency, forecast_days, theme FROM settings WHERE user_id = ?`, userID).
		Scan(&s.Currency, &s.ForecastDays, &s.Theme)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Settings{}, store.ErrNotFound
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) PutSettings(ctx context.Context, userID string, s core.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (user_id, currency, forecast_days, theme, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			currency = excluded.currency,
			forecast_days = excluded.forecast_days,
			theme = excluded.theme,
			updated_at = excluded.updated_at`,
		userID, s.Currency, s.ForecastDays, s.Theme, r.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM events WHERE user_id != '' ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]string, 0)
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, uid)
	}
	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (core.Event, error) {
	var (
		e                    core.Event
		typ, recurring       string
		createdAt, updatedAt string
	)
	err := s.Scan(&e.ID, &e.UserID, &e.Title, &e.Date, &e.Amount.Cents, &typ, &e.Category, &recurring,
		&e.RecurringEnds, &e.Hours, &e.Rate, &createdAt, &updatedAt)
	if err != nil {
		return core.Event{}, err
	}
	e.Type = core.EventType(typ)
	e.Recurring = core.Recurrence(recurring)
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}

func scanGoal(s scanner) (core.Goal, error) {
	var (
		g         core.Goal
		createdAt string
	)
	err := s.Scan(&g.ID, &g.UserID, &g.Name, &g.Target.Cents, &g.StartDate, &g.Deadline, &g.Category, &createdAt)
	if err != nil {
		return core.Goal{}, err
	}
	g.CreatedAt = parseTime(createdAt)
	return g, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
