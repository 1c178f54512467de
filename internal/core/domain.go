package core

import (
	"errors"
	"strings"
	"time"
)

const (
	None     Recurrence = "none"
	Weekly   Recurrence = "weekly"
	Biweekly Recurrence = "biweekly"
	Monthly  Recurrence = "monthly"
)

const (
	TypeIncome  EventType = "income"
	TypeExpense EventType = "expense"
)

type (
	// Recurrence is the repeat rule of an event.
	Recurrence string

	// EventType is the optional explicit direction of an event.
	EventType string

	// Event is one user-declared income or expense, possibly recurring.
	// Date and RecurringEnds stay as raw ISO strings so that malformed values
	// can be skipped per event instead of rejecting a whole snapshot.
	Event struct {
		ID            string     `json:"id,omitempty"`
		UserID        string     `json:"uid,omitempty"`
		Title         string     `json:"title,omitempty"`
		Date          string     `json:"date"`
		Amount        Money      `json:"amount"`
		Type          EventType  `json:"type,omitempty"`
		Category      string     `json:"category,omitempty"`
		Recurring     Recurrence `json:"recurring,omitempty"`
		RecurringEnds string     `json:"recurringEnds,omitempty"`
		Hours         float64    `json:"hours,omitempty"`
		Rate          float64    `json:"rate,omitempty"`
		CreatedAt     time.Time  `json:"createdAt,omitempty"`
		UpdatedAt     time.Time  `json:"updatedAt,omitempty"`
	}

	// Occurrence is one dated instance of an event after expansion.
	// Origin points back at the event it came from; aggregation ignores it.
	Occurrence struct {
		Event
		On     Date   `json:"on"`
		Origin *Event `json:"-"`
	}

	// BalancePoint is the running balance at the end of Date.
	BalancePoint struct {
		Date      Date  `json:"date"`
		Balance   Money `json:"balance"`
		Projected bool  `json:"projected"`
	}

	// PeriodSummary holds non-negative income and expense totals.
	PeriodSummary struct {
		Income  Money `json:"income"`
		Expense Money `json:"expense"`
	}

	// Goal is a savings target tracked against recorded events.
	Goal struct {
		ID        string    `json:"id,omitempty"`
		UserID    string    `json:"uid,omitempty"`
		Name      string    `json:"name"`
		Target    Money     `json:"target"`
		StartDate string    `json:"startDate,omitempty"`
		Deadline  string    `json:"deadline,omitempty"`
		Category  string    `json:"category,omitempty"`
		CreatedAt time.Time `json:"createdAt,omitempty"`
	}

	GoalProgress struct {
		Goal
		Saved   Money `json:"saved"`
		Percent int   `json:"pct"`
	}
)

var (
	ErrTitleTooLong      = errors.New("title too long (max 200 characters)")
	ErrUnknownRecurrence = errors.New("unknown recurrence")
	ErrEndBeforeStart    = errors.New("recurring end date is before the event date")
	ErrEmptyGoalName     = errors.New("empty goal name")
	ErrNegativeTarget    = errors.New("goal target cannot be negative")
)

// Normalize maps a raw rule to a known Recurrence. Empty and "none" are None;
// anything unrecognized is None with ok=false.
func (r Recurrence) Normalize() (Recurrence, bool) {
	switch Recurrence(strings.ToLower(strings.TrimSpace(string(r)))) {
	case "", None, "null":
		return None, true
	case Weekly:
		return Weekly, true
	case Biweekly:
		return Biweekly, true
	case Monthly:
		return Monthly, true
	default:
		return None, false
	}
}

// IsRecurring reports whether the rule repeats.
func (r Recurrence) IsRecurring() bool {
	n, _ := r.Normalize()
	return n != None
}

// Direction derives income/expense from the amount sign, which is authoritative.
func (e Event) Direction() EventType {
	if e.Amount.IsNegative() {
		return TypeExpense
	}
	return TypeIncome
}

// TypeConflict reports an explicit Type that disagrees with the amount sign.
func (e Event) TypeConflict() bool {
	return e.Type != "" && e.Type != e.Direction()
}

// ApplyDefaults fills in derived fields the way the calendar dialog does
// before saving: hourly income is computed from hours*rate, expenses are
// stored negative, the rule is normalized and an empty title is named after
// the direction.
func (e Event) ApplyDefaults() Event {
	if e.Type == TypeIncome && e.Hours > 0 && e.Rate > 0 {
		e.Amount = AmountFromHours(e.Hours, e.Rate)
	}
	switch e.Type {
	case TypeExpense:
		e.Amount = e.Amount.Abs().Neg()
	case TypeIncome:
		e.Amount = e.Amount.Abs()
	case "":
		e.Type = e.Direction()
	}
	if r, ok := e.Recurring.Normalize(); ok {
		e.Recurring = r
	}
	if strings.TrimSpace(e.Title) == "" {
		if e.Type == TypeExpense {
			e.Title = "Expense"
		} else {
			e.Title = "Income"
		}
	}
	return e
}

// Validate checks an event before it is written to a store. The projection
// engine never calls it; it tolerates dirty records.
func (e Event) Validate() error {
	if len(e.Title) > 200 {
		return ErrTitleTooLong
	}
	anchor, err := ParseDate(e.Date)
	if err != nil {
		return err
	}
	if _, ok := e.Recurring.Normalize(); !ok {
		return ErrUnknownRecurrence
	}
	switch e.Type {
	case "", TypeIncome, TypeExpense:
	default:
		return errors.New("invalid event type")
	}
	if strings.TrimSpace(e.RecurringEnds) != "" {
		end, err := ParseDate(e.RecurringEnds)
		if err != nil {
			return errors.New("invalid recurring end date: " + err.Error())
		}
		if end.Before(anchor) {
			return ErrEndBeforeStart
		}
	}
	return nil
}

// Net returns income minus expense.
func (s PeriodSummary) Net() Money {
	return s.Income.Sub(s.Expense)
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyGoalName
	}
	if g.Target.IsNegative() {
		return ErrNegativeTarget
	}
	if g.StartDate != "" {
		if _, err := ParseDate(g.StartDate); err != nil {
			return errors.New("invalid start date: " + err.Error())
		}
	}
	if g.Deadline != "" {
		if _, err := ParseDate(g.Deadline); err != nil {
			return errors.New("invalid deadline: " + err.Error())
		}
	}
	return nil
}
