package services

import (
	"context"
	"fmt"

	"budgetcal/internal/amqp"
	"budgetcal/internal/core"
	"budgetcal/internal/log"
	"budgetcal/internal/store"
)

// EventService validates and persists events, then invalidates cached
// projections and publishes a change notification. Publishing is best
// effort: the write already succeeded.
type EventService struct {
	events      store.EventStore
	publisher   Publisher
	invalidator Invalidator
	logger      *log.Logger
	slog        *log.StructuredLogger
}

// NewEventService accepts nil publisher and invalidator.
func NewEventService(events store.EventStore, publisher Publisher, invalidator Invalidator, logger *log.Logger) *EventService {
	if logger == nil {
		logger = log.FromDefault(log.ComponentEvents)
	}
	return &EventService{
		events:      events,
		publisher:   publisher,
		invalidator: invalidator,
		logger:      logger,
		slog:        log.NewStructuredLogger(logger),
	}
}

func (s *EventService) List(ctx context.Context, userID string) ([]core.Event, error) {
	events, err := s.events.ListEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *EventService) Get(ctx context.Context, userID, id string) (core.Event, error) {
	return s.events.GetEvent(ctx, userID, id)
}

func (s *EventService) Create(ctx context.Context, userID string, e core.Event) (core.Event, error) {
	e, err := prepareEvent(userID, e)
	if err != nil {
		return core.Event{}, err
	}
	e.ID = ""

	created, err := s.events.CreateEvent(ctx, e)
	if err != nil {
		return core.Event{}, fmt.Errorf("create event: %w", err)
	}
	s.changed(ctx, created, log.OpCreate, amqp.ReasonEventCreated)
	return created, nil
}

func (s *EventService) Update(ctx context.Context, userID, id string, e core.Event) (core.Event, error) {
	e, err := prepareEvent(userID, e)
	if err != nil {
		return core.Event{}, err
	}
	e.ID = id

	updated, err := s.events.UpdateEvent(ctx, e)
	if err != nil {
		return core.Event{}, fmt.Errorf("update event: %w", err)
	}
	s.changed(ctx, updated, log.OpUpdate, amqp.ReasonEventUpdated)
	return updated, nil
}

func (s *EventService) Delete(ctx context.Context, userID, id string) error {
	if err := s.events.DeleteEvent(ctx, userID, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.invalidate(userID)
	s.publish(ctx, userID, id, amqp.ReasonEventDeleted)
	return nil
}

func prepareEvent(userID string, e core.Event) (core.Event, error) {
	e = e.ApplyDefaults()
	e.UserID = userID
	if err := e.Validate(); err != nil {
		return core.Event{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return e, nil
}

func (s *EventService) changed(ctx context.Context, e core.Event, op, reason string) {
	s.slog.LogEventSaved(ctx, e.UserID, op, e.ID, e.Title, e.Amount.Cents, e.Category, string(e.Recurring))
	s.invalidate(e.UserID)
	s.publish(ctx, e.UserID, e.ID, reason)
}

func (s *EventService) invalidate(userID string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(userID)
	}
}

func (s *EventService) publish(ctx context.Context, userID, eventID, reason string) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No publisher configured, skipping events changed message")
		return
	}
	if err := s.publisher.PublishEventsChanged(ctx, userID, eventID, reason); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish events changed message",
			log.FieldUserID, userID,
			log.FieldEventID, eventID,
			log.FieldReason, reason,
			log.FieldError, err)
	}
}
