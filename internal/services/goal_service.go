package services

import (
	"context"
	"fmt"

	"budgetcal/internal/cashflow"
	"budgetcal/internal/core"
	"budgetcal/internal/log"
	"budgetcal/internal/store"
)

type GoalService struct {
	goals  store.GoalStore
	events store.EventStore
	logger *log.Logger
}

func NewGoalService(goals store.GoalStore, events store.EventStore, logger *log.Logger) *GoalService {
	if logger == nil {
		logger = log.FromDefault(log.ComponentGoals)
	}
	return &GoalService{goals: goals, events: events, logger: logger}
}

func (s *GoalService) List(ctx context.Context, userID string) ([]core.Goal, error) {
	goals, err := s.goals.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

func (s *GoalService) Create(ctx context.Context, userID string, g core.Goal) (core.Goal, error) {
	g.UserID, g.ID = userID, ""
	if err := g.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	created, err := s.goals.CreateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	s.logger.InfoContext(ctx, "Goal saved",
		log.FieldUserID, userID,
		log.FieldGoalID, created.ID,
		log.FieldOperation, log.OpCreate)
	return created, nil
}

func (s *GoalService) Update(ctx context.Context, userID, id string, g core.Goal) (core.Goal, error) {
	g.UserID, g.ID = userID, id
	if err := g.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	updated, err := s.goals.UpdateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	return updated, nil
}

func (s *GoalService) Delete(ctx context.Context, userID, id string) error {
	if err := s.goals.DeleteGoal(ctx, userID, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}

// Progress reports every goal of the user against the recorded events.
func (s *GoalService) Progress(ctx context.Context, userID string) ([]core.GoalProgress, error) {
	goals, err := s.goals.ListGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	if len(goals) == 0 {
		return []core.GoalProgress{}, nil
	}
	events, err := s.events.ListEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return cashflow.GoalsProgress(goals, events), nil
}
