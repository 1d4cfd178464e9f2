package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/storage"
)

// GoalService manages the savings goal collection.
type GoalService struct {
	store storage.Store
	now   func() time.Time
}

func NewGoalService(store storage.Store) *GoalService {
	return &GoalService{store: store, now: time.Now}
}

func (s *GoalService) WithClock(now func() time.Time) *GoalService {
	s.now = now
	return s
}

// Goals loads the goal collection. A missing key is an empty list.
func (s *GoalService) Goals(ctx context.Context) ([]core.SavingsGoal, error) {
	var goals []core.SavingsGoal
	if _, err := s.store.Get(ctx, storage.KeySavingsGoals, &goals); err != nil {
		return nil, fmt.Errorf("load savings goals: %w", err)
	}
	return goals, nil
}

// AddGoal validates and appends a goal with a zero balance.
func (s *GoalService) AddGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	g.Name = strings.TrimSpace(g.Name)
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	goals, err := s.Goals(ctx)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	var maxID int64
	for _, existing := range goals {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	g.ID = maxID + 1
	g.CurrentAmount = core.Money{}
	g.IsCompleted = false
	g.CreatedAt = s.now()
	goals = append(goals, g)

	if err := s.persist(ctx, goals); err != nil {
		return core.SavingsGoal{}, err
	}
	return g, nil
}

// Contribute adds to a goal's balance and marks it completed once the target
// is reached. Contributing to a completed goal is an error.
func (s *GoalService) Contribute(ctx context.Context, id int64, amount core.Money) (core.SavingsGoal, error) {
	if amount.Cents <= 0 {
		return core.SavingsGoal{}, core.ErrInvalidAmount
	}

	goals, err := s.Goals(ctx)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	for i := range goals {
		if goals[i].ID != id {
			continue
		}
		if goals[i].IsCompleted {
			return core.SavingsGoal{}, core.ErrGoalCompleted
		}
		goals[i].CurrentAmount.Cents += amount.Cents
		if goals[i].CurrentAmount.Cents >= goals[i].TargetAmount.Cents {
			goals[i].IsCompleted = true
		}
		if err := s.persist(ctx, goals); err != nil {
			return core.SavingsGoal{}, err
		}
		return goals[i], nil
	}
	return core.SavingsGoal{}, core.ErrGoalNotFound
}

// DeleteGoal removes a goal by id.
func (s *GoalService) DeleteGoal(ctx context.Context, id int64) error {
	goals, err := s.Goals(ctx)
	if err != nil {
		return err
	}
	kept := goals[:0]
	found := false
	for _, g := range goals {
		if g.ID == id {
			found = true
			continue
		}
		kept = append(kept, g)
	}
	if !found {
		return core.ErrGoalNotFound
	}
	return s.persist(ctx, kept)
}

func (s *GoalService) persist(ctx context.Context, goals []core.SavingsGoal) error {
	if err := s.store.Set(ctx, storage.KeySavingsGoals, goals); err != nil {
		return fmt.Errorf("persist savings goals: %w", err)
	}
	return nil
}
