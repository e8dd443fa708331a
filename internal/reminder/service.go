package reminder

import (
	"fmt"
	"log/slog"

	"github.com/kodwo/billminder/internal/fault"
)

// Service computes reminder plans and persists them keyed by user x bill.
type Service struct {
	store Store
}

// NewService creates a new Service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Schedule computes the plan for a due date and offsets, then upserts it so
// re-running for the same user and bill overwrites the prior plan.
func (s *Service) Schedule(userID, billID, due string, offsets []int, hour int) (*Plan, error) {
	dueInstant, err := DueInstant(due, hour)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		UserID:  userID,
		BillID:  billID,
		DueDate: dueInstant.Format("2006-01-02"),
		Events:  BuildPlan(dueInstant, offsets),
	}

	if err := s.store.UpsertPlan(plan); err != nil {
		return nil, fault.Wrap(fault.UpstreamUnavailable, err, "saving plan for %s/%s", userID, billID)
	}

	slog.Info("reminder plan saved",
		"user", userID, "bill", billID, "due", plan.DueDate, "events", len(plan.Events))
	return plan, nil
}

// GetPlan retrieves the stored plan for a user's bill.
func (s *Service) GetPlan(userID, billID string) (*Plan, error) {
	plan, err := s.store.GetPlan(userID, billID)
	if err != nil {
		return nil, fmt.Errorf("getting plan: %w", err)
	}
	return plan, nil
}
