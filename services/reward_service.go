package services

import (
	"context"
	"time"

	"github.com/sunilgupta-arch/taskflow/models"
	"github.com/sunilgupta-arch/taskflow/notify"
	"github.com/sunilgupta-arch/taskflow/repository"
)

// RewardService exposes the reward ledger to the boundary layer. Entries are
// only ever created by TaskService.Complete; this service pays them out and
// answers listings.
type RewardService struct {
	store    repository.Store
	notifier notify.Notifier
}

func NewRewardService(store repository.Store, notifier notify.Notifier) *RewardService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &RewardService{store: store, notifier: notifier}
}

// MarkPaid flips a pending ledger entry to paid, exactly once. A paid entry
// is never reopened; paying it again is a conflict.
func (s *RewardService) MarkPaid(ctx context.Context, entryID, paidBy uint) error {
	paid, err := s.store.Rewards().MarkPaid(ctx, entryID, paidBy, time.Now())
	if err != nil {
		return err
	}
	if !paid {
		return conflict("reward not found or already paid")
	}

	entry, err := s.store.Rewards().FindByID(ctx, entryID)
	if err == nil {
		s.notifier.NotifyUser(ctx, entry.UserID, notify.Event{
			Type: notify.EventRewardPaid, TaskID: entry.TaskID, UserID: entry.UserID, At: time.Now(),
		})
	}
	return nil
}

// List returns ledger entries matching the filter plus the total count.
func (s *RewardService) List(ctx context.Context, f repository.RewardFilter) ([]models.RewardEntry, int64, error) {
	return s.store.Rewards().List(ctx, f)
}

// UserSummary aggregates one user's earned/pending/paid totals.
func (s *RewardService) UserSummary(ctx context.Context, userID uint) (models.RewardSummary, error) {
	return s.store.Rewards().UserSummary(ctx, userID)
}
