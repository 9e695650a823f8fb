package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sunilgupta-arch/taskflow/models"
	"github.com/sunilgupta-arch/taskflow/repository"
)

type rewardRepo struct {
	db *gorm.DB
}

// Upsert relies on the unique (user_id, task_id) index: a retry or a second
// completion attempt updates the amount instead of inserting a second row.
func (r *rewardRepo) Upsert(ctx context.Context, userID, taskID uint, amount float64) error {
	entry := models.RewardEntry{
		UserID:       userID,
		TaskID:       taskID,
		RewardAmount: amount,
		Status:       models.RewardStatusPending,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "task_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"reward_amount": amount}),
		}).
		Create(&entry).Error
}

func (r *rewardRepo) FindByID(ctx context.Context, id uint) (*models.RewardEntry, error) {
	var e models.RewardEntry
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *rewardRepo) MarkPaid(ctx context.Context, id, paidBy uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.RewardEntry{}).
		Where("id = ? AND status = ?", id, models.RewardStatusPending).
		Updates(map[string]interface{}{
			"status":  models.RewardStatusPaid,
			"paid_by": paidBy,
			"paid_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *rewardRepo) List(ctx context.Context, f repository.RewardFilter) ([]models.RewardEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.RewardEntry{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	var entries []models.RewardEntry
	err := q.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&entries).Error
	return entries, total, err
}

func (r *rewardRepo) UserSummary(ctx context.Context, userID uint) (models.RewardSummary, error) {
	var s models.RewardSummary
	err := r.db.WithContext(ctx).Model(&models.RewardEntry{}).
		Select(`COALESCE(SUM(reward_amount), 0) as total_earned,
			COALESCE(SUM(CASE WHEN status = 'pending' THEN reward_amount END), 0) as pending,
			COALESCE(SUM(CASE WHEN status = 'paid' THEN reward_amount END), 0) as paid,
			SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END) as pending_count,
			SUM(CASE WHEN status = 'paid' THEN 1 ELSE 0 END) as paid_count`).
		Where("user_id = ?", userID).
		Scan(&s).Error
	return s, err
}
