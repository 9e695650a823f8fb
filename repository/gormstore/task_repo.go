package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sunilgupta-arch/taskflow/models"
	"github.com/sunilgupta-arch/taskflow/repository"
)

type taskRepo struct {
	db *gorm.DB
}

func (r *taskRepo) Create(ctx context.Context, t *models.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *taskRepo) FindByID(ctx context.Context, id uint) (*models.Task, error) {
	var t models.Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = 0", id).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *taskRepo) FindByIDForUpdate(ctx context.Context, id uint) (*models.Task, error) {
	var t models.Task
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND is_deleted = 0", id).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *taskRepo) GroupMembers(ctx context.Context, groupID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND is_deleted = 0", groupID).
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepo) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND is_deleted = 0", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *taskRepo) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

func (r *taskRepo) DeactivateGroup(ctx context.Context, groupID uint) error {
	return r.db.WithContext(ctx).Model(&models.Task{}).
		Where("group_id = ? AND is_deleted = 0", groupID).
		Update("status", models.TaskStatusDeactivated).Error
}

func (r *taskRepo) SoftDeleteGroup(ctx context.Context, groupID uint) error {
	return r.db.WithContext(ctx).Model(&models.Task{}).
		Where("group_id = ? AND is_deleted = 0", groupID).
		Update("is_deleted", true).Error
}

func (r *taskRepo) CompletedByType(ctx context.Context, taskType string) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("type = ? AND status = ? AND is_deleted = 0", taskType, models.TaskStatusCompleted).
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepo) List(ctx context.Context, f repository.TaskFilter) ([]models.Task, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Task{}).Where("is_deleted = 0")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.AssignedTo != nil {
		q = q.Where("assigned_to = ?", *f.AssignedTo)
	}
	if f.CreatedBy != nil {
		q = q.Where("created_by = ?", *f.CreatedBy)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
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
	var tasks []models.Task
	err := q.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&tasks).Error
	return tasks, total, err
}

func (r *taskRepo) Unassigned(ctx context.Context, page, limit int) ([]models.Task, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("assigned_to IS NULL AND status = ? AND is_deleted = 0", models.TaskStatusPending).
		Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&tasks).Error
	return tasks, err
}
