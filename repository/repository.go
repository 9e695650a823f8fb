// Package repository defines the persistence interfaces the task lifecycle
// engine and the scheduler run against. The MySQL implementation lives in
// gormstore; memstore provides an in-memory implementation for tests.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sunilgupta-arch/taskflow/models"
)

var ErrNotFound = errors.New("record not found")

// Store bundles the repositories over one backing database.
type Store interface {
	Tasks() TaskRepository
	Rewards() RewardRepository
	Users() UserRepository
	Attendance() AttendanceRepository

	// InTx runs fn within a single transaction; the Store passed to fn is
	// scoped to that transaction. Any error from fn rolls everything back.
	InTx(ctx context.Context, fn func(Store) error) error
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	Status     string
	Type       string
	AssignedTo *uint
	CreatedBy  *uint
	Search     string
	Page       int
	Limit      int
}

type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	// FindByID returns ErrNotFound for missing or soft-deleted rows.
	FindByID(ctx context.Context, id uint) (*models.Task, error)
	// FindByIDForUpdate is FindByID holding an exclusive row lock. Only
	// meaningful inside InTx.
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Task, error)
	// GroupMembers returns the non-deleted rows sharing groupID.
	GroupMembers(ctx context.Context, groupID uint) ([]models.Task, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, id uint) error
	// DeactivateGroup sets every non-deleted member of groupID to deactivated.
	DeactivateGroup(ctx context.Context, groupID uint) error
	// SoftDeleteGroup soft-deletes every non-deleted member of groupID.
	SoftDeleteGroup(ctx context.Context, groupID uint) error
	// CompletedByType returns completed, non-deleted tasks of the given type,
	// ordered by id so group canonical rows come before their siblings.
	CompletedByType(ctx context.Context, taskType string) ([]models.Task, error)
	List(ctx context.Context, f TaskFilter) ([]models.Task, int64, error)
	Unassigned(ctx context.Context, page, limit int) ([]models.Task, error)
}

// RewardFilter narrows ledger listings.
type RewardFilter struct {
	UserID *uint
	Status string
	Page   int
	Limit  int
}

type RewardRepository interface {
	// Upsert inserts a pending entry for (userID, taskID); if one already
	// exists the amount is updated in place, never duplicated.
	Upsert(ctx context.Context, userID, taskID uint, amount float64) error
	FindByID(ctx context.Context, id uint) (*models.RewardEntry, error)
	// MarkPaid flips a pending entry to paid. Returns false when the entry
	// is absent or already paid; a paid entry is never reopened.
	MarkPaid(ctx context.Context, id, paidBy uint, at time.Time) (bool, error)
	List(ctx context.Context, f RewardFilter) ([]models.RewardEntry, int64, error)
	UserSummary(ctx context.Context, userID uint) (models.RewardSummary, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// InOrg reports whether the user exists, is active and belongs to orgType.
	InOrg(ctx context.Context, id uint, orgType string) (bool, error)
}

type AttendanceRepository interface {
	// ClockIn opens a session for the user on date; returns false when a
	// session for that day already exists.
	ClockIn(ctx context.Context, userID uint, date, loginTime string) (bool, error)
	// ClockOut closes the user's open session on date; false when none open.
	ClockOut(ctx context.Context, userID uint, date, logoutTime string) (bool, error)
	// CloseOpen force-closes every open session on date, returning the count.
	CloseOpen(ctx context.Context, date, logoutTime string) (int64, error)
}
