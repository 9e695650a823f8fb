package models

import "time"

// RewardEntry is one row of the reward ledger: a reward owed to a user for
// completing a task. At most one entry exists per (user, task) pair.
type RewardEntry struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_user_task" json:"user_id"`
	TaskID       uint       `gorm:"not null;uniqueIndex:idx_user_task" json:"task_id"`
	RewardAmount float64    `gorm:"type:decimal(15,2);not null" json:"reward_amount"`
	Status       string     `gorm:"type:enum('pending','paid');not null;default:'pending'" json:"status"`
	PaidBy       *uint      `json:"paid_by"`
	PaidAt       *time.Time `json:"paid_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (RewardEntry) TableName() string {
	return "rewards_ledger"
}

// RewardSummary aggregates a user's ledger totals.
type RewardSummary struct {
	TotalEarned  float64 `json:"total_earned"`
	Pending      float64 `json:"pending"`
	Paid         float64 `json:"paid"`
	PendingCount int64   `json:"pending_count"`
	PaidCount    int64   `json:"paid_count"`
}
