package models

import "time"

type Task struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"type:varchar(191);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Type        string `gorm:"type:enum('daily','weekly','adhoc');not null;default:'adhoc'" json:"type"`
	Status      string `gorm:"type:enum('pending','in_progress','completed','deactivated');not null;default:'pending'" json:"status"`
	AssignedTo  *uint  `gorm:"index" json:"assigned_to"`
	CreatedBy   uint   `gorm:"not null;index" json:"created_by"`
	// GroupID links the rows of a multi-assignee task. The canonical row of
	// a group carries its own id here; solo tasks carry NULL.
	GroupID      *uint      `gorm:"index" json:"group_id"`
	DueDate      *time.Time `gorm:"type:date" json:"due_date"`
	RewardAmount *float64   `gorm:"type:decimal(15,2)" json:"reward_amount"`
	CompletedAt  *time.Time `json:"completed_at"`
	IsDeleted    bool       `gorm:"not null;default:false;index" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// EffectiveGroupID returns the id identifying the task's group: its group id
// when set, otherwise its own id (a solo task is its own singleton group).
func (t *Task) EffectiveGroupID() uint {
	if t.GroupID != nil {
		return *t.GroupID
	}
	return t.ID
}

// HasReward reports whether completing the task owes the assignee a reward.
func (t *Task) HasReward() bool {
	return t.RewardAmount != nil && *t.RewardAmount > 0
}

type TaskAttachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TaskID       uint      `gorm:"not null;index" json:"task_id"`
	FilePath     string    `gorm:"type:varchar(255);not null" json:"file_path"`
	OriginalName string    `gorm:"type:varchar(255);not null" json:"original_name"`
	FileSize     int64     `gorm:"not null" json:"file_size"`
	UploadedBy   uint      `gorm:"not null" json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func (TaskAttachment) TableName() string {
	return "task_attachments"
}
