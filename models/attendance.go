package models

import "time"

// AttendanceLog records one working day for one user. LogoutTime stays NULL
// while the session is open; the scheduler force-closes leftovers at 23:59.
type AttendanceLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_att_user_date" json:"user_id"`
	Date       string    `gorm:"type:date;not null;uniqueIndex:idx_att_user_date" json:"date"`
	LoginTime  string    `gorm:"type:time;not null" json:"login_time"`
	LogoutTime *string   `gorm:"type:time" json:"logout_time"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

func (AttendanceLog) TableName() string {
	return "attendance_logs"
}
