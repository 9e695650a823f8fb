package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/sunilgupta-arch/taskflow/models"
)

type attendanceRepo struct {
	db *gorm.DB
}

func (r *attendanceRepo) ClockIn(ctx context.Context, userID uint, date, loginTime string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AttendanceLog{}).
		Where("user_id = ? AND date = ?", userID, date).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	log := models.AttendanceLog{UserID: userID, Date: date, LoginTime: loginTime}
	if err := r.db.WithContext(ctx).Create(&log).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *attendanceRepo) ClockOut(ctx context.Context, userID uint, date, logoutTime string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.AttendanceLog{}).
		Where("user_id = ? AND date = ? AND logout_time IS NULL", userID, date).
		Update("logout_time", logoutTime)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *attendanceRepo) CloseOpen(ctx context.Context, date, logoutTime string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.AttendanceLog{}).
		Where("date = ? AND logout_time IS NULL", date).
		Update("logout_time", logoutTime)
	return res.RowsAffected, res.Error
}
