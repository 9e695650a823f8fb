// Package gormstore implements the repository interfaces on MySQL via GORM.
package gormstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/sunilgupta-arch/taskflow/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Tasks() repository.TaskRepository {
	return &taskRepo{db: s.db}
}

func (s *Store) Rewards() repository.RewardRepository {
	return &rewardRepo{db: s.db}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepo{db: s.db}
}

func (s *Store) Attendance() repository.AttendanceRepository {
	return &attendanceRepo{db: s.db}
}

func (s *Store) InTx(ctx context.Context, fn func(repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
