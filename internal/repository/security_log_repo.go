package repository

import (
	"context"

	"expensetracker/internal/entity"

	"gorm.io/gorm"
)

const (
	DefaultSecurityLogPage = 20
	maxSecurityLogPage     = 100
)

type SecurityLogRepository interface {
	Log(ctx context.Context, log *entity.SecurityLog) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]entity.SecurityLog, error)
}

type securityLogRepository struct {
	db *gorm.DB
}

func NewSecurityLogRepository(db *gorm.DB) SecurityLogRepository {
	return &securityLogRepository{db: db}
}

func (r *securityLogRepository) Log(ctx context.Context, log *entity.SecurityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListByUser returns the newest events of userID first. limit falls back to
// DefaultSecurityLogPage when unset and is capped at 100.
func (r *securityLogRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]entity.SecurityLog, error) {
	if limit <= 0 {
		limit = DefaultSecurityLogPage
	}
	if limit > maxSecurityLogPage {
		limit = maxSecurityLogPage
	}
	var logs []entity.SecurityLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
