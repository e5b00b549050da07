package repository

import (
	"context"
	"errors"
	"time"

	"expensetracker/internal/entity"

	"gorm.io/gorm"
)

type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	FindByID(ctx context.Context, id int64) (*entity.Expense, error)
	ListByUser(ctx context.Context, userID int64) ([]entity.Expense, error)
	Update(ctx context.Context, expense *entity.Expense) error
	Delete(ctx context.Context, id int64) error
	SumByUser(ctx context.Context, userID int64, from, to time.Time) (int64, error)
	SumByCategory(ctx context.Context, userID int64, from, to time.Time) ([]entity.CategoryTotal, error)
}

type expenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepository) FindByID(ctx context.Context, id int64) (*entity.Expense, error) {
	var expense entity.Expense
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&expense).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) ListByUser(ctx context.Context, userID int64) ([]entity.Expense, error) {
	var expenses []entity.Expense
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *expenseRepository) Update(ctx context.Context, expense *entity.Expense) error {
	return r.db.WithContext(ctx).
		Model(expense).
		Updates(map[string]any{
			"amount":      expense.Amount,
			"description": expense.Description,
			"category_id": expense.CategoryID,
		}).Error
}

func (r *expenseRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&entity.Expense{}, id).Error
}

func (r *expenseRepository) SumByUser(ctx context.Context, userID int64, from, to time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&entity.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Scan(&total).Error
	return total, err
}

func (r *expenseRepository) SumByCategory(ctx context.Context, userID int64, from, to time.Time) ([]entity.CategoryTotal, error) {
	var totals []entity.CategoryTotal
	err := r.db.WithContext(ctx).
		Model(&entity.Expense{}).
		Select("category_id, SUM(amount) AS total").
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Group("category_id").
		Order("category_id").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}
