package service

import (
	"context"
	"strings"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/entity"
	"expensetracker/internal/repository"

	"github.com/sirupsen/logrus"
)

type ExpenseInput struct {
	CategoryID  int64
	Amount      int64
	Description string
}

type ExpenseService struct {
	expenses   repository.ExpenseRepository
	categories repository.CategoryRepository
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     logrus.FieldLogger
}

func NewExpenseService(
	expenses repository.ExpenseRepository,
	categories repository.CategoryRepository,
	c cache.Cache,
	cacheTTL time.Duration,
	logger logrus.FieldLogger,
) *ExpenseService {
	if c == nil {
		c = cache.NoopCache{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ExpenseService{
		expenses:   expenses,
		categories: categories,
		cache:      c,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

func (s *ExpenseService) List(ctx context.Context, userID int64) ([]entity.Expense, error) {
	key := cache.ExpensesKey(userID)
	var expenses []entity.Expense
	if cached(ctx, s.cache, s.logger, key, &expenses) {
		return expenses, nil
	}
	expenses, err := s.expenses.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	store(ctx, s.cache, s.logger, key, expenses, s.cacheTTL)
	return expenses, nil
}

func (s *ExpenseService) Create(ctx context.Context, userID int64, input ExpenseInput) (*entity.Expense, error) {
	if err := s.check(ctx, input); err != nil {
		return nil, err
	}
	expense := &entity.Expense{
		UserID:      userID,
		CategoryID:  input.CategoryID,
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, cache.ExpensesKey(userID))
	return expense, nil
}

func (s *ExpenseService) Update(ctx context.Context, userID, id int64, input ExpenseInput) (*entity.Expense, error) {
	if err := s.check(ctx, input); err != nil {
		return nil, err
	}
	expense, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	expense.CategoryID = input.CategoryID
	expense.Amount = input.Amount
	expense.Description = strings.TrimSpace(input.Description)
	if err := s.expenses.Update(ctx, expense); err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, cache.ExpensesKey(userID))
	return expense, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.expenses.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.logger, cache.ExpensesKey(userID))
	return nil
}

func (s *ExpenseService) check(ctx context.Context, input ExpenseInput) error {
	if input.Amount <= 0 || input.CategoryID <= 0 {
		return ErrInvalidInput
	}
	category, err := s.categories.FindByID(ctx, input.CategoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrNotFound
	}
	return nil
}

func (s *ExpenseService) owned(ctx context.Context, userID, id int64) (*entity.Expense, error) {
	expense, err := s.expenses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrNotFound
	}
	if expense.UserID != userID {
		return nil, ErrForbidden
	}
	return expense, nil
}
