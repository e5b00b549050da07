package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/entity"
	"expensetracker/internal/repository"

	"github.com/sirupsen/logrus"
)

type CategoryService struct {
	categories repository.CategoryRepository
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     logrus.FieldLogger
}

func NewCategoryService(categories repository.CategoryRepository, c cache.Cache, cacheTTL time.Duration, logger logrus.FieldLogger) *CategoryService {
	if c == nil {
		c = cache.NoopCache{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CategoryService{categories: categories, cache: c, cacheTTL: cacheTTL, logger: logger}
}

func (s *CategoryService) List(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	if cached(ctx, s.cache, s.logger, cache.CategoriesListKey, &categories) {
		return categories, nil
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	store(ctx, s.cache, s.logger, cache.CategoriesListKey, categories, s.cacheTTL)
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, userID int64, name string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	existing, err := s.categories.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCategoryExists
	}

	category := &entity.Category{Name: name, UserID: userID}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, cache.CategoriesListKey)
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, id int64, name string) (*entity.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	category, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if category.Name == name {
		return category, nil
	}
	existing, err := s.categories.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, ErrCategoryExists
	}

	category.Name = name
	if err := s.categories.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger, cache.CategoriesListKey)
	return category, nil
}

// Delete removes an unused category. Categories still referenced by any
// user's expenses are kept and ErrCategoryInUse is returned.
func (s *CategoryService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return ErrCategoryInUse
		}
		return err
	}
	invalidate(ctx, s.cache, s.logger, cache.CategoriesListKey)
	return nil
}

func (s *CategoryService) owned(ctx context.Context, userID, id int64) (*entity.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	if category.UserID != userID {
		return nil, ErrForbidden
	}
	return category, nil
}

// cached reads key into dst. Cache failures count as misses.
func cached(ctx context.Context, c cache.Cache, logger logrus.FieldLogger, key string, dst any) bool {
	found, err := c.Get(ctx, key, dst)
	if err != nil {
		logger.WithError(err).WithField("key", key).Warn("cache read failed")
		return false
	}
	return found
}

func store(ctx context.Context, c cache.Cache, logger logrus.FieldLogger, key string, value any, ttl time.Duration) {
	if err := c.Set(ctx, key, value, ttl); err != nil {
		logger.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func invalidate(ctx context.Context, c cache.Cache, logger logrus.FieldLogger, keys ...string) {
	if err := c.Delete(ctx, keys...); err != nil {
		logger.WithError(err).WithField("keys", keys).Warn("cache invalidation failed")
	}
}
