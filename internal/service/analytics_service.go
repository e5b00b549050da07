package service

import (
	"context"
	"time"

	"expensetracker/internal/entity"
	"expensetracker/internal/repository"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// DateRange holds inclusive calendar dates. Queries use [Start, End+1 day).
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) until() time.Time {
	return r.End.AddDate(0, 0, 1)
}

type PeriodSummary struct {
	Period Period
	Range  DateRange
	Total  int64
}

type PeriodByCategory struct {
	Period Period
	Range  DateRange
	Totals []entity.CategoryTotal
}

type AnalyticsService struct {
	expenses repository.ExpenseRepository
	clock    Clock
}

func NewAnalyticsService(expenses repository.ExpenseRepository, clock Clock) *AnalyticsService {
	if clock == nil {
		clock = RealClock{}
	}
	return &AnalyticsService{expenses: expenses, clock: clock}
}

// RangeFor returns the calendar range of period containing now. Weeks start
// on Monday.
func RangeFor(period Period, now time.Time) (DateRange, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case PeriodDay:
		return DateRange{Start: today, End: today}, nil
	case PeriodWeek:
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDate(0, 0, -offset)
		return DateRange{Start: start, End: start.AddDate(0, 0, 6)}, nil
	case PeriodMonth:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return DateRange{Start: start, End: start.AddDate(0, 1, -1)}, nil
	case PeriodYear:
		start := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
		end := time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, today.Location())
		return DateRange{Start: start, End: end}, nil
	default:
		return DateRange{}, ErrInvalidPeriod
	}
}

func (s *AnalyticsService) Summary(ctx context.Context, userID int64, period Period) (*PeriodSummary, error) {
	r, err := RangeFor(period, s.clock.Now())
	if err != nil {
		return nil, err
	}
	total, err := s.expenses.SumByUser(ctx, userID, r.Start, r.until())
	if err != nil {
		return nil, err
	}
	return &PeriodSummary{Period: period, Range: r, Total: total}, nil
}

func (s *AnalyticsService) ByCategory(ctx context.Context, userID int64, period Period) (*PeriodByCategory, error) {
	r, err := RangeFor(period, s.clock.Now())
	if err != nil {
		return nil, err
	}
	totals, err := s.expenses.SumByCategory(ctx, userID, r.Start, r.until())
	if err != nil {
		return nil, err
	}
	if totals == nil {
		totals = []entity.CategoryTotal{}
	}
	return &PeriodByCategory{Period: period, Range: r, Totals: totals}, nil
}
