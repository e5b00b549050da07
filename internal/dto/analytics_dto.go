package dto

import (
	"time"

	"expensetracker/internal/entity"
)

const dateLayout = "2006-01-02"

type Summary struct {
	TotalAmount int64 `json:"total_amount"`
}

type SummaryResponse struct {
	Period    string  `json:"period"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Summary   Summary `json:"summary"`
}

func NewSummaryResponse(period string, start, end time.Time, total int64) SummaryResponse {
	return SummaryResponse{
		Period:    period,
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		Summary:   Summary{TotalAmount: total},
	}
}

type CategoryStatsResponse struct {
	Period     string                 `json:"period"`
	StartDate  string                 `json:"start_date"`
	EndDate    string                 `json:"end_date"`
	Statistics []entity.CategoryTotal `json:"statistics"`
}

func NewCategoryStatsResponse(period string, start, end time.Time, totals []entity.CategoryTotal) CategoryStatsResponse {
	return CategoryStatsResponse{
		Period:     period,
		StartDate:  start.Format(dateLayout),
		EndDate:    end.Format(dateLayout),
		Statistics: totals,
	}
}
