package dto

import (
	"time"

	"expensetracker/internal/entity"
)

type ExpenseRequest struct {
	CategoryID  int64  `json:"category_id" validate:"required,gt=0"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Description string `json:"description" validate:"max=1000"`
}

type ExpenseResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	CategoryID  int64     `json:"category_id"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func ExpenseResponseFromEntity(expense *entity.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          expense.ID,
		UserID:      expense.UserID,
		CategoryID:  expense.CategoryID,
		Amount:      expense.Amount,
		Description: expense.Description,
		CreatedAt:   expense.CreatedAt,
	}
}

func ExpenseResponsesFromEntities(expenses []entity.Expense) []ExpenseResponse {
	responses := make([]ExpenseResponse, 0, len(expenses))
	for i := range expenses {
		responses = append(responses, ExpenseResponseFromEntity(&expenses[i]))
	}
	return responses
}
