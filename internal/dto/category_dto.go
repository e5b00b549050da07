package dto

import (
	"time"

	"expensetracker/internal/entity"
)

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CategoryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func CategoryResponseFromEntity(category *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		UserID:    category.UserID,
		CreatedAt: category.CreatedAt,
	}
}

func CategoryResponsesFromEntities(categories []entity.Category) []CategoryResponse {
	responses := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, CategoryResponseFromEntity(&categories[i]))
	}
	return responses
}
