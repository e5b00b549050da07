package handler

import (
	"context"
	"net/http"

	"expensetracker/api/middleware"
	"expensetracker/internal/dto"
	"expensetracker/internal/entity"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type CategoryManager interface {
	List(ctx context.Context) ([]entity.Category, error)
	Create(ctx context.Context, userID int64, name string) (*entity.Category, error)
	Update(ctx context.Context, userID, id int64, name string) (*entity.Category, error)
	Delete(ctx context.Context, userID, id int64) error
}

type CategoryHandler struct {
	Service  CategoryManager
	Validate *validator.Validate
}

func NewCategoryHandler(svc CategoryManager, validate *validator.Validate) *CategoryHandler {
	return &CategoryHandler{Service: svc, Validate: validate}
}

func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.Service.List(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.CategoryResponsesFromEntities(categories))
}

func (h *CategoryHandler) Create(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeMessage(c, http.StatusUnauthorized, msgUnauthorized)
	}
	var req dto.CategoryRequest
	if err := bind(c, h.Validate, &req); err != nil {
		return err
	}
	category, err := h.Service.Create(c.Request().Context(), userID, req.Name)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.CategoryResponseFromEntity(category))
}

func (h *CategoryHandler) Update(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeMessage(c, http.StatusUnauthorized, msgUnauthorized)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	var req dto.CategoryRequest
	if err := bind(c, h.Validate, &req); err != nil {
		return err
	}
	if _, err := h.Service.Update(c.Request().Context(), userID, id, req.Name); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeMessage(c, http.StatusUnauthorized, msgUnauthorized)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.Service.Delete(c.Request().Context(), userID, id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
