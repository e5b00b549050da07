package handler

import (
	"context"
	"net/http"

	"expensetracker/api/middleware"
	"expensetracker/internal/dto"
	"expensetracker/internal/entity"
	"expensetracker/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ExpenseManager interface {
	List(ctx context.Context, userID int64) ([]entity.Expense, error)
	Create(ctx context.Context, userID int64, input service.ExpenseInput) (*entity.Expense, error)
	Update(ctx context.Context, userID, id int64, input service.ExpenseInput) (*entity.Expense, error)
	Delete(ctx context.Context, userID, id int64) error
}

type ExpenseHandler struct {
	Service  ExpenseManager
	Validate *validator.Validate
}

func NewExpenseHandler(svc ExpenseManager, validate *validator.Validate) *ExpenseHandler {
	return &ExpenseHandler{Service: svc, Validate: validate}
}

func (h *ExpenseHandler) List(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeMessage(c, http.StatusUnauthorized, msgUnauthorized)
	}
	expenses, err := h.Service.List(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.ExpenseResponsesFromEntities(expenses))
}

func (h *ExpenseHandler) Create(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeMessage(c, http.StatusUnauthorized, msgUnauthorized)
	}
	var req dto.ExpenseRequest
	if err := bind(c, h.Validate, &req); err != nil {
		return err
	}
	expense, err := h.Service.Create(c.Request().Context(), userID, expenseInput(req))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.ExpenseResponseFromEntity(expense))
}

func (h *ExpenseHandler) Update(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeMessage(c, http.StatusUnauthorized, msgUnauthorized)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	var req dto.ExpenseRequest
	if err := bind(c, h.Validate, &req); err != nil {
		return err
	}
	if _, err := h.Service.Update(c.Request().Context(), userID, id, expenseInput(req)); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ExpenseHandler) Delete(c echo.Context) error {
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

func expenseInput(req dto.ExpenseRequest) service.ExpenseInput {
	return service.ExpenseInput{
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: req.Description,
	}
}
