package routes

import (
	"time"

	"expensetracker/api/handler"
	"expensetracker/api/middleware"
	"expensetracker/internal/entity"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	Categories     *handler.CategoryHandler
	Expenses       *handler.ExpenseHandler
	Statistics     *handler.StatisticsHandler
	AuthMiddleware middleware.AuthMiddleware
	AuthRate       *middleware.RateLimiter
	LoginRate      *middleware.RateLimiter
}

func NewRouter(
	e *echo.Echo,
	auth *handler.AuthHandler,
	categories *handler.CategoryHandler,
	expenses *handler.ExpenseHandler,
	statistics *handler.StatisticsHandler,
	authMiddleware middleware.AuthMiddleware,
) *Router {
	return &Router{
		Echo:           e,
		Auth:           auth,
		Categories:     categories,
		Expenses:       expenses,
		Statistics:     statistics,
		AuthMiddleware: authMiddleware,
		AuthRate:       middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		LoginRate:      middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	requireAuth := r.AuthMiddleware.RequireAuth
	requireAdmin := middleware.RequireRole(entity.UserRoleAdmin)

	e.POST("/auth/register", r.Auth.Register, r.AuthRate.Middleware())
	e.GET("/auth/verify/:token", r.Auth.VerifyEmailLink, r.AuthRate.Middleware())
	e.POST("/auth/verify-email", r.Auth.VerifyEmail, r.AuthRate.Middleware())
	e.POST("/auth/token", r.Auth.Token, r.LoginRate.Middleware())

	e.GET("/me", r.Auth.Me, requireAuth)
	e.GET("/me/security-events", r.Auth.SecurityEvents, requireAuth)
	e.GET("/auth/users", r.Auth.ListUsers, requireAuth, requireAdmin)
	e.POST("/admin/users", r.Auth.ProvisionUser, requireAuth, requireAdmin)

	categories := e.Group("/categories", requireAuth)
	categories.GET("", r.Categories.List)
	categories.POST("", r.Categories.Create)
	categories.POST("/new", r.Categories.Create)
	categories.PUT("/:id", r.Categories.Update)
	categories.DELETE("/:id", r.Categories.Delete)

	expenses := e.Group("/expenses", requireAuth)
	expenses.GET("", r.Expenses.List)
	expenses.POST("", r.Expenses.Create)
	expenses.POST("/new", r.Expenses.Create)
	expenses.PUT("/:id", r.Expenses.Update)
	expenses.DELETE("/:id", r.Expenses.Delete)

	statistics := e.Group("/statistics", requireAuth)
	statistics.GET("/period-summary", r.Statistics.PeriodSummary)
	statistics.GET("/period-by-category", r.Statistics.PeriodByCategory)
}
