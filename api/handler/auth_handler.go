package handler

import (
	"context"
	"net/http"
	"strings"

	"expensetracker/api/middleware"
	"expensetracker/internal/dto"
	"expensetracker/internal/entity"
	"expensetracker/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const msgEmailVerified = "Email successfully verified"

type Authenticator interface {
	Login(ctx context.Context, input service.LoginInput) (*service.LoginResult, error)
	VerifyEmail(ctx context.Context, token string, ipAddress *string) (*entity.User, error)
	GetCurrentUser(ctx context.Context, userID int64) (*entity.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]entity.User, error)
	SecurityEvents(ctx context.Context, userID int64, limit int) ([]entity.SecurityLog, error)
}

type Registrar interface {
	Register(ctx context.Context, input service.RegisterInput) (*service.RegisterResult, error)
	Provision(ctx context.Context, input service.RegisterInput) (*service.RegisterResult, error)
}

type AuthHandler struct {
	Auth         Authenticator
	Registration Registrar
	Validate     *validator.Validate
}

func NewAuthHandler(auth Authenticator, registration Registrar, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{Auth: auth, Registration: registration, Validate: validate}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bind(c, h.Validate, &req); err != nil {
		return err
	}
	result, err := h.Registration.Register(c.Request().Context(), service.RegisterInput{
		Email:     req.Email,
		FullName:  req.FullName,
		Role:      req.Role,
		Password:  req.Password,
		IPAddress: stringPtr(c.RealIP()),
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.MessageResponse{Message: result.Message})
}

func (h *AuthHandler) VerifyEmailLink(c echo.Context) error {
	return h.verify(c, c.Param("token"))
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req dto.VerifyEmailRequest
	if err := bind(c, h.Validate, &req); err != nil {
		return err
	}
	return h.verify(c, req.Token)
}

func (h *AuthHandler) verify(c echo.Context, token string) error {
	if _, err := h.Auth.VerifyEmail(c.Request().Context(), token, stringPtr(c.RealIP())); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: msgEmailVerified})
}

// Token implements the OAuth2 password grant. Form and JSON bodies are both
// accepted.
func (h *AuthHandler) Token(c echo.Context) error {
	var req dto.TokenRequest
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := decodeJSON(c, &req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
	} else {
		req.Username = c.FormValue("username")
		req.Password = c.FormValue("password")
	}
	if err := validate(h.Validate, req); err != nil {
		return writeMessage(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	result, err := h.Auth.Login(c.Request().Context(), service.LoginInput{
		Email:     req.Username,
		Password:  req.Password,
		IPAddress: stringPtr(c.RealIP()),
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresIn:   result.ExpiresIn,
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return writeMessage(c, http.StatusUnauthorized, msgUnauthorized)
	}
	user, err := h.Auth.GetCurrentUser(c.Request().Context(), identity.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.UserResponseFromEntity(user))
}

// SecurityEvents lists the caller's own audit trail, newest first.
func (h *AuthHandler) SecurityEvents(c echo.Context) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return writeMessage(c, http.StatusUnauthorized, msgUnauthorized)
	}
	limit, _ := parseLimitOffset(c)
	logs, err := h.Auth.SecurityEvents(c.Request().Context(), identity.ID, limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.SecurityEventResponsesFromEntities(logs))
}

func (h *AuthHandler) ListUsers(c echo.Context) error {
	limit, offset := parseLimitOffset(c)
	users, err := h.Auth.ListUsers(c.Request().Context(), limit, offset)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.UserResponsesFromEntities(users))
}

func (h *AuthHandler) ProvisionUser(c echo.Context) error {
	var req dto.ProvisionUserRequest
	if err := bind(c, h.Validate, &req); err != nil {
		return err
	}
	result, err := h.Registration.Provision(c.Request().Context(), service.RegisterInput{
		Email:     req.Email,
		FullName:  req.FullName,
		Role:      req.Role,
		IPAddress: stringPtr(c.RealIP()),
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.MessageResponse{Message: result.Message})
}
