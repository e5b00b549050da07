package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"expensetracker/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	msgUnauthorized       = "unauthorized"
	msgInvalidCredentials = "invalid credentials"
	msgInternal           = "internal server error"
)

var errInvalidID = errors.New("invalid id")

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func validate(v *validator.Validate, payload any) error {
	if v == nil {
		return nil
	}
	return v.Struct(payload)
}

// bind decodes and validates the JSON body into target. The returned
// *echo.HTTPError is rendered as a 400.
func bind(c echo.Context, v *validator.Validate, target any) error {
	if err := decodeJSON(c, target); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate(v, target); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func writeError(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]string{"message": err.Error()})
}

func writeMessage(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"message": message})
}

// writeServiceError maps service errors to responses. Anything unknown is
// returned so the error handler answers 500 and the request logger records it.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidPeriod):
		return writeError(c, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrInvalidToken):
		return writeError(c, http.StatusBadRequest, service.ErrInvalidToken)
	case errors.Is(err, service.ErrInvalidCredentials):
		return writeMessage(c, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, service.ErrMissingCredential), errors.Is(err, service.ErrMalformedClaims):
		return writeMessage(c, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, service.ErrForbidden):
		return writeError(c, http.StatusForbidden, err)
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, http.StatusNotFound, err)
	case errors.Is(err, service.ErrDuplicateEmail), errors.Is(err, service.ErrCategoryExists),
		errors.Is(err, service.ErrCategoryInUse):
		return writeError(c, http.StatusConflict, err)
	}
	return err
}

// NewHTTPErrorHandler renders every error as {"message": ...}. Errors that are
// not *echo.HTTPError become a generic 500.
func NewHTTPErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		message := msgInternal

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		} else {
			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"uri":    c.Request().RequestURI,
			}).Error("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = writeMessage(c, status, message)
		}
		if err != nil {
			logger.WithError(err).Warn("write error response")
		}
	}
}

func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

func parseLimitOffset(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func stringPtr(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
