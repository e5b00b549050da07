package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingCredential  = errors.New("missing credential")
	ErrMalformedClaims    = errors.New("malformed claims")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrCategoryExists     = errors.New("category already exists")
	ErrCategoryInUse      = errors.New("category is used by expenses")
	ErrInvalidPeriod      = errors.New("invalid period, choose from: day, week, month, year")
)
