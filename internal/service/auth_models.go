package service

import "time"

type RegisterInput struct {
	Email     string
	FullName  string
	Role      string
	Password  string
	IPAddress *string
}

type RegisterResult struct {
	UserID  int64
	Active  bool
	Message string
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress *string
}

type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
	ExpiresAt   time.Time
}
