package service

import (
	"time"

	"expensetracker/internal/entity"
	"expensetracker/internal/utils"
)

type JWTSessionIssuer struct {
	Manager *utils.JWTManager
}

func (j JWTSessionIssuer) IssueSession(user entity.User) (string, time.Time, error) {
	if j.Manager == nil {
		return "", time.Time{}, ErrInvalidToken
	}
	return j.Manager.Issue(user.ID, user.Email, user.Role, user.IsActive)
}
