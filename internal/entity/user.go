package entity

import (
	"time"
)

const (
	UserRoleUser  = "user"
	UserRoleAdmin = "admin"
)

type User struct {
	ID           int64  `gorm:"primaryKey"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:text;not null"`
	FullName     string `gorm:"type:varchar(255);not null"`
	Role         string `gorm:"type:varchar(50);default:'user';not null"`

	IsActive          bool    `gorm:"default:false;not null"`
	VerificationToken *string `gorm:"type:varchar(64);uniqueIndex"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) PendingVerification() bool {
	return !u.IsActive && u.VerificationToken != nil
}
