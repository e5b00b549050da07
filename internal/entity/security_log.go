package entity

import (
	"time"

	"gorm.io/datatypes"
)

type SecurityAction string

const (
	Registered      SecurityAction = "register"
	EmailVerified   SecurityAction = "email_verified"
	LoginSuccess    SecurityAction = "login_success"
	LoginFailed     SecurityAction = "login_failed"
	UserProvisioned SecurityAction = "user_provisioned"
)

type SecurityLog struct {
	ID int64 `gorm:"primaryKey"`

	UserID *int64 `gorm:"index"`
	User   *User  `gorm:"constraint:OnDelete:SET NULL"`

	IPAddress *string        `gorm:"type:varchar(45)"`
	Action    SecurityAction `gorm:"type:varchar(32);not null"`

	Metadata datatypes.JSON

	CreatedAt time.Time
}
