package entity

import "time"

type Category struct {
	ID     int64  `gorm:"primaryKey"`
	Name   string `gorm:"type:varchar(100);uniqueIndex;not null"`
	UserID int64  `gorm:"not null;index"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
