package entity

import "time"

type Expense struct {
	ID         int64     `gorm:"primaryKey"`
	UserID     int64     `gorm:"not null;index"`
	User       *User     `gorm:"constraint:OnDelete:CASCADE"`
	CategoryID int64     `gorm:"not null;index"`
	Category   *Category `gorm:"constraint:OnDelete:RESTRICT"`

	Amount      int64  `gorm:"not null"`
	Description string `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

type CategoryTotal struct {
	CategoryID int64 `json:"category_id"`
	Total      int64 `json:"total"`
}
