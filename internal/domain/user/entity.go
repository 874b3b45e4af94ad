package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents the users table.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	UUID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Name         string    `gorm:"size:50;not null"`
	Email        string    `gorm:"size:50;uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}
