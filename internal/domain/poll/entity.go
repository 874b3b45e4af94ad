package poll

import (
	"time"

	"github.com/google/uuid"
)

// Poll represents the poll table. The integer version column backs the
// optimistic concurrency scheme: every accepted mutation, including structural
// changes to the poll's options, increments it. Polls are never physically
// removed; deletion flips IsActive.
type Poll struct {
	ID        uint      `gorm:"primaryKey"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Title     string    `gorm:"size:300;not null"`
	CreatorID uint      `gorm:"not null;index"`
	Likes     int       `gorm:"not null;default:0"`
	Version   int       `gorm:"not null;default:1"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
}

// Option represents the poll_options table. Votes is a denormalized counter
// kept for display; authoritative counts always come from the votes table.
type Option struct {
	ID        uint      `gorm:"primaryKey"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	PollID    uint      `gorm:"not null;index"`
	Text      string    `gorm:"column:option_name;size:200;not null"`
	Votes     int       `gorm:"not null;default:0"`
	Version   int       `gorm:"not null;default:1"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
}

func (Poll) TableName() string {
	return "poll"
}

func (Option) TableName() string {
	return "poll_options"
}
