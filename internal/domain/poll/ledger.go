package poll

import "time"

// Vote represents the votes table. At most one row per (user, poll) exists at
// any time; changing a vote is delete-then-insert so the ledger always holds
// the user's latest choice.
type Vote struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;uniqueIndex:uq_votes_user_poll,priority:1"`
	PollID    uint `gorm:"not null;uniqueIndex:uq_votes_user_poll,priority:2"`
	OptionID  uint `gorm:"not null;index"`
	CreatedAt time.Time
}

// Like represents the likes table. Rows are toggled, never deleted, so a
// (poll, user) pair appears at most once.
type Like struct {
	ID       uint `gorm:"primaryKey"`
	PollID   uint `gorm:"not null;uniqueIndex:uq_likes_poll_user,priority:1"`
	UserID   uint `gorm:"not null;uniqueIndex:uq_likes_poll_user,priority:2"`
	IsActive bool `gorm:"not null;default:true"`
}

func (Vote) TableName() string {
	return "votes"
}

func (Like) TableName() string {
	return "likes"
}
