package repository

import (
	"context"

	"pollstream/internal/domain/poll"
	"pollstream/internal/domain/user"

	"github.com/google/uuid"
)

// PollRepository persists polls. Versioned updates implement the
// compare-and-swap contract: the write only lands if the stored version still
// equals the expected one, and the version advances atomically with it.
type PollRepository interface {
	Create(ctx context.Context, p *poll.Poll) error
	GetByID(ctx context.Context, id uint) (poll.Poll, error)
	GetActiveByUUID(ctx context.Context, id uuid.UUID) (poll.Poll, error)
	ListActive(ctx context.Context) ([]poll.Poll, error)
	UpdateVersioned(ctx context.Context, p poll.Poll, expected int, updates map[string]interface{}) error
	BumpVersionCAS(ctx context.Context, p poll.Poll, expected, times int) error
	AdjustLikes(ctx context.Context, pollID uint, delta int) error
	SoftDelete(ctx context.Context, pollID uint) error
}

// OptionRepository persists poll options.
type OptionRepository interface {
	CreateBatch(ctx context.Context, opts []*poll.Option) error
	ActiveByPollID(ctx context.Context, pollID uint) ([]poll.Option, error)
	GetActiveByUUID(ctx context.Context, id uuid.UUID) (poll.Option, error)
	UpdateTextVersioned(ctx context.Context, o poll.Option, expected int, text string) error
	SoftDeleteByIDs(ctx context.Context, pollID uint, ids []uint) error
	AdjustVotes(ctx context.Context, optionID uint, delta int) error
	ZeroVotes(ctx context.Context, pollID uint) error
}

// VoteRepository is the vote ledger.
type VoteRepository interface {
	GetByUserAndPoll(ctx context.Context, userID, pollID uint) (poll.Vote, error)
	Create(ctx context.Context, v *poll.Vote) error
	DeleteByUserAndPoll(ctx context.Context, userID, pollID uint) (int64, error)
	CountsByPoll(ctx context.Context, pollID uint) (map[uint]int64, error)
	ExistsForOptions(ctx context.Context, optionIDs []uint) (bool, error)
	PurgeByPoll(ctx context.Context, pollID uint) error
	ListByUser(ctx context.Context, userID uint) ([]UserVote, error)
}

// UserVote is a row of a user's voting history, keyed by public identifiers.
type UserVote struct {
	PollUUID   uuid.UUID
	OptionUUID uuid.UUID
}

// LikeRepository persists like toggle state.
type LikeRepository interface {
	GetByUserAndPoll(ctx context.Context, userID, pollID uint) (poll.Like, error)
	Create(ctx context.Context, l *poll.Like) error
	SetActive(ctx context.Context, likeID uint, active bool) error
	ActivePollUUIDsByUser(ctx context.Context, userID uint) ([]uuid.UUID, error)
}

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uint) (user.User, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]user.User, error)
}
