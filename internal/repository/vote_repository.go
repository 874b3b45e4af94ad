package repository

import (
	"context"
	"errors"

	"pollstream/internal/domain/poll"
	pollstream_errors "pollstream/pkg/errors"

	"gorm.io/gorm"
)

type PostgresVoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &PostgresVoteRepository{db: db}
}

func (r *PostgresVoteRepository) GetByUserAndPoll(ctx context.Context, userID, pollID uint) (poll.Vote, error) {
	var v poll.Vote
	err := r.db.WithContext(ctx).Where("user_id = ? AND poll_id = ?", userID, pollID).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll.Vote{}, pollstream_errors.ErrNotFound
		}
		return poll.Vote{}, err
	}
	return v, nil
}

func (r *PostgresVoteRepository) Create(ctx context.Context, v *poll.Vote) error {
	res := r.db.WithContext(ctx).Create(v)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return pollstream_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresVoteRepository) DeleteByUserAndPoll(ctx context.Context, userID, pollID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND poll_id = ?", userID, pollID).
		Delete(&poll.Vote{})
	return res.RowsAffected, res.Error
}

func (r *PostgresVoteRepository) CountsByPoll(ctx context.Context, pollID uint) (map[uint]int64, error) {
	type row struct {
		OptionID uint
		Count    int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&poll.Vote{}).
		Select("option_id, COUNT(option_id) AS count").
		Where("poll_id = ?", pollID).
		Group("option_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.OptionID] = r.Count
	}
	return counts, nil
}

func (r *PostgresVoteRepository) ExistsForOptions(ctx context.Context, optionIDs []uint) (bool, error) {
	if len(optionIDs) == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&poll.Vote{}).
		Where("option_id IN ?", optionIDs).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresVoteRepository) PurgeByPoll(ctx context.Context, pollID uint) error {
	return r.db.WithContext(ctx).Where("poll_id = ?", pollID).Delete(&poll.Vote{}).Error
}

// ListByUser resolves a user's voting history to public identifiers. Votes
// whose option has since been soft-deleted stay in the ledger but are not
// reported.
func (r *PostgresVoteRepository) ListByUser(ctx context.Context, userID uint) ([]UserVote, error) {
	type row struct {
		PollUUID   string
		OptionUUID string
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&poll.Vote{}).
		Select("poll.uuid AS poll_uuid, poll_options.uuid AS option_uuid").
		Joins("JOIN poll ON poll.id = votes.poll_id AND poll.is_active = ?", true).
		Joins("JOIN poll_options ON poll_options.id = votes.option_id AND poll_options.is_active = ?", true).
		Where("votes.user_id = ?", userID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	votes := make([]UserVote, 0, len(rows))
	for _, r := range rows {
		v := UserVote{}
		if err := v.PollUUID.UnmarshalText([]byte(r.PollUUID)); err != nil {
			return nil, err
		}
		if err := v.OptionUUID.UnmarshalText([]byte(r.OptionUUID)); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, nil
}
