package repository

import (
	"context"
	"errors"

	"pollstream/internal/domain/poll"
	pollstream_errors "pollstream/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresOptionRepository struct {
	db *gorm.DB
}

func NewOptionRepository(db *gorm.DB) OptionRepository {
	return &PostgresOptionRepository{db: db}
}

func (r *PostgresOptionRepository) CreateBatch(ctx context.Context, opts []*poll.Option) error {
	if len(opts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(opts).Error
}

func (r *PostgresOptionRepository) ActiveByPollID(ctx context.Context, pollID uint) ([]poll.Option, error) {
	var opts []poll.Option
	err := r.db.WithContext(ctx).
		Where("poll_id = ? AND is_active = ?", pollID, true).
		Order("id ASC").
		Find(&opts).Error
	if err != nil {
		return nil, err
	}
	return opts, nil
}

func (r *PostgresOptionRepository) GetActiveByUUID(ctx context.Context, id uuid.UUID) (poll.Option, error) {
	var o poll.Option
	err := r.db.WithContext(ctx).Where("uuid = ? AND is_active = ?", id, true).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll.Option{}, pollstream_errors.ErrNotFound
		}
		return poll.Option{}, err
	}
	return o, nil
}

// UpdateTextVersioned rewrites an option's text under the option's own
// version guard, advancing it by 1.
func (r *PostgresOptionRepository) UpdateTextVersioned(ctx context.Context, o poll.Option, expected int, text string) error {
	res := r.db.WithContext(ctx).
		Model(&poll.Option{}).
		Where("id = ? AND version = ? AND is_active = ?", o.ID, expected, true).
		Updates(map[string]interface{}{
			"option_name": text,
			"version":     gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var current poll.Option
		err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", o.ID, true).First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pollstream_errors.ErrNotFound
			}
			return err
		}
		return pollstream_errors.NewVersionConflict("option", o.UUID, expected, current.Version)
	}
	return nil
}

func (r *PostgresOptionRepository) SoftDeleteByIDs(ctx context.Context, pollID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&poll.Option{}).
		Where("poll_id = ? AND id IN ?", pollID, ids).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(ids)) {
		return pollstream_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresOptionRepository) AdjustVotes(ctx context.Context, optionID uint, delta int) error {
	return r.db.WithContext(ctx).
		Model(&poll.Option{}).
		Where("id = ?", optionID).
		Update("votes", gorm.Expr("votes + ?", delta)).Error
}

func (r *PostgresOptionRepository) ZeroVotes(ctx context.Context, pollID uint) error {
	return r.db.WithContext(ctx).
		Model(&poll.Option{}).
		Where("poll_id = ?", pollID).
		Update("votes", 0).Error
}
