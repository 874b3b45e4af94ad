package repository

import (
	"context"
	"errors"

	"pollstream/internal/domain/poll"
	pollstream_errors "pollstream/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresPollRepository struct {
	db *gorm.DB
}

func NewPollRepository(db *gorm.DB) PollRepository {
	return &PostgresPollRepository{db: db}
}

func (r *PostgresPollRepository) Create(ctx context.Context, p *poll.Poll) error {
	res := r.db.WithContext(ctx).Create(p)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return pollstream_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresPollRepository) GetByID(ctx context.Context, id uint) (poll.Poll, error) {
	var p poll.Poll
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll.Poll{}, pollstream_errors.ErrNotFound
		}
		return poll.Poll{}, err
	}
	return p, nil
}

func (r *PostgresPollRepository) GetActiveByUUID(ctx context.Context, id uuid.UUID) (poll.Poll, error) {
	var p poll.Poll
	err := r.db.WithContext(ctx).Where("uuid = ? AND is_active = ?", id, true).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll.Poll{}, pollstream_errors.ErrNotFound
		}
		return poll.Poll{}, err
	}
	return p, nil
}

func (r *PostgresPollRepository) ListActive(ctx context.Context) ([]poll.Poll, error) {
	var polls []poll.Poll
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Find(&polls).Error
	if err != nil {
		return nil, err
	}
	return polls, nil
}

// UpdateVersioned applies a content change guarded by the expected version.
// The version advances by exactly 1 in the same statement; zero affected rows
// means another writer got there first (or the poll vanished).
func (r *PostgresPollRepository) UpdateVersioned(ctx context.Context, p poll.Poll, expected int, updates map[string]interface{}) error {
	values := map[string]interface{}{"version": gorm.Expr("version + 1")}
	for k, v := range updates {
		values[k] = v
	}

	res := r.db.WithContext(ctx).
		Model(&poll.Poll{}).
		Where("id = ? AND version = ? AND is_active = ?", p.ID, expected, true).
		Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.versionConflict(ctx, p, expected)
	}
	return nil
}

// BumpVersionCAS advances the version by the given number of steps, used when
// structural option changes cascade onto the parent poll.
func (r *PostgresPollRepository) BumpVersionCAS(ctx context.Context, p poll.Poll, expected, times int) error {
	res := r.db.WithContext(ctx).
		Model(&poll.Poll{}).
		Where("id = ? AND version = ? AND is_active = ?", p.ID, expected, true).
		Update("version", gorm.Expr("version + ?", times))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.versionConflict(ctx, p, expected)
	}
	return nil
}

func (r *PostgresPollRepository) versionConflict(ctx context.Context, p poll.Poll, expected int) error {
	current, err := r.GetActiveByUUID(ctx, p.UUID)
	if err != nil {
		return err
	}
	return pollstream_errors.NewVersionConflict("poll", p.UUID, expected, current.Version)
}

func (r *PostgresPollRepository) AdjustLikes(ctx context.Context, pollID uint, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&poll.Poll{}).
		Where("id = ?", pollID).
		Update("likes", gorm.Expr("likes + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pollstream_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresPollRepository) SoftDelete(ctx context.Context, pollID uint) error {
	res := r.db.WithContext(ctx).
		Model(&poll.Poll{}).
		Where("id = ? AND is_active = ?", pollID, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pollstream_errors.ErrNotFound
	}
	return nil
}
