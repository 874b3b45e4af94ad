package repository

import (
	"context"
	"errors"

	"pollstream/internal/domain/poll"
	pollstream_errors "pollstream/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresLikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &PostgresLikeRepository{db: db}
}

func (r *PostgresLikeRepository) GetByUserAndPoll(ctx context.Context, userID, pollID uint) (poll.Like, error) {
	var l poll.Like
	err := r.db.WithContext(ctx).Where("user_id = ? AND poll_id = ?", userID, pollID).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll.Like{}, pollstream_errors.ErrNotFound
		}
		return poll.Like{}, err
	}
	return l, nil
}

func (r *PostgresLikeRepository) Create(ctx context.Context, l *poll.Like) error {
	res := r.db.WithContext(ctx).Create(l)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return pollstream_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresLikeRepository) SetActive(ctx context.Context, likeID uint, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&poll.Like{}).
		Where("id = ?", likeID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pollstream_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresLikeRepository) ActivePollUUIDsByUser(ctx context.Context, userID uint) ([]uuid.UUID, error) {
	var raw []string
	err := r.db.WithContext(ctx).
		Model(&poll.Like{}).
		Select("poll.uuid").
		Joins("JOIN poll ON poll.id = likes.poll_id AND poll.is_active = ?", true).
		Where("likes.user_id = ? AND likes.is_active = ?", userID, true).
		Scan(&raw).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
