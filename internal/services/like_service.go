package services

import (
	"context"
	"errors"

	"pollstream/internal/domain/poll"
	"pollstream/internal/domain/user"
	"pollstream/internal/events"
	"pollstream/internal/repository"
	pollstream_errors "pollstream/pkg/errors"
	"pollstream/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LikeService owns the like toggle. A (poll, user) row is created once and
// flipped thereafter; the poll's like counter moves with every flip.
type LikeService struct {
	db        *gorm.DB
	publisher events.Publisher
	logger    *logger.Logger
}

func NewLikeService(db *gorm.DB, publisher events.Publisher, l *logger.Logger) *LikeService {
	return &LikeService{db: db, publisher: publisher, logger: l}
}

// LikeResult is the post-toggle state.
type LikeResult struct {
	PollUUID uuid.UUID `json:"poll_uuid"`
	Liked    bool      `json:"liked"`
	Likes    int       `json:"likes"`
}

// Toggle flips the user's like on the poll and returns the new state.
func (s *LikeService) Toggle(ctx context.Context, actor user.User, pollUUID uuid.UUID) (LikeResult, error) {
	var result LikeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		polls := repository.NewPollRepository(tx)
		likes := repository.NewLikeRepository(tx)

		p, err := polls.GetActiveByUUID(ctx, pollUUID)
		if err != nil {
			return err
		}

		existing, err := likes.GetByUserAndPoll(ctx, actor.ID, p.ID)
		var liked bool
		switch {
		case errors.Is(err, pollstream_errors.ErrNotFound):
			liked = true
			if err := likes.Create(ctx, &poll.Like{PollID: p.ID, UserID: actor.ID, IsActive: true}); err != nil {
				return err
			}
		case err == nil:
			liked = !existing.IsActive
			if err := likes.SetActive(ctx, existing.ID, liked); err != nil {
				return err
			}
		default:
			return err
		}

		delta := 1
		if !liked {
			delta = -1
		}
		if err := polls.AdjustLikes(ctx, p.ID, delta); err != nil {
			return err
		}

		// Report the stored counter, not the pre-update read plus delta:
		// another writer may have moved it since the poll was fetched.
		updated, err := polls.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}

		result = LikeResult{PollUUID: p.UUID, Liked: liked, Likes: updated.Likes}
		return nil
	})
	if err != nil {
		return LikeResult{}, err
	}

	eventType := events.EventTypePollLiked
	if !result.Liked {
		eventType = events.EventTypePollUnliked
	}
	s.publish(ctx, eventType, result.PollUUID, result)
	return result, nil
}

// MyLikes returns the UUIDs of active polls the user currently likes.
func (s *LikeService) MyLikes(ctx context.Context, actor user.User) ([]uuid.UUID, error) {
	return repository.NewLikeRepository(s.db).ActivePollUUIDsByUser(ctx, actor.ID)
}

func (s *LikeService) publish(ctx context.Context, eventType string, pollUUID uuid.UUID, payload interface{}) {
	if s.publisher == nil {
		return
	}
	env := events.NewEnvelope(eventType, pollUUID.String(), payload)
	if err := s.publisher.Publish(ctx, env); err != nil && s.logger != nil {
		s.logger.Errorf("publish %s for poll %s failed: %s", eventType, pollUUID, err)
	}
}
