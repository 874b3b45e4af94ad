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

// VoteService owns the vote ledger: at most one vote per (user, poll), where
// changing a vote replaces the previous row in the same transaction.
type VoteService struct {
	db        *gorm.DB
	publisher events.Publisher
	logger    *logger.Logger
}

func NewVoteService(db *gorm.DB, publisher events.Publisher, l *logger.Logger) *VoteService {
	return &VoteService{db: db, publisher: publisher, logger: l}
}

// CastVote records or replaces the user's vote on the poll and returns the
// recomputed summary. Voting for the already-chosen option is a no-op.
func (s *VoteService) CastVote(ctx context.Context, actor user.User, pollUUID, optionUUID uuid.UUID) (PollView, error) {
	var (
		p       poll.Poll
		changed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		polls := repository.NewPollRepository(tx)
		options := repository.NewOptionRepository(tx)
		votes := repository.NewVoteRepository(tx)

		var err error
		p, err = polls.GetActiveByUUID(ctx, pollUUID)
		if err != nil {
			return err
		}

		opt, err := options.GetActiveByUUID(ctx, optionUUID)
		if err != nil {
			return err
		}
		if opt.PollID != p.ID {
			return pollstream_errors.ErrNotFound
		}

		existing, err := votes.GetByUserAndPoll(ctx, actor.ID, p.ID)
		switch {
		case err == nil:
			if existing.OptionID == opt.ID {
				return nil
			}
			if _, err := votes.DeleteByUserAndPoll(ctx, actor.ID, p.ID); err != nil {
				return err
			}
			if err := options.AdjustVotes(ctx, existing.OptionID, -1); err != nil {
				return err
			}
		case errors.Is(err, pollstream_errors.ErrNotFound):
		default:
			return err
		}

		v := &poll.Vote{UserID: actor.ID, PollID: p.ID, OptionID: opt.ID}
		if err := votes.Create(ctx, v); err != nil {
			return err
		}
		if err := options.AdjustVotes(ctx, opt.ID, 1); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return PollView{}, err
	}

	view, err := loadPollView(ctx, s.db, p)
	if err != nil {
		return PollView{}, err
	}
	if changed {
		s.publish(ctx, events.EventTypePollVoted, p.UUID, view)
	}
	return view, nil
}

// MyVotes returns the user's voting history as (poll uuid, option uuid)
// pairs, skipping votes whose poll or option has been deactivated.
func (s *VoteService) MyVotes(ctx context.Context, actor user.User) ([]repository.UserVote, error) {
	return repository.NewVoteRepository(s.db).ListByUser(ctx, actor.ID)
}

func (s *VoteService) publish(ctx context.Context, eventType string, pollUUID uuid.UUID, payload interface{}) {
	if s.publisher == nil {
		return
	}
	env := events.NewEnvelope(eventType, pollUUID.String(), payload)
	if err := s.publisher.Publish(ctx, env); err != nil && s.logger != nil {
		s.logger.Errorf("publish %s for poll %s failed: %s", eventType, pollUUID, err)
	}
}
