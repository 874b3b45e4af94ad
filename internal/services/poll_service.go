package services

import (
	"context"
	"fmt"
	"strings"

	"pollstream/internal/domain/poll"
	"pollstream/internal/domain/user"
	"pollstream/internal/events"
	"pollstream/internal/repository"
	pollstream_errors "pollstream/pkg/errors"
	"pollstream/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

const (
	minCreateOptions = 2
	maxBatchOptions  = 10
)

// PollService orchestrates the poll lifecycle. Every mutation runs inside a
// single transaction with repositories bound to the tx handle; events are
// published only after the transaction has committed, so subscribers never
// see state that was rolled back.
type PollService struct {
	db        *gorm.DB
	publisher events.Publisher
	logger    *logger.Logger
}

func NewPollService(db *gorm.DB, publisher events.Publisher, l *logger.Logger) *PollService {
	return &PollService{db: db, publisher: publisher, logger: l}
}

type CreatePollInput struct {
	Title   string
	Options []string
}

type EditOptionPatch struct {
	UUID    uuid.UUID
	Version int
	Text    string
}

type EditPollInput struct {
	Version int
	Title   *string
	Options []EditOptionPatch
}

type AddOptionsInput struct {
	Version int
	Options []string
}

type DeleteOptionsInput struct {
	Version     int
	OptionUUIDs []uuid.UUID
}

// Create stores a new poll at version 1 with its initial active options.
func (s *PollService) Create(ctx context.Context, actor user.User, in CreatePollInput) (PollView, error) {
	if err := validateTitle(in.Title); err != nil {
		return PollView{}, err
	}
	if len(in.Options) < minCreateOptions || len(in.Options) > maxBatchOptions {
		return PollView{}, fmt.Errorf("%w: a poll needs %d-%d options",
			pollstream_errors.ErrInvalidInput, minCreateOptions, maxBatchOptions)
	}
	for _, text := range in.Options {
		if err := validateOptionText(text); err != nil {
			return PollView{}, err
		}
	}

	var created poll.Poll
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		polls := repository.NewPollRepository(tx)
		options := repository.NewOptionRepository(tx)

		p := &poll.Poll{
			UUID:      uuid.New(),
			Title:     strings.TrimSpace(in.Title),
			CreatorID: actor.ID,
			Version:   1,
			IsActive:  true,
		}
		if err := polls.Create(ctx, p); err != nil {
			return err
		}

		opts := lo.Map(in.Options, func(text string, _ int) *poll.Option {
			return &poll.Option{
				UUID:     uuid.New(),
				PollID:   p.ID,
				Text:     strings.TrimSpace(text),
				Version:  1,
				IsActive: true,
			}
		})
		if err := options.CreateBatch(ctx, opts); err != nil {
			return err
		}

		created = *p
		return nil
	})
	if err != nil {
		return PollView{}, err
	}

	view, err := loadPollView(ctx, s.db, created)
	if err != nil {
		return PollView{}, err
	}

	s.publish(ctx, events.EventTypePollCreated, created.UUID, view)
	return view, nil
}

// Edit applies a batch of title and option-text changes. The poll version must
// match the stored one, each patched option's version must match too, and the
// poll version advances once for the whole accepted request. Identical text is
// skipped; a request that changes nothing leaves every version untouched.
func (s *PollService) Edit(ctx context.Context, actor user.User, pollUUID uuid.UUID, in EditPollInput) (PollView, error) {
	if in.Title == nil && len(in.Options) == 0 {
		return PollView{}, fmt.Errorf("%w: nothing to edit", pollstream_errors.ErrInvalidInput)
	}
	if len(in.Options) > maxBatchOptions {
		return PollView{}, fmt.Errorf("%w: at most %d option patches",
			pollstream_errors.ErrInvalidInput, maxBatchOptions)
	}
	if in.Title != nil {
		if err := validateTitle(*in.Title); err != nil {
			return PollView{}, err
		}
	}
	for _, patch := range in.Options {
		if err := validateOptionText(patch.Text); err != nil {
			return PollView{}, err
		}
	}

	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		polls := repository.NewPollRepository(tx)
		options := repository.NewOptionRepository(tx)

		p, err := s.loadOwned(ctx, polls, pollUUID, actor)
		if err != nil {
			return err
		}
		if p.Version != in.Version {
			return pollstream_errors.NewVersionConflict("poll", p.UUID, in.Version, p.Version)
		}

		active, err := options.ActiveByPollID(ctx, p.ID)
		if err != nil {
			return err
		}
		byUUID := lo.KeyBy(active, func(o poll.Option) uuid.UUID { return o.UUID })

		for _, patch := range in.Options {
			opt, ok := byUUID[patch.UUID]
			if !ok {
				return fmt.Errorf("%w: option %s does not belong to poll %s",
					pollstream_errors.ErrInvalidInput, patch.UUID, p.UUID)
			}
			if patch.Version != opt.Version {
				return pollstream_errors.NewVersionConflict("option", opt.UUID, patch.Version, opt.Version)
			}
			text := strings.TrimSpace(patch.Text)
			if text == opt.Text {
				continue
			}
			if err := options.UpdateTextVersioned(ctx, opt, patch.Version, text); err != nil {
				return err
			}
			changed = true
		}

		updates := map[string]interface{}{}
		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title != p.Title {
				updates["title"] = title
			}
		}
		if len(updates) > 0 || changed {
			changed = true
			return polls.UpdateVersioned(ctx, p, in.Version, updates)
		}
		return nil
	})
	if err != nil {
		return PollView{}, err
	}

	view, err := s.detailByUUID(ctx, pollUUID)
	if err != nil {
		return PollView{}, err
	}
	if changed {
		s.publish(ctx, events.EventTypePollUpdated, pollUUID, view)
	}
	return view, nil
}

// AddOptions appends new active options to the poll. The poll version advances
// once per inserted option, and every existing vote is purged: the changed
// option set invalidates prior choices.
func (s *PollService) AddOptions(ctx context.Context, actor user.User, pollUUID uuid.UUID, in AddOptionsInput) (PollView, error) {
	if len(in.Options) < 1 || len(in.Options) > maxBatchOptions {
		return PollView{}, fmt.Errorf("%w: between 1 and %d options per request",
			pollstream_errors.ErrInvalidInput, maxBatchOptions)
	}
	for _, text := range in.Options {
		if err := validateOptionText(text); err != nil {
			return PollView{}, err
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		polls := repository.NewPollRepository(tx)
		options := repository.NewOptionRepository(tx)
		votes := repository.NewVoteRepository(tx)

		p, err := s.loadOwned(ctx, polls, pollUUID, actor)
		if err != nil {
			return err
		}
		if p.Version != in.Version {
			return pollstream_errors.NewVersionConflict("poll", p.UUID, in.Version, p.Version)
		}

		opts := lo.Map(in.Options, func(text string, _ int) *poll.Option {
			return &poll.Option{
				UUID:     uuid.New(),
				PollID:   p.ID,
				Text:     strings.TrimSpace(text),
				Version:  1,
				IsActive: true,
			}
		})
		if err := options.CreateBatch(ctx, opts); err != nil {
			return err
		}

		if err := polls.BumpVersionCAS(ctx, p, in.Version, len(opts)); err != nil {
			return err
		}

		if err := votes.PurgeByPoll(ctx, p.ID); err != nil {
			return err
		}
		return options.ZeroVotes(ctx, p.ID)
	})
	if err != nil {
		return PollView{}, err
	}

	view, err := s.detailByUUID(ctx, pollUUID)
	if err != nil {
		return PollView{}, err
	}
	s.publish(ctx, events.EventTypePollOptionsAdded, pollUUID, view)
	return view, nil
}

// DeleteOptions soft-deletes a batch of options. The whole batch fails if any
// UUID is not an active option of this poll. Votes are purged only when a
// deleted option had votes; the poll version advances once for the batch.
func (s *PollService) DeleteOptions(ctx context.Context, actor user.User, pollUUID uuid.UUID, in DeleteOptionsInput) (PollView, error) {
	ids := lo.Uniq(in.OptionUUIDs)
	if len(ids) == 0 {
		return PollView{}, fmt.Errorf("%w: no options given", pollstream_errors.ErrInvalidInput)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		polls := repository.NewPollRepository(tx)
		options := repository.NewOptionRepository(tx)
		votes := repository.NewVoteRepository(tx)

		p, err := s.loadOwned(ctx, polls, pollUUID, actor)
		if err != nil {
			return err
		}
		if p.Version != in.Version {
			return pollstream_errors.NewVersionConflict("poll", p.UUID, in.Version, p.Version)
		}

		active, err := options.ActiveByPollID(ctx, p.ID)
		if err != nil {
			return err
		}
		byUUID := lo.KeyBy(active, func(o poll.Option) uuid.UUID { return o.UUID })

		rowIDs := make([]uint, 0, len(ids))
		for _, id := range ids {
			opt, ok := byUUID[id]
			if !ok {
				return fmt.Errorf("%w: option %s does not belong to poll %s",
					pollstream_errors.ErrInvalidInput, id, p.UUID)
			}
			rowIDs = append(rowIDs, opt.ID)
		}

		hadVotes, err := votes.ExistsForOptions(ctx, rowIDs)
		if err != nil {
			return err
		}

		if err := options.SoftDeleteByIDs(ctx, p.ID, rowIDs); err != nil {
			return err
		}

		if hadVotes {
			if err := votes.PurgeByPoll(ctx, p.ID); err != nil {
				return err
			}
			if err := options.ZeroVotes(ctx, p.ID); err != nil {
				return err
			}
		}

		return polls.BumpVersionCAS(ctx, p, in.Version, 1)
	})
	if err != nil {
		return PollView{}, err
	}

	view, err := s.detailByUUID(ctx, pollUUID)
	if err != nil {
		return PollView{}, err
	}
	s.publish(ctx, events.EventTypePollOptionsDeleted, pollUUID, view)
	return view, nil
}

// Delete soft-deletes the poll and all of its options. Votes and likes stay
// in their tables; reads filter on active rows.
func (s *PollService) Delete(ctx context.Context, actor user.User, pollUUID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		polls := repository.NewPollRepository(tx)
		options := repository.NewOptionRepository(tx)

		p, err := s.loadOwned(ctx, polls, pollUUID, actor)
		if err != nil {
			return err
		}

		active, err := options.ActiveByPollID(ctx, p.ID)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			rowIDs := lo.Map(active, func(o poll.Option, _ int) uint { return o.ID })
			if err := options.SoftDeleteByIDs(ctx, p.ID, rowIDs); err != nil {
				return err
			}
		}

		return polls.SoftDelete(ctx, p.ID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.EventTypePollDeleted, pollUUID, map[string]string{"uuid": pollUUID.String()})
	return nil
}

// List returns every active poll with its live summary.
func (s *PollService) List(ctx context.Context) ([]PollView, error) {
	polls, err := repository.NewPollRepository(s.db).ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(polls) == 0 {
		return []PollView{}, nil
	}

	creatorIDs := lo.Uniq(lo.Map(polls, func(p poll.Poll, _ int) uint { return p.CreatorID }))
	creators, err := repository.NewUserRepository(s.db).GetByIDs(ctx, creatorIDs)
	if err != nil {
		return nil, err
	}

	options := repository.NewOptionRepository(s.db)
	votes := repository.NewVoteRepository(s.db)

	views := make([]PollView, 0, len(polls))
	for _, p := range polls {
		opts, err := options.ActiveByPollID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		counts, err := votes.CountsByPoll(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, assemblePollView(p, creators[p.CreatorID], opts, counts))
	}
	return views, nil
}

// Get returns one active poll's detail.
func (s *PollService) Get(ctx context.Context, pollUUID uuid.UUID) (PollView, error) {
	return s.detailByUUID(ctx, pollUUID)
}

func (s *PollService) detailByUUID(ctx context.Context, pollUUID uuid.UUID) (PollView, error) {
	p, err := repository.NewPollRepository(s.db).GetActiveByUUID(ctx, pollUUID)
	if err != nil {
		return PollView{}, err
	}
	return loadPollView(ctx, s.db, p)
}

func (s *PollService) loadOwned(ctx context.Context, polls repository.PollRepository, pollUUID uuid.UUID, actor user.User) (poll.Poll, error) {
	p, err := polls.GetActiveByUUID(ctx, pollUUID)
	if err != nil {
		return poll.Poll{}, err
	}
	if p.CreatorID != actor.ID {
		return poll.Poll{}, pollstream_errors.ErrForbidden
	}
	return p, nil
}

func (s *PollService) publish(ctx context.Context, eventType string, pollUUID uuid.UUID, payload interface{}) {
	if s.publisher == nil {
		return
	}
	env := events.NewEnvelope(eventType, pollUUID.String(), payload)
	if err := s.publisher.Publish(ctx, env); err != nil && s.logger != nil {
		s.logger.Errorf("publish %s for poll %s failed: %s", eventType, pollUUID, err)
	}
}

func validateTitle(title string) error {
	t := strings.TrimSpace(title)
	if len(t) < 3 || len(t) > 300 {
		return fmt.Errorf("%w: title must be 3-300 characters", pollstream_errors.ErrInvalidInput)
	}
	return nil
}

func validateOptionText(text string) error {
	t := strings.TrimSpace(text)
	if len(t) < 1 || len(t) > 200 {
		return fmt.Errorf("%w: option text must be 1-200 characters", pollstream_errors.ErrInvalidInput)
	}
	return nil
}
