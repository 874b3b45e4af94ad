package services

import (
	"context"
	"math"
	"time"

	"pollstream/internal/domain/poll"
	"pollstream/internal/domain/user"
	"pollstream/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// CreatorView is the public identity of a poll's author.
type CreatorView struct {
	UUID uuid.UUID `json:"uuid"`
	Name string    `json:"name"`
}

// OptionView is one option with its live tally.
type OptionView struct {
	UUID       uuid.UUID `json:"uuid"`
	Text       string    `json:"text"`
	Version    int       `json:"version"`
	VoteCount  int64     `json:"vote_count"`
	Percentage float64   `json:"percentage"`
}

// PollView is the full poll detail: metadata, creator identity and the
// recomputed vote summary. Serves as both API response body and event payload.
type PollView struct {
	UUID       uuid.UUID    `json:"uuid"`
	Title      string       `json:"title"`
	Version    int          `json:"version"`
	Likes      int          `json:"likes"`
	TotalVotes int64        `json:"total_votes"`
	CreatedAt  time.Time    `json:"created_at"`
	Creator    CreatorView  `json:"creator"`
	Options    []OptionView `json:"options"`
}

// loadPollView reads the poll's active options, vote counts and creator and
// assembles the detail. Callers pass either the live db or a tx handle.
func loadPollView(ctx context.Context, db *gorm.DB, p poll.Poll) (PollView, error) {
	opts, err := repository.NewOptionRepository(db).ActiveByPollID(ctx, p.ID)
	if err != nil {
		return PollView{}, err
	}
	counts, err := repository.NewVoteRepository(db).CountsByPoll(ctx, p.ID)
	if err != nil {
		return PollView{}, err
	}
	creator, err := repository.NewUserRepository(db).GetByID(ctx, p.CreatorID)
	if err != nil {
		return PollView{}, err
	}
	return assemblePollView(p, creator, opts, counts), nil
}

func assemblePollView(p poll.Poll, creator user.User, opts []poll.Option, counts map[uint]int64) PollView {
	var total int64
	for _, o := range opts {
		total += counts[o.ID]
	}

	views := lo.Map(opts, func(o poll.Option, _ int) OptionView {
		c := counts[o.ID]
		return OptionView{
			UUID:       o.UUID,
			Text:       o.Text,
			Version:    o.Version,
			VoteCount:  c,
			Percentage: percentage(c, total),
		}
	})

	return PollView{
		UUID:       p.UUID,
		Title:      p.Title,
		Version:    p.Version,
		Likes:      p.Likes,
		TotalVotes: total,
		CreatedAt:  p.CreatedAt,
		Creator:    CreatorView{UUID: creator.UUID, Name: creator.Name},
		Options:    views,
	}
}

// percentage returns count/total as a percent rounded to two decimals.
// A poll with no votes reports 0.0 for every option.
func percentage(count, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*10000) / 100
}
