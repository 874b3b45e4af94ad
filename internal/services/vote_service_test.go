package services

import (
	"context"
	"testing"

	"pollstream/internal/events"
	pollstream_errors "pollstream/pkg/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastVote(t *testing.T) {
	db := newTestDB(t)
	pub := &capturingPublisher{}
	polls := NewPollService(db, pub, nil)
	votes := NewVoteService(db, pub, nil)
	creator := newTestUser(t, db, "alice")
	voter := newTestUser(t, db, "bob")

	created, err := polls.Create(context.Background(), creator, CreatePollInput{
		Title:   "Lunch spot",
		Options: []string{"Tacos", "Ramen"},
	})
	require.NoError(t, err)

	view, err := votes.CastVote(context.Background(), voter, created.UUID, created.Options[0].UUID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), view.TotalVotes)
	byUUID := lo.KeyBy(view.Options, func(o OptionView) uuid.UUID { return o.UUID })
	assert.Equal(t, int64(1), byUUID[created.Options[0].UUID].VoteCount)
	assert.Equal(t, 100.0, byUUID[created.Options[0].UUID].Percentage)
	assert.Equal(t, int64(0), byUUID[created.Options[1].UUID].VoteCount)
	assert.Equal(t, 0.0, byUUID[created.Options[1].UUID].Percentage)

	// Voting does not touch the poll version.
	assert.Equal(t, 1, view.Version)
	assert.Contains(t, pub.types(), events.EventTypePollVoted)
}

func TestCastVoteReplacesPrevious(t *testing.T) {
	db := newTestDB(t)
	polls := NewPollService(db, nil, nil)
	votes := NewVoteService(db, nil, nil)
	creator := newTestUser(t, db, "alice")
	voter := newTestUser(t, db, "bob")

	created, err := polls.Create(context.Background(), creator, CreatePollInput{
		Title:   "Changing my mind",
		Options: []string{"A", "B"},
	})
	require.NoError(t, err)

	_, err = votes.CastVote(context.Background(), voter, created.UUID, created.Options[0].UUID)
	require.NoError(t, err)

	view, err := votes.CastVote(context.Background(), voter, created.UUID, created.Options[1].UUID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), view.TotalVotes)
	byUUID := lo.KeyBy(view.Options, func(o OptionView) uuid.UUID { return o.UUID })
	assert.Equal(t, int64(0), byUUID[created.Options[0].UUID].VoteCount)
	assert.Equal(t, int64(1), byUUID[created.Options[1].UUID].VoteCount)

	rows, err := votes.MyVotes(context.Background(), voter)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, created.Options[1].UUID, rows[0].OptionUUID)
}

func TestCastVoteSameOptionIsNoop(t *testing.T) {
	db := newTestDB(t)
	pub := &capturingPublisher{}
	polls := NewPollService(db, pub, nil)
	votes := NewVoteService(db, pub, nil)
	creator := newTestUser(t, db, "alice")
	voter := newTestUser(t, db, "bob")

	created, err := polls.Create(context.Background(), creator, CreatePollInput{
		Title:   "Committed voter",
		Options: []string{"A", "B"},
	})
	require.NoError(t, err)

	_, err = votes.CastVote(context.Background(), voter, created.UUID, created.Options[0].UUID)
	require.NoError(t, err)
	votedEvents := lo.Count(pub.types(), events.EventTypePollVoted)

	view, err := votes.CastVote(context.Background(), voter, created.UUID, created.Options[0].UUID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), view.TotalVotes)
	assert.Equal(t, votedEvents, lo.Count(pub.types(), events.EventTypePollVoted))
}

func TestCastVoteRejectsForeignOption(t *testing.T) {
	db := newTestDB(t)
	polls := NewPollService(db, nil, nil)
	votes := NewVoteService(db, nil, nil)
	creator := newTestUser(t, db, "alice")
	voter := newTestUser(t, db, "bob")

	first, err := polls.Create(context.Background(), creator, CreatePollInput{
		Title:   "First poll",
		Options: []string{"A", "B"},
	})
	require.NoError(t, err)
	second, err := polls.Create(context.Background(), creator, CreatePollInput{
		Title:   "Second poll",
		Options: []string{"C", "D"},
	})
	require.NoError(t, err)

	_, err = votes.CastVote(context.Background(), voter, first.UUID, second.Options[0].UUID)
	assert.ErrorIs(t, err, pollstream_errors.ErrNotFound)

	_, err = votes.CastVote(context.Background(), voter, first.UUID, uuid.New())
	assert.ErrorIs(t, err, pollstream_errors.ErrNotFound)
}

func TestSummaryRounding(t *testing.T) {
	db := newTestDB(t)
	polls := NewPollService(db, nil, nil)
	votes := NewVoteService(db, nil, nil)
	creator := newTestUser(t, db, "alice")

	created, err := polls.Create(context.Background(), creator, CreatePollInput{
		Title:   "Favorite color?",
		Options: []string{"Red", "Blue", "Green"},
	})
	require.NoError(t, err)

	voters := []string{"v1", "v2", "v3"}
	choices := []uuid.UUID{created.Options[0].UUID, created.Options[0].UUID, created.Options[1].UUID}
	for i, name := range voters {
		voter := newTestUser(t, db, name)
		_, err := votes.CastVote(context.Background(), voter, created.UUID, choices[i])
		require.NoError(t, err)
	}

	view, err := polls.Get(context.Background(), created.UUID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), view.TotalVotes)
	byUUID := lo.KeyBy(view.Options, func(o OptionView) uuid.UUID { return o.UUID })
	assert.Equal(t, 66.67, byUUID[created.Options[0].UUID].Percentage)
	assert.Equal(t, 33.33, byUUID[created.Options[1].UUID].Percentage)
	assert.Equal(t, 0.0, byUUID[created.Options[2].UUID].Percentage)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, percentage(0, 0))
	assert.Equal(t, 0.0, percentage(0, 3))
	assert.Equal(t, 100.0, percentage(5, 5))
	assert.Equal(t, 66.67, percentage(2, 3))
	assert.Equal(t, 33.33, percentage(1, 3))
	assert.Equal(t, 16.67, percentage(1, 6))
}

func TestMyVotesSkipsInactive(t *testing.T) {
	db := newTestDB(t)
	polls := NewPollService(db, nil, nil)
	votes := NewVoteService(db, nil, nil)
	creator := newTestUser(t, db, "alice")
	voter := newTestUser(t, db, "bob")

	kept, err := polls.Create(context.Background(), creator, CreatePollInput{
		Title:   "Kept poll",
		Options: []string{"A", "B"},
	})
	require.NoError(t, err)
	doomed, err := polls.Create(context.Background(), creator, CreatePollInput{
		Title:   "Doomed poll",
		Options: []string{"C", "D"},
	})
	require.NoError(t, err)

	_, err = votes.CastVote(context.Background(), voter, kept.UUID, kept.Options[0].UUID)
	require.NoError(t, err)
	_, err = votes.CastVote(context.Background(), voter, doomed.UUID, doomed.Options[0].UUID)
	require.NoError(t, err)

	// Soft-deleting the poll keeps the ledger rows but hides them from history.
	require.NoError(t, polls.Delete(context.Background(), creator, doomed.UUID))

	rows, err := votes.MyVotes(context.Background(), voter)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, kept.UUID, rows[0].PollUUID)
	assert.Equal(t, kept.Options[0].UUID, rows[0].OptionUUID)
}
