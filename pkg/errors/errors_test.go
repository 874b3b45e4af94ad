package pollstream_errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionConflictErrorUnwraps(t *testing.T) {
	id := uuid.New()
	err := NewVersionConflict("poll", id, 3, 5)

	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.NotErrorIs(t, err, ErrNotFound)

	var vc *VersionConflictError
	require.ErrorAs(t, err, &vc)
	assert.Equal(t, "poll", vc.Entity)
	assert.Equal(t, id, vc.UUID)
	assert.Equal(t, 3, vc.Presented)
	assert.Equal(t, 5, vc.Current)
}

func TestVersionConflictErrorMessage(t *testing.T) {
	id := uuid.New()
	err := NewVersionConflict("option", id, 1, 2)

	msg := err.Error()
	assert.Contains(t, msg, "option")
	assert.Contains(t, msg, id.String())
	assert.Contains(t, msg, "presented 1")
	assert.Contains(t, msg, "current 2")
}

func TestVersionConflictSurvivesWrapping(t *testing.T) {
	id := uuid.New()
	err := fmt.Errorf("edit poll: %w", NewVersionConflict("poll", id, 1, 4))

	assert.True(t, errors.Is(err, ErrVersionConflict))

	var vc *VersionConflictError
	require.ErrorAs(t, err, &vc)
	assert.Equal(t, id, vc.UUID)
}
