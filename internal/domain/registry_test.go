package domain_test

import (
	"testing"
	"time"

	"novel-relay/internal/domain"
	"novel-relay/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit(t *testing.T) {
	t.Run("first submission opens the window exactly once", func(t *testing.T) {
		story := newStory(t, 10, 0, 0)

		res, err := domain.Submit(story, uuid.New(), "Глава 2", "первое", baseTime)
		require.NoError(t, err)
		assert.True(t, res.WindowOpened)
		require.NotNil(t, story.VoteStart)
		require.NotNil(t, story.VoteEnd)
		assert.Equal(t, baseTime, *story.VoteStart)
		assert.Equal(t, baseTime.Add(24*time.Hour), *story.VoteEnd)
		assert.Empty(t, res.Extension.Voters)

		later := baseTime.Add(time.Hour)
		res2, err := domain.Submit(story, uuid.New(), "", "второе", later)
		require.NoError(t, err)
		assert.False(t, res2.WindowOpened)
		assert.Equal(t, baseTime, *story.VoteStart)
		assert.Equal(t, baseTime.Add(24*time.Hour), *story.VoteEnd)
		assert.Len(t, story.Extensions, 2)
	})

	t.Run("first submission of a new round resets hasMerged", func(t *testing.T) {
		story := newStory(t, 10, 0, 0)
		story.HasMerged = true

		submit(t, story, uuid.New(), "новый раунд")
		assert.False(t, story.HasMerged)
	})

	t.Run("validation", func(t *testing.T) {
		story := newStory(t, 10, 0, 0)
		story.ExtendWordLimit = 5

		_, err := domain.Submit(story, uuid.New(), "", "  ", baseTime)
		assert.ErrorIs(t, err, models.ErrInvalidInput)

		_, err = domain.Submit(story, uuid.New(), "", text(6), baseTime)
		assert.ErrorIs(t, err, models.ErrInvalidInput)

		_, err = domain.Submit(story, uuid.New(), "", text(5), baseTime)
		assert.NoError(t, err)

		story.State = true
		_, err = domain.Submit(story, uuid.New(), "", "abc", baseTime)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
	})
}

func TestClearRound(t *testing.T) {
	story := newStory(t, 10, 0, 0)
	submit(t, story, uuid.New(), "a")
	submit(t, story, uuid.New(), "b")

	assert.Equal(t, 2, domain.ClearRound(story))
	assert.Empty(t, story.Extensions)
	assert.Equal(t, 0, domain.ClearRound(story))
}

func TestWithdraw(t *testing.T) {
	story := newStory(t, 10, 0, 0)
	author := uuid.New()
	ext := submit(t, story, author, "моё")
	other := submit(t, story, uuid.New(), "чужое")

	_, err := domain.Withdraw(story, ext.ID, uuid.New())
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = domain.Withdraw(story, uuid.New(), author)
	assert.ErrorIs(t, err, models.ErrExtensionNotFound)
	assert.ErrorIs(t, err, models.ErrNotFound)

	removed, err := domain.Withdraw(story, ext.ID, author)
	require.NoError(t, err)
	assert.Equal(t, ext.ID, removed.ID)
	require.Len(t, story.Extensions, 1)
	assert.Equal(t, other.ID, story.Extensions[0].ID)
}
