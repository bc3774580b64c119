package domain_test

import (
	"testing"
	"time"

	"novel-relay/internal/domain"
	"novel-relay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRescheduleWindow(t *testing.T) {
	story := newStory(t, 10, 0, 0)

	err := domain.RescheduleWindow(story, baseTime, baseTime.Add(-time.Minute))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Nil(t, story.VoteStart)

	err = domain.RescheduleWindow(story, time.Time{}, baseTime)
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	require.NoError(t, domain.RescheduleWindow(story, baseTime, baseTime.Add(time.Hour)))
	assert.Equal(t, baseTime, *story.VoteStart)
	assert.Equal(t, baseTime.Add(time.Hour), *story.VoteEnd)
}

func TestWindow(t *testing.T) {
	story := newStory(t, 10, 0, 0)

	status := domain.Window(story, baseTime)
	assert.False(t, status.IsOpen)
	assert.False(t, status.IsClosed)

	domain.OpenWindow(story, baseTime)

	status = domain.Window(story, baseTime.Add(time.Hour))
	assert.True(t, status.IsOpen)
	assert.False(t, status.IsClosed)

	status = domain.Window(story, baseTime.Add(24*time.Hour))
	assert.False(t, status.IsOpen)
	assert.True(t, status.IsClosed)

	status = domain.Window(story, baseTime.Add(-time.Hour))
	assert.False(t, status.IsOpen)
	assert.False(t, status.IsClosed)
}
