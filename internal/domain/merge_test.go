package domain_test

import (
	"testing"

	"novel-relay/internal/domain"
	"novel-relay/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	t.Run("appends winner to open chapter and closes the round", func(t *testing.T) {
		story := newStory(t, 10, 1000, 100)
		winner := submit(t, story, uuid.New(), text(20))
		submit(t, story, uuid.New(), text(30))

		out, err := domain.Merge(story, winner.ID, baseTime)
		require.NoError(t, err)
		assert.True(t, out.Mutated())
		assert.Equal(t, winner.ID, out.Winner.ID)
		assert.Len(t, out.Cleared, 2)
		assert.Nil(t, out.NewChapter)
		assert.False(t, out.IsCompleted)

		open := story.OpenChapter()
		require.NotNil(t, open)
		assert.Equal(t, []string{text(10), text(20)}, open.Fragments)
		assert.Equal(t, 30, story.CurrentChapterWordCount)
		assert.Equal(t, 30, open.WordCount)
		assert.True(t, story.HasMerged)
		assert.Empty(t, story.Extensions)
	})

	t.Run("second merge is idempotent", func(t *testing.T) {
		story := newStory(t, 10, 1000, 100)
		winner := submit(t, story, uuid.New(), "продолжение")

		_, err := domain.Merge(story, winner.ID, baseTime)
		require.NoError(t, err)

		out, err := domain.Merge(story, winner.ID, baseTime)
		require.NoError(t, err)
		assert.True(t, out.AlreadyMerged)
		assert.False(t, out.Mutated())

		count := 0
		for _, ch := range story.Chapters {
			for _, f := range ch.Fragments {
				if f == "продолжение" {
					count++
				}
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("fragment already in first chapter is not merged again", func(t *testing.T) {
		story := newStory(t, 10, 1000, 100)
		dup := submit(t, story, uuid.New(), text(10))

		out, err := domain.Merge(story, dup.ID, baseTime)
		require.NoError(t, err)
		assert.True(t, out.Duplicate)
		assert.Equal(t, []string{text(10)}, story.Chapters[0].Fragments)
		assert.False(t, story.HasMerged)
		assert.Len(t, story.Extensions, 1)
	})

	t.Run("split at 95 plus 10 with budget 100", func(t *testing.T) {
		story := newStory(t, 95, 1000, 100)
		oldChapter := story.OpenChapter()
		winner := submit(t, story, uuid.New(), text(10))
		winner.ChapterName = "Глава 2"

		out, err := domain.Merge(story, winner.ID, baseTime)
		require.NoError(t, err)
		require.NotNil(t, out.NewChapter)

		assert.Len(t, story.Chapters, 2)
		assert.Equal(t, 2, out.NewChapter.ChapterNumber)
		assert.Equal(t, "Глава 2", out.NewChapter.ChapterName)
		assert.Equal(t, []string{text(10)}, out.NewChapter.Fragments)
		assert.Equal(t, 10, out.NewChapter.WordCount)
		assert.Equal(t, 10, story.CurrentChapterWordCount)
		assert.Equal(t, out.NewChapter.ID, *story.OpenChapterID)

		assert.Equal(t, 95, oldChapter.WordCount)
		assert.Equal(t, []string{text(95)}, oldChapter.Fragments)
		assert.Empty(t, story.Extensions)
	})

	t.Run("reaching total word count completes the story", func(t *testing.T) {
		story := newStory(t, 40, 50, 0)
		winner := submit(t, story, uuid.New(), text(10))

		out, err := domain.Merge(story, winner.ID, baseTime)
		require.NoError(t, err)
		assert.True(t, out.IsCompleted)
		assert.True(t, story.State)
		assert.Equal(t, 0, domain.RemainingWords(story))
	})

	t.Run("zero total word count never completes", func(t *testing.T) {
		story := newStory(t, 40, 0, 0)
		winner := submit(t, story, uuid.New(), text(100))

		out, err := domain.Merge(story, winner.ID, baseTime)
		require.NoError(t, err)
		assert.False(t, out.IsCompleted)
	})

	t.Run("errors", func(t *testing.T) {
		story := newStory(t, 10, 0, 0)
		ext := submit(t, story, uuid.New(), "кандидат")

		_, err := domain.Merge(story, uuid.New(), baseTime)
		assert.ErrorIs(t, err, models.ErrExtensionNotFound)

		story.OpenChapterID = nil
		_, err = domain.Merge(story, ext.ID, baseTime)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
	})
}
