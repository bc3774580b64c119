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

func TestNewStory(t *testing.T) {
	t.Run("first chapter is open and counted", func(t *testing.T) {
		story := newStory(t, 12, 1000, 100)

		require.Len(t, story.Chapters, 1)
		first := story.Chapters[0]
		assert.Equal(t, 1, first.ChapterNumber)
		assert.True(t, first.Main)
		assert.Equal(t, 12, first.WordCount)
		assert.Equal(t, 12, story.CurrentChapterWordCount)
		require.NotNil(t, story.OpenChapterID)
		assert.Equal(t, first.ID, *story.OpenChapterID)
		assert.Equal(t, first, story.OpenChapter())
		assert.False(t, story.State)
		assert.Empty(t, story.Extensions)
	})

	t.Run("rejects invalid params", func(t *testing.T) {
		cases := map[string]domain.NewStoryParams{
			"no author":   {Title: "t", Content: "c"},
			"no title":    {MainAuthorID: uuid.New(), Content: "c"},
			"no content":  {MainAuthorID: uuid.New(), Title: "t", Content: "   "},
			"negative":    {MainAuthorID: uuid.New(), Title: "t", Content: "c", WordsPerChapter: -1},
			"negative vt": {MainAuthorID: uuid.New(), Title: "t", Content: "c", VoteTime: -time.Second},
		}
		for name, params := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := domain.NewStory(params, baseTime)
				assert.ErrorIs(t, err, models.ErrInvalidInput)
			})
		}
	})
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, domain.WordCount(""))
	assert.Equal(t, 5, domain.WordCount("hello"))
	assert.Equal(t, 4, domain.WordCount("從前有座"))
}
