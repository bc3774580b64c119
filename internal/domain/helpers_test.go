package domain_test

import (
	"strings"
	"testing"
	"time"

	"novel-relay/internal/domain"
	"novel-relay/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// text возвращает строку из n символов.
func text(n int) string {
	return strings.Repeat("字", n)
}

func newStory(t *testing.T, initial, total, perChapter int) *models.Story {
	t.Helper()
	story, err := domain.NewStory(domain.NewStoryParams{
		MainAuthorID:    uuid.New(),
		Title:           "Тестовая история",
		ChapterName:     "Глава 1",
		Content:         text(initial),
		TotalWordCount:  total,
		WordsPerChapter: perChapter,
		VoteTime:        24 * time.Hour,
	}, baseTime)
	require.NoError(t, err)
	return story
}

func submit(t *testing.T, story *models.Story, author uuid.UUID, content string) *models.Extension {
	t.Helper()
	res, err := domain.Submit(story, author, "", content, baseTime)
	require.NoError(t, err)
	return res.Extension
}
