package domain

import (
	"fmt"
	"strings"
	"time"

	"novel-relay/internal/models"

	"github.com/google/uuid"
)

// NewStoryParams - параметры создания истории с первой главой.
type NewStoryParams struct {
	MainAuthorID    uuid.UUID
	Title           string
	ChapterName     string
	Content         string
	TotalWordCount  int
	WordsPerChapter int
	ExtendWordLimit int
	VoteTime        time.Duration
}

// NewStory создаёт агрегат истории: первая глава содержит исходный текст и открыта.
func NewStory(p NewStoryParams, now time.Time) (*models.Story, error) {
	if p.MainAuthorID == uuid.Nil {
		return nil, fmt.Errorf("%w: main author is required", models.ErrInvalidInput)
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrInvalidInput)
	}
	if strings.TrimSpace(p.Content) == "" {
		return nil, fmt.Errorf("%w: initial content is required", models.ErrInvalidInput)
	}
	if p.TotalWordCount < 0 || p.WordsPerChapter < 0 || p.ExtendWordLimit < 0 || p.VoteTime < 0 {
		return nil, fmt.Errorf("%w: limits must not be negative", models.ErrInvalidInput)
	}

	storyID := uuid.New()
	n := WordCount(p.Content)
	first := &models.Chapter{
		ID:            uuid.New(),
		StoryID:       storyID,
		ChapterNumber: 1,
		ChapterName:   p.ChapterName,
		Fragments:     []string{p.Content},
		Main:          true,
		WordCount:     n,
		CreatedAt:     now,
	}

	story := &models.Story{
		ID:                      storyID,
		MainAuthorID:            p.MainAuthorID,
		Title:                   p.Title,
		Chapters:                []*models.Chapter{first},
		Extensions:              []*models.Extension{},
		TotalWordCount:          p.TotalWordCount,
		CurrentChapterWordCount: n,
		WordsPerChapter:         p.WordsPerChapter,
		ExtendWordLimit:         p.ExtendWordLimit,
		VoteTime:                p.VoteTime,
		OpenChapterID:           &first.ID,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	refreshCompletion(story)
	return story, nil
}
