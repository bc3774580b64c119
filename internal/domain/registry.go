package domain

import (
	"fmt"
	"strings"
	"time"

	"novel-relay/internal/models"

	"github.com/google/uuid"
)

// SubmitResult - итог подачи заявки в раунд.
type SubmitResult struct {
	Extension    *models.Extension
	WindowOpened bool // true, если заявка первая в раунде
}

// Submit добавляет кандидата с пустым множеством голосов.
// Первая заявка раунда открывает окно голосования и снимает флаг hasMerged прошлого раунда.
func Submit(story *models.Story, authorID uuid.UUID, chapterName, content string, now time.Time) (SubmitResult, error) {
	if story.State {
		return SubmitResult{}, fmt.Errorf("%w: story is already complete", models.ErrInvalidTransition)
	}
	if authorID == uuid.Nil {
		return SubmitResult{}, fmt.Errorf("%w: author is required", models.ErrInvalidInput)
	}
	if strings.TrimSpace(content) == "" {
		return SubmitResult{}, fmt.Errorf("%w: content is empty", models.ErrInvalidInput)
	}
	if story.ExtendWordLimit > 0 && WordCount(content) > story.ExtendWordLimit {
		return SubmitResult{}, fmt.Errorf("%w: content is longer than %d characters", models.ErrInvalidInput, story.ExtendWordLimit)
	}

	ext := &models.Extension{
		ID:          uuid.New(),
		StoryID:     story.ID,
		AuthorID:    authorID,
		ChapterName: chapterName,
		Content:     content,
		Voters:      []uuid.UUID{},
		CreatedAt:   now,
	}

	result := SubmitResult{Extension: ext}
	if len(story.Extensions) == 0 {
		OpenWindow(story, now)
		story.HasMerged = false
		result.WindowOpened = true
	}
	story.Extensions = append(story.Extensions, ext)
	return result, nil
}

// ClearRound очищает кандидатов раунда вместе с их голосами. Идемпотентна.
// Возвращает число удалённых кандидатов.
func ClearRound(story *models.Story) int {
	n := len(story.Extensions)
	story.Extensions = []*models.Extension{}
	return n
}

// Withdraw снимает собственную заявку автора из текущего раунда.
func Withdraw(story *models.Story, extensionID, userID uuid.UUID) (*models.Extension, error) {
	for i, ext := range story.Extensions {
		if ext.ID != extensionID {
			continue
		}
		if ext.AuthorID != userID {
			return nil, fmt.Errorf("%w: only the author can withdraw an extension", models.ErrForbidden)
		}
		story.Extensions = append(story.Extensions[:i], story.Extensions[i+1:]...)
		return ext, nil
	}
	return nil, models.ErrExtensionNotFound
}
