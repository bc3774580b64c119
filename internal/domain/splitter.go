package domain

import (
	"fmt"
	"strings"
	"time"

	"novel-relay/internal/models"

	"github.com/google/uuid"
)

// MaybeSplit переносит только что добавленный фрагмент открытой главы в новую главу,
// если currentChapterWordCount строго превысил wordsPerChapter.
// Ожидает, что фрагмент уже последний в открытой главе и учтён в счётчиках.
// wordsPerChapter <= 0 отключает разбиение. Фрагмент, который один превышает бюджет
// в свежей главе, остаётся на месте: пустых глав не бывает.
func MaybeSplit(story *models.Story, incomingLength int, chapterName string, now time.Time) *models.Chapter {
	open := story.OpenChapter()
	if open == nil || len(open.Fragments) == 0 {
		return nil
	}
	if story.WordsPerChapter <= 0 || story.CurrentChapterWordCount <= story.WordsPerChapter {
		return nil
	}
	if story.CurrentChapterWordCount-incomingLength <= 0 {
		return nil
	}

	last := len(open.Fragments) - 1
	fragment := open.Fragments[last]
	open.Fragments = open.Fragments[:last]
	open.WordCount -= incomingLength

	ch := appendChapter(story, chapterName, fragment, incomingLength, now)
	return ch
}

// OpenChapter - явный запрос новой главы с заданным текстом.
// Допустим, только если текст не помещается в бюджет текущей главы.
// Новая глава начинает новый раунд: реестр кандидатов очищается.
func OpenChapter(story *models.Story, content, chapterName string, now time.Time) (*models.Chapter, error) {
	if story.State {
		return nil, fmt.Errorf("%w: story is already complete", models.ErrInvalidTransition)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is empty", models.ErrInvalidInput)
	}
	n := WordCount(content)
	if story.WordsPerChapter <= 0 || story.CurrentChapterWordCount+n <= story.WordsPerChapter {
		return nil, fmt.Errorf("%w: current chapter still fits %d characters", models.ErrInvalidTransition, n)
	}

	ch := appendChapter(story, chapterName, content, n, now)
	ClearRound(story)
	refreshCompletion(story)
	return ch, nil
}

// appendChapter добавляет главу с номером last+1, открывает её и сбрасывает счётчик.
func appendChapter(story *models.Story, chapterName, fragment string, length int, now time.Time) *models.Chapter {
	ch := &models.Chapter{
		ID:            uuid.New(),
		StoryID:       story.ID,
		ChapterNumber: story.LastChapterNumber() + 1,
		ChapterName:   chapterName,
		Fragments:     []string{fragment},
		Main:          true,
		WordCount:     length,
		CreatedAt:     now,
	}
	story.Chapters = append(story.Chapters, ch)
	story.OpenChapterID = &ch.ID
	story.CurrentChapterWordCount = length
	return ch
}
