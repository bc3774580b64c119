package domain

import (
	"fmt"
	"time"

	"novel-relay/internal/models"

	"github.com/google/uuid"
)

// MergeOutcome - итог слияния раунда.
type MergeOutcome struct {
	Winner        *models.Extension   // Победитель (nil для идемпотентных исходов)
	Cleared       []*models.Extension // Кандидаты, снятые вместе с раундом
	NewChapter    *models.Chapter     // Глава, открытая разбиением
	AlreadyMerged bool                // Раунд уже был слит, состояние не менялось
	Duplicate     bool                // Фрагмент уже есть в первой главе, состояние не менялось
	IsCompleted   bool
}

// Mutated сообщает, изменило ли слияние агрегат.
func (o MergeOutcome) Mutated() bool {
	return !o.AlreadyMerged && !o.Duplicate
}

// Merge вливает победившего кандидата в открытую главу и закрывает раунд.
// Победитель выбирается вызывающей стороной; Merge не пересчитывает максимум.
//
// Повторный вызов в том же раунде возвращает AlreadyMerged без ошибки.
// Флаг проверяется до поиска кандидата, потому что слияние очищает реестр.
func Merge(story *models.Story, extensionID uuid.UUID, now time.Time) (MergeOutcome, error) {
	if story.HasMerged {
		return MergeOutcome{AlreadyMerged: true, IsCompleted: story.State}, nil
	}

	winner := story.FindExtension(extensionID)
	if winner == nil {
		return MergeOutcome{}, models.ErrExtensionNotFound
	}
	open := story.OpenChapter()
	if open == nil {
		return MergeOutcome{}, fmt.Errorf("%w: story has no open chapter", models.ErrInvalidTransition)
	}

	fragment := winner.Content
	if len(story.Chapters) > 0 && containsFragment(story.Chapters[0].Fragments, fragment) {
		return MergeOutcome{Duplicate: true, IsCompleted: story.State}, nil
	}

	n := WordCount(fragment)
	open.Fragments = append(open.Fragments, fragment)
	open.WordCount += n
	story.CurrentChapterWordCount += n

	refreshCompletion(story)
	story.HasMerged = true

	outcome := MergeOutcome{Winner: winner}
	outcome.NewChapter = MaybeSplit(story, n, winner.ChapterName, now)

	outcome.Cleared = story.Extensions
	ClearRound(story)

	outcome.IsCompleted = story.State
	return outcome, nil
}

func containsFragment(fragments []string, fragment string) bool {
	for _, f := range fragments {
		if f == fragment {
			return true
		}
	}
	return false
}
