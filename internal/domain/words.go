// Package domain содержит чистую логику раунда продолжений: реестр кандидатов,
// голосование, окно голосования, слияние победителя и разбиение на главы.
// Функции работают с загруженным агрегатом models.Story и не обращаются к хранилищу.
package domain

import (
	"unicode/utf8"

	"novel-relay/internal/models"
)

// WordCount возвращает длину фрагмента в символах.
// Для CJK-текста символ и есть "слово", поэтому считаются руны, а не пробелы.
func WordCount(fragment string) int {
	return utf8.RuneCountInString(fragment)
}

// TotalWords суммирует длины всех фрагментов во всех главах.
func TotalWords(story *models.Story) int {
	total := 0
	for _, ch := range story.Chapters {
		for _, f := range ch.Fragments {
			total += WordCount(f)
		}
	}
	return total
}

// RemainingWords = totalWordCount - сумма длин всех фрагментов.
func RemainingWords(story *models.Story) int {
	return story.TotalWordCount - TotalWords(story)
}

// refreshCompletion выставляет state=true, когда целевая длина достигнута.
// totalWordCount <= 0 означает историю без ограничения длины.
func refreshCompletion(story *models.Story) bool {
	if story.TotalWordCount > 0 && RemainingWords(story) <= 0 {
		story.State = true
	}
	return story.State
}
