package models

import (
	"errors"
	"fmt"
)

// Ошибки движка раундов. Сравниваются через errors.Is.
var (
	// Общие ошибки ресурсов. Все конкретные "не найдено" оборачивают ErrNotFound.
	ErrNotFound             = errors.New("not found")
	ErrStoryNotFound        = fmt.Errorf("story %w", ErrNotFound)
	ErrExtensionNotFound    = fmt.Errorf("extension %w", ErrNotFound)
	ErrHistoryEntryNotFound = fmt.Errorf("extension history entry %w", ErrNotFound)
	ErrVoteRecordNotFound   = fmt.Errorf("vote record %w", ErrNotFound)

	// Ошибки жизненного цикла раунда
	ErrAlreadyMerged     = errors.New("round already merged")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrConflict          = errors.New("concurrent modification detected")

	// Ошибки запроса и доступа
	ErrInvalidInput = errors.New("invalid input data")
	ErrForbidden    = errors.New("forbidden")    // Аутентифицирован, но нет прав
	ErrUnauthorized = errors.New("unauthorized") // Требуется аутентификация

	// Ошибки токенов
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")
)
