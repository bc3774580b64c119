package models

import (
	"time"

	"github.com/google/uuid"
)

// RoundEventType - тип события раунда.
type RoundEventType string

const (
	RoundEventExtensionSubmitted RoundEventType = "extension_submitted"
	RoundEventMerged             RoundEventType = "round_merged"
	RoundEventChapterOpened      RoundEventType = "chapter_opened"
	RoundEventStoryCompleted     RoundEventType = "story_completed"
	RoundEventCleared            RoundEventType = "round_cleared"
)

// RoundEvent - сообщение об изменении раунда для внешних подписчиков.
type RoundEvent struct {
	Type          RoundEventType `json:"type"`
	StoryID       uuid.UUID      `json:"storyId"`
	ExtensionID   *uuid.UUID     `json:"extensionId,omitempty"`
	ChapterNumber int            `json:"chapterNumber,omitempty"`
	IsCompleted   bool           `json:"isCompleted"`
	OccurredAt    time.Time      `json:"occurredAt"`
}

// RoundCloseRequest - запрос планировщика на закрытие раунда.
// Без ExtensionID побеждает лидер текущего раунда.
type RoundCloseRequest struct {
	RequestID   string     `json:"requestId"`
	StoryID     uuid.UUID  `json:"storyId"`
	ExtensionID *uuid.UUID `json:"extensionId,omitempty"`
}
