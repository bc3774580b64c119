package models

import (
	"time"

	"github.com/google/uuid"
)

// ExtensionHistoryEntry - запись истории автора о предложенном продолжении.
// Создаётся вместе с Extension, переживает очистку раунда, удаляется только мягко.
type ExtensionHistoryEntry struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"userId" db:"user_id"`
	StoryID     uuid.UUID   `json:"storyId" db:"story_id"`
	ExtensionID uuid.UUID   `json:"extensionId" db:"extension_id"`
	ChapterName string      `json:"chapterName" db:"chapter_name"`
	Content     string      `json:"content" db:"content"`
	Voters      []uuid.UUID `json:"voteCount" db:"voters"`
	IsDeleted   bool        `json:"isDeleted" db:"is_deleted"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
}

// HistoryView - запись истории, объединённая с живыми данными истории для отображения.
type HistoryView struct {
	EntryID     uuid.UUID `json:"entryId" db:"entry_id"`
	StoryID     uuid.UUID `json:"storyId" db:"story_id"`
	ExtensionID uuid.UUID `json:"extensionId" db:"extension_id"`
	StoryTitle  string    `json:"storyTitle" db:"story_title"`
	StoryState  bool      `json:"storyState" db:"story_state"`
	ChapterName string    `json:"chapterName" db:"chapter_name"`
	Content     string    `json:"content" db:"content"`
	VoteCount   int       `json:"voteCount" db:"vote_count"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
