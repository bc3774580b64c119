package models

import (
	"time"

	"github.com/google/uuid"
)

// VoteRecord - журнал голосов пользователя: за какое продолжение какой истории он голосовал.
type VoteRecord struct {
	ID                uuid.UUID `json:"id" db:"id"`
	UserID            uuid.UUID `json:"userId" db:"user_id"`
	StoryID           uuid.UUID `json:"storyId" db:"story_id"`
	ExtensionID       uuid.UUID `json:"extensionId" db:"extension_id"`
	ExtensionAuthorID uuid.UUID `json:"extensionAuthorId" db:"extension_author_id"`
	Content           string    `json:"content" db:"content"`
	VotedAt           time.Time `json:"votedAt" db:"voted_at"`
}
