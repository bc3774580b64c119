package domain

import (
	"fmt"

	"novel-relay/internal/models"

	"github.com/google/uuid"
)

// Допустимые значения delta для голосования.
const (
	VoteUp   = 1
	VoteDown = -1
)

// VoteOutcome - результат голосования. Отказ из-за голоса за другого кандидата
// не ошибка: Applied=false и HasVotedElsewhere=true.
type VoteOutcome struct {
	Extension         *models.Extension
	Applied           bool
	HasVotedElsewhere bool
	VoteCount         int
}

// Cast применяет голос (+1) или его отзыв (-1) к кандидату.
// Голосующий может состоять в voteCount не более чем одного кандидата истории.
func Cast(story *models.Story, extensionID, voterID uuid.UUID, delta int) (VoteOutcome, error) {
	if delta != VoteUp && delta != VoteDown {
		return VoteOutcome{}, fmt.Errorf("%w: delta must be +1 or -1, got %d", models.ErrInvalidInput, delta)
	}
	if voterID == uuid.Nil {
		return VoteOutcome{}, fmt.Errorf("%w: voter is required", models.ErrInvalidInput)
	}
	target := story.FindExtension(extensionID)
	if target == nil {
		return VoteOutcome{}, models.ErrExtensionNotFound
	}

	elsewhere := HasVotedElsewhere(story, extensionID, voterID)
	outcome := VoteOutcome{Extension: target, HasVotedElsewhere: elsewhere}

	switch delta {
	case VoteUp:
		if !elsewhere && !target.HasVoter(voterID) {
			target.Voters = append(target.Voters, voterID)
			outcome.Applied = true
		}
	case VoteDown:
		for i, v := range target.Voters {
			if v == voterID {
				target.Voters = append(target.Voters[:i], target.Voters[i+1:]...)
				outcome.Applied = true
				break
			}
		}
	}

	outcome.VoteCount = target.VoteCount()
	return outcome, nil
}

// HasVotedElsewhere проверяет, есть ли голос voterID у любого другого кандидата истории.
func HasVotedElsewhere(story *models.Story, extensionID, voterID uuid.UUID) bool {
	for _, ext := range story.Extensions {
		if ext.ID != extensionID && ext.HasVoter(voterID) {
			return true
		}
	}
	return false
}
