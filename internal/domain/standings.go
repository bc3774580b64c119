package domain

import (
	"bytes"
	"sort"

	"novel-relay/internal/models"
)

// Standing - позиция кандидата в текущем раунде.
type Standing struct {
	Extension *models.Extension
	VoteCount int
	Rank      int
}

// Standings упорядочивает кандидатов: больше голосов, затем более ранняя заявка,
// затем меньший ID. Порядок детерминирован, поэтому лидер однозначен.
func Standings(story *models.Story) []Standing {
	standings := make([]Standing, 0, len(story.Extensions))
	for _, ext := range story.Extensions {
		standings = append(standings, Standing{Extension: ext, VoteCount: ext.VoteCount()})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		if !a.Extension.CreatedAt.Equal(b.Extension.CreatedAt) {
			return a.Extension.CreatedAt.Before(b.Extension.CreatedAt)
		}
		return bytes.Compare(a.Extension.ID[:], b.Extension.ID[:]) < 0
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

// Leader возвращает кандидата с первой позицией или nil, если раунд пуст.
func Leader(story *models.Story) *models.Extension {
	standings := Standings(story)
	if len(standings) == 0 {
		return nil
	}
	return standings[0].Extension
}
