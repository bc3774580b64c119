package domain

import (
	"fmt"
	"time"

	"novel-relay/internal/models"
)

// WindowStatus - состояние окна голосования на момент запроса.
type WindowStatus struct {
	VoteStart *time.Time
	VoteEnd   *time.Time
	IsOpen    bool
	IsClosed  bool
}

// OpenWindow открывает окно раунда: voteStart = now, voteEnd = now + voteTime.
// Вызывается один раз на раунд, при первой заявке.
func OpenWindow(story *models.Story, now time.Time) {
	start := now
	end := now.Add(story.VoteTime)
	story.VoteStart = &start
	story.VoteEnd = &end
}

// RescheduleWindow - ручной перенос окна модератором.
func RescheduleWindow(story *models.Story, start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: voteStart and voteEnd are required", models.ErrInvalidInput)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: voteEnd is before voteStart", models.ErrInvalidInput)
	}
	s, e := start, end
	story.VoteStart = &s
	story.VoteEnd = &e
	return nil
}

// Window сообщает границы окна и открыто ли оно сейчас. Таймера нет:
// закрытие окна лишь подсказка для планировщика, вызывающего слияние.
func Window(story *models.Story, now time.Time) WindowStatus {
	status := WindowStatus{VoteStart: story.VoteStart, VoteEnd: story.VoteEnd}
	if story.VoteStart == nil || story.VoteEnd == nil {
		return status
	}
	status.IsClosed = !now.Before(*story.VoteEnd)
	status.IsOpen = !now.Before(*story.VoteStart) && !status.IsClosed
	return status
}
