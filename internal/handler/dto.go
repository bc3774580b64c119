package handler

import (
	"time"

	"novel-relay/internal/domain"

	"github.com/google/uuid"
)

type createStoryRequest struct {
	Title           string `json:"title" validate:"required,max=255"`
	ChapterName     string `json:"chapterName" validate:"max=255"`
	Content         string `json:"content" validate:"required"`
	TotalWordCount  int    `json:"totalWordCount" validate:"gte=0"`
	WordsPerChapter int    `json:"wordsPerChapter" validate:"gte=0"`
	ExtendWordLimit int    `json:"extendWordLimit" validate:"gte=0"`
	VoteTimeSeconds int    `json:"voteTimeSeconds" validate:"gte=0"`
}

type submitExtensionRequest struct {
	ChapterName string `json:"chapterName" validate:"max=255"`
	Content     string `json:"content" validate:"required"`
}

type submitExtensionResponse struct {
	ExtensionID uuid.UUID `json:"extensionId"`
}

type castVoteRequest struct {
	Delta int `json:"delta" validate:"oneof=-1 1"`
}

type mergeRequest struct {
	ExtensionID *uuid.UUID `json:"extensionId"`
}

type openChapterRequest struct {
	ChapterName string `json:"chapterName" validate:"max=255"`
	Content     string `json:"content" validate:"required"`
}

type clearRoundResponse struct {
	Cleared int `json:"cleared"`
}

type rescheduleWindowRequest struct {
	VoteStart time.Time `json:"voteStart" validate:"required"`
	VoteEnd   time.Time `json:"voteEnd" validate:"required,gtefield=VoteStart"`
}

type windowStatusResponse struct {
	VoteStart *time.Time `json:"voteStart,omitempty"`
	VoteEnd   *time.Time `json:"voteEnd,omitempty"`
	IsOpen    bool       `json:"isOpen"`
	IsClosed  bool       `json:"isClosed"`
}

type standingResponse struct {
	ExtensionID uuid.UUID `json:"extensionId"`
	AuthorID    uuid.UUID `json:"authorId"`
	ChapterName string    `json:"chapterName"`
	Content     string    `json:"content"`
	VoteCount   int       `json:"voteCount"`
	Rank        int       `json:"rank"`
	CreatedAt   time.Time `json:"createdAt"`
}

type hasVoteResponse struct {
	HasVoted bool `json:"hasVoted"`
}

func toWindowStatusResponse(s domain.WindowStatus) windowStatusResponse {
	return windowStatusResponse{VoteStart: s.VoteStart, VoteEnd: s.VoteEnd, IsOpen: s.IsOpen, IsClosed: s.IsClosed}
}

func toStandingResponses(standings []domain.Standing) []standingResponse {
	resp := make([]standingResponse, 0, len(standings))
	for _, s := range standings {
		resp = append(resp, standingResponse{
			ExtensionID: s.Extension.ID,
			AuthorID:    s.Extension.AuthorID,
			ChapterName: s.Extension.ChapterName,
			Content:     s.Extension.Content,
			VoteCount:   s.VoteCount,
			Rank:        s.Rank,
			CreatedAt:   s.Extension.CreatedAt,
		})
	}
	return resp
}
