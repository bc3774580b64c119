package models

import (
	"time"

	"github.com/google/uuid"
)

// Story - агрегат истории: канонические главы, кандидаты текущего раунда,
// окно голосования и счётчики слов. Единица консистентности при записи.
type Story struct {
	ID           uuid.UUID `json:"id" db:"id"`
	MainAuthorID uuid.UUID `json:"mainAuthorId" db:"main_author_id"`
	Title        string    `json:"title" db:"title"`

	Chapters   []*Chapter   `json:"content" db:"-"`
	Extensions []*Extension `json:"extensions" db:"-"`

	TotalWordCount          int `json:"totalWordCount" db:"total_word_count"`
	CurrentChapterWordCount int `json:"currentChapterWordCount" db:"current_chapter_word_count"`
	WordsPerChapter         int `json:"wordsPerChapter" db:"words_per_chapter"`
	ExtendWordLimit         int `json:"extendWordLimit" db:"extend_word_limit"`

	VoteTime  time.Duration `json:"voteTime" db:"-"`
	VoteStart *time.Time    `json:"voteStart,omitempty" db:"vote_start"`
	VoteEnd   *time.Time    `json:"voteEnd,omitempty" db:"vote_end"`

	HasMerged     bool       `json:"hasMerged" db:"has_merged"`
	State         bool       `json:"state" db:"state"` // true - история завершена
	OpenChapterID *uuid.UUID `json:"openChapterId,omitempty" db:"open_chapter_id"`

	Version   int64     `json:"version" db:"version"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Chapter - глава канонического текста, накапливающая фрагменты.
type Chapter struct {
	ID            uuid.UUID `json:"id" db:"id"`
	StoryID       uuid.UUID `json:"storyId" db:"story_id"`
	ChapterNumber int       `json:"chapterNumber" db:"chapter_number"`
	ChapterName   string    `json:"chapterName" db:"chapter_name"`
	Fragments     []string  `json:"fragments" db:"fragments"`
	Main          bool      `json:"main" db:"main"`
	WordCount     int       `json:"wordCount" db:"word_count"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// Extension - кандидат на продолжение в текущем раунде.
// Voters - множество проголосовавших (членство, а не счётчик), в порядке добавления.
type Extension struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	StoryID     uuid.UUID   `json:"storyId" db:"story_id"`
	AuthorID    uuid.UUID   `json:"authorId" db:"author_id"`
	ChapterName string      `json:"chapterName" db:"chapter_name"`
	Content     string      `json:"content" db:"content"`
	Voters      []uuid.UUID `json:"voteCount" db:"voters"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
}

// OpenChapter возвращает открытую главу по указателю OpenChapterID или nil.
func (s *Story) OpenChapter() *Chapter {
	if s.OpenChapterID == nil {
		return nil
	}
	return s.FindChapter(*s.OpenChapterID)
}

// FindChapter ищет главу по ID.
func (s *Story) FindChapter(id uuid.UUID) *Chapter {
	for _, ch := range s.Chapters {
		if ch.ID == id {
			return ch
		}
	}
	return nil
}

// LastChapterNumber возвращает наибольший номер главы (0, если глав нет).
func (s *Story) LastChapterNumber() int {
	last := 0
	for _, ch := range s.Chapters {
		if ch.ChapterNumber > last {
			last = ch.ChapterNumber
		}
	}
	return last
}

// FindExtension ищет кандидата текущего раунда по ID.
func (s *Story) FindExtension(id uuid.UUID) *Extension {
	for _, ext := range s.Extensions {
		if ext.ID == id {
			return ext
		}
	}
	return nil
}

// HasVoter проверяет членство голосующего в множестве голосов.
func (e *Extension) HasVoter(voterID uuid.UUID) bool {
	for _, v := range e.Voters {
		if v == voterID {
			return true
		}
	}
	return false
}

// VoteCount возвращает размер множества голосов.
func (e *Extension) VoteCount() int {
	return len(e.Voters)
}
