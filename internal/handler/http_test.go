package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"novel-relay/internal/domain"
	"novel-relay/internal/handler"
	"novel-relay/internal/metrics"
	"novel-relay/internal/models"
	"novel-relay/internal/service"
	"novel-relay/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	userID    = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	moderator = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	storyID   = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	extID     = uuid.MustParse("44444444-4444-4444-4444-444444444444")
)

// testVerifier принимает токены "user" и "moderator".
func testVerifier(ctx context.Context, token string) (*models.Claims, error) {
	switch token {
	case "user":
		return &models.Claims{UserID: userID, Roles: []string{models.RoleUser}}, nil
	case "moderator":
		return &models.Claims{UserID: moderator, Roles: []string{models.RoleModerator}}, nil
	}
	return nil, models.ErrTokenInvalid
}

type testServer struct {
	e       *echo.Echo
	rounds  *mocks.RoundService
	history *mocks.HistoryService
	records *mocks.VoteRecordService
}

func newTestServer() *testServer {
	s := &testServer{
		e:       echo.New(),
		rounds:  new(mocks.RoundService),
		history: new(mocks.HistoryService),
		records: new(mocks.VoteRecordService),
	}
	s.e.Validator = handler.NewRequestValidator()
	h := handler.NewRoundHandler(s.rounds, s.history, s.records, testVerifier, nil, zap.NewNop())
	h.RegisterRoutes(s.e)
	return s
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var apiErr handler.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	return apiErr.Message
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodGet, "/stories/"+storyID.String(), "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/me/extensions", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateStory(t *testing.T) {
	s := newTestServer()
	s.rounds.On("CreateStory", mock.Anything, mock.MatchedBy(func(p domain.NewStoryParams) bool {
		return p.MainAuthorID == userID && p.Title == "Сказка" && p.VoteTime.Seconds() == 3600
	})).Return(&models.Story{ID: storyID, Title: "Сказка"}, nil).Once()

	rec := s.do(http.MethodPost, "/stories", "user",
		`{"title":"Сказка","content":"начало","totalWordCount":1000,"wordsPerChapter":100,"extendWordLimit":50,"voteTimeSeconds":3600}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), storyID.String())
	s.rounds.AssertExpectations(t)

	rec = s.do(http.MethodPost, "/stories", "user", `{"content":"без названия"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStory_NotFound(t *testing.T) {
	s := newTestServer()
	s.rounds.On("GetStory", mock.Anything, storyID).Return(nil, models.ErrStoryNotFound).Once()

	rec := s.do(http.MethodGet, "/stories/"+storyID.String(), "user", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "story not found", decodeMessage(t, rec))
}

func TestGetStory_InvalidID(t *testing.T) {
	s := newTestServer()
	rec := s.do(http.MethodGet, "/stories/not-a-uuid", "user", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitExtension(t *testing.T) {
	s := newTestServer()
	s.rounds.On("SubmitExtension", mock.Anything, storyID, userID, "Глава 2", "дальше").Return(extID, nil).Once()

	rec := s.do(http.MethodPost, "/stories/"+storyID.String()+"/extensions", "user",
		`{"chapterName":"Глава 2","content":"дальше"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"extensionId":"`+extID.String()+`"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/stories/"+storyID.String()+"/extensions", "user", `{"content":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.rounds.On("SubmitExtension", mock.Anything, storyID, userID, "", "поздно").
		Return(uuid.Nil, models.ErrInvalidTransition).Once()
	rec = s.do(http.MethodPost, "/stories/"+storyID.String()+"/extensions", "user", `{"content":"поздно"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCastVote(t *testing.T) {
	path := "/stories/" + storyID.String() + "/extensions/" + extID.String() + "/vote"

	t.Run("Vote elsewhere is reported in body", func(t *testing.T) {
		s := newTestServer()
		s.rounds.On("CastVote", mock.Anything, storyID, extID, userID, 1).
			Return(&service.VoteResult{HasVotedElsewhere: true, VoteCount: 0}, nil).Once()

		rec := s.do(http.MethodPatch, path, "user", `{"delta":1}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"hasVotedElsewhere":true,"applied":false,"voteCount":0}`, rec.Body.String())
	})

	t.Run("Delta must be plus or minus one", func(t *testing.T) {
		s := newTestServer()
		rec := s.do(http.MethodPatch, path, "user", `{"delta":5}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		s.rounds.AssertNotCalled(t, "CastVote", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Conflict maps to 409", func(t *testing.T) {
		s := newTestServer()
		s.rounds.On("CastVote", mock.Anything, storyID, extID, userID, -1).Return(nil, models.ErrConflict).Once()

		rec := s.do(http.MethodPatch, path, "user", `{"delta":-1}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestMergeRound(t *testing.T) {
	path := "/stories/" + storyID.String() + "/merge"

	t.Run("Explicit winner", func(t *testing.T) {
		s := newTestServer()
		s.rounds.On("EnsureCanManage", mock.Anything, storyID, moderator, []string{models.RoleModerator}).Return(nil).Once()
		s.rounds.On("MergeWinner", mock.Anything, storyID, extID).
			Return(&service.MergeResult{Story: &models.Story{ID: storyID}, WinnerID: &extID}, nil).Once()

		rec := s.do(http.MethodPost, path, "moderator", `{"extensionId":"`+extID.String()+`"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		s.rounds.AssertExpectations(t)
	})

	t.Run("Empty body merges the leader", func(t *testing.T) {
		s := newTestServer()
		s.rounds.On("EnsureCanManage", mock.Anything, storyID, userID, []string{models.RoleUser}).Return(nil).Once()
		s.rounds.On("MergeLeader", mock.Anything, storyID).
			Return(&service.MergeResult{AlreadyMerged: true}, nil).Once()

		rec := s.do(http.MethodPost, path, "user", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"alreadyMerged":true`)
	})

	t.Run("Forbidden for other users", func(t *testing.T) {
		s := newTestServer()
		s.rounds.On("EnsureCanManage", mock.Anything, storyID, userID, []string{models.RoleUser}).Return(models.ErrForbidden).Once()

		rec := s.do(http.MethodPost, path, "user", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		s.rounds.AssertNotCalled(t, "MergeLeader", mock.Anything, mock.Anything)
	})
}

func TestRescheduleWindow(t *testing.T) {
	path := "/stories/" + storyID.String() + "/window"
	s := newTestServer()
	s.rounds.On("EnsureCanManage", mock.Anything, storyID, moderator, mock.Anything).Return(nil)
	s.rounds.On("RescheduleWindow", mock.Anything, storyID, mock.Anything, mock.Anything).Return(nil).Once()

	rec := s.do(http.MethodPatch, path, "moderator", `{"voteStart":"2024-05-01T10:00:00Z","voteEnd":"2024-05-01T12:00:00Z"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPatch, path, "moderator", `{"voteStart":"2024-05-01T10:00:00Z","voteEnd":"2024-05-01T09:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	s.rounds.AssertNumberOfCalls(t, "RescheduleWindow", 1)
}

func TestOpenChapter(t *testing.T) {
	path := "/stories/" + storyID.String() + "/chapters"

	t.Run("Created", func(t *testing.T) {
		s := newTestServer()
		s.rounds.On("EnsureCanManage", mock.Anything, storyID, moderator, mock.Anything).Return(nil).Once()
		s.rounds.On("OpenChapter", mock.Anything, storyID, "новый текст", "Вторая").
			Return(&models.Chapter{ID: extID, StoryID: storyID, ChapterNumber: 2, ChapterName: "Вторая"}, nil).Once()

		rec := s.do(http.MethodPost, path, "moderator", `{"content":"новый текст","chapterName":"Вторая"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"chapterNumber":2`)
		s.rounds.AssertExpectations(t)
	})

	t.Run("Chapter still fits", func(t *testing.T) {
		s := newTestServer()
		s.rounds.On("EnsureCanManage", mock.Anything, storyID, moderator, mock.Anything).Return(nil).Once()
		s.rounds.On("OpenChapter", mock.Anything, storyID, "коротко", "").
			Return(nil, models.ErrInvalidTransition).Once()

		rec := s.do(http.MethodPost, path, "moderator", `{"content":"коротко"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Missing content", func(t *testing.T) {
		s := newTestServer()
		s.rounds.On("EnsureCanManage", mock.Anything, storyID, moderator, mock.Anything).Return(nil).Once()

		rec := s.do(http.MethodPost, path, "moderator", `{"chapterName":"Вторая"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		s.rounds.AssertNotCalled(t, "OpenChapter", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWindowStatus(t *testing.T) {
	s := newTestServer()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	s.rounds.On("WindowStatus", mock.Anything, storyID).
		Return(domain.WindowStatus{VoteStart: &start, VoteEnd: &end, IsClosed: true}, nil).Once()

	rec := s.do(http.MethodGet, "/stories/"+storyID.String()+"/window", "user", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"voteStart":"2024-05-01T10:00:00Z","voteEnd":"2024-05-01T12:00:00Z","isOpen":false,"isClosed":true}`, rec.Body.String())
}

func TestClearRound(t *testing.T) {
	s := newTestServer()
	s.rounds.On("EnsureCanManage", mock.Anything, storyID, moderator, mock.Anything).Return(nil).Once()
	s.rounds.On("ClearRound", mock.Anything, storyID).Return(3, nil).Once()

	rec := s.do(http.MethodPatch, "/stories/"+storyID.String()+"/clear", "moderator", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cleared":3}`, rec.Body.String())
}

func TestStandings(t *testing.T) {
	s := newTestServer()
	ext := &models.Extension{ID: extID, AuthorID: userID, Content: "дальше", Voters: []uuid.UUID{moderator}}
	s.rounds.On("Standings", mock.Anything, storyID).
		Return([]domain.Standing{{Extension: ext, VoteCount: 1, Rank: 1}}, nil).Once()

	rec := s.do(http.MethodGet, "/stories/"+storyID.String()+"/standings", "user", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, extID.String(), body[0]["extensionId"])
	assert.Equal(t, float64(1), body[0]["voteCount"])
}

func TestHistoryEndpoints(t *testing.T) {
	s := newTestServer()
	entryID := uuid.New()
	views := []models.HistoryView{{EntryID: entryID, StoryID: storyID, StoryTitle: "Сказка", VoteCount: 2}}
	s.history.On("ListUserExtensionHistory", mock.Anything, userID).Return(views, nil).Once()
	s.history.On("ListForAuthor", mock.Anything, userID).Return([]models.HistoryView{}, nil).Once()
	s.history.On("SoftDeleteHistoryEntry", mock.Anything, userID, entryID).Return(nil).Once()

	rec := s.do(http.MethodGet, "/me/extensions", "user", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"storyTitle":"Сказка"`)

	rec = s.do(http.MethodGet, "/me/extensions/latest", "user", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(http.MethodDelete, "/me/extensions/"+entryID.String(), "user", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	s.history.AssertExpectations(t)
}

func TestVoteRecordEndpoints(t *testing.T) {
	s := newTestServer()
	recordID := uuid.New()
	s.records.On("HasVoteRecord", mock.Anything, userID, storyID, extID).Return(true, nil).Once()
	s.records.On("DeleteVoteRecord", mock.Anything, userID, recordID).Return(models.ErrVoteRecordNotFound).Once()

	rec := s.do(http.MethodGet, "/me/votes/"+storyID.String()+"/"+extID.String(), "user", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hasVoted":true}`, rec.Body.String())

	rec = s.do(http.MethodDelete, "/me/votes/"+recordID.String(), "user", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSystemRoutes(t *testing.T) {
	e := echo.New()
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	collector.RecordMerge(metrics.MergeApplied)
	handler.RegisterSystemRoutes(e, reg)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `rounds_merges_total{outcome="merged"} 1`)
}
