package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/smallsteps/backend/internal/apierror"
	"github.com/smallsteps/backend/internal/logger"
	"github.com/smallsteps/backend/internal/middleware"
	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/internal/repository/mocks"
	"github.com/smallsteps/backend/internal/service"
)

const (
	testToken      = "valid-token"
	testUserID     = "5f0c6a2e-1b7d-4c3e-9a8f-2d4b6c8e0a1f"
	testActivityID = "0e9d8c7b-6a5f-4e3d-8c2b-1a0f9e8d7c6b"
	testKidID      = "3c4d5e6f-7a8b-4c9d-8e0f-1a2b3c4d5e6f"
	testInsightID  = "7b8c9d0e-1f2a-4b3c-9d4e-5f6a7b8c9d0e"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, token string) (*middleware.Identity, error) {
	if token != testToken {
		return nil, middleware.ErrInvalidToken
	}
	return &middleware.Identity{UserID: testUserID, Email: "parent@example.com"}, nil
}

type fakeActivities struct {
	service.ActivityService
	lastFilters *models.ActivityFilters
	lastLimit   int
	completeReq *models.CompleteActivityRequest
	err         error
}

func (f *fakeActivities) ListActivities(_ context.Context, filters *models.ActivityFilters) ([]models.Activity, error) {
	f.lastFilters = filters
	return []models.Activity{{ID: testActivityID, Title: "Puddle jumping"}}, f.err
}

func (f *fakeActivities) GetActivity(_ context.Context, id string) (*models.Activity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Activity{ID: id}, nil
}

func (f *fakeActivities) GetTodaysActivity(context.Context, string) (*models.DailyActivity, error) {
	return nil, f.err
}

func (f *fakeActivities) GetRecommendations(_ context.Context, _ string, limit int) ([]models.ActivityRecommendation, error) {
	f.lastLimit = limit
	return []models.ActivityRecommendation{}, f.err
}

func (f *fakeActivities) CompleteActivity(_ context.Context, userID, activityID string, req *models.CompleteActivityRequest) (*models.Completion, error) {
	f.completeReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Completion{ID: "c1", UserID: userID, ActivityID: activityID}, nil
}

type fakeKids struct {
	service.KidService
	err error
}

func (f *fakeKids) CreateKid(_ context.Context, userID string, req *models.CreateKidRequest) (*models.Kid, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Kid{ID: testKidID, UserID: userID, Name: req.Name, Age: *req.Age}, nil
}

func (f *fakeKids) DeleteKid(context.Context, string, string) error {
	return f.err
}

type fakePreferences struct {
	service.PreferenceService
	lastReq *models.UpdatePreferencesRequest
}

func (f *fakePreferences) UpdatePreferences(_ context.Context, userID string, req *models.UpdatePreferencesRequest) (*models.Preferences, error) {
	f.lastReq = req
	return &models.Preferences{UserID: userID}, nil
}

type fakeInsights struct {
	service.InsightService
	lastQuery models.InsightQuery
	lastIDs   []string
}

func (f *fakeInsights) ListInsights(_ context.Context, _ string, q models.InsightQuery) ([]models.Insight, error) {
	f.lastQuery = q
	return []models.Insight{}, nil
}

func (f *fakeInsights) BookmarkStatus(_ context.Context, _ string, ids []string) (map[string]bool, error) {
	f.lastIDs = ids
	status := make(map[string]bool, len(ids))
	for _, id := range ids {
		status[id] = id == testInsightID
	}
	return status, nil
}

type fakeAuth struct {
	service.AuthService
	err error
}

func (f *fakeAuth) Login(context.Context, *models.LoginRequest) (*models.AuthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.AuthResponse{AccessToken: "a", RefreshToken: "r", ExpiresIn: 3600}, nil
}

func (f *fakeAuth) Signup(context.Context, *models.SignupRequest) (*models.AuthResponse, error) {
	return nil, f.err
}

type testServer struct {
	router      *gin.Engine
	activities  *fakeActivities
	kids        *fakeKids
	preferences *fakePreferences
	insights    *fakeInsights
	auth        *fakeAuth
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctrl := gomock.NewController(t)

	ts := &testServer{
		activities:  &fakeActivities{},
		kids:        &fakeKids{},
		preferences: &fakePreferences{},
		insights:    &fakeInsights{},
		auth:        &fakeAuth{},
	}

	activityHandler := NewActivityHandler(ts.activities)
	activityHandler.now = func() time.Time { return time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC) }

	router, err := NewRouter(RouterConfig{
		Logger:      logger.New(logger.Config{Level: logger.LevelError, Output: io.Discard}),
		Verifier:    fakeVerifier{},
		Idempotency: mocks.NewMockReplayRepository(ctrl),
	}, Handlers{
		Health:      NewHealthHandler("test"),
		Auth:        NewAuthHandler(ts.auth),
		Home:        NewHomeHandler(nil),
		Activity:    activityHandler,
		Progress:    NewProgressHandler(nil),
		Stats:       NewStatsHandler(nil),
		Kid:         NewKidHandler(ts.kids),
		Preferences: NewPreferencesHandler(ts.preferences),
		Insights:    NewInsightsHandler(ts.insights),
	})
	require.NoError(t, err)
	ts.router = router
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) apierror.ProblemDetails {
	t.Helper()
	assert.Equal(t, apierror.ContentTypeProblemJSON, w.Header().Get("Content-Type"))
	var problem apierror.ProblemDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	return problem
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activities", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apierror.TypeUnauthorized, decodeProblem(t, w).Type)
}

func TestListActivities_Filters(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/activities?age_min=4&category=creative", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, ts.activities.lastFilters)
	assert.Equal(t, 4, *ts.activities.lastFilters.AgeMin)
	assert.Equal(t, models.CategoryCreative, ts.activities.lastFilters.Category)
	assert.Nil(t, ts.activities.lastFilters.AgeMax)
}

func TestListActivities_UnknownCategory(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/activities?category=cooking", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	problem := decodeProblem(t, w)
	assert.Equal(t, apierror.TypeValidation, problem.Type)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "category", problem.Errors[0].Field)
	assert.Equal(t, "activity_category", problem.Errors[0].Code)
}

func TestGetActivity(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		err        error
		wantStatus int
		wantType   string
	}{
		{name: "found", id: testActivityID, wantStatus: http.StatusOK},
		{name: "malformed id", id: "not-a-uuid", wantStatus: http.StatusBadRequest, wantType: apierror.TypeInvalidID},
		{name: "missing", id: testActivityID, err: service.ErrNotFound, wantStatus: http.StatusNotFound, wantType: apierror.TypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.activities.err = tt.err

			w := ts.do(http.MethodGet, "/api/v1/activities/"+tt.id, "")

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, decodeProblem(t, w).Type)
			}
		})
	}
}

func TestGetTodaysActivity_NullWhenNothingFits(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/activities/today", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestGetRecommendations_Limit(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/activities/recommendations?limit=3", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, ts.activities.lastLimit)

	w = ts.do(http.MethodGet, "/api/v1/activities/recommendations", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, ts.activities.lastLimit)

	w = ts.do(http.MethodGet, "/api/v1/activities/recommendations?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "limit", decodeProblem(t, w).Errors[0].Field)
}

func TestCompleteActivity(t *testing.T) {
	path := "/api/v1/activities/" + testActivityID + "/complete"

	t.Run("created", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.do(http.MethodPost, path, `{"kid_id":"`+testKidID+`","rating":5,"child_rating":4,"notes":"loved it"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, ts.activities.completeReq)
		assert.Equal(t, testKidID, *ts.activities.completeReq.KidID)
		assert.Equal(t, 4, *ts.activities.completeReq.ChildRating)
		assert.Contains(t, w.Body.String(), testActivityID)
	})

	t.Run("empty body is allowed", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.do(http.MethodPost, path, `{}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("rating out of range", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.do(http.MethodPost, path, `{"rating":6}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		problem := decodeProblem(t, w)
		require.Len(t, problem.Errors, 1)
		assert.Equal(t, "rating", problem.Errors[0].Field)
		assert.Nil(t, ts.activities.completeReq)
	})

	t.Run("malformed kid id", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.do(http.MethodPost, path, `{"kid_id":"abc"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "kid_id", decodeProblem(t, w).Errors[0].Field)
	})

	t.Run("completed in the future", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.do(http.MethodPost, path, `{"completed_at":"2026-10-19T16:30:00Z"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apierror.TypeFutureTimestamp, decodeProblem(t, w).Type)
	})

	t.Run("within clock skew", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.do(http.MethodPost, path, `{"completed_at":"2026-10-19T15:30:30Z"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("kid of another parent", func(t *testing.T) {
		ts := newTestServer(t)
		ts.activities.err = service.ErrForbidden
		w := ts.do(http.MethodPost, path, `{"kid_id":"`+testKidID+`"}`)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestCreateKid(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.do(http.MethodPost, "/api/v1/kids", `{"name":"Maya","age":6}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"Maya"`)
	})

	t.Run("missing age", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.do(http.MethodPost, "/api/v1/kids", `{"name":"Maya"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		problem := decodeProblem(t, w)
		require.Len(t, problem.Errors, 1)
		assert.Equal(t, "age", problem.Errors[0].Field)
		assert.Equal(t, "required", problem.Errors[0].Code)
	})

	t.Run("limit reached", func(t *testing.T) {
		ts := newTestServer(t)
		ts.kids.err = service.ErrKidLimitReached
		w := ts.do(http.MethodPost, "/api/v1/kids", `{"name":"Maya","age":6}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		problem := decodeProblem(t, w)
		assert.Equal(t, apierror.TypeKidLimit, problem.Type)
		assert.Equal(t, apierror.ActionRemoveKid, problem.Action)
	})

	t.Run("malformed json", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.do(http.MethodPost, "/api/v1/kids", `{"name":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apierror.TypeBadRequest, decodeProblem(t, w).Type)
	})
}

func TestDeleteKid(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodDelete, "/api/v1/kids/"+testKidID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	ts.kids.err = service.ErrNotFound
	w = ts.do(http.MethodDelete, "/api/v1/kids/"+testKidID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decodeProblem(t, w).Detail, testKidID)
}

func TestUpdatePreferences_ExplicitNull(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPatch, "/api/v1/preferences",
		`{"preferred_categories":["creative","social"],"preferred_difficulty":null}`)

	require.Equal(t, http.StatusOK, w.Code)
	req := ts.preferences.lastReq
	require.NotNil(t, req)
	assert.Equal(t, []models.ActivityCategory{models.CategoryCreative, models.CategorySocial}, *req.PreferredCategories)
	assert.True(t, req.PreferredDifficulty.Set)
	assert.False(t, req.PreferredDifficulty.Valid)
	assert.False(t, req.PreferredDurationMax.Set)
}

func TestUpdatePreferences_UnknownCategory(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPatch, "/api/v1/preferences", `{"preferred_categories":["creative","cooking"]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, ts.preferences.lastReq)
}

func TestListInsights_Query(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/insights?category=bonding&age_range=4-6&q=bedtime", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.InsightCategoryBonding, ts.insights.lastQuery.Category)
	assert.Equal(t, models.AgeRange4To6, ts.insights.lastQuery.AgeRange)
	assert.Equal(t, "bedtime", ts.insights.lastQuery.Search)

	w = ts.do(http.MethodGet, "/api/v1/insights?age_range=11-12", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "age_range", decodeProblem(t, w).Errors[0].Field)
}

func TestBookmarkStatus(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/insights/bookmarks/status?ids="+testInsightID+",+"+testActivityID+",", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{testInsightID, testActivityID}, ts.insights.lastIDs)

	var status map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status[testInsightID])
	assert.False(t, status[testActivityID])

	w = ts.do(http.MethodGet, "/api/v1/insights/bookmarks/status?ids=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierror.TypeInvalidID, decodeProblem(t, w).Type)
}

func TestAuthErrors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "login ok", path: "/api/v1/auth/login", body: `{"email":"a@b.co","password":"pw"}`, wantStatus: http.StatusOK},
		{name: "bad credentials", path: "/api/v1/auth/login", body: `{"email":"a@b.co","password":"pw"}`, err: service.ErrUnauthorized, wantStatus: http.StatusUnauthorized},
		{name: "invalid email", path: "/api/v1/auth/login", body: `{"email":"nope","password":"pw"}`, wantStatus: http.StatusBadRequest},
		{name: "email taken", path: "/api/v1/auth/signup", body: `{"email":"a@b.co","password":"secret1"}`, err: service.ErrEmailTaken, wantStatus: http.StatusConflict},
		{name: "short password", path: "/api/v1/auth/signup", body: `{"email":"a@b.co","password":"123"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.auth.err = tt.err

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			ts.router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
