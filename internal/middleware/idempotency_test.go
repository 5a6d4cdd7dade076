package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/internal/repository/mocks"
)

const completeRoute = "POST /api/v1/activities/:id/complete"

func newIdempotentRouter(repo *mocks.MockReplayRepository, userID string, status int, calls *int) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(ContextUserID, userID)
		}
		c.Next()
	})
	r.Use(Idempotency(repo))
	handler := func(c *gin.Context) {
		*calls++
		c.JSON(status, gin.H{"id": "c1"})
	}
	r.POST("/api/v1/activities/:id/complete", handler)
	r.GET("/api/v1/activities/:id", handler)
	return r
}

func postComplete(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/activities/a1/complete", strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_StoresSuccessfulResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReplayRepository(ctrl)
	calls := 0

	repo.EXPECT().Find(gomock.Any(), "u1", completeRoute, "key-1").Return(nil, nil)
	repo.EXPECT().Save(gomock.Any(), &models.StoredResponse{
		UserID:     "u1",
		Route:      completeRoute,
		Key:        "key-1",
		StatusCode: http.StatusCreated,
		Body:       []byte(`{"id":"c1"}`),
	}).Return(nil)

	w := postComplete(newIdempotentRouter(repo, "u1", http.StatusCreated, &calls), "key-1")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
	assert.Empty(t, w.Header().Get(IdempotencyReplayedHeader))
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReplayRepository(ctrl)
	calls := 0

	repo.EXPECT().Find(gomock.Any(), "u1", completeRoute, "key-1").Return(&models.StoredResponse{
		Key:        "key-1",
		StatusCode: http.StatusCreated,
		Body:       []byte(`{"id":"c0"}`),
	}, nil)

	w := postComplete(newIdempotentRouter(repo, "u1", http.StatusCreated, &calls), "key-1")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 0, calls)
	assert.Equal(t, "true", w.Header().Get(IdempotencyReplayedHeader))
	assert.JSONEq(t, `{"id":"c0"}`, w.Body.String())
}

func TestIdempotency_DoesNotStoreFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReplayRepository(ctrl)
	calls := 0

	repo.EXPECT().Find(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	w := postComplete(newIdempotentRouter(repo, "u1", http.StatusUnprocessableEntity, &calls), "key-1")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotency_PassThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReplayRepository(ctrl)
	calls := 0
	r := newIdempotentRouter(repo, "u1", http.StatusOK, &calls)

	// no header
	assert.Equal(t, http.StatusOK, postComplete(r, "").Code)

	// GET ignores the header
	req := httptest.NewRequest(http.MethodGet, "/api/v1/activities/a1", nil)
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 2, calls)
}

func TestIdempotency_LookupFailureServesRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReplayRepository(ctrl)
	calls := 0

	repo.EXPECT().Find(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

	w := postComplete(newIdempotentRouter(repo, "u1", http.StatusCreated, &calls), "key-1")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotency_Rejections(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReplayRepository(ctrl)
	calls := 0

	unauthenticated := postComplete(newIdempotentRouter(repo, "", http.StatusCreated, &calls), "key-1")
	assert.Equal(t, http.StatusUnauthorized, unauthenticated.Code)

	tooLong := postComplete(newIdempotentRouter(repo, "u1", http.StatusCreated, &calls), strings.Repeat("k", 256))
	assert.Equal(t, http.StatusBadRequest, tooLong.Code)

	assert.Equal(t, 0, calls)
}

func TestIdempotency_NoContentRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReplayRepository(ctrl)
	const deleteRoute = "DELETE /api/v1/kids/:id"

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserID, "u1")
		c.Next()
	})
	r.Use(Idempotency(repo))
	calls := 0
	r.DELETE("/api/v1/kids/:id", func(c *gin.Context) {
		calls++
		c.Status(http.StatusNoContent)
	})

	var saved *models.StoredResponse
	gomock.InOrder(
		repo.EXPECT().Find(gomock.Any(), "u1", deleteRoute, "key-2").Return(nil, nil),
		repo.EXPECT().Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, resp *models.StoredResponse) error {
				saved = resp
				return nil
			}),
		repo.EXPECT().Find(gomock.Any(), "u1", deleteRoute, "key-2").
			DoAndReturn(func(context.Context, string, string, string) (*models.StoredResponse, error) {
				return saved, nil
			}),
	)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/kids/k1", nil)
		req.Header.Set(IdempotencyKeyHeader, "key-2")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send()
	assert.Equal(t, http.StatusNoContent, first.Code)
	if assert.NotNil(t, saved) {
		assert.Equal(t, http.StatusNoContent, saved.StatusCode)
		assert.Empty(t, saved.Body)
	}

	replayed := send()
	assert.Equal(t, http.StatusNoContent, replayed.Code)
	assert.Equal(t, "true", replayed.Header().Get(IdempotencyReplayedHeader))
	assert.Empty(t, replayed.Body.String())
	assert.Equal(t, 1, calls)
}
