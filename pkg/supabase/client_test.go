package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "service-key")
}

func TestQuery_SendsFiltersAndKeys(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/kids", r.URL.Path)
		assert.Equal(t, "eq.user-1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "created_at.asc", r.URL.Query().Get("order"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":"k1"}]`))
	})

	body, err := client.Query(context.Background(), "kids", map[string]interface{}{
		"user_id": "eq.user-1",
		"order":   "created_at.asc",
	})

	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"k1"}]`, string(body))
}

func TestQuerySingle_NoRows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.pgrst.object+json", r.Header.Get("Accept"))
		w.WriteHeader(http.StatusNotAcceptable)
		_, _ = w.Write([]byte(`{"code":"PGRST116","details":"The result contains 0 rows","hint":null,"message":"JSON object requested, multiple (or no) rows returned"}`))
	})

	_, err := client.QuerySingle(context.Background(), "user_streaks", map[string]interface{}{"user_id": "eq.user-1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoRows))

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotAcceptable, apiErr.StatusCode)
	assert.Equal(t, "The result contains 0 rows", apiErr.Details)
}

func TestCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "id", r.URL.Query().Get("select"))
		_, _ = w.Write([]byte(`[{"id":"a"},{"id":"b"}]`))
	})

	n, err := client.Count(context.Background(), "kids", map[string]interface{}{"user_id": "eq.user-1"})

	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestInsert_SendsRepresentationHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Mia","age":6}`, string(data))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":"k1","name":"Mia","age":6}]`))
	})

	_, err := client.Insert(context.Background(), "kids", map[string]interface{}{"name": "Mia", "age": 6})
	require.NoError(t, err)
}

func TestUpsert_SetsConflictColumns(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "user_id", r.URL.Query().Get("on_conflict"))
		assert.Equal(t, "return=representation,resolution=merge-duplicates", r.Header.Get("Prefer"))
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := client.Upsert(context.Background(), "user_preferences", map[string]interface{}{"user_id": "u"}, "user_id")
	require.NoError(t, err)
}

func TestUpdateAndDelete_FilterByID(t *testing.T) {
	var methods []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		assert.Equal(t, "eq.k1", r.URL.Query().Get("id"))
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"k1"}]`))
	})

	_, err := client.Update(context.Background(), "kids", "k1", map[string]interface{}{"age": 7})
	require.NoError(t, err)
	require.NoError(t, client.Delete(context.Background(), "kids", "k1"))
	assert.Equal(t, []string{http.MethodPatch, http.MethodDelete}, methods)
}

func TestDo_ErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key value violates unique constraint"}`))
	})

	_, err := client.Insert(context.Background(), "user_insight_bookmarks", map[string]string{"user_id": "u"})

	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusConflict))
	assert.False(t, errors.Is(err, ErrNoRows))
	assert.Contains(t, err.Error(), "23505")
}

func TestDo_HonorsContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Query(ctx, "activities", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSignInWithPassword(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "parent@example.com", body["email"])

		_, _ = w.Write([]byte(`{
			"access_token": "access",
			"refresh_token": "refresh",
			"token_type": "bearer",
			"expires_in": 3600,
			"user": {"id": "user-1", "email": "parent@example.com", "user_metadata": {"display_name": "Sam"}}
		}`))
	})

	session, err := client.SignInWithPassword(context.Background(), "parent@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "access", session.AccessToken)
	assert.Equal(t, "refresh", session.RefreshToken)
	assert.Equal(t, 3600, session.ExpiresIn)
	assert.Equal(t, "user-1", session.User.ID)
	assert.Equal(t, "Sam", session.User.DisplayName())
}

func TestSignInWithPassword_InvalidGrant(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	})

	_, err := client.SignInWithPassword(context.Background(), "parent@example.com", "wrong")

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "invalid_grant", apiErr.Code)
	assert.Equal(t, "Invalid login credentials", apiErr.Message)
}

func TestSignUp_WithoutAutoConfirm(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{"display_name": "Sam"}, body["data"])
		_, _ = w.Write([]byte(`{"id":"user-1","email":"parent@example.com","user_metadata":{"display_name":"Sam"}}`))
	})

	session, err := client.SignUp(context.Background(), "parent@example.com", "secret", map[string]interface{}{"display_name": "Sam"})

	require.NoError(t, err)
	assert.Empty(t, session.AccessToken)
	assert.Equal(t, "user-1", session.User.ID)
}

func TestSignOutAndVerify_UseUserToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		switch r.URL.Path {
		case "/auth/v1/logout":
			w.WriteHeader(http.StatusNoContent)
		case "/auth/v1/user":
			_, _ = w.Write([]byte(`{"id":"user-1","email":"parent@example.com"}`))
		}
	})

	require.NoError(t, client.SignOut(context.Background(), "user-token"))

	user, err := client.VerifyToken(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Empty(t, user.DisplayName())
}

func TestUpdateUserMetadata(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var body struct {
			Data map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Alex", body.Data["display_name"])
		_, _ = w.Write([]byte(`{"id":"user-1","email":"parent@example.com","user_metadata":{"display_name":"Alex"}}`))
	})

	user, err := client.UpdateUserMetadata(context.Background(), "user-token", map[string]interface{}{"display_name": "Alex"})

	require.NoError(t, err)
	assert.Equal(t, "Alex", user.DisplayName())
}
