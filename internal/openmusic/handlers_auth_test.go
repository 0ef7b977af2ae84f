package openmusic

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPostUser(t *testing.T) {
	t.Run("registers with hashed password", func(t *testing.T) {
		store := new(MockStore)
		store.On("AddUser", mock.Anything, "johndoe",
			mock.MatchedBy(func(hash string) bool {
				return bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret123")) == nil
			}), "John Doe").Return("user-abc123", nil)
		srv, _ := newTestServer(t, store)

		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(
			`{"username":"johndoe","password":"secret123","fullname":"John Doe"}`))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, "user-abc123", body["data"].(map[string]any)["userId"])
		store.AssertExpectations(t)
	})

	t.Run("rejects short password", func(t *testing.T) {
		store := new(MockStore)
		srv, _ := newTestServer(t, store)

		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(
			`{"username":"johndoe","password":"abc","fullname":"John Doe"}`))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		store.AssertNotCalled(t, "AddUser")
	})

	t.Run("taken username is 400", func(t *testing.T) {
		store := new(MockStore)
		store.On("AddUser", mock.Anything, "johndoe", mock.Anything, "John Doe").
			Return("", ErrUsernameTaken)
		srv, _ := newTestServer(t, store)

		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(
			`{"username":"johndoe","password":"secret123","fullname":"John Doe"}`))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, "fail", body["status"])
	})
}

func TestGetUser(t *testing.T) {
	store := new(MockStore)
	store.On("GetUserByID", mock.Anything, "user-1").
		Return(User{ID: "user-1", Username: "johndoe", Fullname: "John Doe"}, nil).Once()
	srv, _ := newTestServer(t, store)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/user-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "database", rec.Header().Get(dataSourceHeader))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/user-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cache", rec.Header().Get(dataSourceHeader))

	body := decodeEnvelope(t, rec)
	user := body["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "johndoe", user["username"])
	store.AssertExpectations(t)
}

func TestPostAuthentication(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("valid credentials issue both tokens", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetUserCredentials", mock.Anything, "johndoe").Return("user-1", string(hash), nil)
		store.On("AddRefreshToken", mock.Anything, mock.AnythingOfType("string")).Return(nil)
		srv, _ := newTestServer(t, store)

		req := httptest.NewRequest(http.MethodPost, "/authentications", strings.NewReader(
			`{"username":"johndoe","password":"secret123"}`))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		data := decodeEnvelope(t, rec)["data"].(map[string]any)
		assert.NotEmpty(t, data["accessToken"])
		assert.NotEmpty(t, data["refreshToken"])

		// The access token must pass the auth middleware.
		claims, ok := srv.parseToken(data["accessToken"].(string), "access")
		require.True(t, ok)
		assert.Equal(t, "user-1", claims.UserID)
		store.AssertExpectations(t)
	})

	t.Run("wrong password is 401", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetUserCredentials", mock.Anything, "johndoe").Return("user-1", string(hash), nil)
		srv, _ := newTestServer(t, store)

		req := httptest.NewRequest(http.MethodPost, "/authentications", strings.NewReader(
			`{"username":"johndoe","password":"wrongpass"}`))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		store.AssertNotCalled(t, "AddRefreshToken")
	})

	t.Run("unknown user reads as invalid credentials", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetUserCredentials", mock.Anything, "ghost").Return("", "", ErrUserNotFound)
		srv, _ := newTestServer(t, store)

		req := httptest.NewRequest(http.MethodPost, "/authentications", strings.NewReader(
			`{"username":"ghost","password":"secret123"}`))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, ErrInvalidCredentials.Error(), body["message"])
	})
}

func TestPutAuthentication(t *testing.T) {
	t.Run("known refresh token yields new access token", func(t *testing.T) {
		store := new(MockStore)
		srv, _ := newTestServer(t, store)
		refresh, err := srv.issueRefreshToken("user-1")
		require.NoError(t, err)
		store.On("HasRefreshToken", mock.Anything, refresh).Return(true, nil)

		req := httptest.NewRequest(http.MethodPut, "/authentications",
			strings.NewReader(fmt.Sprintf(`{"refreshToken":%q}`, refresh)))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeEnvelope(t, rec)["data"].(map[string]any)
		claims, ok := srv.parseToken(data["accessToken"].(string), "access")
		require.True(t, ok)
		assert.Equal(t, "user-1", claims.UserID)
		store.AssertExpectations(t)
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		store := new(MockStore)
		srv, _ := newTestServer(t, store)
		refresh, err := srv.issueRefreshToken("user-1")
		require.NoError(t, err)
		store.On("HasRefreshToken", mock.Anything, refresh).Return(false, nil)

		req := httptest.NewRequest(http.MethodPut, "/authentications",
			strings.NewReader(fmt.Sprintf(`{"refreshToken":%q}`, refresh)))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		store := new(MockStore)
		srv, _ := newTestServer(t, store)
		access, err := srv.issueAccessToken("user-1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPut, "/authentications",
			strings.NewReader(fmt.Sprintf(`{"refreshToken":%q}`, access)))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		store.AssertNotCalled(t, "HasRefreshToken")
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		store := new(MockStore)
		srv, _ := newTestServer(t, store)

		req := httptest.NewRequest(http.MethodPut, "/authentications",
			strings.NewReader(`{"refreshToken":"not-a-jwt"}`))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteAuthentication(t *testing.T) {
	t.Run("revokes a known token", func(t *testing.T) {
		store := new(MockStore)
		store.On("DeleteRefreshToken", mock.Anything, "some-refresh-token").Return(nil)
		srv, _ := newTestServer(t, store)

		req := httptest.NewRequest(http.MethodDelete, "/authentications",
			strings.NewReader(`{"refreshToken":"some-refresh-token"}`))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		store.AssertExpectations(t)
	})

	t.Run("unknown token is 400", func(t *testing.T) {
		store := new(MockStore)
		store.On("DeleteRefreshToken", mock.Anything, "unknown-token").Return(ErrInvalidRefreshToken)
		srv, _ := newTestServer(t, store)

		req := httptest.NewRequest(http.MethodDelete, "/authentications",
			strings.NewReader(`{"refreshToken":"unknown-token"}`))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthMiddleware(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := new(MockStore)
			srv, _ := newTestServer(t, store)

			req := httptest.NewRequest(http.MethodGet, "/playlists", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	t.Run("refresh token cannot reach protected routes", func(t *testing.T) {
		store := new(MockStore)
		srv, _ := newTestServer(t, store)
		refresh, err := srv.issueRefreshToken("user-1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/playlists", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
