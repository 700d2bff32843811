package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockchecker/stockchecker/internal/logging"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	store := newMemStore()
	tokens, err := NewPasetoService(testSecretKey)
	require.NoError(t, err)
	svc := NewService(store, NewHasher(), tokens, NewRevocationRegistry(), logging.NewLogger(true), 30*time.Minute)

	handler := NewHandler(svc)
	mw := NewMiddleware(svc)

	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", handler.Signup)
		r.Post("/login", handler.Login)
		r.Post("/logout", handler.Logout)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth)
			r.Get("/validate", handler.Validate)
		})
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func signupAndLogin(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/auth/signup", map[string]string{
		"email": email, "password": password,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": password,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	token, _ := decodeBody(t, rec)["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestSignupEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/signup", map[string]string{
		"email": "a@x.com", "password": "abc12345",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "a@x.com", body["email"])
	assert.Contains(t, body, "id")
	assert.Contains(t, body, "created_at")
	assert.NotContains(t, body, "hashed_password")

	// Same email again is a 400.
	rec = doJSON(t, router, http.MethodPost, "/auth/signup", map[string]string{
		"email": "a@x.com", "password": "abc12345",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already registered")
}

func TestSignupEndpointWeakPassword(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		password string
		message  string
	}{
		{"short", "at least 8 characters"},
		{"passwordonly", "at least one number"},
		{"12345678", "at least one letter"},
	}

	for _, tt := range tests {
		rec := doJSON(t, router, http.MethodPost, "/auth/signup", map[string]string{
			"email": "weak@x.com", "password": tt.password,
		}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "password=%q", tt.password)
		assert.Contains(t, rec.Body.String(), tt.message)
	}
}

func TestSignupEndpointMalformedEmail(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/signup", map[string]string{
		"email": "notanemail", "password": "abc12345",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/signup", map[string]string{
		"email": "a@x.com", "password": "abc12345",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email": "a@x.com", "password": "abc12345",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["access_token"])
	assert.Equal(t, "bearer", body["token_type"])
}

func TestLoginEndpointBadCredentials(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/signup", map[string]string{
		"email": "a@x.com", "password": "abc12345",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	wrongPassword := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email": "a@x.com", "password": "wrongpass1",
	}, nil)
	unknownEmail := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email": "nobody@x.com", "password": "abc12345",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Contains(t, wrongPassword.Body.String(), "Incorrect email or password")
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestValidateEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "a@x.com", "abc12345")

	rec := doJSON(t, router, http.MethodGet, "/auth/validate", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", decodeBody(t, rec)["email"])

	// No header at all.
	rec = doJSON(t, router, http.MethodGet, "/auth/validate", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Malformed header shapes.
	for _, header := range []string{"Bearer", "Bearer ", "Basic " + token, token} {
		rec = doJSON(t, router, http.MethodGet, "/auth/validate", nil, map[string]string{
			"Authorization": header,
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header=%q", header)
	}

	// Garbage token.
	rec = doJSON(t, router, http.MethodGet, "/auth/validate", nil, map[string]string{
		"Authorization": "Bearer garbage",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "a@x.com", "abc12345")

	// Token works before logout.
	rec := doJSON(t, router, http.MethodGet, "/auth/validate", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/logout", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Successfully logged out")

	// The exact token is now rejected with the revocation message.
	rec = doJSON(t, router, http.MethodGet, "/auth/validate", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token has been revoked")

	// A fresh login keeps working.
	rec = doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email": "a@x.com", "password": "abc12345",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fresh, _ := decodeBody(t, rec)["access_token"].(string)

	rec = doJSON(t, router, http.MethodGet, "/auth/validate", nil, map[string]string{
		"Authorization": "Bearer " + fresh,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutEndpointWithoutToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/logout", nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/logout", nil, map[string]string{
		"Authorization": "NotBearer xyz",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
