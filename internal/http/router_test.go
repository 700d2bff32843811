package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockchecker/stockchecker/internal/auth"
	"github.com/stockchecker/stockchecker/internal/config"
	"github.com/stockchecker/stockchecker/internal/logging"
	"github.com/stockchecker/stockchecker/internal/stocks"
	"github.com/stockchecker/stockchecker/internal/user"
)

type memStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*user.User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*user.User)}
}

func (s *memStore) Create(_ context.Context, email, hashedPassword string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; ok {
		return nil, user.ErrDuplicateEmail
	}
	s.nextID++
	u := &user.User{ID: s.nextID, Email: email, HashedPassword: hashedPassword, CreatedAt: time.Now()}
	s.users[email] = u
	return u, nil
}

func (s *memStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type stubFetcher struct {
	quotes map[string]*stocks.Quote
}

func (s *stubFetcher) GetQuote(_ context.Context, symbol string) (*stocks.Quote, error) {
	q, ok := s.quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", stocks.ErrNoData, symbol)
	}
	return q, nil
}

func newTestApp(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Env = "prod" // no swagger mount in tests
	cfg.Server.TrustedOrigins = []string{"http://localhost:3000"}

	logger := logging.NewLogger(true)

	tokens, err := auth.NewPasetoService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	svc := auth.NewService(newMemStore(), auth.NewHasher(), tokens, auth.NewRevocationRegistry(), logger, 30*time.Minute)

	fetcher := &stubFetcher{quotes: map[string]*stocks.Quote{
		"AAPL": {Symbol: "AAPL", OpeningPrice: 150.25, CurrentPrice: 152.50, HighPrice: 153.00, LowPrice: 149.50, PreviousClose: 150.00},
	}}

	return NewRouter(cfg, auth.NewHandler(svc), auth.NewMiddleware(svc), stocks.NewHandler(fetcher, nil), logger)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRootAndHealthEndpoints(t *testing.T) {
	router := newTestApp(t)

	rec := doJSON(t, router, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Stock Price Checker API")

	rec = doJSON(t, router, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestSecurityHeadersPresent(t *testing.T) {
	router := newTestApp(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil, "")

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", rec.Header().Get("X-XSS-Protection"))
}

func TestQuoteRequiresAuth(t *testing.T) {
	router := newTestApp(t)

	rec := doJSON(t, router, http.MethodGet, "/stocks/quote/AAPL", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginQuoteLogoutFlow(t *testing.T) {
	router := newTestApp(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/signup", map[string]string{
		"email": "a@x.com", "password": "abc12345",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email": "a@x.com", "password": "abc12345",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)
	require.Equal(t, "bearer", login.TokenType)

	// Quote lookup works with the token.
	rec = doJSON(t, router, http.MethodGet, "/stocks/quote/AAPL", nil, login.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"symbol":"AAPL"`)

	// Unknown symbol with valid auth.
	rec = doJSON(t, router, http.MethodGet, "/stocks/quote/FAKE", nil, login.AccessToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No data found for symbol: FAKE")

	// Logout, then the same token is rejected with the revocation message.
	rec = doJSON(t, router, http.MethodPost, "/auth/logout", nil, login.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/stocks/quote/AAPL", nil, login.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token has been revoked")
}
