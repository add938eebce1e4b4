package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygateway/internal/auth"
	"paygateway/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type resolverFunc func(ctx context.Context, token string) (domain.Account, error)

func (f resolverFunc) Lookup(ctx context.Context, token string) (domain.Account, error) {
	return f(ctx, token)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCorrelationID(t *testing.T) {
	var seen string
	h := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Correlation-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "given")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "given", seen)
}

func TestBearerAuth(t *testing.T) {
	resolver := resolverFunc(func(ctx context.Context, token string) (domain.Account, error) {
		switch token {
		case "good":
			return domain.Account{ID: "42", Type: domain.AccountTypeCard, TokenLink: "tl-1"}, nil
		case "broken":
			return domain.Account{}, errors.New("db down")
		default:
			return domain.Account{}, auth.ErrInvalidToken
		}
	})

	var got domain.Account
	h := BearerAuth(resolver, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetAccount(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"valid token", "Bearer good", http.StatusNoContent, ""},
		{"missing header", "", http.StatusUnauthorized, "P0920"},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "P0920"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, "P0920"},
		{"resolver failure", "Bearer broken", http.StatusInternalServerError, "P0999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/payments", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, rec)["code"])
				return
			}
			assert.Equal(t, "42", got.ID)
		})
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewTokenBucket(RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2})
	h := RateLimit(limiter, func(r *http.Request) string { return r.Header.Get("X-Key") }, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	call := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Key", key)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("a").Code)
	assert.Equal(t, http.StatusOK, call("a").Code)

	rec := call("a")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "P0900", decodeError(t, rec)["code"])

	// Buckets are per key.
	assert.Equal(t, http.StatusOK, call("b").Code)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("limiter unavailable")
}

func TestRateLimitFailsOpen(t *testing.T) {
	h := RateLimit(failingLimiter{}, ByTokenLink, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestByTokenLink(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, req.RemoteAddr, ByTokenLink(req))

	req = req.WithContext(WithAccount(req.Context(), domain.Account{TokenLink: "tl-1"}))
	assert.Equal(t, "tl-1", ByTokenLink(req))
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unknown payment type")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "P0999", decodeError(t, rec)["code"])
}

func TestRecovererRepanicsAbort(t *testing.T) {
	h := Recoverer(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLoggerSeesAuthenticatedAccount(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	resolver := resolverFunc(func(ctx context.Context, token string) (domain.Account, error) {
		return domain.Account{ID: "42", TokenLink: "tl-1"}, nil
	})
	h := Logger(logger)(BearerAuth(resolver, testLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) })))

	req := httptest.NewRequest(http.MethodPost, "/v1/payments", nil)
	req.Header.Set("Authorization", "Bearer t")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "42", entry["account_id"])
	assert.Equal(t, float64(http.StatusAccepted), entry["status"])
}
