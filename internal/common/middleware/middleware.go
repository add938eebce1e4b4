package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"

	"paygateway/internal/apierror"
	"paygateway/internal/auth"
	"paygateway/internal/common/api"
	"paygateway/internal/domain"
)

// Context keys
type contextKey string

const (
	CorrelationIDKey contextKey = "correlation_id"
	AccountKey       contextKey = "account"
)

// GetCorrelationID retrieves the correlation ID from context
func GetCorrelationID(ctx context.Context) string {
	if v, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return v
	}
	return ""
}

// GetAccount retrieves the authenticated account from context
func GetAccount(ctx context.Context) (domain.Account, bool) {
	a, ok := ctx.Value(AccountKey).(domain.Account)
	return a, ok
}

// WithAccount stores account in ctx.
func WithAccount(ctx context.Context, account domain.Account) context.Context {
	return context.WithValue(ctx, AccountKey, account)
}

// CorrelationID middleware adds a correlation ID to each request
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = ulid.Make().String()
		}

		ctx := context.WithValue(r.Context(), CorrelationIDKey, correlationID)
		w.Header().Set("X-Correlation-ID", correlationID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logger creates a structured logging middleware
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			// Auth runs further down the chain and stores the account in a
			// derived context, so the account is read back through this holder.
			holder := &accountHolder{}
			r = r.WithContext(context.WithValue(r.Context(), accountHolderKey{}, holder))

			defer func() {
				logger.Info("request completed",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"correlation_id", GetCorrelationID(r.Context()),
					"account_id", holder.account.ID,
					"user_agent", r.UserAgent(),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

type accountHolderKey struct{}

type accountHolder struct {
	account domain.Account
}

// Recoverer recovers from panics and logs them
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("panic recovered",
						"panic", rec,
						"stack", string(debug.Stack()),
						"path", r.URL.Path,
						"method", r.Method,
						"correlation_id", GetCorrelationID(r.Context()),
					)
					api.WriteError(w, apierror.Internal())
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// TokenResolver resolves a bearer token to the calling account.
type TokenResolver interface {
	Lookup(ctx context.Context, token string) (domain.Account, error)
}

// BearerAuth resolves the Authorization header to an account. Requests
// without a valid token are rejected with 401. Resolver failures other than
// auth.ErrInvalidToken are reported as 500.
func BearerAuth(resolver TokenResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				api.WriteError(w, apierror.Unauthorized())
				return
			}

			account, err := resolver.Lookup(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					api.WriteError(w, apierror.Unauthorized())
					return
				}
				logger.Error("token lookup failed",
					"error", err,
					"correlation_id", GetCorrelationID(r.Context()),
				)
				api.WriteError(w, apierror.Internal())
				return
			}

			if h, ok := r.Context().Value(accountHolderKey{}).(*accountHolder); ok {
				h.account = account
			}

			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
		})
	}
}

// RateLimiter decides whether the caller identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit rejects requests the limiter refuses with 429. Limiter failures
// let the request through.
func RateLimit(limiter RateLimiter, keyFunc func(r *http.Request) string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				logger.Info("request rate limited",
					"key", key,
					"correlation_id", GetCorrelationID(r.Context()),
				)
				api.WriteError(w, apierror.TooManyRequests())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ByTokenLink keys rate limiting by the caller's token link.
func ByTokenLink(r *http.Request) string {
	if a, ok := GetAccount(r.Context()); ok {
		return a.TokenLink
	}
	return r.RemoteAddr
}
