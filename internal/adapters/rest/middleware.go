package rest

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/chorus/internal/core/domain"
)

type contextKey string

const callerKey contextKey = "caller"

// callerFrom extracts the caller identity stashed by withCaller.
func callerFrom(ctx context.Context) (domain.Caller, bool) {
	c, ok := ctx.Value(callerKey).(domain.Caller)
	return c, ok
}

// withCaller reads the identity headers set by the authenticating proxy and
// rejects requests that carry none. Authentication itself happens upstream;
// this layer only trusts or refuses.
func (h *Handler) withCaller(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-Id")
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "caller identity is required")
			return
		}
		caller := domain.Caller{
			UserID: userID,
			Admin:  r.Header.Get("X-Admin") == "true",
		}
		next(w, r.WithContext(context.WithValue(r.Context(), callerKey, caller)))
	}
}

// adminOnly gates catalog mutations behind the admin role.
func (h *Handler) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return h.withCaller(func(w http.ResponseWriter, r *http.Request) {
		caller, _ := callerFrom(r.Context())
		if !caller.Admin {
			writeError(w, http.StatusForbidden, "admin role is required")
			return
		}
		next(w, r)
	})
}

// throttled applies the upload rate limiter before the wrapped handler runs.
func (h *Handler) throttled(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.limiter != nil && !h.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "too many upload requests")
			return
		}
		next(w, r)
	}
}

// logged records method, path, status, and duration for every request.
func (h *Handler) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		h.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// newUploadLimiter builds the shared limiter for mutating catalog requests.
// A nil limiter disables throttling.
func newUploadLimiter(perMinute, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}
