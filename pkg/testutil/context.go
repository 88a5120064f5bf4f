package testutil

import (
	"net/http"
	"time"

	id "sospeso/pkg/domain"
	"sospeso/pkg/requestcontext"
)

// WithActor adds an actor identity to the request context. This simulates
// what the auth middleware would do for authenticated requests.
func WithActor(req *http.Request, actorID string) *http.Request {
	parsed, err := id.ParseActorID(actorID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithActorID(req.Context(), parsed))
}

// WithAdmin marks the request context as carrying the admin role. Must be
// combined with WithActor for a realistic authenticated admin request.
func WithAdmin(req *http.Request) *http.Request {
	return req.WithContext(requestcontext.WithAdmin(req.Context(), true))
}

// WithRequestTime pins the request-scoped clock so command timestamps are
// deterministic.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
