package httpx

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	callerKey    contextKey = "caller"
	tokenIDKey   contextKey = "tokenID"
	requestIDKey contextKey = "requestID"
)

// UserIDFrom retrieves the authenticated user's id from the request context.
func UserIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// CallerFrom retrieves the caller identity (the account email). An empty
// string means the request is anonymous.
func CallerFrom(r *http.Request) string {
	if v, ok := r.Context().Value(callerKey).(string); ok {
		return v
	}
	return ""
}

// TokenIDFrom retrieves the jti of the access token that authenticated the request.
func TokenIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(tokenIDKey).(string); ok {
		return v
	}
	return ""
}

// ContextWithUser returns a new context carrying the resolved caller.
func ContextWithUser(ctx context.Context, userID, caller, tokenID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, callerKey, caller)
	return context.WithValue(ctx, tokenIDKey, tokenID)
}

func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// accessState is shared between AccessLogMiddleware and the handlers below it,
// which see a derived request context.
type accessState struct {
	caller string
}

const accessStateKey contextKey = "accessState"

func contextWithAccessState(ctx context.Context, s *accessState) context.Context {
	return context.WithValue(ctx, accessStateKey, s)
}

func recordCaller(ctx context.Context, caller string) {
	if s, ok := ctx.Value(accessStateKey).(*accessState); ok {
		s.caller = caller
	}
}
