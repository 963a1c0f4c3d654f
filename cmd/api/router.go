package main

import (
	"context"
	"net/http"
	"time"

	"elibrary/internal/auth"
	"elibrary/internal/book"
	"elibrary/internal/httpx"
	"elibrary/internal/session"
	"elibrary/internal/user"
)

type readinessCheck func(ctx context.Context) error

type routerDeps struct {
	jwtSecret    string
	corsOrigin   string
	maxBodyBytes int64
	enableHSTS   bool

	books    *book.HTTPHandler
	users    *user.HTTPHandler
	sessions *session.HTTPHandler
	auth     *auth.HTTPHandler

	blacklist httpx.Blacklist
	rateLimit *httpx.RateLimitMiddleware
	ready     []readinessCheck
}

func newRouter(d routerDeps) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		for _, check := range d.ready {
			if err := check(ctx); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("POST /register", d.users.Register)
	router.HandleFunc("POST /login", d.auth.Login)
	router.HandleFunc("POST /refresh", d.auth.Refresh)

	protected := httpx.AuthMiddleware(d.jwtSecret, d.blacklist)
	handle := func(pattern string, h http.HandlerFunc) {
		router.Handle(pattern, protected(h))
	}

	handle("GET /manage/info", d.users.ManageInfo)
	handle("GET /hello", d.users.Hello)
	handle("POST /api/account/signout", d.auth.Signout)
	handle("GET /api/account/sessions", d.sessions.ListSessions)
	handle("DELETE /api/account/sessions/{id}", d.sessions.DeleteSession)

	handle("POST /api/books", d.books.Create)
	handle("GET /api/books", d.books.List)
	handle("GET /api/books/{id}", d.books.Get)
	handle("PUT /api/books/{id}", d.books.Update)
	handle("DELETE /api/books/{id}", d.books.Delete)

	mws := []httpx.Middleware{
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(d.enableHSTS),
		httpx.CORSMiddleware(d.corsOrigin),
		httpx.RequestSizeLimitMiddleware(d.maxBodyBytes),
	}
	if d.rateLimit != nil {
		mws = append(mws, d.rateLimit.Middleware)
	}
	return httpx.Chain(router, mws...)
}
