package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"elibrary/internal/platform/crypto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const TestSecret = "test-secret-key"

// GenerateTestToken issues a valid one-hour access token.
func GenerateTestToken(secret, userID, email string) string {
	token, _, _ := crypto.GenerateToken(secret, userID, email, time.Hour)
	return token
}

// GenerateExpiredToken issues an access token that expired an hour ago.
func GenerateExpiredToken(secret, userID, email string) string {
	c := crypto.Claims{
		Sub:  userID,
		Name: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "expired-jti",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	return token
}

// NewRequest creates a new HTTP request with body encoded as JSON.
func NewRequest(method, path string, body any) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	bodyBytes, _ := json.Marshal(body)
	r := httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// NewRequestWithAuth creates a new HTTP request carrying a bearer token.
func NewRequestWithAuth(method, path string, body any, token string) *http.Request {
	r := NewRequest(method, path, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

type RecordResponse struct {
	Code   int
	Header http.Header
	Raw    []byte
	// Body is set when the response is a JSON object.
	Body map[string]any
}

func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	raw, _ := io.ReadAll(result.Body)

	var bodyMap map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Raw:    raw,
		Body:   bodyMap,
	}
}

// SetupTestDB connects to TEST_DB_DSN and applies the goose migrations.
// The test is skipped when no database is configured or reachable.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("Skipping test: TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("Skipping test: cannot connect to test database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("Skipping test: cannot ping test database: %v", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("goose dialect: %v", err)
	}
	if err := goose.Up(db, MigrationsDir()); err != nil {
		t.Fatalf("goose up: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// MigrationsDir returns the absolute path of db/migrations.
func MigrationsDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	// this file lives in internal/testutil/, so repo root is ../..
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "db", "migrations")
}

// TruncateTables empties the given tables between integration tests.
func TruncateTables(t *testing.T, pool *pgxpool.Pool, tables ...string) {
	t.Helper()
	for _, table := range tables {
		if _, err := pool.Exec(context.Background(), "TRUNCATE TABLE "+table+" RESTART IDENTITY CASCADE"); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
}
