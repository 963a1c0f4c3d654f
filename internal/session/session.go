package session

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Session is a refresh-token login bound to one user agent.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	RefreshTokenHash string    `json:"-"`
	UserAgent        string    `json:"userAgent"`
	IPAddress        string    `json:"ipAddress"`
	RememberMe       bool      `json:"rememberMe"`
	ExpiresAt        time.Time `json:"expiresAt"`
	CreatedAt        time.Time `json:"createdAt"`
	LastUsedAt       time.Time `json:"lastUsedAt"`
}
