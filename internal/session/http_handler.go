package session

import (
	"errors"
	"net/http"
	"time"

	"elibrary/internal/httpx"
	"elibrary/internal/platform/crypto"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type SessionResponse struct {
	ID         string `json:"id"`
	UserAgent  string `json:"userAgent"`
	IPAddress  string `json:"ipAddress"`
	RememberMe bool   `json:"rememberMe"`
	CreatedAt  string `json:"createdAt"`
	LastUsedAt string `json:"lastUsedAt"`
	ExpiresAt  string `json:"expiresAt"`
	IsCurrent  bool   `json:"isCurrent"`
}

// ListSessions handles GET /api/account/sessions
// @Summary List user sessions
// @Description Get all active sessions for the authenticated user
// @Tags sessions
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/account/sessions [get]
func (h *HTTPHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}

	sessions, err := h.service.ListByUserID(r.Context(), userID)
	if err != nil {
		httpx.InternalError(w, r, err)
		return
	}

	// The session in use is the one whose refresh token came with the request.
	var currentHash string
	if refresh := httpx.CookieValue(r, httpx.RefreshCookieName); refresh != "" {
		currentHash = crypto.HashToken(refresh)
	}

	response := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		response = append(response, SessionResponse{
			ID:         s.ID,
			UserAgent:  s.UserAgent,
			IPAddress:  s.IPAddress,
			RememberMe: s.RememberMe,
			CreatedAt:  s.CreatedAt.UTC().Format(time.RFC3339),
			LastUsedAt: s.LastUsedAt.UTC().Format(time.RFC3339),
			ExpiresAt:  s.ExpiresAt.UTC().Format(time.RFC3339),
			IsCurrent:  currentHash != "" && s.RefreshTokenHash == currentHash,
		})
	}

	httpx.JSONSuccess(w, r, response, map[string]any{"total": len(response)})
}

// DeleteSession handles DELETE /api/account/sessions/{id}
// @Summary Delete session
// @Description Delete a specific session for the authenticated user
// @Tags sessions
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Session ID"
// @Success 204 "No Content"
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/account/sessions/{id} [delete]
func (h *HTTPHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}

	if err := h.service.DeleteForUser(r.Context(), r.PathValue("id"), userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.NotFound(w, r, "Session not found")
			return
		}
		httpx.InternalError(w, r, err)
		return
	}

	httpx.JSONSuccessNoContent(w)
}
