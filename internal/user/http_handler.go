package user

import (
	"errors"
	"io"
	"net/http"

	"elibrary/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type registerReq struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,password_strength"`
}

// Register handles POST /register
// @Summary Register a new user
// @Description Create a new user account
// @Tags account
// @Accept json
// @Produce json
// @Param request body registerReq true "Registration request"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /register [post]
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	req.Email = NormalizeEmail(req.Email)

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	newUser, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			httpx.JSONError(w, r, http.StatusConflict, "ALREADY_EXISTS", "Email already exists", nil)
			return
		}
		httpx.InternalError(w, r, err)
		return
	}

	httpx.JSONSuccessCreated(w, r, map[string]any{
		"id":    newUser.ID,
		"email": newUser.Email,
	})
}

// ManageInfo handles GET /manage/info
// @Summary Get current account
// @Tags account
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /manage/info [get]
func (h *HTTPHandler) ManageInfo(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}

	u, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Unauthorized(w, r)
			return
		}
		httpx.InternalError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, map[string]any{
		"email":            u.Email,
		"isEmailConfirmed": false,
	}, nil)
}

// Hello handles GET /hello
// @Summary Echo the caller identity
// @Tags account
// @Produce plain
// @Security Bearer
// @Success 200 {string} string
// @Failure 401 {object} httpx.ErrorResponse
// @Router /hello [get]
func (h *HTTPHandler) Hello(w http.ResponseWriter, r *http.Request) {
	caller := httpx.CallerFrom(r)
	if caller == "" {
		httpx.Unauthorized(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, caller)
}
