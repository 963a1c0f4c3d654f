package auth

import (
	"errors"
	"net/http"

	"elibrary/internal/httpx"
	"elibrary/internal/user"
)

type HTTPHandler struct {
	service *Service
	cookies httpx.CookieOptions
}

func NewHTTPHandler(service *Service, cookies httpx.CookieOptions) *HTTPHandler {
	return &HTTPHandler{service: service, cookies: cookies}
}

type LoginReq struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type TokenResponse struct {
	TokenType    string `json:"tokenType"`
	AccessToken  string `json:"accessToken"`
	ExpiresIn    int    `json:"expiresIn"`
	RefreshToken string `json:"refreshToken"`
}

// Login handles POST /login
// @Summary User login
// @Description Authenticate and receive tokens, either in the body or as HttpOnly cookies
// @Tags auth
// @Accept json
// @Produce json
// @Param useCookies query bool false "Deliver tokens as cookies"
// @Param request body LoginReq true "Login request"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /login [post]
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	req.Email = user.NormalizeEmail(req.Email)

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	tokens, err := h.service.Login(r.Context(), LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
		UserAgent:  r.UserAgent(),
		IPAddress:  httpx.ClientIP(r),
	})
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
			return
		}
		httpx.InternalError(w, r, err)
		return
	}

	h.writeTokens(w, r, tokens, r.URL.Query().Get("useCookies") == "true")
}

type RefreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /refresh
// @Summary Refresh tokens
// @Description Exchange a refresh token from the body or the refresh cookie for a new pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshReq false "Refresh token request"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /refresh [post]
func (h *HTTPHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshReq
	if r.ContentLength != 0 {
		if !httpx.DecodeJSON(w, r, &req) {
			return
		}
	}

	useCookies := false
	if req.RefreshToken == "" {
		req.RefreshToken = httpx.CookieValue(r, httpx.RefreshCookieName)
		useCookies = req.RefreshToken != ""
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken, r.UserAgent(), httpx.ClientIP(r))
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			if useCookies {
				h.cookies.ClearAuthCookies(w)
			}
			httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired refresh token", nil)
			return
		}
		httpx.InternalError(w, r, err)
		return
	}

	h.writeTokens(w, r, tokens, useCookies)
}

// Signout handles POST /api/account/signout
// @Summary Sign out
// @Description Revoke the current access token, end the refresh session and clear cookies
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/account/signout [post]
func (h *HTTPHandler) Signout(w http.ResponseWriter, r *http.Request) {
	if httpx.UserIDFrom(r) == "" {
		httpx.Unauthorized(w, r)
		return
	}

	err := h.service.Logout(r.Context(), httpx.BearerToken(r), httpx.CookieValue(r, httpx.RefreshCookieName))
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			httpx.Unauthorized(w, r)
			return
		}
		httpx.InternalError(w, r, err)
		return
	}

	h.cookies.ClearAuthCookies(w)
	httpx.JSONSuccess(w, r, map[string]string{"message": "Signed out"}, nil)
}

func (h *HTTPHandler) writeTokens(w http.ResponseWriter, r *http.Request, tokens Tokens, useCookies bool) {
	if useCookies {
		h.cookies.SetAuthCookies(w, tokens.AccessToken, tokens.AccessTTL, tokens.RefreshToken, tokens.RefreshTTL)
		httpx.JSONSuccess(w, r, map[string]string{"email": tokens.Email}, nil)
		return
	}

	httpx.JSONSuccess(w, r, TokenResponse{
		TokenType:    "Bearer",
		AccessToken:  tokens.AccessToken,
		ExpiresIn:    int(tokens.AccessTTL.Seconds()),
		RefreshToken: tokens.RefreshToken,
	}, nil)
}
