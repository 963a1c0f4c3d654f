package book

import (
	"errors"
	"net/http"
	"strconv"

	"elibrary/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Create handles POST /api/books
// @Summary Create a book
// @Description Create a book owned by the authenticated caller
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body Draft true "Book fields"
// @Success 201 {object} Book
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var d Draft
	if !httpx.DecodeJSON(w, r, &d) {
		return
	}

	b, err := h.service.Create(r.Context(), d, httpx.CallerFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/books/"+strconv.FormatInt(b.ID, 10))
	httpx.JSON(w, http.StatusCreated, b)
}

// List handles GET /api/books
// @Summary List my books
// @Tags books
// @Produce json
// @Security Bearer
// @Success 200 {array} Book
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListOwned(r.Context(), httpx.CallerFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, books)
}

// Get handles GET /api/books/{id}
// @Summary Get one of my books
// @Tags books
// @Produce json
// @Security Bearer
// @Param id path int true "Book ID"
// @Success 200 {object} Book
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(r)
	if !ok {
		httpx.NotFound(w, r, "Book not found")
		return
	}

	b, err := h.service.GetOwned(r.Context(), id, httpx.CallerFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

// Update handles PUT /api/books/{id}
// @Summary Replace one of my books
// @Tags books
// @Accept json
// @Security Bearer
// @Param id path int true "Book ID"
// @Param request body Draft true "Book fields"
// @Success 204
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/books/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(r)
	if !ok {
		httpx.NotFound(w, r, "Book not found")
		return
	}

	var d Draft
	if !httpx.DecodeJSON(w, r, &d) {
		return
	}

	if err := h.service.UpdateOwned(r.Context(), id, d, httpx.CallerFrom(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// Delete handles DELETE /api/books/{id}
// @Summary Delete one of my books
// @Tags books
// @Security Bearer
// @Param id path int true "Book ID"
// @Success 204
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /api/books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(r)
	if !ok {
		httpx.NotFound(w, r, "Book not found")
		return
	}

	if err := h.service.DeleteOwned(r.Context(), id, httpx.CallerFrom(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// bookID parses the {id} path value. A value that is not an integer can
// never name a book, so callers answer 404.
func bookID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", verr.Fields)
	case errors.Is(err, ErrUnauthorized):
		httpx.Unauthorized(w, r)
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, r, "Book not found")
	default:
		httpx.InternalError(w, r, err)
	}
}
