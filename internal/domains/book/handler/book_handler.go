package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"booknook-backend/internal/domains/book/model"
	"booknook-backend/internal/domains/book/service"
	"booknook-backend/internal/shared/middleware"
	"booknook-backend/internal/shared/request"
	"booknook-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(s service.ServiceInterface) *Handler {
	return &Handler{service: s}
}

// ============================================
// PUBLIC
// ============================================

// ListBooks - GET /api/v1/books
func (h *Handler) ListBooks(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.OK(c, list)
}

// GetBookDetail - GET /api/v1/books/:id
func (h *Handler) GetBookDetail(c *gin.Context) {
	book, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.OK(c, book)
}

// ============================================
// ADMIN
// ============================================

// MyBooks - GET /api/v1/books/my-books
func (h *Handler) MyBooks(c *gin.Context) {
	identity, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	books, err := h.service.ListMine(c.Request.Context(), identity)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.SuccessWithCount(c, books, len(books))
}

// CreateBook - POST /api/v1/books
func (h *Handler) CreateBook(c *gin.Context) {
	identity, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	var req model.CreateBookRequest
	if !request.BindJSON(c, &req) {
		return
	}

	book, err := h.service.Create(c.Request.Context(), req, identity)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Created(c, "Book added successfully", book)
}

// UpdateBook - PUT /api/v1/books/:id
func (h *Handler) UpdateBook(c *gin.Context) {
	var req model.UpdateBookRequest
	if !request.BindJSON(c, &req) {
		return
	}

	book, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Book updated successfully", book)
}

// DeleteBook - DELETE /api/v1/books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	identity, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), identity); err != nil {
		_ = c.Error(err)
		return
	}

	response.OK(c, gin.H{})
}
