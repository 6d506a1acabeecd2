package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"booknook-backend/internal/domains/review/model"
	"booknook-backend/internal/domains/review/service"
	"booknook-backend/internal/shared/middleware"
	"booknook-backend/internal/shared/request"
	"booknook-backend/internal/shared/response"
)

// =====================================================
// REVIEW HANDLER
// =====================================================

type ReviewHandler struct {
	reviewService service.ServiceInterface
}

func NewReviewHandler(reviewService service.ServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// =====================================================
// PUBLIC ENDPOINTS
// =====================================================

// ListReviews
// GET /api/v1/reviews?bookId=...
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	list, err := h.reviewService.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.OK(c, list)
}

// GetReview
// GET /api/v1/reviews/:id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	review, err := h.reviewService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.OK(c, review)
}

// =====================================================
// AUTHENTICATED ENDPOINTS
// =====================================================

// CreateReview
// POST /api/v1/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	identity, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	var req model.CreateReviewRequest
	if !request.BindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), req, identity)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Created(c, "Review submitted successfully", review)
}

// UpdateReview
// PUT /api/v1/reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	identity, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	var req model.UpdateReviewRequest
	if !request.BindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), c.Param("id"), req, identity)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Review updated successfully", review)
}

// DeleteReview
// DELETE /api/v1/reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	identity, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), c.Param("id"), identity); err != nil {
		_ = c.Error(err)
		return
	}

	response.Empty(c, "Review deleted successfully")
}
