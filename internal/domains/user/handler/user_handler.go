package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"booknook-backend/internal/domains/user/model"
	"booknook-backend/internal/domains/user/service"
	"booknook-backend/internal/shared/middleware"
	"booknook-backend/internal/shared/request"
	"booknook-backend/internal/shared/response"
)

// AuthHandler serves /auth.
type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// UserHandler serves /users.
type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// ========================================
// AUTHENTICATION ENDPOINTS
// ========================================

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !request.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Location", "/api/v1/users/"+resp.UserID.String())
	response.Created(c, "User registered successfully", resp)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !request.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Login successful", resp)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	profile, err := h.service.Me(c.Request.Context(), identity)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.OK(c, profile)
}

// Logout handles GET /auth/logout. Tokens are stateless; clients discard them.
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Empty(c, "User logged out successfully")
}

// ========================================
// PROFILE ENDPOINTS
// ========================================

// GetProfile handles GET /users/:id
func (h *UserHandler) GetProfile(c *gin.Context) {
	identity, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), c.Param("id"), identity)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.OK(c, profile)
}

// UpdateProfile handles PUT /users/:id
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	identity, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	var req model.UpdateProfileRequest
	if !request.BindJSON(c, &req) {
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), c.Param("id"), req, identity)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Profile updated successfully", profile)
}

// ========================================
// READING LIST ENDPOINTS
// ========================================

// AddToReadingList handles POST /users/:id/reading-list
func (h *UserHandler) AddToReadingList(c *gin.Context) {
	identity, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	var req model.AddToReadingListRequest
	if !request.BindJSON(c, &req) {
		return
	}

	item, err := h.service.AddToReadingList(c.Request.Context(), c.Param("id"), req, identity)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Book added to reading list", item)
}

// RemoveFromReadingList handles DELETE /users/:id/reading-list/:bookId
func (h *UserHandler) RemoveFromReadingList(c *gin.Context) {
	identity, ok := middleware.MustIdentity(c)
	if !ok {
		return
	}

	err := h.service.RemoveFromReadingList(c.Request.Context(), c.Param("id"), c.Param("bookId"), identity)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Empty(c, "Book removed from reading list")
}
