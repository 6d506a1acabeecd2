package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the success envelope: {success, message?, data, count?}.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
	Count   *int        `json:"count,omitempty"`
}

// ErrorBody is the error envelope: {success:false, error}.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Pagination metadata for list endpoints. The total field name differs per
// resource (totalBooks, totalReviews), so it is rendered by the caller.
type Pagination struct {
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewPagination derives the page flags from a total count.
func NewPagination(total int64, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{
		TotalPages:  totalPages,
		CurrentPage: page,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// Success responses
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

func SuccessWithMessage(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SuccessWithCount(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Count:   &count,
	})
}

func OK(c *gin.Context, data interface{}) {
	Success(c, http.StatusOK, data)
}

func Created(c *gin.Context, message string, data interface{}) {
	SuccessWithMessage(c, http.StatusCreated, message, data)
}

// Empty renders data:{} which clients expect from delete and logout.
func Empty(c *gin.Context, message string) {
	SuccessWithMessage(c, http.StatusOK, message, gin.H{})
}

// Error responses
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorBody{
		Success: false,
		Error:   message,
	})
}
