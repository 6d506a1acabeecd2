package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booknook-backend/internal/domains/review/model"
	"booknook-backend/internal/shared"
	"booknook-backend/internal/shared/apperror"
	"booknook-backend/internal/shared/middleware"
)

type stubService struct {
	created  model.CreateReviewRequest
	actingAs shared.Identity
	err      error
}

func (s *stubService) List(_ context.Context, q url.Values) (*model.ReviewList, error) {
	if q.Get("bookId") == "" {
		return nil, model.NewMissingBookIDError()
	}
	return &model.ReviewList{Reviews: []model.Review{}, Pagination: model.ReviewPagination{TotalReviews: 0}}, nil
}

func (s *stubService) Get(_ context.Context, id string) (*model.Review, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Review{Rating: 4}, nil
}

func (s *stubService) Create(_ context.Context, req model.CreateReviewRequest, identity shared.Identity) (*model.Review, error) {
	s.created = req
	s.actingAs = identity
	if s.err != nil {
		return nil, s.err
	}
	return &model.Review{ID: uuid.New(), Rating: req.Rating, Comment: req.Comment}, nil
}

func (s *stubService) Update(_ context.Context, _ string, _ model.UpdateReviewRequest, _ shared.Identity) (*model.Review, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Review{Rating: 2}, nil
}

func (s *stubService) Delete(_ context.Context, _ string, _ shared.Identity) error {
	return s.err
}

func newTestRouter(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())

	user := func(c *gin.Context) {
		middleware.SetIdentity(c, shared.Identity{ID: "u1", Username: "alice", Role: shared.RoleUser})
		c.Next()
	}

	h := NewReviewHandler(svc)
	r.GET("/reviews", h.ListReviews)
	r.GET("/reviews/:id", h.GetReview)
	r.POST("/reviews", user, h.CreateReview)
	r.PUT("/reviews/:id", user, h.UpdateReview)
	r.DELETE("/reviews/:id", user, h.DeleteReview)
	return r
}

func serve(r http.Handler, method, path, body string) (int, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w.Code, decoded
}

func TestListReviews_RequiresBookID(t *testing.T) {
	r := newTestRouter(&stubService{})

	code, body := serve(r, http.MethodGet, "/reviews", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Please provide a book ID", body["error"])

	code, body = serve(r, http.MethodGet, "/reviews?bookId="+uuid.NewString(), "")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	assert.Contains(t, data["pagination"], "totalReviews")
}

func TestCreateReview_UsesCaller(t *testing.T) {
	svc := &stubService{}
	code, body := serve(newTestRouter(svc), http.MethodPost, "/reviews",
		`{"bookId":"b1","rating":5,"comment":"great","userId":"someone-else"}`)

	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Review submitted successfully", body["message"])
	assert.Equal(t, "b1", svc.created.BookID)
	assert.Equal(t, "u1", svc.actingAs.ID)
}

func TestCreateReview_MalformedBody(t *testing.T) {
	code, body := serve(newTestRouter(&stubService{}), http.MethodPost, "/reviews", `{"rating":"five"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestUpdateAndDeleteReview(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc)

	code, body := serve(r, http.MethodPut, "/reviews/r1", `{"rating":2}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Review updated successfully", body["message"])

	code, body = serve(r, http.MethodDelete, "/reviews/r1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Review deleted successfully", body["message"])

	svc.err = apperror.NotOwner("Not authorized to delete this review")
	code, body = serve(r, http.MethodDelete, "/reviews/r1", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Not authorized to delete this review", body["error"])
}
