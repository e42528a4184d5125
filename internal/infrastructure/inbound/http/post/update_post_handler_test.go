package post_http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"marites-post-service/internal/custom_errors"
	model "marites-post-service/internal/domain/models"
	"marites-post-service/internal/infrastructure/logger"
	post_http "marites-post-service/internal/infrastructure/inbound/http/post"
	mockpost "marites-post-service/mocks/post"
)

func TestUpdatePostHandler_Handle(t *testing.T) {
	validate := post_http.NewValidator()
	testLogger := logger.New("test")
	body := `{"title":"new","content":"body","author":"C","published":false,"likes":100}`

	t.Run("Success keeps only mutable fields", func(t *testing.T) {
		mockPostService := new(mockpost.Service)
		handler := post_http.NewUpdatePostHandler(mockPostService, validate, testLogger)
		expected := &model.UpdatePostDTO{Title: "new", Content: "body", Published: false}
		mockPostService.On("UpdatePost", mock.Anything, int64(5), expected).
			Return(&model.Post{ID: 5, Title: "new", Content: "body", Author: "C", Likes: 2}, nil)

		w := serve(http.MethodPut, "/posts/:id", "/posts/5", body, handler.Handle)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"likes":2`)
		mockPostService.AssertExpectations(t)
	})

	t.Run("Published defaults to true", func(t *testing.T) {
		mockPostService := new(mockpost.Service)
		handler := post_http.NewUpdatePostHandler(mockPostService, validate, testLogger)
		expected := &model.UpdatePostDTO{Title: "new", Content: "body", Published: true}
		mockPostService.On("UpdatePost", mock.Anything, int64(5), expected).Return(&model.Post{ID: 5}, nil)

		w := serve(http.MethodPut, "/posts/:id", "/posts/5", `{"title":"new","content":"body","author":"C"}`, handler.Handle)

		assert.Equal(t, http.StatusOK, w.Code)
		mockPostService.AssertExpectations(t)
	})

	t.Run("Not found", func(t *testing.T) {
		mockPostService := new(mockpost.Service)
		handler := post_http.NewUpdatePostHandler(mockPostService, validate, testLogger)
		mockPostService.On("UpdatePost", mock.Anything, int64(404), mock.Anything).Return(nil, custom_errors.ErrPostNotFound)

		w := serve(http.MethodPut, "/posts/:id", "/posts/404", body, handler.Handle)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Post with id: 404 was not found", decodeDetail(t, w))
	})

	t.Run("Invalid body", func(t *testing.T) {
		mockPostService := new(mockpost.Service)
		handler := post_http.NewUpdatePostHandler(mockPostService, validate, testLogger)

		w := serve(http.MethodPut, "/posts/:id", "/posts/5", `{"title":"only"}`, handler.Handle)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockPostService.AssertNotCalled(t, "UpdatePost", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Invalid id", func(t *testing.T) {
		mockPostService := new(mockpost.Service)
		handler := post_http.NewUpdatePostHandler(mockPostService, validate, testLogger)

		w := serve(http.MethodPut, "/posts/:id", "/posts/x1", body, handler.Handle)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
