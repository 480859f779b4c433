package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/mocks"
	"messaging-service/internal/repositories"
)

func setupBlockRouter(handler *BlockHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/blocks/:user_id/status", handler.Status)
	r.POST("/blocks", handler.Create)
	r.DELETE("/blocks/:user_id", handler.Remove)
	return r
}

func TestBlockStatusTrue(t *testing.T) {
	blockRepo := new(mocks.BlockRepositoryMock)
	handler := NewBlockHandler(blockRepo)
	router := setupBlockRouter(handler)

	blockRepo.On("IsBlocked", mock.Anything, 1, 2).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/blocks/2/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["blocked"])
	blockRepo.AssertExpectations(t)
}

func TestBlockStatusSelfIsFalse(t *testing.T) {
	blockRepo := new(mocks.BlockRepositoryMock)
	handler := NewBlockHandler(blockRepo)
	router := setupBlockRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/blocks/1/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, false, resp["blocked"])
	blockRepo.AssertNotCalled(t, "IsBlocked", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBlockSuccess(t *testing.T) {
	blockRepo := new(mocks.BlockRepositoryMock)
	handler := NewBlockHandler(blockRepo)
	router := setupBlockRouter(handler)

	blockRepo.On("CreateBlock", mock.Anything, 1, 2, 1, "spam").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/blocks", bytes.NewBufferString(`{"target_user_id":2,"reason":"spam"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	blockRepo.AssertExpectations(t)
}

func TestCreateBlockSelf(t *testing.T) {
	blockRepo := new(mocks.BlockRepositoryMock)
	handler := NewBlockHandler(blockRepo)
	router := setupBlockRouter(handler)

	blockRepo.On("CreateBlock", mock.Anything, 1, 1, 1, "").Return(repositories.ErrSelfBlock).Once()

	req := httptest.NewRequest(http.MethodPost, "/blocks", bytes.NewBufferString(`{"target_user_id":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveBlockIsNoopWhenAbsent(t *testing.T) {
	blockRepo := new(mocks.BlockRepositoryMock)
	handler := NewBlockHandler(blockRepo)
	router := setupBlockRouter(handler)

	blockRepo.On("RemoveBlock", mock.Anything, 1, 2).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/blocks/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	blockRepo.AssertExpectations(t)
}

func TestRemoveBlockRepoError(t *testing.T) {
	blockRepo := new(mocks.BlockRepositoryMock)
	handler := NewBlockHandler(blockRepo)
	router := setupBlockRouter(handler)

	blockRepo.On("RemoveBlock", mock.Anything, 1, 2).Return(assert.AnError).Once()

	req := httptest.NewRequest(http.MethodDelete, "/blocks/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
