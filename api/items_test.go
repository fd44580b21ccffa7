package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avdonin/shareit/internal/domain"
	"github.com/avdonin/shareit/internal/service/items"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockItemUseCase is a mock implementation of items.ItemUseCase
type MockItemUseCase struct {
	mock.Mock
}

func (m *MockItemUseCase) Create(ctx context.Context, ownerID int64, input items.CreateItemInput) (*domain.Item, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockItemUseCase) GetByID(ctx context.Context, requesterID, itemID int64) (*items.ItemDetails, error) {
	args := m.Called(ctx, requesterID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*items.ItemDetails), args.Error(1)
}

func (m *MockItemUseCase) ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]items.ItemDetails, error) {
	args := m.Called(ctx, ownerID, from, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]items.ItemDetails), args.Error(1)
}

func (m *MockItemUseCase) Update(ctx context.Context, ownerID, itemID int64, patch items.UpdateItemInput) (*domain.Item, error) {
	args := m.Called(ctx, ownerID, itemID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockItemUseCase) Delete(ctx context.Context, itemID int64) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockItemUseCase) Search(ctx context.Context, text string, from, size int) ([]domain.Item, error) {
	args := m.Called(ctx, text, from, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Item), args.Error(1)
}

func (m *MockItemUseCase) AddComment(ctx context.Context, itemID, authorID int64, text string) (*domain.Comment, error) {
	args := m.Called(ctx, itemID, authorID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func TestItemHandler_get(t *testing.T) {
	mockService := &MockItemUseCase{}
	handler := NewItemHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "3"}}
	c.Request = httptest.NewRequest("GET", "/items/3", nil)
	c.Request.Header.Set(userHeader, "2")

	last := &domain.Booking{ID: 4, ItemID: 3, BookerID: 7,
		Start: time.Date(2024, 5, 28, 12, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 5, 29, 12, 0, 0, 0, time.UTC),
	}
	details := &items.ItemDetails{
		Item: domain.Item{ID: 3, Name: "drill", Description: "cordless", Available: true, OwnerID: 2},
		Comments: []domain.Comment{
			{ID: 1, ItemID: 3, AuthorID: 7, Text: "works great", Created: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
		},
		LastBooking: last,
	}
	mockService.On("GetByID", c.Request.Context(), int64(2), int64(3)).Return(details, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response itemDetailsResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "drill", response.Name)
	assert.Len(t, response.Comments, 1)
	assert.Equal(t, "works great", response.Comments[0].Text)
	assert.NotNil(t, response.LastBooking)
	assert.Equal(t, int64(4), response.LastBooking.ID)
	assert.Nil(t, response.NextBooking)

	mockService.AssertExpectations(t)
}

func TestItemHandler_update_notOwner(t *testing.T) {
	mockService := &MockItemUseCase{}
	handler := NewItemHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	name := "chainsaw"
	patch := items.UpdateItemInput{Name: &name}
	body, _ := json.Marshal(patch)
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	c.Request = httptest.NewRequest("PATCH", "/items/3", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set(userHeader, "9")

	mockService.On("Update", c.Request.Context(), int64(9), int64(3), patch).Return(nil, domain.ErrNotAuthorized)

	handler.update(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertExpectations(t)
}

func TestItemHandler_search(t *testing.T) {
	mockService := &MockItemUseCase{}
	handler := NewItemHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest("GET", "/items/search?text=drill", nil)
	c.Request.Header.Set(userHeader, "7")

	found := []domain.Item{{ID: 3, Name: "drill", Available: true, OwnerID: 2}}
	mockService.On("Search", c.Request.Context(), "drill", 0, 10).Return(found, nil)

	handler.search(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []itemResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Len(t, response, 1)

	mockService.AssertExpectations(t)
}

func TestItemHandler_addComment_notAllowed(t *testing.T) {
	mockService := &MockItemUseCase{}
	handler := NewItemHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(addCommentRequest{Text: "never used it"})
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	c.Request = httptest.NewRequest("POST", "/items/3/comment", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set(userHeader, "7")

	mockService.On("AddComment", c.Request.Context(), int64(3), int64(7), "never used it").Return(nil, domain.ErrCommentNotAllowed)

	handler.addComment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}
