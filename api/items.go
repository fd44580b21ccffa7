package api

import (
	"net/http"
	"time"

	"github.com/avdonin/shareit/internal/domain"
	"github.com/avdonin/shareit/internal/service/items"
	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	service items.ItemUseCase
}

type itemResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"owner_id"`
	RequestID   *int64 `json:"request_id,omitempty"`
}

type commentResponse struct {
	ID      int64  `json:"id"`
	Text    string `json:"text"`
	Author  int64  `json:"author_id"`
	Created string `json:"created"`
}

type bookingBrief struct {
	ID       int64  `json:"id"`
	BookerID int64  `json:"booker_id"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

type itemDetailsResponse struct {
	itemResponse
	LastBooking *bookingBrief     `json:"last_booking,omitempty"`
	NextBooking *bookingBrief     `json:"next_booking,omitempty"`
	Comments    []commentResponse `json:"comments"`
}

type addCommentRequest struct {
	Text string `json:"text"`
}

func NewItemHandler(service items.ItemUseCase) *ItemHandler {
	return &ItemHandler{service: service}
}

func (h *ItemHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.listByOwner)
	router.GET("/search", h.search)
	router.GET("/:id", h.get)
	router.PATCH("/:id", h.update)
	router.DELETE("/:id", h.delete)
	router.POST("/:id/comment", h.addComment)
}

func (h *ItemHandler) create(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	var req items.CreateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toItemResponse(item))
}

func (h *ItemHandler) listByOwner(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	from, ok := queryInt(c, "from", 0)
	if !ok {
		return
	}
	size, ok := queryInt(c, "size", 10)
	if !ok {
		return
	}

	owned, err := h.service.ListByOwner(c.Request.Context(), userID, from, size)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]itemDetailsResponse, 0, len(owned))
	for _, details := range owned {
		resp = append(resp, toItemDetailsResponse(details))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ItemHandler) search(c *gin.Context) {
	if _, ok := requesterID(c); !ok {
		return
	}
	from, ok := queryInt(c, "from", 0)
	if !ok {
		return
	}
	size, ok := queryInt(c, "size", 10)
	if !ok {
		return
	}

	found, err := h.service.Search(c.Request.Context(), c.Query("text"), from, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponses(found))
}

func (h *ItemHandler) get(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	details, err := h.service.GetByID(c.Request.Context(), userID, itemID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemDetailsResponse(*details))
}

func (h *ItemHandler) update(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req items.UpdateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.service.Update(c.Request.Context(), userID, itemID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(item))
}

func (h *ItemHandler) delete(c *gin.Context) {
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), itemID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ItemHandler) addComment(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), itemID, userID, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCommentResponse(*comment))
}

func toItemResponse(i *domain.Item) itemResponse {
	return itemResponse{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.Available,
		OwnerID:     i.OwnerID,
		RequestID:   i.RequestID,
	}
}

func toItemResponses(all []domain.Item) []itemResponse {
	resp := make([]itemResponse, 0, len(all))
	for i := range all {
		resp = append(resp, toItemResponse(&all[i]))
	}
	return resp
}

func toItemDetailsResponse(details items.ItemDetails) itemDetailsResponse {
	resp := itemDetailsResponse{
		itemResponse: toItemResponse(&details.Item),
		LastBooking:  toBookingBrief(details.LastBooking),
		NextBooking:  toBookingBrief(details.NextBooking),
		Comments:     make([]commentResponse, 0, len(details.Comments)),
	}
	for _, comment := range details.Comments {
		resp.Comments = append(resp.Comments, toCommentResponse(comment))
	}
	return resp
}

func toBookingBrief(b *domain.Booking) *bookingBrief {
	if b == nil {
		return nil
	}
	return &bookingBrief{
		ID:       b.ID,
		BookerID: b.BookerID,
		Start:    b.Start.Format(time.RFC3339),
		End:      b.End.Format(time.RFC3339),
	}
}

func toCommentResponse(c domain.Comment) commentResponse {
	return commentResponse{
		ID:      c.ID,
		Text:    c.Text,
		Author:  c.AuthorID,
		Created: c.Created.Format(time.RFC3339),
	}
}
