package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/avdonin/shareit/internal/domain"
	"github.com/avdonin/shareit/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	ItemID int64     `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

type bookingResponse struct {
	ID       int64  `json:"id"`
	ItemID   int64  `json:"item_id"`
	BookerID int64  `json:"booker_id"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Status   string `json:"status"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.PATCH("/:id", h.decide)
	router.GET("/owner", h.listForOwnedItems)
	router.GET("/:id", h.get)
	router.GET("", h.listByUser)
}

func (h *BookingHandler) create(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), userID, booking.CreateBookingInput{
		ItemID: req.ItemID,
		Start:  req.Start,
		End:    req.End,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) decide(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	approved, err := strconv.ParseBool(c.Query("approved"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "approved query parameter must be true or false"})
		return
	}

	b, err := h.service.ApproveOrReject(c.Request.Context(), bookingID, userID, approved)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) get(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) listByUser(c *gin.Context) {
	h.list(c, h.service.ListByUser)
}

func (h *BookingHandler) listForOwnedItems(c *gin.Context) {
	h.list(c, h.service.ListForOwnedItems)
}

func (h *BookingHandler) list(c *gin.Context, fetch func(ctx context.Context, userID int64, state string, from, size int) ([]domain.Booking, error)) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	state := c.DefaultQuery("state", string(domain.StateAll))
	from, ok := queryInt(c, "from", 0)
	if !ok {
		return
	}
	size, ok := queryInt(c, "size", 10)
	if !ok {
		return
	}

	bookings, err := fetch(c.Request.Context(), userID, state, from, size)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:       b.ID,
		ItemID:   b.ItemID,
		BookerID: b.BookerID,
		Start:    b.Start.Format(time.RFC3339),
		End:      b.End.Format(time.RFC3339),
		Status:   string(b.Status),
	}
}
