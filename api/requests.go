package api

import (
	"net/http"
	"time"

	"github.com/avdonin/shareit/internal/service/requests"
	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	service requests.RequestUseCase
}

type createRequestRequest struct {
	Description string `json:"description"`
}

type requestResponse struct {
	ID          int64          `json:"id"`
	Description string         `json:"description"`
	RequesterID int64          `json:"requester_id"`
	Created     string         `json:"created"`
	Items       []itemResponse `json:"items"`
}

func NewRequestHandler(service requests.RequestUseCase) *RequestHandler {
	return &RequestHandler{service: service}
}

func (h *RequestHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.listOwn)
	router.GET("/all", h.listOthers)
	router.GET("/:id", h.get)
}

func (h *RequestHandler) create(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	var req createRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.service.Create(c.Request.Context(), userID, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, requestResponse{
		ID:          request.ID,
		Description: request.Description,
		RequesterID: request.RequesterID,
		Created:     request.Created.Format(time.RFC3339),
		Items:       []itemResponse{},
	})
}

func (h *RequestHandler) listOwn(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	own, err := h.service.ListOwn(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponses(own))
}

func (h *RequestHandler) listOthers(c *gin.Context) {
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

	others, err := h.service.ListOthers(c.Request.Context(), userID, from, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponses(others))
}

func (h *RequestHandler) get(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	request, err := h.service.GetByID(c.Request.Context(), userID, requestID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponse(*request))
}

func toRequestResponse(r requests.RequestWithItems) requestResponse {
	return requestResponse{
		ID:          r.Request.ID,
		Description: r.Request.Description,
		RequesterID: r.Request.RequesterID,
		Created:     r.Request.Created.Format(time.RFC3339),
		Items:       toItemResponses(r.Items),
	}
}

func toRequestResponses(all []requests.RequestWithItems) []requestResponse {
	resp := make([]requestResponse, 0, len(all))
	for _, r := range all {
		resp = append(resp, toRequestResponse(r))
	}
	return resp
}
