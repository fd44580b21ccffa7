package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/avdonin/shareit/internal/domain"
	"github.com/gin-gonic/gin"
)

const userHeader = "X-Sharer-User-Id"

// writeError translates domain error kinds into HTTP statuses. This is the
// only place transport codes are assigned.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrRequestNotFound),
		errors.Is(err, domain.ErrSelfBooking):
		// self-booking returns not-found so the response does not imply the
		// item is bookable by its owner
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotAuthorized):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrMissingTimeWindow),
		errors.Is(err, domain.ErrInvalidStartTime),
		errors.Is(err, domain.ErrInvalidEndTime),
		errors.Is(err, domain.ErrItemUnavailable),
		errors.Is(err, domain.ErrAlreadyDecided),
		errors.Is(err, domain.ErrUnknownState),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidPagination),
		errors.Is(err, domain.ErrCommentNotAllowed):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// requesterID extracts the caller identity from the X-Sharer-User-Id header
// propagated by the gateway.
func requesterID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.GetHeader(userHeader), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid " + userHeader + " header"})
		return 0, false
	}
	return id, true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.DefaultQuery(name, strconv.Itoa(def))
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}
