package domain

import "errors"

// Not-found errors.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrItemNotFound    = errors.New("item not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrRequestNotFound = errors.New("item request not found")
)

// Booking validation and lifecycle errors.
var (
	ErrMissingTimeWindow = errors.New("booking start and end must be set")
	ErrInvalidStartTime  = errors.New("booking start time is invalid")
	ErrInvalidEndTime    = errors.New("booking end time is invalid")
	ErrItemUnavailable   = errors.New("item is not available for booking")
	ErrSelfBooking       = errors.New("owner cannot book own item")
	ErrAlreadyDecided    = errors.New("booking has already been decided")
	ErrUnknownState      = errors.New("unknown state")
)

// Input and authorization errors.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidPagination = errors.New("invalid pagination")
	ErrNotAuthorized     = errors.New("not authorized")
	ErrEmailTaken        = errors.New("email is already in use")
	ErrCommentNotAllowed = errors.New("commenting requires a started rental of the item")
)
