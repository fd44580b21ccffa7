package domain

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusWaiting  BookingStatus = "WAITING"
	BookingStatusApproved BookingStatus = "APPROVED"
	BookingStatusRejected BookingStatus = "REJECTED"
)

type Booking struct {
	ID       int64
	ItemID   int64
	BookerID int64
	Start    time.Time
	End      time.Time
	Status   BookingStatus
}

// StateFilter classifies bookings in listing endpoints relative to "now".
type StateFilter string

const (
	StateAll      StateFilter = "ALL"
	StateCurrent  StateFilter = "CURRENT"
	StatePast     StateFilter = "PAST"
	StateFuture   StateFilter = "FUTURE"
	StateWaiting  StateFilter = "WAITING"
	StateRejected StateFilter = "REJECTED"
)

// ParseStateFilter parses a state token case-insensitively.
func ParseStateFilter(s string) (StateFilter, error) {
	switch StateFilter(strings.ToUpper(s)) {
	case StateAll:
		return StateAll, nil
	case StateCurrent:
		return StateCurrent, nil
	case StatePast:
		return StatePast, nil
	case StateFuture:
		return StateFuture, nil
	case StateWaiting:
		return StateWaiting, nil
	case StateRejected:
		return StateRejected, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownState, s)
	}
}

// Matches reports whether the booking falls into the filter bucket at the given instant.
func (f StateFilter) Matches(b Booking, now time.Time) bool {
	switch f {
	case StateCurrent:
		return !b.Start.After(now) && b.End.After(now)
	case StatePast:
		return b.End.Before(now)
	case StateFuture:
		return b.Start.After(now)
	case StateWaiting:
		return b.Status == BookingStatusWaiting
	case StateRejected:
		return b.Status == BookingStatusRejected
	default:
		return true
	}
}
