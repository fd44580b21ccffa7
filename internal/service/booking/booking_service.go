package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/avdonin/shareit/internal/clock"
	"github.com/avdonin/shareit/internal/domain"
	"github.com/avdonin/shareit/internal/kafka"
	"github.com/avdonin/shareit/internal/logger"
	"github.com/avdonin/shareit/internal/repository"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, requesterID int64, input CreateBookingInput) (*domain.Booking, error)
	ApproveOrReject(ctx context.Context, bookingID, deciderID int64, approve bool) (*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID, requesterID int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64, state string, from, size int) ([]domain.Booking, error)
	ListForOwnedItems(ctx context.Context, userID int64, state string, from, size int) ([]domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	items              repository.ItemRepository
	users              repository.UserRepository
	producer           Producer
	clock              clock.Clock
	bookingTopic       string
	notificationsTopic string
}

type CreateBookingInput struct {
	ItemID int64     `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	items repository.ItemRepository,
	users repository.UserRepository,
	producer Producer,
	clk clock.Clock,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		items:        items,
		users:        users,
		producer:     producer,
		clock:        clk,
		bookingTopic: bookingTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking validates the time window and item state, then persists a
// booking in WAITING status on behalf of the requester.
func (s *BookingService) CreateBooking(ctx context.Context, requesterID int64, input CreateBookingInput) (*domain.Booking, error) {
	booker, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	item, err := s.items.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	if err := s.validateWindow(input.Start, input.End); err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, domain.ErrItemUnavailable
	}
	if item.OwnerID == requesterID {
		return nil, domain.ErrSelfBooking
	}

	booking := &domain.Booking{
		ItemID:   item.ID,
		BookerID: booker.ID,
		Start:    input.Start,
		End:      input.End,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventBookingCreated, booking, item, booker)
	return booking, nil
}

// ApproveOrReject lets the item owner decide a waiting booking. The decision
// is terminal: a second attempt fails with ErrAlreadyDecided.
func (s *BookingService) ApproveOrReject(ctx context.Context, bookingID, deciderID int64, approve bool) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	item, err := s.items.GetByID(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != deciderID {
		return nil, domain.ErrNotAuthorized
	}
	if booking.Status != domain.BookingStatusWaiting {
		return nil, domain.ErrAlreadyDecided
	}

	status := domain.BookingStatusRejected
	eventType := kafka.EventBookingRejected
	if approve {
		status = domain.BookingStatusApproved
		eventType = kafka.EventBookingApproved
	}
	updated, err := s.bookings.UpdateStatus(ctx, bookingID, status)
	if err != nil {
		return nil, err
	}

	booker, err := s.users.GetByID(ctx, updated.BookerID)
	if err != nil {
		logger.Warn("skipping booking event, booker lookup failed", map[string]any{
			"booking_id": updated.ID,
			"event":      eventType,
			"error":      err.Error(),
		})
		return updated, nil
	}
	s.publish(ctx, eventType, updated, item, booker)
	return updated, nil
}

// GetBooking returns the booking to its booker or the item owner. Anyone else
// gets a not-found error so booking existence is not leaked.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, requesterID int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BookerID == requesterID {
		return booking, nil
	}
	item, err := s.items.GetByID(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != requesterID {
		return nil, domain.ErrBookingNotFound
	}
	return booking, nil
}

func (s *BookingService) ListByUser(ctx context.Context, userID int64, state string, from, size int) ([]domain.Booking, error) {
	stateFilter, limit, offset, err := s.listParams(ctx, userID, state, from, size)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListByBooker(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return filterByState(bookings, stateFilter, s.clock.Now()), nil
}

func (s *BookingService) ListForOwnedItems(ctx context.Context, userID int64, state string, from, size int) ([]domain.Booking, error) {
	stateFilter, limit, offset, err := s.listParams(ctx, userID, state, from, size)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListByItemOwner(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return filterByState(bookings, stateFilter, s.clock.Now()), nil
}

func (s *BookingService) listParams(ctx context.Context, userID int64, state string, from, size int) (domain.StateFilter, int, int, error) {
	stateFilter, err := domain.ParseStateFilter(state)
	if err != nil {
		return "", 0, 0, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return "", 0, 0, err
	}
	if from < 0 || size < 1 {
		return "", 0, 0, fmt.Errorf("%w: from=%d size=%d", domain.ErrInvalidPagination, from, size)
	}
	// page index is floor(from/size), matching the original pagination contract
	return stateFilter, size, (from / size) * size, nil
}

func (s *BookingService) validateWindow(start, end time.Time) error {
	now := s.clock.Now()
	if start.IsZero() || end.IsZero() {
		return domain.ErrMissingTimeWindow
	}
	if end.Before(now) || end.Before(start) {
		return domain.ErrInvalidEndTime
	}
	if start.Before(now) || start.After(end) {
		return domain.ErrInvalidStartTime
	}
	if start.Equal(end) {
		return domain.ErrInvalidStartTime
	}
	return nil
}

// filterByState is the single filter+sort used by both listing operations.
// The sort is stable so bookings with equal start keep their input order.
func filterByState(bookings []domain.Booking, state domain.StateFilter, now time.Time) []domain.Booking {
	filtered := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if state.Matches(b, now) {
			filtered = append(filtered, b)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Start.After(filtered[j].Start)
	})
	return filtered
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, item *domain.Item, booker *domain.User) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		BookingID:   booking.ID,
		ItemID:      item.ID,
		ItemName:    item.Name,
		BookerID:    booker.ID,
		BookerEmail: booker.Email,
		OwnerID:     item.OwnerID,
		Status:      string(booking.Status),
		Start:       booking.Start,
		End:         booking.End,
	}
	if owner, err := s.users.GetByID(ctx, item.OwnerID); err == nil {
		event.OwnerEmail = owner.Email
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, event.EventID, event); err != nil {
		logger.Warn("failed to publish booking event", map[string]any{
			"type":       eventType,
			"booking_id": booking.ID,
			"error":      err.Error(),
		})
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, event.EventID, event); err != nil {
			logger.Warn("failed to publish booking notification", map[string]any{
				"type":       eventType,
				"booking_id": booking.ID,
				"error":      err.Error(),
			})
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
