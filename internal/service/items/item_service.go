package items

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avdonin/shareit/internal/clock"
	"github.com/avdonin/shareit/internal/domain"
	"github.com/avdonin/shareit/internal/repository"
)

type ItemUseCase interface {
	Create(ctx context.Context, ownerID int64, input CreateItemInput) (*domain.Item, error)
	GetByID(ctx context.Context, requesterID, itemID int64) (*ItemDetails, error)
	ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]ItemDetails, error)
	Update(ctx context.Context, ownerID, itemID int64, patch UpdateItemInput) (*domain.Item, error)
	Delete(ctx context.Context, itemID int64) error
	Search(ctx context.Context, text string, from, size int) ([]domain.Item, error)
	AddComment(ctx context.Context, itemID, authorID int64, text string) (*domain.Comment, error)
}

// Cache keeps per-owner item listings; entries are invalidated on any
// mutation of the owner's items.
type Cache interface {
	GetOwnerItems(ctx context.Context, ownerID int64) ([]domain.Item, error)
	SetOwnerItems(ctx context.Context, ownerID int64, items []domain.Item) error
	InvalidateOwnerItems(ctx context.Context, ownerID int64) error
}

type ItemService struct {
	items    repository.ItemRepository
	users    repository.UserRepository
	bookings repository.BookingRepository
	comments repository.CommentRepository
	requests repository.RequestRepository
	cache    Cache
	clock    clock.Clock
}

type CreateItemInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   *int64 `json:"request_id"`
}

type UpdateItemInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// ItemDetails is an item together with its comments. LastBooking and
// NextBooking are the nearest approved bookings around "now"; they are filled
// only on owner-facing views.
type ItemDetails struct {
	Item        domain.Item
	Comments    []domain.Comment
	LastBooking *domain.Booking
	NextBooking *domain.Booking
}

func NewItemService(
	items repository.ItemRepository,
	users repository.UserRepository,
	bookings repository.BookingRepository,
	comments repository.CommentRepository,
	requests repository.RequestRepository,
	cache Cache,
	clk clock.Clock,
) *ItemService {
	return &ItemService{
		items:    items,
		users:    users,
		bookings: bookings,
		comments: comments,
		requests: requests,
		cache:    cache,
		clock:    clk,
	}
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, input CreateItemInput) (*domain.Item, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}
	if input.Available == nil {
		return nil, fmt.Errorf("%w: available flag is required", domain.ErrInvalidInput)
	}
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if input.RequestID != nil {
		if _, err := s.requests.GetByID(ctx, *input.RequestID); err != nil {
			return nil, err
		}
	}

	item := &domain.Item{
		Name:        input.Name,
		Description: input.Description,
		Available:   *input.Available,
		OwnerID:     owner.ID,
		RequestID:   input.RequestID,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	return item, nil
}

// GetByID returns the item with its comments. The owner additionally sees the
// nearest approved bookings around now.
func (s *ItemService) GetByID(ctx context.Context, requesterID, itemID int64) (*ItemDetails, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	details := []ItemDetails{{Item: *item, Comments: comments}}
	if item.OwnerID == requesterID {
		if err := s.attachBookings(ctx, details); err != nil {
			return nil, err
		}
	}
	return &details[0], nil
}

func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]ItemDetails, error) {
	if from < 0 || size < 1 {
		return nil, fmt.Errorf("%w: from=%d size=%d", domain.ErrInvalidPagination, from, size)
	}
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.ownerItems(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	page := pageSlice(items, from, size)

	ids := make([]int64, 0, len(page))
	for _, item := range page {
		ids = append(ids, item.ID)
	}
	details := make([]ItemDetails, 0, len(page))
	if len(ids) == 0 {
		return details, nil
	}

	comments, err := s.comments.ListByItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	byItem := make(map[int64][]domain.Comment)
	for _, c := range comments {
		byItem[c.ItemID] = append(byItem[c.ItemID], c)
	}
	for _, item := range page {
		itemComments := byItem[item.ID]
		if itemComments == nil {
			itemComments = []domain.Comment{}
		}
		details = append(details, ItemDetails{Item: item, Comments: itemComments})
	}
	if err := s.attachBookings(ctx, details); err != nil {
		return nil, err
	}
	return details, nil
}

// Update applies a partial patch; only the owner may change an item.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, patch UpdateItemInput) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, domain.ErrNotAuthorized
	}
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID)
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, itemID int64) error {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.items.Delete(ctx, itemID); err != nil {
		return err
	}
	s.invalidate(ctx, item.OwnerID)
	return nil
}

// Search matches available items by name or description substring. A blank
// query yields an empty result instead of the full catalogue.
func (s *ItemService) Search(ctx context.Context, text string, from, size int) ([]domain.Item, error) {
	if from < 0 || size < 1 {
		return nil, fmt.Errorf("%w: from=%d size=%d", domain.ErrInvalidPagination, from, size)
	}
	if strings.TrimSpace(text) == "" {
		return []domain.Item{}, nil
	}
	return s.items.Search(ctx, text, size, (from/size)*size)
}

// AddComment requires the author to have a non-rejected booking of the item
// that has already started.
func (s *ItemService) AddComment(ctx context.Context, itemID, authorID int64, text string) (*domain.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: comment text is required", domain.ErrInvalidInput)
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	rented, err := s.bookings.HasStartedBooking(ctx, item.ID, author.ID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !rented {
		return nil, domain.ErrCommentNotAllowed
	}

	comment := &domain.Comment{
		ItemID:   item.ID,
		AuthorID: author.ID,
		Text:     text,
		Created:  s.clock.Now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// attachBookings fills LastBooking and NextBooking from the approved bookings
// of each item.
func (s *ItemService) attachBookings(ctx context.Context, details []ItemDetails) error {
	if len(details) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.Item.ID)
	}
	bookings, err := s.bookings.ListApprovedByItems(ctx, ids)
	if err != nil {
		return err
	}
	byItem := make(map[int64][]domain.Booking)
	for _, b := range bookings {
		byItem[b.ItemID] = append(byItem[b.ItemID], b)
	}
	now := s.clock.Now()
	for i := range details {
		details[i].LastBooking, details[i].NextBooking = pickLastNext(byItem[details[i].Item.ID], now)
	}
	return nil
}

// pickLastNext selects the approved booking with the most recent start not
// after now and the one with the earliest start after now.
func pickLastNext(bookings []domain.Booking, now time.Time) (last, next *domain.Booking) {
	for i := range bookings {
		b := bookings[i]
		if b.Start.After(now) {
			if next == nil || b.Start.Before(next.Start) {
				next = &bookings[i]
			}
		} else if last == nil || b.Start.After(last.Start) {
			last = &bookings[i]
		}
	}
	return last, next
}

func (s *ItemService) ownerItems(ctx context.Context, ownerID int64) ([]domain.Item, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetOwnerItems(ctx, ownerID); err == nil && cached != nil {
			return cached, nil
		}
	}
	items, err := s.items.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetOwnerItems(ctx, ownerID, items)
	}
	return items, nil
}

func (s *ItemService) invalidate(ctx context.Context, ownerID int64) {
	if s.cache != nil {
		_ = s.cache.InvalidateOwnerItems(ctx, ownerID)
	}
}

func pageSlice(items []domain.Item, from, size int) []domain.Item {
	offset := (from / size) * size
	if offset >= len(items) {
		return []domain.Item{}
	}
	end := offset + size
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

var _ ItemUseCase = (*ItemService)(nil)
