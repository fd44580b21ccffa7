package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/avdonin/shareit/internal/domain"
)

// In-memory implementations of the repository interfaces, concurrency-safe,
// injected in tests instead of the postgres ones.

type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]domain.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[int64]domain.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type MemoryItemRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]domain.Item
}

func NewMemoryItemRepository() *MemoryItemRepository {
	return &MemoryItemRepository{items: make(map[int64]domain.Item)}
}

func (r *MemoryItemRepository) Create(_ context.Context, item *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = *item
	return nil
}

func (r *MemoryItemRepository) GetByID(_ context.Context, id int64) (*domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &i, nil
}

func (r *MemoryItemRepository) ListByOwner(_ context.Context, ownerID int64) ([]domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]domain.Item, 0)
	for _, i := range r.items {
		if i.OwnerID == ownerID {
			items = append(items, i)
		}
	}
	sort.Slice(items, func(a, b int) bool { return items[a].ID < items[b].ID })
	return items, nil
}

func (r *MemoryItemRepository) ListByRequestIDs(_ context.Context, requestIDs []int64) ([]domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wanted := make(map[int64]bool, len(requestIDs))
	for _, id := range requestIDs {
		wanted[id] = true
	}
	items := make([]domain.Item, 0)
	for _, i := range r.items {
		if i.RequestID != nil && wanted[*i.RequestID] {
			items = append(items, i)
		}
	}
	sort.Slice(items, func(a, b int) bool { return items[a].ID < items[b].ID })
	return items, nil
}

func (r *MemoryItemRepository) Update(_ context.Context, item *domain.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return domain.ErrItemNotFound
	}
	r.items[item.ID] = *item
	return nil
}

func (r *MemoryItemRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *MemoryItemRepository) Search(_ context.Context, text string, limit, offset int) ([]domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]domain.Item, 0)
	for _, i := range r.items {
		if i.Available && (containsFold(i.Name, text) || containsFold(i.Description, text)) {
			matched = append(matched, i)
		}
	}
	sort.Slice(matched, func(a, b int) bool { return matched[a].Name < matched[b].Name })
	return page(matched, limit, offset), nil
}

type MemoryBookingRepository struct {
	mu       sync.RWMutex
	nextID   int64
	bookings map[int64]domain.Booking
	items    *MemoryItemRepository
}

// NewMemoryBookingRepository needs the item repository to resolve owners for
// ListByItemOwner, mirroring the join in the postgres implementation.
func NewMemoryBookingRepository(items *MemoryItemRepository) *MemoryBookingRepository {
	return &MemoryBookingRepository{bookings: make(map[int64]domain.Booking), items: items}
}

func (r *MemoryBookingRepository) Create(_ context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	booking.ID = r.nextID
	booking.Status = domain.BookingStatusWaiting
	r.bookings[booking.ID] = *booking
	return nil
}

func (r *MemoryBookingRepository) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return &b, nil
}

func (r *MemoryBookingRepository) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	b.Status = status
	r.bookings[id] = b
	return &b, nil
}

func (r *MemoryBookingRepository) ListByBooker(_ context.Context, bookerID int64, limit, offset int) ([]domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(b domain.Booking) bool { return b.BookerID == bookerID }, limit, offset), nil
}

func (r *MemoryBookingRepository) ListByItemOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(b domain.Booking) bool {
		item, err := r.items.GetByID(ctx, b.ItemID)
		return err == nil && item.OwnerID == ownerID
	}, limit, offset), nil
}

func (r *MemoryBookingRepository) ListApprovedByItems(_ context.Context, itemIDs []int64) ([]domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wanted := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = true
	}
	bookings := make([]domain.Booking, 0)
	for _, b := range r.bookings {
		if wanted[b.ItemID] && b.Status == domain.BookingStatusApproved {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].Start.Before(bookings[j].Start) })
	return bookings, nil
}

func (r *MemoryBookingRepository) HasStartedBooking(_ context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bookings {
		if b.ItemID == itemID && b.BookerID == bookerID && b.Status != domain.BookingStatusRejected && b.Start.Before(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryBookingRepository) collect(match func(domain.Booking) bool, limit, offset int) []domain.Booking {
	bookings := make([]domain.Booking, 0)
	for _, b := range r.bookings {
		if match(b) {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].Start.After(bookings[j].Start) })
	return page(bookings, limit, offset)
}

type MemoryRequestRepository struct {
	mu       sync.RWMutex
	nextID   int64
	requests map[int64]domain.ItemRequest
}

func NewMemoryRequestRepository() *MemoryRequestRepository {
	return &MemoryRequestRepository{requests: make(map[int64]domain.ItemRequest)}
}

func (r *MemoryRequestRepository) Create(_ context.Context, request *domain.ItemRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	request.ID = r.nextID
	r.requests[request.ID] = *request
	return nil
}

func (r *MemoryRequestRepository) GetByID(_ context.Context, id int64) (*domain.ItemRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return &req, nil
}

func (r *MemoryRequestRepository) ListByRequester(_ context.Context, requesterID int64) ([]domain.ItemRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	requests := make([]domain.ItemRequest, 0)
	for _, req := range r.requests {
		if req.RequesterID == requesterID {
			requests = append(requests, req)
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].Created.Before(requests[j].Created) })
	return requests, nil
}

func (r *MemoryRequestRepository) ListOthers(_ context.Context, requesterID int64, limit, offset int) ([]domain.ItemRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	requests := make([]domain.ItemRequest, 0)
	for _, req := range r.requests {
		if req.RequesterID != requesterID {
			requests = append(requests, req)
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].Created.After(requests[j].Created) })
	return page(requests, limit, offset), nil
}

type MemoryCommentRepository struct {
	mu       sync.RWMutex
	nextID   int64
	comments map[int64]domain.Comment
}

func NewMemoryCommentRepository() *MemoryCommentRepository {
	return &MemoryCommentRepository{comments: make(map[int64]domain.Comment)}
}

func (r *MemoryCommentRepository) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	comment.ID = r.nextID
	r.comments[comment.ID] = *comment
	return nil
}

func (r *MemoryCommentRepository) ListByItem(_ context.Context, itemID int64) ([]domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	comments := make([]domain.Comment, 0)
	for _, c := range r.comments {
		if c.ItemID == itemID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (r *MemoryCommentRepository) ListByItems(_ context.Context, itemIDs []int64) ([]domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wanted := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		wanted[id] = true
	}
	comments := make([]domain.Comment, 0)
	for _, c := range r.comments {
		if wanted[c.ItemID] {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func containsFold(s, substr string) bool {
	return substr != "" && strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

var (
	_ UserRepository    = (*MemoryUserRepository)(nil)
	_ ItemRepository    = (*MemoryItemRepository)(nil)
	_ BookingRepository = (*MemoryBookingRepository)(nil)
	_ RequestRepository = (*MemoryRequestRepository)(nil)
	_ CommentRepository = (*MemoryCommentRepository)(nil)
)
