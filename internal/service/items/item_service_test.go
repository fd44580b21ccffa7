package items

import (
	"context"
	"testing"
	"time"

	"github.com/avdonin/shareit/internal/clock"
	"github.com/avdonin/shareit/internal/domain"
	"github.com/avdonin/shareit/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	users    *repository.MemoryUserRepository
	items    *repository.MemoryItemRepository
	bookings *repository.MemoryBookingRepository
	comments *repository.MemoryCommentRepository
	requests *repository.MemoryRequestRepository
	service  *ItemService
}

func newFixture() *fixture {
	f := &fixture{
		users:    repository.NewMemoryUserRepository(),
		comments: repository.NewMemoryCommentRepository(),
		requests: repository.NewMemoryRequestRepository(),
	}
	f.items = repository.NewMemoryItemRepository()
	f.bookings = repository.NewMemoryBookingRepository(f.items)
	f.service = NewItemService(f.items, f.users, f.bookings, f.comments, f.requests, nil, clock.NewFixed(testNow))
	return f
}

func (f *fixture) addUser(t *testing.T, name, email string) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: email}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func TestItemService_Create(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.addUser(t, "owner", "owner@example.com")

	item, err := f.service.Create(ctx, owner.ID, CreateItemInput{
		Name:        "drill",
		Description: "cordless drill",
		Available:   boolPtr(true),
	})

	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, owner.ID, item.OwnerID)
	assert.True(t, item.Available)
}

func TestItemService_Create_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.addUser(t, "owner", "owner@example.com")

	_, err := f.service.Create(ctx, owner.ID, CreateItemInput{Description: "x", Available: boolPtr(true)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.service.Create(ctx, owner.ID, CreateItemInput{Name: "x", Available: boolPtr(true)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.service.Create(ctx, owner.ID, CreateItemInput{Name: "x", Description: "y"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.service.Create(ctx, 99, CreateItemInput{Name: "x", Description: "y", Available: boolPtr(true)})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestItemService_Create_UnknownRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.addUser(t, "owner", "owner@example.com")

	missing := int64(42)
	_, err := f.service.Create(ctx, owner.ID, CreateItemInput{
		Name:        "drill",
		Description: "cordless drill",
		Available:   boolPtr(true),
		RequestID:   &missing,
	})
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}

func TestItemService_Update_OnlyOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.addUser(t, "owner", "owner@example.com")
	other := f.addUser(t, "other", "other@example.com")

	item, err := f.service.Create(ctx, owner.ID, CreateItemInput{
		Name: "drill", Description: "cordless drill", Available: boolPtr(true),
	})
	require.NoError(t, err)

	_, err = f.service.Update(ctx, other.ID, item.ID, UpdateItemInput{Name: strPtr("hammer")})
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	// unchanged after the failed attempt
	details, err := f.service.GetByID(ctx, other.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "drill", details.Item.Name)

	updated, err := f.service.Update(ctx, owner.ID, item.ID, UpdateItemInput{
		Name:      strPtr("hammer"),
		Available: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "hammer", updated.Name)
	assert.False(t, updated.Available)
	assert.Equal(t, "cordless drill", updated.Description)
}

func TestItemService_Search(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.addUser(t, "owner", "owner@example.com")

	mustCreate := func(name, desc string, available bool) {
		_, err := f.service.Create(ctx, owner.ID, CreateItemInput{
			Name: name, Description: desc, Available: boolPtr(available),
		})
		require.NoError(t, err)
	}
	mustCreate("Cordless Drill", "battery powered", true)
	mustCreate("Hand drill", "manual", true)
	mustCreate("Drill press", "workshop only", false)
	mustCreate("Ladder", "3 meters", true)

	found, err := f.service.Search(ctx, "drill", 0, 10)
	require.NoError(t, err)
	assert.Len(t, found, 2) // unavailable items are not searchable

	found, err = f.service.Search(ctx, "", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = f.service.Search(ctx, "drill", 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPagination)
}

func TestItemService_ListByOwner_Pagination(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.addUser(t, "owner", "owner@example.com")

	for i := 0; i < 5; i++ {
		_, err := f.service.Create(ctx, owner.ID, CreateItemInput{
			Name: "item", Description: "desc", Available: boolPtr(true),
		})
		require.NoError(t, err)
	}

	page, err := f.service.ListByOwner(ctx, owner.ID, 0, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, err = f.service.ListByOwner(ctx, owner.ID, 4, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func (f *fixture) addBooking(t *testing.T, itemID, bookerID int64, start, end time.Time, status domain.BookingStatus) *domain.Booking {
	t.Helper()
	ctx := context.Background()
	b := &domain.Booking{ItemID: itemID, BookerID: bookerID, Start: start, End: end}
	require.NoError(t, f.bookings.Create(ctx, b))
	if status != domain.BookingStatusWaiting {
		updated, err := f.bookings.UpdateStatus(ctx, b.ID, status)
		require.NoError(t, err)
		return updated
	}
	return b
}

func TestItemService_GetByID_OwnerSeesLastAndNextBooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.addUser(t, "owner", "owner@example.com")
	renter := f.addUser(t, "renter", "renter@example.com")

	item, err := f.service.Create(ctx, owner.ID, CreateItemInput{
		Name: "drill", Description: "cordless drill", Available: boolPtr(true),
	})
	require.NoError(t, err)

	f.addBooking(t, item.ID, renter.ID, testNow.Add(-96*time.Hour), testNow.Add(-72*time.Hour), domain.BookingStatusApproved)
	last := f.addBooking(t, item.ID, renter.ID, testNow.Add(-48*time.Hour), testNow.Add(-24*time.Hour), domain.BookingStatusApproved)
	next := f.addBooking(t, item.ID, renter.ID, testNow.Add(24*time.Hour), testNow.Add(48*time.Hour), domain.BookingStatusApproved)
	f.addBooking(t, item.ID, renter.ID, testNow.Add(72*time.Hour), testNow.Add(96*time.Hour), domain.BookingStatusApproved)
	// waiting bookings never surface in the owner view
	f.addBooking(t, item.ID, renter.ID, testNow.Add(12*time.Hour), testNow.Add(18*time.Hour), domain.BookingStatusWaiting)

	details, err := f.service.GetByID(ctx, owner.ID, item.ID)
	require.NoError(t, err)
	require.NotNil(t, details.LastBooking)
	require.NotNil(t, details.NextBooking)
	assert.Equal(t, last.ID, details.LastBooking.ID)
	assert.Equal(t, next.ID, details.NextBooking.ID)

	// everyone else sees the item without booking info
	details, err = f.service.GetByID(ctx, renter.ID, item.ID)
	require.NoError(t, err)
	assert.Nil(t, details.LastBooking)
	assert.Nil(t, details.NextBooking)
}

func TestItemService_ListByOwner_AttachesBookingsAndComments(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.addUser(t, "owner", "owner@example.com")
	renter := f.addUser(t, "renter", "renter@example.com")

	drill, err := f.service.Create(ctx, owner.ID, CreateItemInput{
		Name: "drill", Description: "cordless drill", Available: boolPtr(true),
	})
	require.NoError(t, err)
	ladder, err := f.service.Create(ctx, owner.ID, CreateItemInput{
		Name: "ladder", Description: "3 meters", Available: boolPtr(true),
	})
	require.NoError(t, err)

	last := f.addBooking(t, drill.ID, renter.ID, testNow.Add(-48*time.Hour), testNow.Add(-24*time.Hour), domain.BookingStatusApproved)
	comment, err := f.service.AddComment(ctx, drill.ID, renter.ID, "great drill")
	require.NoError(t, err)

	listed, err := f.service.ListByOwner(ctx, owner.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	byID := make(map[int64]ItemDetails, len(listed))
	for _, d := range listed {
		byID[d.Item.ID] = d
	}
	require.NotNil(t, byID[drill.ID].LastBooking)
	assert.Equal(t, last.ID, byID[drill.ID].LastBooking.ID)
	assert.Nil(t, byID[drill.ID].NextBooking)
	require.Len(t, byID[drill.ID].Comments, 1)
	assert.Equal(t, comment.ID, byID[drill.ID].Comments[0].ID)
	assert.Nil(t, byID[ladder.ID].LastBooking)
	assert.Empty(t, byID[ladder.ID].Comments)
}

func TestItemService_AddComment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.addUser(t, "owner", "owner@example.com")
	renter := f.addUser(t, "renter", "renter@example.com")

	item, err := f.service.Create(ctx, owner.ID, CreateItemInput{
		Name: "drill", Description: "cordless drill", Available: boolPtr(true),
	})
	require.NoError(t, err)

	// no rental yet
	_, err = f.service.AddComment(ctx, item.ID, renter.ID, "great drill")
	assert.ErrorIs(t, err, domain.ErrCommentNotAllowed)

	// a started, approved rental unlocks commenting
	b := &domain.Booking{ItemID: item.ID, BookerID: renter.ID, Start: testNow.Add(-48 * time.Hour), End: testNow.Add(-24 * time.Hour)}
	require.NoError(t, f.bookings.Create(ctx, b))
	_, err = f.bookings.UpdateStatus(ctx, b.ID, domain.BookingStatusApproved)
	require.NoError(t, err)

	comment, err := f.service.AddComment(ctx, item.ID, renter.ID, "great drill")
	require.NoError(t, err)
	assert.Equal(t, renter.ID, comment.AuthorID)
	assert.Equal(t, testNow, comment.Created)

	details, err := f.service.GetByID(ctx, renter.ID, item.ID)
	require.NoError(t, err)
	assert.Len(t, details.Comments, 1)
}

func TestItemService_AddComment_RejectedBookingDoesNotCount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.addUser(t, "owner", "owner@example.com")
	renter := f.addUser(t, "renter", "renter@example.com")

	item, err := f.service.Create(ctx, owner.ID, CreateItemInput{
		Name: "drill", Description: "cordless drill", Available: boolPtr(true),
	})
	require.NoError(t, err)

	b := &domain.Booking{ItemID: item.ID, BookerID: renter.ID, Start: testNow.Add(-48 * time.Hour), End: testNow.Add(-24 * time.Hour)}
	require.NoError(t, f.bookings.Create(ctx, b))
	_, err = f.bookings.UpdateStatus(ctx, b.ID, domain.BookingStatusRejected)
	require.NoError(t, err)

	_, err = f.service.AddComment(ctx, item.ID, renter.ID, "never got it")
	assert.ErrorIs(t, err, domain.ErrCommentNotAllowed)
}

type stubCache struct {
	stored      map[int64][]domain.Item
	invalidated int
}

func newStubCache() *stubCache {
	return &stubCache{stored: make(map[int64][]domain.Item)}
}

func (c *stubCache) GetOwnerItems(_ context.Context, ownerID int64) ([]domain.Item, error) {
	return c.stored[ownerID], nil
}

func (c *stubCache) SetOwnerItems(_ context.Context, ownerID int64, items []domain.Item) error {
	c.stored[ownerID] = items
	return nil
}

func (c *stubCache) InvalidateOwnerItems(_ context.Context, ownerID int64) error {
	delete(c.stored, ownerID)
	c.invalidated++
	return nil
}

func TestItemService_CacheInvalidatedOnMutation(t *testing.T) {
	f := newFixture()
	cacheStub := newStubCache()
	f.service = NewItemService(f.items, f.users, f.bookings, f.comments, f.requests, cacheStub, clock.NewFixed(testNow))
	ctx := context.Background()
	owner := f.addUser(t, "owner", "owner@example.com")

	item, err := f.service.Create(ctx, owner.ID, CreateItemInput{
		Name: "drill", Description: "cordless drill", Available: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cacheStub.invalidated)

	// first listing populates the cache
	_, err = f.service.ListByOwner(ctx, owner.ID, 0, 10)
	require.NoError(t, err)
	assert.NotNil(t, cacheStub.stored[owner.ID])

	_, err = f.service.Update(ctx, owner.ID, item.ID, UpdateItemInput{Available: boolPtr(false)})
	require.NoError(t, err)
	assert.Nil(t, cacheStub.stored[owner.ID])
}
