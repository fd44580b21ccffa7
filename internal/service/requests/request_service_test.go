package requests

import (
	"context"
	"testing"
	"time"

	"github.com/avdonin/shareit/internal/domain"
	"github.com/avdonin/shareit/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock advances by a minute on every Now call so created timestamps are
// distinct and ordered.
type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(time.Minute)
	return c.now
}

type fixture struct {
	users    *repository.MemoryUserRepository
	items    *repository.MemoryItemRepository
	requests *repository.MemoryRequestRepository
	service  *RequestService
}

func newFixture() *fixture {
	f := &fixture{
		users:    repository.NewMemoryUserRepository(),
		items:    repository.NewMemoryItemRepository(),
		requests: repository.NewMemoryRequestRepository(),
	}
	f.service = NewRequestService(f.requests, f.items, f.users, &stepClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)})
	return f
}

func (f *fixture) addUser(t *testing.T, email string) *domain.User {
	t.Helper()
	u := &domain.User{Name: "user", Email: email}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func TestRequestService_Create(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requester := f.addUser(t, "requester@example.com")

	request, err := f.service.Create(ctx, requester.ID, "need a drill")
	require.NoError(t, err)
	assert.NotZero(t, request.ID)
	assert.False(t, request.Created.IsZero())

	_, err = f.service.Create(ctx, requester.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.service.Create(ctx, 99, "need a drill")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRequestService_ListOwn_OrderedByCreated(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requester := f.addUser(t, "requester@example.com")

	first, err := f.service.Create(ctx, requester.ID, "need a drill")
	require.NoError(t, err)
	second, err := f.service.Create(ctx, requester.ID, "need a ladder")
	require.NoError(t, err)

	own, err := f.service.ListOwn(ctx, requester.ID)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, first.ID, own[0].Request.ID)
	assert.Equal(t, second.ID, own[1].Request.ID)
}

func TestRequestService_ListOthers_ExcludesOwn(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.addUser(t, "alice@example.com")
	bob := f.addUser(t, "bob@example.com")

	_, err := f.service.Create(ctx, alice.ID, "need a drill")
	require.NoError(t, err)
	bobReq, err := f.service.Create(ctx, bob.ID, "need a ladder")
	require.NoError(t, err)
	bobNewer, err := f.service.Create(ctx, bob.ID, "need a saw")
	require.NoError(t, err)

	others, err := f.service.ListOthers(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, others, 2)
	// newest first
	assert.Equal(t, bobNewer.ID, others[0].Request.ID)
	assert.Equal(t, bobReq.ID, others[1].Request.ID)

	_, err = f.service.ListOthers(ctx, alice.ID, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPagination)
}

func TestRequestService_AttachesAnsweringItems(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	requester := f.addUser(t, "requester@example.com")
	owner := f.addUser(t, "owner@example.com")

	request, err := f.service.Create(ctx, requester.ID, "need a drill")
	require.NoError(t, err)

	answer := &domain.Item{Name: "drill", Description: "cordless", Available: true, OwnerID: owner.ID, RequestID: &request.ID}
	require.NoError(t, f.items.Create(ctx, answer))

	got, err := f.service.GetByID(ctx, requester.ID, request.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, answer.ID, got.Items[0].ID)

	_, err = f.service.GetByID(ctx, requester.ID, 42)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}
