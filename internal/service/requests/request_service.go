package requests

import (
	"context"
	"fmt"
	"strings"

	"github.com/avdonin/shareit/internal/clock"
	"github.com/avdonin/shareit/internal/domain"
	"github.com/avdonin/shareit/internal/repository"
)

type RequestUseCase interface {
	Create(ctx context.Context, requesterID int64, description string) (*domain.ItemRequest, error)
	ListOwn(ctx context.Context, requesterID int64) ([]RequestWithItems, error)
	ListOthers(ctx context.Context, requesterID int64, from, size int) ([]RequestWithItems, error)
	GetByID(ctx context.Context, requesterID, requestID int64) (*RequestWithItems, error)
}

// RequestWithItems is a request together with the items listed in answer to it.
type RequestWithItems struct {
	Request domain.ItemRequest
	Items   []domain.Item
}

type RequestService struct {
	requests repository.RequestRepository
	items    repository.ItemRepository
	users    repository.UserRepository
	clock    clock.Clock
}

func NewRequestService(
	requests repository.RequestRepository,
	items repository.ItemRepository,
	users repository.UserRepository,
	clk clock.Clock,
) *RequestService {
	return &RequestService{requests: requests, items: items, users: users, clock: clk}
}

func (s *RequestService) Create(ctx context.Context, requesterID int64, description string) (*domain.ItemRequest, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}
	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	request := &domain.ItemRequest{
		Description: description,
		RequesterID: requester.ID,
		Created:     s.clock.Now(),
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *RequestService) ListOwn(ctx context.Context, requesterID int64) ([]RequestWithItems, error) {
	if _, err := s.users.GetByID(ctx, requesterID); err != nil {
		return nil, err
	}
	requests, err := s.requests.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

func (s *RequestService) ListOthers(ctx context.Context, requesterID int64, from, size int) ([]RequestWithItems, error) {
	if from < 0 || size < 1 {
		return nil, fmt.Errorf("%w: from=%d size=%d", domain.ErrInvalidPagination, from, size)
	}
	if _, err := s.users.GetByID(ctx, requesterID); err != nil {
		return nil, err
	}
	requests, err := s.requests.ListOthers(ctx, requesterID, size, (from/size)*size)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

func (s *RequestService) GetByID(ctx context.Context, requesterID, requestID int64) (*RequestWithItems, error) {
	if _, err := s.users.GetByID(ctx, requesterID); err != nil {
		return nil, err
	}
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	enriched, err := s.attachItems(ctx, []domain.ItemRequest{*request})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

func (s *RequestService) attachItems(ctx context.Context, requests []domain.ItemRequest) ([]RequestWithItems, error) {
	ids := make([]int64, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.ID)
	}
	result := make([]RequestWithItems, 0, len(requests))
	if len(ids) == 0 {
		return result, nil
	}

	items, err := s.items.ListByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byRequest := make(map[int64][]domain.Item)
	for _, item := range items {
		if item.RequestID != nil {
			byRequest[*item.RequestID] = append(byRequest[*item.RequestID], item)
		}
	}
	for _, r := range requests {
		answered := byRequest[r.ID]
		if answered == nil {
			answered = []domain.Item{}
		}
		result = append(result, RequestWithItems{Request: r, Items: answered})
	}
	return result, nil
}

var _ RequestUseCase = (*RequestService)(nil)
