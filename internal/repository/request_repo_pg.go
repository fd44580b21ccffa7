package repository

import (
	"context"
	"errors"

	"github.com/avdonin/shareit/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RequestRepository interface {
	Create(ctx context.Context, request *domain.ItemRequest) error
	GetByID(ctx context.Context, id int64) (*domain.ItemRequest, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]domain.ItemRequest, error)
	ListOthers(ctx context.Context, requesterID int64, limit, offset int) ([]domain.ItemRequest, error)
}

type PGRequestRepository struct {
	db *pgxpool.Pool
}

func NewRequestRepository(db *pgxpool.Pool) RequestRepository {
	return &PGRequestRepository{db: db}
}

func (r *PGRequestRepository) Create(ctx context.Context, request *domain.ItemRequest) error {
	return r.db.QueryRow(ctx, `INSERT INTO item_requests (description, requester_id, created)
		VALUES ($1, $2, $3) RETURNING id`,
		request.Description, request.RequesterID, request.Created).Scan(&request.ID)
}

func (r *PGRequestRepository) GetByID(ctx context.Context, id int64) (*domain.ItemRequest, error) {
	row := r.db.QueryRow(ctx, `SELECT id, description, requester_id, created FROM item_requests WHERE id=$1`, id)
	var req domain.ItemRequest
	if err := row.Scan(&req.ID, &req.Description, &req.RequesterID, &req.Created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *PGRequestRepository) ListByRequester(ctx context.Context, requesterID int64) ([]domain.ItemRequest, error) {
	rows, err := r.db.Query(ctx, `SELECT id, description, requester_id, created FROM item_requests
		WHERE requester_id=$1 ORDER BY created`, requesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *PGRequestRepository) ListOthers(ctx context.Context, requesterID int64, limit, offset int) ([]domain.ItemRequest, error) {
	rows, err := r.db.Query(ctx, `SELECT id, description, requester_id, created FROM item_requests
		WHERE requester_id <> $1 ORDER BY created DESC LIMIT $2 OFFSET $3`, requesterID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func scanRequests(rows pgx.Rows) ([]domain.ItemRequest, error) {
	requests := make([]domain.ItemRequest, 0)
	for rows.Next() {
		var req domain.ItemRequest
		if err := rows.Scan(&req.ID, &req.Description, &req.RequesterID, &req.Created); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

var _ RequestRepository = (*PGRequestRepository)(nil)
