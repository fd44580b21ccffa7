package repository

import (
	"context"
	"errors"

	"github.com/avdonin/shareit/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Item, error)
	ListByRequestIDs(ctx context.Context, requestIDs []int64) ([]domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, text string, limit, offset int) ([]domain.Item, error)
}

type PGItemRepository struct {
	db *pgxpool.Pool
}

func NewItemRepository(db *pgxpool.Pool) ItemRepository {
	return &PGItemRepository{db: db}
}

func (r *PGItemRepository) Create(ctx context.Context, item *domain.Item) error {
	return r.db.QueryRow(ctx, `INSERT INTO items (name, description, available, owner_id, request_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		item.Name, item.Description, item.Available, item.OwnerID, item.RequestID).Scan(&item.ID)
}

func (r *PGItemRepository) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, description, available, owner_id, request_id FROM items WHERE id=$1`, id)
	var i domain.Item
	if err := row.Scan(&i.ID, &i.Name, &i.Description, &i.Available, &i.OwnerID, &i.RequestID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return &i, nil
}

func (r *PGItemRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Item, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, description, available, owner_id, request_id FROM items WHERE owner_id=$1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *PGItemRepository) ListByRequestIDs(ctx context.Context, requestIDs []int64) ([]domain.Item, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, description, available, owner_id, request_id FROM items WHERE request_id = ANY($1) ORDER BY id`, requestIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *PGItemRepository) Update(ctx context.Context, item *domain.Item) error {
	cmd, err := r.db.Exec(ctx, `UPDATE items SET name=$1, description=$2, available=$3 WHERE id=$4`,
		item.Name, item.Description, item.Available, item.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *PGItemRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM items WHERE id=$1`, id)
	return err
}

func (r *PGItemRepository) Search(ctx context.Context, text string, limit, offset int) ([]domain.Item, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, description, available, owner_id, request_id FROM items
		WHERE available AND (name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		ORDER BY name LIMIT $2 OFFSET $3`, text, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItems(rows pgx.Rows) ([]domain.Item, error) {
	items := make([]domain.Item, 0)
	for rows.Next() {
		var i domain.Item
		if err := rows.Scan(&i.ID, &i.Name, &i.Description, &i.Available, &i.OwnerID, &i.RequestID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

var _ ItemRepository = (*PGItemRepository)(nil)
