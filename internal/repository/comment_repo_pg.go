package repository

import (
	"context"

	"github.com/avdonin/shareit/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByItem(ctx context.Context, itemID int64) ([]domain.Comment, error)
	ListByItems(ctx context.Context, itemIDs []int64) ([]domain.Comment, error)
}

type PGCommentRepository struct {
	db *pgxpool.Pool
}

func NewCommentRepository(db *pgxpool.Pool) CommentRepository {
	return &PGCommentRepository{db: db}
}

func (r *PGCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.QueryRow(ctx, `INSERT INTO comments (item_id, author_id, text, created)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		comment.ItemID, comment.AuthorID, comment.Text, comment.Created).Scan(&comment.ID)
}

func (r *PGCommentRepository) ListByItem(ctx context.Context, itemID int64) ([]domain.Comment, error) {
	rows, err := r.db.Query(ctx, `SELECT id, item_id, author_id, text, created FROM comments
		WHERE item_id=$1 ORDER BY id`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComments(rows)
}

func (r *PGCommentRepository) ListByItems(ctx context.Context, itemIDs []int64) ([]domain.Comment, error) {
	rows, err := r.db.Query(ctx, `SELECT id, item_id, author_id, text, created FROM comments
		WHERE item_id = ANY($1) ORDER BY id`, itemIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComments(rows)
}

func scanComments(rows pgx.Rows) ([]domain.Comment, error) {
	comments := make([]domain.Comment, 0)
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.ItemID, &c.AuthorID, &c.Text, &c.Created); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

var _ CommentRepository = (*PGCommentRepository)(nil)
