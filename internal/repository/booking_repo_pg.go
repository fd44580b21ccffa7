package repository

import (
	"context"
	"errors"
	"time"

	"github.com/avdonin/shareit/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error)
	ListByBooker(ctx context.Context, bookerID int64, limit, offset int) ([]domain.Booking, error)
	ListByItemOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Booking, error)
	ListApprovedByItems(ctx context.Context, itemIDs []int64) ([]domain.Booking, error)
	HasStartedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	booking.Status = domain.BookingStatusWaiting
	return r.db.QueryRow(ctx, `INSERT INTO bookings (item_id, booker_id, start_ts, end_ts, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		booking.ItemID, booking.BookerID, booking.Start, booking.End, booking.Status).Scan(&booking.ID)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT id, item_id, booker_id, start_ts, end_ts, status FROM bookings WHERE id=$1`, id)
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.ItemID, &b.BookerID, &b.Start, &b.End, &b.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1 WHERE id=$2 RETURNING id, item_id, booker_id, start_ts, end_ts, status`, status, id)
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.ItemID, &b.BookerID, &b.Start, &b.End, &b.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) ListByBooker(ctx context.Context, bookerID int64, limit, offset int) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT id, item_id, booker_id, start_ts, end_ts, status FROM bookings
		WHERE booker_id=$1 ORDER BY start_ts DESC LIMIT $2 OFFSET $3`, bookerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *PGBookingRepository) ListByItemOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT b.id, b.item_id, b.booker_id, b.start_ts, b.end_ts, b.status FROM bookings b
		JOIN items i ON i.id = b.item_id
		WHERE i.owner_id=$1 ORDER BY b.start_ts DESC LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *PGBookingRepository) ListApprovedByItems(ctx context.Context, itemIDs []int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT id, item_id, booker_id, start_ts, end_ts, status FROM bookings
		WHERE item_id = ANY($1) AND status=$2 ORDER BY start_ts`, itemIDs, domain.BookingStatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *PGBookingRepository) HasStartedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings
		WHERE item_id=$1 AND booker_id=$2 AND status <> $3 AND start_ts < $4)`,
		itemID, bookerID, domain.BookingStatusRejected, now).Scan(&exists)
	return exists, err
}

func scanBookings(rows pgx.Rows) ([]domain.Booking, error) {
	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.ItemID, &b.BookerID, &b.Start, &b.End, &b.Status); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
