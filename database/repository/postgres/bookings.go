package postgresRepo

import (
	"context"
	"time"

	"slotbook/models"

	"github.com/jackc/pgx/v5"
)

const bookingViewQuery = `
	SELECT b.id, b.slot_id, b.client_id, b.created_at, b.status,
	       ` + slotColumns + `,
	       ` + serviceColumns + `,
	       p.id, p.external_id, p.name, p.active, p.created_at
	FROM bookings b
	JOIN slots sl ON sl.id = b.slot_id
	JOIN services s ON s.id = sl.service_id
	JOIN providers p ON p.id = s.provider_id`

func scanBookingView(r pgx.Row) (models.BookingView, error) {
	var (
		v      models.BookingView
		status string
	)
	err := r.Scan(
		&v.ID, &v.SlotID, &v.ClientID, &v.CreatedAt, &status,
		&v.Slot.ID, &v.Slot.ServiceID, &v.Slot.Start, &v.Slot.End, &v.Slot.Available,
		&v.Service.ID, &v.Service.ProviderID, &v.Service.Name, &v.Service.Description,
		&v.Service.DurationMinutes, &v.Service.Price, &v.Service.CreatedAt,
		&v.Provider.ID, &v.Provider.ExternalID, &v.Provider.Name, &v.Provider.Active, &v.Provider.CreatedAt,
	)
	v.Status = models.BookingStatus(status)
	return v, err
}

func (q queries) BookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	var (
		b      models.Booking
		status string
	)
	err := q.q.QueryRow(ctx,
		`SELECT id, slot_id, client_id, created_at, status FROM bookings WHERE id = $1`, id,
	).Scan(&b.ID, &b.SlotID, &b.ClientID, &b.CreatedAt, &status)
	if err != nil {
		return nil, wrap("select booking", err)
	}
	b.Status = models.BookingStatus(status)
	return &b, nil
}

func (q queries) BookingDetails(ctx context.Context, id int64) (*models.BookingView, error) {
	v, err := scanBookingView(q.q.QueryRow(ctx, bookingViewQuery+` WHERE b.id = $1`, id))
	if err != nil {
		return nil, wrap("select booking details", err)
	}
	return &v, nil
}

func (q queries) UpcomingBookings(ctx context.Context, clientID string, after time.Time) ([]models.BookingView, error) {
	rows, err := q.q.Query(ctx, bookingViewQuery+`
		WHERE b.client_id = $1 AND b.status = $2 AND sl.start_at > $3
		ORDER BY sl.start_at, b.id`,
		clientID, string(models.BookingConfirmed), after)
	return collect(rows, err, "select upcoming bookings", func(r pgx.Rows) (models.BookingView, error) {
		return scanBookingView(r)
	})
}

func (q queries) InsertBooking(ctx context.Context, b *models.Booking) error {
	err := q.q.QueryRow(ctx,
		`INSERT INTO bookings (slot_id, client_id, created_at, status) VALUES ($1, $2, $3, $4) RETURNING id`,
		b.SlotID, b.ClientID, b.CreatedAt, string(b.Status),
	).Scan(&b.ID)
	return wrap("insert booking", err)
}

func (q queries) DeleteBooking(ctx context.Context, id int64) (bool, error) {
	tag, err := q.q.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return false, wrap("delete booking", err)
	}
	return tag.RowsAffected() == 1, nil
}
