package postgresRepo

import (
	"context"
	"time"

	"slotbook/database/repository"
	"slotbook/models"

	"github.com/jackc/pgx/v5"
)

const slotColumns = `sl.id, sl.service_id, sl.start_at, sl.end_at, sl.available`

func scanSlot(row pgx.Row, extra ...any) (models.TimeSlot, error) {
	var slot models.TimeSlot
	dest := append([]any{&slot.ID, &slot.ServiceID, &slot.Start, &slot.End, &slot.Available}, extra...)
	err := row.Scan(dest...)
	return slot, err
}

func scanSlotRows(r pgx.Rows) (models.TimeSlot, error) { return scanSlot(r) }

func (q queries) SlotByID(ctx context.Context, id int64) (*models.TimeSlot, error) {
	slot, err := scanSlot(q.q.QueryRow(ctx, `SELECT `+slotColumns+` FROM slots sl WHERE sl.id = $1`, id))
	if err != nil {
		return nil, wrap("select slot", err)
	}
	return &slot, nil
}

func (q queries) SlotsByService(ctx context.Context, serviceID int64) ([]models.TimeSlot, error) {
	rows, err := q.q.Query(ctx, `SELECT `+slotColumns+` FROM slots sl WHERE sl.service_id = $1 ORDER BY sl.start_at, sl.id`, serviceID)
	return collect(rows, err, "select slots", scanSlotRows)
}

func (q queries) SlotsByProvider(ctx context.Context, providerID int64) ([]models.SlotView, error) {
	rows, err := q.q.Query(ctx, `
		SELECT `+slotColumns+`, s.name, b.id, b.client_id, b.created_at, b.status
		FROM slots sl
		JOIN services s ON s.id = sl.service_id
		LEFT JOIN bookings b ON b.slot_id = sl.id
		WHERE s.provider_id = $1
		ORDER BY sl.start_at, sl.id`, providerID)
	return collect(rows, err, "select provider slots", func(r pgx.Rows) (models.SlotView, error) {
		var (
			view      models.SlotView
			bookingID *int64
			clientID  *string
			createdAt *time.Time
			status    *string
		)
		slot, err := scanSlot(r, &view.ServiceName, &bookingID, &clientID, &createdAt, &status)
		if err != nil {
			return view, err
		}
		view.TimeSlot = slot
		if bookingID != nil {
			view.Booking = &models.Booking{
				ID:        *bookingID,
				SlotID:    slot.ID,
				ClientID:  *clientID,
				CreatedAt: *createdAt,
				Status:    models.BookingStatus(*status),
			}
		}
		return view, nil
	})
}

func (q queries) AvailableSlots(ctx context.Context, serviceID int64, after time.Time, limit int) ([]models.TimeSlot, error) {
	sql := `SELECT ` + slotColumns + ` FROM slots sl
		WHERE sl.service_id = $1 AND sl.available AND sl.start_at > $2
		ORDER BY sl.start_at, sl.id`
	args := []any{serviceID, after}
	if limit > 0 {
		sql += ` LIMIT $3`
		args = append(args, limit)
	}
	rows, err := q.q.Query(ctx, sql, args...)
	return collect(rows, err, "select available slots", scanSlotRows)
}

func (q queries) InsertSlot(ctx context.Context, slot *models.TimeSlot) error {
	err := q.q.QueryRow(ctx,
		`INSERT INTO slots (service_id, start_at, end_at, available) VALUES ($1, $2, $3, $4) RETURNING id`,
		slot.ServiceID, slot.Start, slot.End, slot.Available,
	).Scan(&slot.ID)
	return wrap("insert slot", err)
}

// ClaimSlot relies on the row lock taken by UPDATE: a concurrent claimer
// waits, then re-checks the WHERE clause against the committed row and
// matches nothing.
func (q queries) ClaimSlot(ctx context.Context, slotID int64, now time.Time) (bool, error) {
	tag, err := q.q.Exec(ctx,
		`UPDATE slots SET available = FALSE WHERE id = $1 AND available AND start_at > $2`,
		slotID, now)
	if err != nil {
		return false, wrap("claim slot", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (q queries) ReleaseSlot(ctx context.Context, slotID int64) error {
	tag, err := q.q.Exec(ctx, `UPDATE slots SET available = TRUE WHERE id = $1`, slotID)
	if err != nil {
		return wrap("release slot", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
