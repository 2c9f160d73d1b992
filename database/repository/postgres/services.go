package postgresRepo

import (
	"context"

	"slotbook/database/repository"
	"slotbook/models"

	"github.com/jackc/pgx/v5"
)

const serviceColumns = `s.id, s.provider_id, s.name, s.description, s.duration_minutes, s.price, s.created_at`

func scanService(row pgx.Row, extra ...any) (models.Service, error) {
	var svc models.Service
	dest := append([]any{&svc.ID, &svc.ProviderID, &svc.Name, &svc.Description, &svc.DurationMinutes, &svc.Price, &svc.CreatedAt}, extra...)
	err := row.Scan(dest...)
	return svc, err
}

func (q queries) ServiceByID(ctx context.Context, id int64) (*models.Service, error) {
	svc, err := scanService(q.q.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services s WHERE s.id = $1`, id))
	if err != nil {
		return nil, wrap("select service", err)
	}
	return &svc, nil
}

func (q queries) ServicesByProvider(ctx context.Context, providerID int64) ([]models.Service, error) {
	rows, err := q.q.Query(ctx, `SELECT `+serviceColumns+` FROM services s WHERE s.provider_id = $1 ORDER BY s.id`, providerID)
	return collect(rows, err, "select services", func(r pgx.Rows) (models.Service, error) {
		return scanService(r)
	})
}

func (q queries) PublicServices(ctx context.Context) ([]models.PublicService, error) {
	rows, err := q.q.Query(ctx, `
		SELECT `+serviceColumns+`, p.name
		FROM services s
		JOIN providers p ON p.id = s.provider_id
		WHERE p.active
		ORDER BY p.name, s.name, s.id`)
	return collect(rows, err, "select public services", func(r pgx.Rows) (models.PublicService, error) {
		var ps models.PublicService
		svc, err := scanService(r, &ps.ProviderName)
		ps.Service = svc
		return ps, err
	})
}

func (q queries) InsertService(ctx context.Context, svc *models.Service) error {
	err := q.q.QueryRow(ctx, `
		INSERT INTO services (provider_id, name, description, duration_minutes, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		svc.ProviderID, svc.Name, svc.Description, svc.DurationMinutes, svc.Price, svc.CreatedAt,
	).Scan(&svc.ID)
	return wrap("insert service", err)
}

func (q queries) UpdateService(ctx context.Context, svc *models.Service) error {
	tag, err := q.q.Exec(ctx, `
		UPDATE services SET name = $2, description = $3, duration_minutes = $4, price = $5
		WHERE id = $1`,
		svc.ID, svc.Name, svc.Description, svc.DurationMinutes, svc.Price)
	if err != nil {
		return wrap("update service", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteService removes bookings, then slots, then the service itself.
func (q queries) DeleteService(ctx context.Context, id int64) (int64, error) {
	if err := q.LockService(ctx, id); err != nil {
		return 0, err
	}
	tag, err := q.q.Exec(ctx, `DELETE FROM bookings WHERE slot_id IN (SELECT id FROM slots WHERE service_id = $1)`, id)
	if err != nil {
		return 0, wrap("delete bookings", err)
	}
	removed := tag.RowsAffected()
	if _, err := q.q.Exec(ctx, `DELETE FROM slots WHERE service_id = $1`, id); err != nil {
		return 0, wrap("delete slots", err)
	}
	if _, err := q.q.Exec(ctx, `DELETE FROM services WHERE id = $1`, id); err != nil {
		return 0, wrap("delete service", err)
	}
	return removed, nil
}

func (q queries) LockService(ctx context.Context, id int64) error {
	var locked int64
	err := q.q.QueryRow(ctx, `SELECT id FROM services WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	return wrap("lock service", err)
}
