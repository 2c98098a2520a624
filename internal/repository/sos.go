package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/shenikar/rapid_response_hub/internal/service"
)

const sosColumns = `
	a.id,
	a.user_id,
	a.address,
	ST_Y(a.location::geometry) AS latitude,
	ST_X(a.location::geometry) AS longitude,
	a.status,
	a.alert_type,
	a.message,
	a.notified_contacts,
	a.resolved_at,
	a.resolved_by,
	a.created_at`

type SOSRepository struct {
	db *pgxpool.Pool
}

func NewSOSRepository(db *pgxpool.Pool) service.SOSRepository {
	return &SOSRepository{db: db}
}

func scanAlert(row pgx.Row, extra ...any) (*models.SOSAlert, error) {
	alert := &models.SOSAlert{}
	dest := []any{
		&alert.ID,
		&alert.UserID,
		&alert.Location.Address,
		&alert.Location.Latitude,
		&alert.Location.Longitude,
		&alert.Status,
		&alert.AlertType,
		&alert.Message,
		&alert.NotifiedContacts,
		&alert.ResolvedAt,
		&alert.ResolvedBy,
		&alert.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if alert.NotifiedContacts == nil {
		alert.NotifiedContacts = []models.NotifiedContact{}
	}
	return alert, nil
}

// Create сохраняет SOS сигнал вместе со снимком оповещенных контактов
func (r *SOSRepository) Create(ctx context.Context, alert *models.SOSAlert) error {
	notified, err := json.Marshal(alert.NotifiedContacts)
	if err != nil {
		return fmt.Errorf("failed to marshal notified contacts: %w", err)
	}

	query := `
		INSERT INTO sos_alerts (user_id, address, location, status, alert_type, message, notified_contacts)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326), $5, $6, $7, $8)
		RETURNING id, created_at;
	`
	err = r.db.QueryRow(ctx, query,
		alert.UserID,
		alert.Location.Address,
		alert.Location.Longitude,
		alert.Location.Latitude,
		alert.Status,
		alert.AlertType,
		alert.Message,
		notified,
	).Scan(&alert.ID, &alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create sos alert: %w", err)
	}
	return nil
}

func (r *SOSRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SOSAlert, error) {
	query := `SELECT ` + sosColumns + ` FROM sos_alerts a WHERE a.id = $1;`
	alert, err := scanAlert(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sos alert %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get sos alert: %w", err)
	}
	return alert, nil
}

// Cancel отменяет сигнал, только если он активен и принадлежит ownerID
func (r *SOSRepository) Cancel(ctx context.Context, id, ownerID uuid.UUID, at time.Time) (*models.SOSAlert, error) {
	query := `
		UPDATE sos_alerts a SET
			status = 'cancelled',
			resolved_at = $3,
			resolved_by = $2
		WHERE a.id = $1 AND a.user_id = $2 AND a.status = 'active'
		RETURNING ` + sosColumns + `;`
	return r.closeAlert(ctx, "cancel", id, query, id, ownerID, at)
}

// Resolve закрывает активный сигнал администратором
func (r *SOSRepository) Resolve(ctx context.Context, id, adminID uuid.UUID, at time.Time) (*models.SOSAlert, error) {
	query := `
		UPDATE sos_alerts a SET
			status = 'resolved',
			resolved_at = $3,
			resolved_by = $2
		WHERE a.id = $1 AND a.status = 'active'
		RETURNING ` + sosColumns + `;`
	return r.closeAlert(ctx, "resolve", id, query, id, adminID, at)
}

func (r *SOSRepository) closeAlert(ctx context.Context, op string, id uuid.UUID, query string, args ...any) (*models.SOSAlert, error) {
	alert, err := scanAlert(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("active sos alert %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to %s sos alert: %w", op, err)
	}
	return alert, nil
}

// ListByOwner возвращает последние сигналы пользователя
func (r *SOSRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*models.SOSAlert, error) {
	query := `
		SELECT ` + sosColumns + `
		FROM sos_alerts a
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2;
	`
	rows, err := r.db.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sos alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*models.SOSAlert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sos alert row: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error sos alerts iteration: %w", err)
	}
	return alerts, nil
}

// ListActive возвращает все активные сигналы с данными владельцев
func (r *SOSRepository) ListActive(ctx context.Context) ([]*models.SOSAlert, error) {
	query := `
		SELECT ` + sosColumns + `, u.name, u.email, u.phone
		FROM sos_alerts a
		JOIN users u ON u.id = a.user_id
		WHERE a.status = 'active'
		ORDER BY a.created_at DESC;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sos alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*models.SOSAlert, 0)
	for rows.Next() {
		owner := &models.UserSummary{}
		alert, err := scanAlert(rows, &owner.Name, &owner.Email, &owner.Phone)
		if err != nil {
			return nil, fmt.Errorf("failed to scan active sos alert row: %w", err)
		}
		owner.ID = alert.UserID
		alert.Owner = owner
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error active sos alerts iteration: %w", err)
	}
	return alerts, nil
}
