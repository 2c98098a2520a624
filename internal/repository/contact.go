package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/shenikar/rapid_response_hub/internal/service"
)

const contactTableName = "emergency_contacts"

var contactColumns = []string{"id", "user_id", "name", "phone", "email", "relationship", "is_primary", "notify_on_sos", "created_at"}

type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) service.ContactRepository {
	return &ContactRepository{pool: pool}
}

// ListByUser возвращает контакты пользователя: сначала основной, затем самые новые
func (r *ContactRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.EmergencyContact, error) {
	return r.list(ctx, sq.Eq{"user_id": userID})
}

// ListNotifiable возвращает контакты, которые нужно оповестить при SOS
func (r *ContactRepository) ListNotifiable(ctx context.Context, userID uuid.UUID) ([]*models.EmergencyContact, error) {
	return r.list(ctx, sq.Eq{"user_id": userID, "notify_on_sos": true})
}

func (r *ContactRepository) list(ctx context.Context, where sq.Eq) ([]*models.EmergencyContact, error) {
	query, args, err := psql().
		Select(contactColumns...).
		From(contactTableName).
		Where(where).
		OrderBy("is_primary DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contacts query: %w", err)
	}

	contacts := make([]*models.EmergencyContact, 0)
	if err := pgxscan.Select(ctx, r.pool, &contacts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	return contacts, nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.EmergencyContact, error) {
	query, args, err := psql().
		Select(contactColumns...).
		From(contactTableName).
		Where(sq.Eq{"id": id, "user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contact query: %w", err)
	}

	var contact models.EmergencyContact
	if err := pgxscan.Get(ctx, r.pool, &contact, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("contact %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}
	return &contact, nil
}

// Create сохраняет контакт. Новый основной контакт снимает отметку с прежнего в той же транзакции
func (r *ContactRepository) Create(ctx context.Context, contact *models.EmergencyContact) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx for contact create: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if contact.IsPrimary {
		if err := clearPrimary(ctx, tx, contact.UserID, uuid.Nil); err != nil {
			return err
		}
	}

	query, args, err := psql().
		Insert(contactTableName).
		Columns("user_id", "name", "phone", "email", "relationship", "is_primary", "notify_on_sos").
		Values(contact.UserID, contact.Name, contact.Phone, contact.Email, contact.Relationship, contact.IsPrimary, contact.NotifyOnSOS).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create contact query: %w", err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&contact.ID, &contact.CreatedAt); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit contact create: %w", err)
	}
	return nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *models.EmergencyContact) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx for contact update: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if contact.IsPrimary {
		if err := clearPrimary(ctx, tx, contact.UserID, contact.ID); err != nil {
			return err
		}
	}

	query, args, err := psql().
		Update(contactTableName).
		SetMap(map[string]any{
			"name":          contact.Name,
			"phone":         contact.Phone,
			"email":         contact.Email,
			"relationship":  contact.Relationship,
			"is_primary":    contact.IsPrimary,
			"notify_on_sos": contact.NotifyOnSOS,
		}).
		Where(sq.Eq{"id": contact.ID, "user_id": contact.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update contact query: %w", err)
	}

	cmdTag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("contact %s: %w", contact.ID, models.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit contact update: %w", err)
	}
	return nil
}

func clearPrimary(ctx context.Context, tx pgx.Tx, userID, keepID uuid.UUID) error {
	query, args, err := psql().
		Update(contactTableName).
		Set("is_primary", false).
		Where(sq.Eq{"user_id": userID, "is_primary": true}).
		Where(sq.NotEq{"id": keepID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate clear primary query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear primary contact: %w", err)
	}
	return nil
}

func (r *ContactRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query, args, err := psql().
		Delete(contactTableName).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete contact query: %w", err)
	}

	cmdTag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("contact %s: %w", id, models.ErrNotFound)
	}
	return nil
}
