package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/shenikar/rapid_response_hub/internal/service"
)

const notificationTableName = "notifications"

var notificationColumns = []string{
	"id", "user_id", "title", "message", "type", "related_incident", "related_sos",
	"is_read", "read_at", "priority", "created_at",
}

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) service.NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.Priority == "" {
		n.Priority = models.PriorityMedium
	}

	query, args, err := psql().
		Insert(notificationTableName).
		Columns("user_id", "title", "message", "type", "related_incident", "related_sos", "priority").
		Values(n.UserID, n.Title, n.Message, n.Type, n.RelatedIncident, n.RelatedSOS, n.Priority).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create notification query: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n.ID, &n.CreatedAt); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// notificationRow - уведомление вместе с полями связанных записей из LEFT JOIN
type notificationRow struct {
	models.Notification
	IncidentTitle    *string `db:"incident_title"`
	IncidentCategory *string `db:"incident_category"`
	IncidentSeverity *string `db:"incident_severity"`
	SOSAlertType     *string `db:"sos_alert_type"`
	SOSStatus        *string `db:"sos_status"`
}

func (row *notificationRow) toModel() *models.Notification {
	n := row.Notification
	if n.RelatedIncident != nil && row.IncidentTitle != nil {
		n.Incident = &models.IncidentSummary{
			ID:       *n.RelatedIncident,
			Title:    *row.IncidentTitle,
			Category: models.Category(deref(row.IncidentCategory)),
			Severity: models.Severity(deref(row.IncidentSeverity)),
		}
	}
	if n.RelatedSOS != nil && row.SOSStatus != nil {
		n.SOS = &models.SOSSummary{
			ID:        *n.RelatedSOS,
			AlertType: models.AlertType(deref(row.SOSAlertType)),
			Status:    models.SOSStatus(*row.SOSStatus),
		}
	}
	return &n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func listNotificationsQuery(userID uuid.UUID, limit int, unreadOnly bool) sq.SelectBuilder {
	where := sq.Eq{"n.user_id": userID}
	if unreadOnly {
		where["n.is_read"] = false
	}

	columns := make([]string, 0, len(notificationColumns)+5)
	for _, c := range notificationColumns {
		columns = append(columns, "n."+c)
	}
	columns = append(columns,
		"i.title AS incident_title",
		"i.category AS incident_category",
		"i.severity AS incident_severity",
		"s.alert_type AS sos_alert_type",
		"s.status AS sos_status",
	)

	return psql().
		Select(columns...).
		From(notificationTableName + " n").
		LeftJoin("incidents i ON i.id = n.related_incident").
		LeftJoin("sos_alerts s ON s.id = n.related_sos").
		Where(where).
		OrderBy("n.created_at DESC").
		Limit(uint64(limit))
}

// ListByUser возвращает последние уведомления пользователя со сводкой
// по связанным происшествиям и SOS сигналам
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int, unreadOnly bool) ([]*models.Notification, error) {
	query, args, err := listNotificationsQuery(userID, limit, unreadOnly).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate notifications query: %w", err)
	}

	var rows []*notificationRow
	if err := pgxscan.Select(ctx, r.pool, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	notifications := make([]*models.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, row.toModel())
	}
	return notifications, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	query, args, err := psql().
		Select("COUNT(*)").
		From(notificationTableName).
		Where(sq.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate unread count query: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead отмечает уведомление прочитанным. Повторная отметка не меняет read_at
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error) {
	query, args, err := psql().
		Update(notificationTableName).
		Set("is_read", true).
		Set("read_at", sq.Expr("COALESCE(read_at, ?)", time.Now())).
		Where(sq.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING " + joinColumns(notificationColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate mark read query: %w", err)
	}

	var n models.Notification
	if err := pgxscan.Get(ctx, r.pool, &n, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return &n, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	query, args, err := psql().
		Update(notificationTableName).
		Set("is_read", true).
		Set("read_at", time.Now()).
		Where(sq.Eq{"user_id": userID, "is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate mark all read query: %w", err)
	}

	cmdTag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query, args, err := psql().
		Delete(notificationTableName).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete notification query: %w", err)
	}

	cmdTag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
	}
	return nil
}
