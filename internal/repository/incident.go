package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/shenikar/rapid_response_hub/internal/service"
)

const incidentCachePrefix = "incident:"

var incidentColumns = []string{
	"id",
	"title",
	"description",
	"category",
	"severity",
	"status",
	"status_set_by",
	"address",
	"ST_Y(location::geometry) AS latitude",
	"ST_X(location::geometry) AS longitude",
	"reported_by",
	"reported_by_name",
	"media",
	"assigned_to",
	"notes",
	"verification_count",
	"verified_by",
	"verified_at",
	"version",
	"created_at",
	"updated_at",
}

type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.IncidentRepository {
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	incident := &models.Incident{}
	err := row.Scan(
		&incident.ID,
		&incident.Title,
		&incident.Description,
		&incident.Category,
		&incident.Severity,
		&incident.Status,
		&incident.StatusSetBy,
		&incident.Location.Address,
		&incident.Location.Latitude,
		&incident.Location.Longitude,
		&incident.ReportedBy,
		&incident.ReportedByName,
		&incident.Media,
		&incident.AssignedTo,
		&incident.Notes,
		&incident.VerificationCount,
		&incident.VerifiedBy,
		&incident.VerifiedAt,
		&incident.Version,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return incident, nil
}

// Create создает новую запись об инциденте в бд вместе с первой записью журнала
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin incident create transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		INSERT INTO incidents (
			title, description, category, severity, status, status_set_by,
			address, location, reported_by, reported_by_name, media, notes,
			verification_count, verified_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, ST_SetSRID(ST_MakePoint($8, $9), 4326), $10, $11, $12, $13, $14, $15)
		RETURNING id, version, created_at, updated_at;
	`
	err = tx.QueryRow(ctx, query,
		incident.Title,
		incident.Description,
		incident.Category,
		incident.Severity,
		incident.Status,
		incident.StatusSetBy,
		incident.Location.Address,
		incident.Location.Longitude,
		incident.Location.Latitude,
		incident.ReportedBy,
		incident.ReportedByName,
		incident.Media,
		incident.Notes,
		incident.VerificationCount,
		incident.VerifiedBy,
	).Scan(&incident.ID, &incident.Version, &incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}

	if err := insertTimeline(ctx, tx, incident.ID, incident.Timeline); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit incident create: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его UUID вместе с журналом
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query, args, err := psql().
		Select(incidentColumns...).
		From("incidents").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate incident query: %w", err)
	}

	incident, err := scanIncident(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}

	timeline, err := r.timeline(ctx, id)
	if err != nil {
		return nil, err
	}
	incident.Timeline = timeline
	return incident, nil
}

func (r *IncidentRepository) timeline(ctx context.Context, id uuid.UUID) ([]models.TimelineEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT occurred_at, event, actor
		FROM incident_timeline
		WHERE incident_id = $1
		ORDER BY id;
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get incident timeline: %w", err)
	}
	defer rows.Close()

	timeline := make([]models.TimelineEntry, 0)
	for rows.Next() {
		var entry models.TimelineEntry
		if err := rows.Scan(&entry.Time, &entry.Event, &entry.Actor); err != nil {
			return nil, fmt.Errorf("failed to scan timeline row: %w", err)
		}
		timeline = append(timeline, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error timeline iteration: %w", err)
	}
	return timeline, nil
}

// Update сохраняет инцидент при совпадении версии и дописывает журнал в той же транзакции
func (r *IncidentRepository) Update(ctx context.Context, incident *models.Incident, expectedVersion int, entries []models.TimelineEntry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin incident update transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		UPDATE incidents SET
			title = $1,
			description = $2,
			category = $3,
			severity = $4,
			status = $5,
			status_set_by = $6,
			address = $7,
			location = ST_SetSRID(ST_MakePoint($8, $9), 4326),
			media = $10,
			assigned_to = $11,
			notes = $12,
			verification_count = $13,
			verified_by = $14,
			verified_at = $15,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $16 AND version = $17
		RETURNING version, updated_at;
	`
	err = tx.QueryRow(ctx, query,
		incident.Title,
		incident.Description,
		incident.Category,
		incident.Severity,
		incident.Status,
		incident.StatusSetBy,
		incident.Location.Address,
		incident.Location.Longitude,
		incident.Location.Latitude,
		incident.Media,
		incident.AssignedTo,
		incident.Notes,
		incident.VerificationCount,
		incident.VerifiedBy,
		incident.VerifiedAt,
		incident.ID,
		expectedVersion,
	).Scan(&incident.Version, &incident.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missingOrStale(ctx, tx, incident.ID)
		}
		return fmt.Errorf("failed to update incident: %w", err)
	}

	if err := insertTimeline(ctx, tx, incident.ID, entries); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit incident update: %w", err)
	}
	return nil
}

// missingOrStale различает удаленный инцидент и устаревшую версию
func (r *IncidentRepository) missingOrStale(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM incidents WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check incident existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("incident with id %s not found for update: %w", id, models.ErrNotFound)
	}
	return models.ErrVersionConflict
}

func insertTimeline(ctx context.Context, tx pgx.Tx, incidentID uuid.UUID, entries []models.TimelineEntry) error {
	if len(entries) == 0 {
		return nil
	}

	builder := psql().
		Insert("incident_timeline").
		Columns("incident_id", "occurred_at", "event", "actor")
	for _, e := range entries {
		builder = builder.Values(incidentID, e.Time, e.Event, e.Actor)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate timeline insert query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to append incident timeline: %w", err)
	}
	return nil
}

// Delete окончательно удаляет инцидент, журнал удаляется каскадно
func (r *IncidentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM incidents WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete incident: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incident with id %s not found for delete: %w", id, models.ErrNotFound)
	}
	return nil
}

// ListIncidents возвращает список инцидентов с фильтрами и пагинацией. Журнал в списке не загружается
func (r *IncidentRepository) ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	query, args, err := listIncidentsQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate incidents list query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incident.Timeline = []models.TimelineEntry{}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

// listIncidentsQuery строит выборку ленты. Пустые поля фильтра не ограничивают выборку
func listIncidentsQuery(filter models.IncidentFilter) sq.SelectBuilder {
	// рассчитываем смещение
	offset := (filter.Page - 1) * filter.PageSize

	builder := psql().
		Select(incidentColumns...).
		From("incidents").
		OrderBy("created_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": filter.Category})
	}
	if filter.Severity != "" {
		builder = builder.Where(sq.Eq{"severity": filter.Severity})
	}
	if filter.Near != nil {
		builder = builder.Where(
			sq.Expr("ST_DWithin(location, ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography, ?)",
				filter.Near.Longitude, filter.Near.Latitude, filter.Near.RadiusMeters),
		)
	}
	return builder
}

// GetStats считает сводку по инцидентам одним запросом
func (r *IncidentRepository) GetStats(ctx context.Context) (*models.IncidentStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status IN ('unverified', 'verified', 'in-progress')),
			COUNT(*) FILTER (WHERE status = 'resolved' AND updated_at >= date_trunc('day', NOW())),
			COUNT(*) FILTER (WHERE severity = 'critical' AND status <> 'resolved'),
			COUNT(*) FILTER (WHERE status = 'unverified')
		FROM incidents;
	`
	stats := &models.IncidentStats{}
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalIncidents,
		&stats.ActiveIncidents,
		&stats.ResolvedToday,
		&stats.CriticalCount,
		&stats.PendingVerification,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get incident stats: %w", err)
	}
	return stats, nil
}

// GetIncidentFromCache пытается получить инцидент из Redis
func (r *IncidentRepository) GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	val, err := r.redisClient.Get(ctx, incidentCachePrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

// SetIncidentCache сохраняет инцидент в Redis
func (r *IncidentRepository) SetIncidentCache(ctx context.Context, incident *models.Incident) error {
	val, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, incidentCachePrefix+incident.ID.String(), val, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return nil
}

// InvalidateIncidentCache удаляет инцидент из Redis кэша
func (r *IncidentRepository) InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error {
	if err := r.redisClient.Del(ctx, incidentCachePrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}
