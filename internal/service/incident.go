package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/shenikar/rapid_response_hub/internal/verification"
	"github.com/sirupsen/logrus"
)

// maxWriteAttempts - сколько раз повторяется запись при конкурентном изменении
const maxWriteAttempts = 5

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	// Update сохраняет инцидент, только если его версия в бд равна expectedVersion,
	// иначе возвращает models.ErrVersionConflict. entries дописываются в журнал в той же транзакции
	Update(ctx context.Context, incident *models.Incident, expectedVersion int, entries []models.TimelineEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error)
	GetStats(ctx context.Context) (*models.IncidentStats, error)
	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
	InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error
}

// IncidentService определяет контракт для бизнес-логики управления инцидентами
type IncidentService interface {
	CreateIncident(ctx context.Context, actor models.Actor, incident *models.Incident) error
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error)
	UpdateIncident(ctx context.Context, actor models.Actor, id uuid.UUID, patch models.IncidentPatch) (*models.Incident, error)
	DeleteIncident(ctx context.Context, actor models.Actor, id uuid.UUID) error
	ToggleVerification(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.VerificationResult, error)
	GetVerificationStatus(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.VerificationStatus, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, status models.IncidentStatus) (*models.Incident, error)
	AssignIncident(ctx context.Context, actor models.Actor, id uuid.UUID, assignee string) (*models.Incident, error)
	GetStats(ctx context.Context) (*models.IncidentStats, error)
}

type incidentService struct {
	repo          IncidentRepository
	users         UserRepository
	notifications NotificationRepository
	notifier      Notifier
	logger        *logrus.Logger
}

func NewIncidentService(
	repo IncidentRepository,
	users UserRepository,
	notifications NotificationRepository,
	notifier Notifier,
	logger *logrus.Logger,
) IncidentService {
	return &incidentService{
		repo:          repo,
		users:         users,
		notifications: notifications,
		notifier:      notifier,
		logger:        logger,
	}
}

// CreateIncident создает инцидент
func (s *incidentService) CreateIncident(ctx context.Context, actor models.Actor, incident *models.Incident) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "CreateIncident",
		"title":   incident.Title,
		"user_id": actor.UserID,
	})
	log.Info("Attempting to create a new incident")

	if !incident.Category.Valid() || !incident.Severity.Valid() {
		return fmt.Errorf("service: invalid category or severity: %w", models.ErrInvalidInput)
	}

	reporterName := actor.Email
	if reporter, err := s.users.GetByID(ctx, actor.UserID); err == nil {
		reporterName = reporter.DisplayName()
	} else {
		log.WithError(err).Warn("Failed to load reporter profile, using email")
	}

	now := time.Now()
	incident.ReportedBy = actor.UserID
	incident.ReportedByName = reporterName
	incident.Status = models.StatusUnverified
	incident.StatusSetBy = models.StatusSetBySystem
	incident.VerifiedBy = []uuid.UUID{}
	incident.VerificationCount = 0
	incident.VerifiedAt = nil
	incident.Timeline = nil
	incident.AppendTimeline(now, "Incident reported", reporterName)
	if incident.Media == nil {
		incident.Media = []string{}
	}
	if incident.Notes == nil {
		incident.Notes = []string{}
	}

	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return fmt.Errorf("service: could not create incident: %w", err)
	}

	log.WithField("incident_id", incident.ID).Info("Incident created successfully")
	return nil
}

// GetIncident получает инцидент по ID, сначала из кеша
func (s *incidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})
	log.Debug("Fetching incident by ID")

	cached, err := s.repo.GetIncidentFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident from cache")
	}
	if cached != nil {
		return cached, nil
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident in repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if err := s.repo.SetIncidentCache(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to cache incident")
	}
	return incident, nil
}

// ListIncidents возвращает список инцидентов с пагинацией
func (s *incidentService) ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "incident",
		"method":    "ListIncidents",
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})

	incidents, err := s.repo.ListIncidents(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Debug("Incidents listed successfully")
	return incidents, nil
}

// UpdateIncident меняет описательные поля. Доступно автору и администратору
func (s *incidentService) UpdateIncident(ctx context.Context, actor models.Actor, id uuid.UUID, patch models.IncidentPatch) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateIncident",
		"incident_id": id,
	})
	log.Info("Attempting to update incident")

	if patch.Category != nil && !patch.Category.Valid() || patch.Severity != nil && !patch.Severity.Valid() {
		return nil, fmt.Errorf("service: invalid category or severity: %w", models.ErrInvalidInput)
	}

	incident, err := s.mutate(ctx, id, func(inc *models.Incident) ([]models.TimelineEntry, error) {
		if !actor.IsAdmin() && inc.ReportedBy != actor.UserID {
			return nil, models.ErrForbidden
		}
		applyPatch(inc, patch)
		return []models.TimelineEntry{inc.AppendTimeline(time.Now(), "Incident updated", actor.Email)}, nil
	})
	if err != nil {
		log.WithError(err).Warn("Failed to update incident")
		return nil, fmt.Errorf("service: could not update incident: %w", err)
	}

	log.Info("Incident updated successfully")
	return incident, nil
}

func applyPatch(inc *models.Incident, patch models.IncidentPatch) {
	if patch.Title != nil {
		inc.Title = *patch.Title
	}
	if patch.Description != nil {
		inc.Description = *patch.Description
	}
	if patch.Category != nil {
		inc.Category = *patch.Category
	}
	if patch.Severity != nil {
		inc.Severity = *patch.Severity
	}
	if patch.Location != nil {
		inc.Location = *patch.Location
	}
	if patch.Media != nil {
		inc.Media = patch.Media
	}
	if patch.Notes != nil {
		inc.Notes = patch.Notes
	}
}

// DeleteIncident окончательно удаляет инцидент
func (s *incidentService) DeleteIncident(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "DeleteIncident",
		"incident_id": id,
	})
	log.Info("Attempting to delete incident")

	if !actor.IsAdmin() {
		return models.ErrForbidden
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		log.WithError(err).Warn("Attempted to delete a non-existent incident")
		return fmt.Errorf("service: incident with id %s not found for delete: %w", id, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Error("Failed to delete incident in repository")
		return fmt.Errorf("service: could not delete incident: %w", err)
	}
	s.invalidate(ctx, id)

	log.Info("Incident deleted successfully")
	return nil
}

// ToggleVerification переключает голос пользователя за достоверность инцидента
func (s *incidentService) ToggleVerification(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.VerificationResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "ToggleVerification",
		"incident_id": id,
		"user_id":     actor.UserID,
	})

	var outcome verification.Outcome
	incident, err := s.mutate(ctx, id, func(inc *models.Incident) ([]models.TimelineEntry, error) {
		outcome = verification.Toggle(inc, actor.UserID, actor.Email, time.Now())
		return outcome.Entries, nil
	})
	if err != nil {
		log.WithError(err).Warn("Failed to toggle verification")
		return nil, fmt.Errorf("service: could not toggle verification: %w", err)
	}

	log.WithFields(logrus.Fields{
		"action":             outcome.Action,
		"verification_count": incident.VerificationCount,
		"status":             incident.Status,
	}).Info("Verification toggled")

	return &models.VerificationResult{
		Action:            string(outcome.Action),
		VerificationCount: incident.VerificationCount,
		HasVerified:       outcome.Action == verification.ActionAdded,
		Status:            incident.Status,
	}, nil
}

// GetVerificationStatus сообщает, голосовал ли пользователь.
// Читает из бд в обход кэша: по ответу клиент решает, куда переключать голос
func (s *incidentService) GetVerificationStatus(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.VerificationStatus, error) {
	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":     "incident",
			"method":      "GetVerificationStatus",
			"incident_id": id,
		}).WithError(err).Warn("Failed to load incident for verification status")
		return nil, fmt.Errorf("service: could not get verification status: %w", err)
	}
	hasVerified, count := verification.HasVerified(incident, actor.UserID)
	return &models.VerificationStatus{HasVerified: hasVerified, VerificationCount: count}, nil
}

// UpdateStatus - ручная смена статуса администратором
func (s *incidentService) UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, status models.IncidentStatus) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateStatus",
		"incident_id": id,
		"status":      status,
	})

	if !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}
	if !status.Valid() {
		return nil, fmt.Errorf("service: unknown status %q: %w", status, models.ErrInvalidInput)
	}

	incident, err := s.mutate(ctx, id, func(inc *models.Incident) ([]models.TimelineEntry, error) {
		inc.Status = status
		inc.StatusSetBy = models.StatusSetByAdmin
		return []models.TimelineEntry{inc.AppendTimeline(time.Now(), fmt.Sprintf("Status changed to %s", status), actor.Email)}, nil
	})
	if err != nil {
		log.WithError(err).Warn("Failed to update incident status")
		return nil, fmt.Errorf("service: could not update status: %w", err)
	}

	log.Info("Incident status updated")
	s.notifyReporter(ctx, incident, log)
	return incident, nil
}

// notifyReporter сообщает автору о новом статусе. Ошибки только логируются
func (s *incidentService) notifyReporter(ctx context.Context, incident *models.Incident, log *logrus.Entry) {
	message := fmt.Sprintf("Your report %q is now %s.", incident.Title, incident.Status)
	notification := &models.Notification{
		UserID:          incident.ReportedBy,
		Title:           "Incident status updated",
		Message:         message,
		Type:            models.NotificationUpdate,
		RelatedIncident: &incident.ID,
		Priority:        models.PriorityMedium,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		log.WithError(err).Warn("Failed to create status update notification")
	}

	reporter, err := s.users.GetByID(ctx, incident.ReportedBy)
	if err != nil {
		log.WithError(err).Warn("Failed to load reporter for status update email")
		return
	}
	s.notifier.SendIncidentUpdate(ctx, reporter.Email, incident.Title, incident.Status, message)
}

// AssignIncident назначает ответственного. Подтвержденный инцидент переходит в работу
func (s *incidentService) AssignIncident(ctx context.Context, actor models.Actor, id uuid.UUID, assignee string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "AssignIncident",
		"incident_id": id,
		"assignee":    assignee,
	})

	if !actor.IsAdmin() {
		return nil, models.ErrForbidden
	}
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return nil, fmt.Errorf("service: assignee is required: %w", models.ErrInvalidInput)
	}

	incident, err := s.mutate(ctx, id, func(inc *models.Incident) ([]models.TimelineEntry, error) {
		inc.AssignedTo = assignee
		if inc.Status == models.StatusVerified {
			inc.Status = models.StatusInProgress
			inc.StatusSetBy = models.StatusSetByAdmin
		}
		return []models.TimelineEntry{inc.AppendTimeline(time.Now(), fmt.Sprintf("Assigned to %s", assignee), actor.Email)}, nil
	})
	if err != nil {
		log.WithError(err).Warn("Failed to assign incident")
		return nil, fmt.Errorf("service: could not assign incident: %w", err)
	}

	log.Info("Incident assigned")
	return incident, nil
}

// GetStats возвращает сводку по инцидентам
func (s *incidentService) GetStats(ctx context.Context) (*models.IncidentStats, error) {
	stats, err := s.repo.GetStats(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("method", "GetStats").Error("Failed to get stats from repository")
		return nil, fmt.Errorf("service: could not get stats: %w", err)
	}
	return stats, nil
}

// mutate выполняет read-modify-write с проверкой версии и повторяет его,
// если инцидент успели изменить между чтением и записью
func (s *incidentService) mutate(ctx context.Context, id uuid.UUID, fn func(inc *models.Incident) ([]models.TimelineEntry, error)) (*models.Incident, error) {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		incident, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		expected := incident.Version
		entries, err := fn(incident)
		if err != nil {
			return nil, err
		}

		err = s.repo.Update(ctx, incident, expected, entries)
		if errors.Is(err, models.ErrVersionConflict) {
			s.logger.WithFields(logrus.Fields{
				"incident_id": id,
				"attempt":     attempt,
			}).Debug("Concurrent incident update, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}

		s.invalidate(ctx, id)
		return incident, nil
	}
	return nil, fmt.Errorf("incident %s: %w after %d attempts", id, models.ErrVersionConflict, maxWriteAttempts)
}

func (s *incidentService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		s.logger.WithError(err).WithField("incident_id", id).Warn("Failed to invalidate incident cache")
	}
}
