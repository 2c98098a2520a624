package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/shenikar/rapid_response_hub/internal/service/mocks"
	"github.com/shenikar/rapid_response_hub/internal/verification"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type incidentMocks struct {
	repo          *mocks.MockIncidentRepository
	users         *mocks.MockUserRepository
	notifications *mocks.MockNotificationRepository
	notifier      *mocks.MockNotifier
}

// newTestIncidentService: вспомогательная функция для создания инстанса сервиса с моками.
func newTestIncidentService(t *testing.T) (*incidentService, incidentMocks) {
	ctrl := gomock.NewController(t)
	m := incidentMocks{
		repo:          mocks.NewMockIncidentRepository(ctrl),
		users:         mocks.NewMockUserRepository(ctrl),
		notifications: mocks.NewMockNotificationRepository(ctrl),
		notifier:      mocks.NewMockNotifier(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	service := NewIncidentService(m.repo, m.users, m.notifications, m.notifier, logger)
	return service.(*incidentService), m
}

func citizen() models.Actor {
	return models.Actor{UserID: uuid.New(), Email: "citizen@example.com", Role: models.RoleCitizen}
}

func admin() models.Actor {
	return models.Actor{UserID: uuid.New(), Email: "admin@example.com", Role: models.RoleAdmin}
}

// storedIncident возвращает функцию, которая при каждом чтении отдает свежую копию инцидента,
// как это делает настоящая бд
func storedIncident(inc models.Incident) func(context.Context, uuid.UUID) (*models.Incident, error) {
	return func(context.Context, uuid.UUID) (*models.Incident, error) {
		c := inc
		c.VerifiedBy = append([]uuid.UUID(nil), inc.VerifiedBy...)
		c.Timeline = append([]models.TimelineEntry(nil), inc.Timeline...)
		return &c, nil
	}
}

func TestGetIncident_Success_FromCache(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	expectedIncident := &models.Incident{
		ID:    incidentID,
		Title: "Тестовый инцидент из кеша",
	}

	// Ожидания
	m.repo.EXPECT().
		GetIncidentFromCache(ctx, incidentID).
		Return(expectedIncident, nil).
		Times(1)

	// Действие
	incident, err := service.GetIncident(ctx, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncident, incident)
}

func TestGetIncident_Success_FromDB(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	expectedIncident := &models.Incident{
		ID:    incidentID,
		Title: "Тестовый инцидент из БД",
	}

	// Ожидания
	// 1. Промах кеша
	m.repo.EXPECT().GetIncidentFromCache(ctx, incidentID).Return(nil, nil).Times(1)
	// 2. Попадание в БД
	m.repo.EXPECT().GetByID(ctx, incidentID).Return(expectedIncident, nil).Times(1)
	// 3. Запись в кеш
	m.repo.EXPECT().SetIncidentCache(ctx, expectedIncident).Return(nil).Times(1)

	// Действие
	incident, err := service.GetIncident(ctx, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncident, incident)
}

func TestGetIncident_NotFound(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()

	// Ожидания
	m.repo.EXPECT().GetIncidentFromCache(ctx, incidentID).Return(nil, nil).Times(1)
	m.repo.EXPECT().GetByID(ctx, incidentID).Return(nil, models.ErrNotFound).Times(1)

	// Действие
	incident, err := service.GetIncident(ctx, incidentID)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incident)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorContains(t, err, "could not get incident")
}

func TestCreateIncident_Success(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	actor := citizen()
	incidentToCreate := &models.Incident{
		Title:    "Пожар на складе",
		Category: models.CategoryFire,
		Severity: models.SeverityHigh,
		Status:   models.StatusResolved, // клиент не может задать статус
	}

	// Ожидания
	m.users.EXPECT().GetByID(ctx, actor.UserID).Return(&models.User{ID: actor.UserID, Name: "Иван"}, nil).Times(1)
	m.repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, inc *models.Incident) error {
			// Симулируем, что БД присвоила ID
			inc.ID = uuid.New()
			return nil
		}).Times(1)

	// Действие
	err := service.CreateIncident(ctx, actor, incidentToCreate)

	// Проверки
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, incidentToCreate.ID)
	assert.Equal(t, models.StatusUnverified, incidentToCreate.Status)
	assert.Equal(t, actor.UserID, incidentToCreate.ReportedBy)
	assert.Equal(t, "Иван", incidentToCreate.ReportedByName)
	assert.Equal(t, 0, incidentToCreate.VerificationCount)
	require.Len(t, incidentToCreate.Timeline, 1)
	assert.Equal(t, "Incident reported", incidentToCreate.Timeline[0].Event)
}

func TestCreateIncident_InvalidCategory(t *testing.T) {
	// Подготовка
	service, _ := newTestIncidentService(t)
	incident := &models.Incident{Title: "?", Category: "meteor", Severity: models.SeverityLow}

	// Действие
	err := service.CreateIncident(context.Background(), citizen(), incident)

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestUpdateIncident_Success(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	actor := citizen()
	incidentID := uuid.New()
	newTitle := "Обновленное название"
	existing := models.Incident{ID: incidentID, Title: "Старое название", ReportedBy: actor.UserID, Version: 2}

	// Ожидания
	m.repo.EXPECT().GetByID(ctx, incidentID).DoAndReturn(storedIncident(existing)).Times(1)
	m.repo.EXPECT().
		Update(ctx, gomock.Any(), 2, gomock.Len(1)).
		Do(func(_ context.Context, inc *models.Incident, _ int, entries []models.TimelineEntry) {
			assert.Equal(t, newTitle, inc.Title)
			assert.Equal(t, "Incident updated", entries[0].Event)
		}).
		Return(nil).Times(1)
	m.repo.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil).Times(1)

	// Действие
	incident, err := service.UpdateIncident(ctx, actor, incidentID, models.IncidentPatch{Title: &newTitle})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, newTitle, incident.Title)
}

func TestUpdateIncident_ForbiddenForStranger(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	title := "Чужое"
	existing := models.Incident{ID: incidentID, ReportedBy: uuid.New()}

	// Ожидания
	m.repo.EXPECT().GetByID(ctx, incidentID).DoAndReturn(storedIncident(existing)).Times(1)
	m.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// Действие
	_, err := service.UpdateIncident(ctx, citizen(), incidentID, models.IncidentPatch{Title: &title})

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestUpdateIncident_NotFound(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()

	// Ожидания
	m.repo.EXPECT().GetByID(ctx, incidentID).Return(nil, models.ErrNotFound).Times(1)

	// Действие
	_, err := service.UpdateIncident(ctx, admin(), incidentID, models.IncidentPatch{})

	// Проверки
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteIncident_Success(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()

	// Ожидания
	m.repo.EXPECT().GetByID(ctx, incidentID).Return(&models.Incident{ID: incidentID}, nil).Times(1)
	m.repo.EXPECT().Delete(ctx, incidentID).Return(nil).Times(1)
	m.repo.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil).Times(1)

	// Действие
	err := service.DeleteIncident(ctx, admin(), incidentID)

	// Проверки
	require.NoError(t, err)
}

func TestDeleteIncident_NotFound(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()

	// Ожидания
	m.repo.EXPECT().GetByID(ctx, incidentID).Return(nil, models.ErrNotFound).Times(1)

	// Действие
	err := service.DeleteIncident(ctx, admin(), incidentID)

	// Проверки
	require.Error(t, err)
	assert.ErrorContains(t, err, "not found for delete")
}

func TestDeleteIncident_ForbiddenForCitizen(t *testing.T) {
	// Подготовка
	service, _ := newTestIncidentService(t)

	// Действие
	err := service.DeleteIncident(context.Background(), citizen(), uuid.New())

	// Проверки
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestListIncidents_DefaultsPaging(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	expectedIncidents := []*models.Incident{
		{ID: uuid.New(), Title: "Инцидент 1"},
		{ID: uuid.New(), Title: "Инцидент 2"},
	}

	// Ожидания
	m.repo.EXPECT().
		ListIncidents(ctx, models.IncidentFilter{Status: models.StatusVerified, Page: 1, PageSize: 20}).
		Return(expectedIncidents, nil).
		Times(1)

	// Действие
	incidents, err := service.ListIncidents(ctx, models.IncidentFilter{Status: models.StatusVerified, PageSize: 500})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncidents, incidents)
}

func TestToggleVerification_ThirdVoteVerifies(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	actor := citizen()
	incidentID := uuid.New()
	existing := models.Incident{
		ID:                incidentID,
		Status:            models.StatusUnverified,
		StatusSetBy:       models.StatusSetBySystem,
		VerifiedBy:        []uuid.UUID{uuid.New(), uuid.New()},
		VerificationCount: 2,
		Version:           7,
	}

	// Ожидания
	m.repo.EXPECT().GetByID(ctx, incidentID).DoAndReturn(storedIncident(existing)).Times(1)
	m.repo.EXPECT().
		Update(ctx, gomock.Any(), 7, gomock.Len(2)).
		Do(func(_ context.Context, inc *models.Incident, _ int, entries []models.TimelineEntry) {
			assert.Equal(t, verification.EventAdded, entries[0].Event)
			assert.Equal(t, verification.EventAutoVerified, entries[1].Event)
			assert.NotNil(t, inc.VerifiedAt)
		}).
		Return(nil).Times(1)
	m.repo.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil).Times(1)

	// Действие
	result, err := service.ToggleVerification(ctx, actor, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, &models.VerificationResult{
		Action:            "added",
		VerificationCount: 3,
		HasVerified:       true,
		Status:            models.StatusVerified,
	}, result)
}

func TestToggleVerification_RemoveKeepsVerified(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	actor := citizen()
	incidentID := uuid.New()
	existing := models.Incident{
		ID:                incidentID,
		Status:            models.StatusVerified,
		VerifiedBy:        []uuid.UUID{uuid.New(), actor.UserID, uuid.New()},
		VerificationCount: 3,
	}

	// Ожидания
	m.repo.EXPECT().GetByID(ctx, incidentID).DoAndReturn(storedIncident(existing)).Times(1)
	m.repo.EXPECT().Update(ctx, gomock.Any(), 0, gomock.Len(1)).Return(nil).Times(1)
	m.repo.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil).Times(1)

	// Действие
	result, err := service.ToggleVerification(ctx, actor, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, "removed", result.Action)
	assert.False(t, result.HasVerified)
	assert.Equal(t, 2, result.VerificationCount)
	assert.Equal(t, models.StatusVerified, result.Status)
}

func TestToggleVerification_RetriesOnVersionConflict(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	actor := citizen()
	incidentID := uuid.New()
	first := models.Incident{ID: incidentID, Status: models.StatusUnverified, Version: 1}
	// Пока мы читали, другой пользователь успел проголосовать
	second := models.Incident{ID: incidentID, Status: models.StatusUnverified, VerifiedBy: []uuid.UUID{uuid.New()}, VerificationCount: 1, Version: 2}

	// Ожидания
	gomock.InOrder(
		m.repo.EXPECT().GetByID(ctx, incidentID).DoAndReturn(storedIncident(first)),
		m.repo.EXPECT().Update(ctx, gomock.Any(), 1, gomock.Any()).Return(models.ErrVersionConflict),
		m.repo.EXPECT().GetByID(ctx, incidentID).DoAndReturn(storedIncident(second)),
		m.repo.EXPECT().Update(ctx, gomock.Any(), 2, gomock.Any()).Return(nil),
		m.repo.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil),
	)

	// Действие
	result, err := service.ToggleVerification(ctx, actor, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 2, result.VerificationCount, "голос другого пользователя не должен потеряться")
}

func TestToggleVerification_GivesUpAfterMaxAttempts(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	existing := models.Incident{ID: incidentID, Status: models.StatusUnverified}

	// Ожидания
	m.repo.EXPECT().GetByID(ctx, incidentID).DoAndReturn(storedIncident(existing)).Times(maxWriteAttempts)
	m.repo.EXPECT().Update(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return(models.ErrVersionConflict).Times(maxWriteAttempts)

	// Действие
	result, err := service.ToggleVerification(ctx, citizen(), incidentID)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, models.ErrVersionConflict)
}

func TestGetVerificationStatus(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	actor := citizen()
	incidentID := uuid.New()
	stored := &models.Incident{ID: incidentID, VerifiedBy: []uuid.UUID{actor.UserID, uuid.New()}, VerificationCount: 2}

	// Ожидания
	m.repo.EXPECT().GetByID(ctx, incidentID).Return(stored, nil).Times(1)

	// Действие
	status, err := service.GetVerificationStatus(ctx, actor, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, &models.VerificationStatus{HasVerified: true, VerificationCount: 2}, status)
}

func TestGetVerificationStatus_IgnoresStaleCache(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	actor := citizen()
	incidentID := uuid.New()
	// В кэше мог остаться снимок до снятия голоса, в бд голоса уже нет
	fresh := &models.Incident{ID: incidentID, VerifiedBy: []uuid.UUID{uuid.New()}, VerificationCount: 1}

	// Ожидания
	m.repo.EXPECT().GetIncidentFromCache(gomock.Any(), gomock.Any()).Times(0)
	m.repo.EXPECT().GetByID(ctx, incidentID).Return(fresh, nil).Times(1)

	// Действие
	status, err := service.GetVerificationStatus(ctx, actor, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.False(t, status.HasVerified)
	assert.Equal(t, 1, status.VerificationCount)
}

func TestGetVerificationStatus_NotFound(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()

	// Ожидания
	m.repo.EXPECT().GetByID(ctx, incidentID).Return(nil, models.ErrNotFound).Times(1)

	// Действие
	status, err := service.GetVerificationStatus(ctx, citizen(), incidentID)

	// Проверки
	assert.Nil(t, status)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateStatus_NotifiesReporter(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	reporterID := uuid.New()
	existing := models.Incident{ID: incidentID, Title: "ДТП", Status: models.StatusUnverified, ReportedBy: reporterID}

	// Ожидания
	m.repo.EXPECT().GetByID(ctx, incidentID).DoAndReturn(storedIncident(existing)).Times(1)
	m.repo.EXPECT().
		Update(ctx, gomock.Any(), 0, gomock.Len(1)).
		Do(func(_ context.Context, inc *models.Incident, _ int, entries []models.TimelineEntry) {
			assert.Equal(t, models.StatusSetByAdmin, inc.StatusSetBy)
			assert.Equal(t, "Status changed to resolved", entries[0].Event)
		}).
		Return(nil).Times(1)
	m.repo.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil).Times(1)
	m.notifications.EXPECT().
		Create(ctx, gomock.Any()).
		Do(func(_ context.Context, n *models.Notification) {
			assert.Equal(t, reporterID, n.UserID)
			assert.Equal(t, models.NotificationUpdate, n.Type)
			assert.Equal(t, &incidentID, n.RelatedIncident)
		}).
		Return(nil).Times(1)
	m.users.EXPECT().GetByID(ctx, reporterID).Return(&models.User{ID: reporterID, Email: "reporter@example.com"}, nil).Times(1)
	m.notifier.EXPECT().
		SendIncidentUpdate(ctx, "reporter@example.com", "ДТП", models.StatusResolved, gomock.Any()).
		Return(false).Times(1)

	// Действие
	incident, err := service.UpdateStatus(ctx, admin(), incidentID, models.StatusResolved)

	// Проверки
	require.NoError(t, err, "неудачная отправка письма не должна ломать запрос")
	assert.Equal(t, models.StatusResolved, incident.Status)
}

func TestUpdateStatus_Validation(t *testing.T) {
	service, _ := newTestIncidentService(t)
	ctx := context.Background()

	_, err := service.UpdateStatus(ctx, citizen(), uuid.New(), models.StatusResolved)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = service.UpdateStatus(ctx, admin(), uuid.New(), "closed")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestAssignIncident_MovesVerifiedToInProgress(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	existing := models.Incident{ID: incidentID, Status: models.StatusVerified}

	// Ожидания
	m.repo.EXPECT().GetByID(ctx, incidentID).DoAndReturn(storedIncident(existing)).Times(1)
	m.repo.EXPECT().Update(ctx, gomock.Any(), 0, gomock.Len(1)).Return(nil).Times(1)
	m.repo.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil).Times(1)

	// Действие
	incident, err := service.AssignIncident(ctx, admin(), incidentID, "  Fire Unit 7 ")

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, "Fire Unit 7", incident.AssignedTo)
	assert.Equal(t, models.StatusInProgress, incident.Status)
	assert.Equal(t, "Assigned to Fire Unit 7", incident.Timeline[len(incident.Timeline)-1].Event)
}

func TestGetStats_Success(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	expected := &models.IncidentStats{TotalIncidents: 10, ActiveIncidents: 4, CriticalCount: 1}

	// Ожидания
	m.repo.EXPECT().GetStats(ctx).Return(expected, nil).Times(1)

	// Действие
	stats, err := service.GetStats(ctx)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, stats)
}

func TestGetStats_RepositoryError(t *testing.T) {
	service, m := newTestIncidentService(t)
	ctx := context.Background()

	m.repo.EXPECT().GetStats(ctx).Return(nil, fmt.Errorf("connection refused")).Times(1)

	_, err := service.GetStats(ctx)

	assert.ErrorContains(t, err, "could not get stats")
}
