package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/rapid_response_hub/internal/auth"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/shenikar/rapid_response_hub/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type handlerMocks struct {
	incidents     *mocks.MockIncidentService
	sos           *mocks.MockSOSService
	contacts      *mocks.MockContactService
	notifications *mocks.MockNotificationService
	auth          *mocks.MockAuthService
}

// newTestHandler создает роутер с мокированными сервисами и менеджер токенов для заголовков
func newTestHandler(t *testing.T) (handlerMocks, *auth.TokenManager, *gin.Engine) {
	ctrl := gomock.NewController(t)
	m := handlerMocks{
		incidents:     mocks.NewMockIncidentService(ctrl),
		sos:           mocks.NewMockSOSService(ctrl),
		contacts:      mocks.NewMockContactService(ctrl),
		notifications: mocks.NewMockNotificationService(ctrl),
		auth:          mocks.NewMockAuthService(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	tokens := auth.NewTokenManager("test-secret", time.Hour)

	handler := NewHandler(Services{
		Incidents:     m.incidents,
		SOS:           m.sos,
		Contacts:      m.contacts,
		Notifications: m.notifications,
		Auth:          m.auth,
	}, tokens, logger)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware(), CORSMiddleware([]string{"http://localhost:5173"}))
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return m, tokens, router
}

// bearer выпускает токен и возвращает заголовок вместе с пользователем
func bearer(t *testing.T, tokens *auth.TokenManager, role models.Role) (map[string]string, models.Actor) {
	user := &models.User{ID: uuid.New(), Email: string(role) + "@example.com", Role: role}
	token, err := tokens.Issue(user)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token},
		models.Actor{UserID: user.ID, Email: user.Email, Role: role}
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

func floatPtr(v float64) *float64 { return &v }

func validCreateRequest() CreateIncidentRequest {
	return CreateIncidentRequest{
		Title:       "Car crash on Main St",
		Description: "Two cars collided near the bridge",
		Type:        "accident",
		Severity:    "high",
		Location: IncidentLocationRequest{
			Address:   "Main St 1",
			Latitude:  floatPtr(55.75),
			Longitude: floatPtr(37.61),
		},
	}
}

func TestCreateIncident_Success(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	headers, actor := bearer(t, tokens, models.RoleCitizen)
	incidentID := uuid.New()

	m.incidents.EXPECT().
		CreateIncident(gomock.Any(), actor, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Actor, inc *models.Incident) error {
			assert.Equal(t, models.CategoryAccident, inc.Category)
			assert.Equal(t, 55.75, inc.Location.Latitude)
			inc.ID = incidentID
			inc.Status = models.StatusUnverified
			inc.ReportedBy = actor.UserID
			return nil
		})

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, validCreateRequest()), headers)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp IncidentEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Incident reported successfully", resp.Message)
	assert.Equal(t, incidentID, resp.Incident.ID)
	assert.Equal(t, "unverified", resp.Incident.Status)
	assert.NotNil(t, resp.Incident.VerifiedBy)
}

func TestCreateIncident_Unauthorized(t *testing.T) {
	m, _, router := newTestHandler(t)
	m.incidents.EXPECT().CreateIncident(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, validCreateRequest()))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, validCreateRequest()),
		map[string]string{"Authorization": "Bearer not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateIncident_InvalidJSON(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	headers, _ := bearer(t, tokens, models.RoleCitizen)

	m.incidents.EXPECT().CreateIncident(gomock.Any(), gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, http.MethodPost, "/api/v1/incidents", bytes.NewBufferString(`{"title": "test"`), headers)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestCreateIncident_ValidationError(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateIncidentRequest)
		field  string
	}{
		{"short title", func(r *CreateIncidentRequest) { r.Title = "abc" }, "Title"},
		{"unknown type", func(r *CreateIncidentRequest) { r.Type = "flood" }, "Type"},
		{"missing latitude", func(r *CreateIncidentRequest) { r.Location.Latitude = nil }, "Latitude"},
		{"longitude out of range", func(r *CreateIncidentRequest) { r.Location.Longitude = floatPtr(200) }, "Longitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, tokens, router := newTestHandler(t)
			headers, _ := bearer(t, tokens, models.RoleCitizen)
			m.incidents.EXPECT().CreateIncident(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			req := validCreateRequest()
			tt.mutate(&req)
			w := makeRequest(router, http.MethodPost, "/api/v1/incidents", jsonBody(t, req), headers)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.field)
		})
	}
}

func TestGetIncident(t *testing.T) {
	incidentID := uuid.New()

	t.Run("success", func(t *testing.T) {
		m, _, router := newTestHandler(t)
		m.incidents.EXPECT().GetIncident(gomock.Any(), incidentID).
			Return(&models.Incident{ID: incidentID, Title: "Fire", Status: models.StatusVerified}, nil)

		w := makeRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/incidents/%s", incidentID), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp IncidentEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Fire", resp.Incident.Title)
	})

	t.Run("invalid id", func(t *testing.T) {
		m, _, router := newTestHandler(t)
		m.incidents.EXPECT().GetIncident(gomock.Any(), gomock.Any()).Times(0)

		w := makeRequest(router, http.MethodGet, "/api/v1/incidents/invalid-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid incident ID")
	})

	t.Run("not found", func(t *testing.T) {
		m, _, router := newTestHandler(t)
		m.incidents.EXPECT().GetIncident(gomock.Any(), incidentID).
			Return(nil, fmt.Errorf("service: %w", models.ErrNotFound))

		w := makeRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/incidents/%s", incidentID), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("service error", func(t *testing.T) {
		m, _, router := newTestHandler(t)
		m.incidents.EXPECT().GetIncident(gomock.Any(), incidentID).Return(nil, errors.New("database error"))

		w := makeRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/incidents/%s", incidentID), nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "database error")
	})
}

func TestListIncidents_Filters(t *testing.T) {
	m, _, router := newTestHandler(t)
	expected := models.IncidentFilter{
		Status:   models.StatusVerified,
		Category: models.CategoryFire,
		Page:     2,
		PageSize: 5,
		Near:     &models.NearFilter{Latitude: 55.7, Longitude: 37.6, RadiusMeters: 1000},
	}
	m.incidents.EXPECT().ListIncidents(gomock.Any(), expected).
		Return([]*models.Incident{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	w := makeRequest(router, http.MethodGet,
		"/api/v1/incidents?status=verified&category=fire&lat=55.7&lng=37.6&radius=1000&page=2&pageSize=5", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IncidentListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Incidents, 2)
}

func TestListIncidents_InvalidFilter(t *testing.T) {
	for _, query := range []string{"status=closed", "severity=huge", "lat=55.7", "lat=100&lng=10", "lat=1&lng=1&radius=-5"} {
		t.Run(query, func(t *testing.T) {
			m, _, router := newTestHandler(t)
			m.incidents.EXPECT().ListIncidents(gomock.Any(), gomock.Any()).Times(0)

			w := makeRequest(router, http.MethodGet, "/api/v1/incidents?"+query, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestUpdateIncident_Forbidden(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	headers, actor := bearer(t, tokens, models.RoleCitizen)
	incidentID := uuid.New()
	title := "Updated title here"

	m.incidents.EXPECT().
		UpdateIncident(gomock.Any(), actor, incidentID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Actor, _ uuid.UUID, patch models.IncidentPatch) (*models.Incident, error) {
			require.NotNil(t, patch.Title)
			assert.Equal(t, title, *patch.Title)
			assert.Nil(t, patch.Category)
			return nil, fmt.Errorf("service: %w", models.ErrForbidden)
		})

	w := makeRequest(router, http.MethodPut, fmt.Sprintf("/api/v1/incidents/%s", incidentID),
		jsonBody(t, UpdateIncidentRequest{Title: &title}), headers)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteIncident_AdminOnly(t *testing.T) {
	incidentID := uuid.New()

	t.Run("citizen", func(t *testing.T) {
		m, tokens, router := newTestHandler(t)
		headers, _ := bearer(t, tokens, models.RoleCitizen)
		m.incidents.EXPECT().DeleteIncident(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		w := makeRequest(router, http.MethodDelete, fmt.Sprintf("/api/v1/incidents/%s", incidentID), nil, headers)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin", func(t *testing.T) {
		m, tokens, router := newTestHandler(t)
		headers, actor := bearer(t, tokens, models.RoleAdmin)
		m.incidents.EXPECT().DeleteIncident(gomock.Any(), actor, incidentID).Return(nil)

		w := makeRequest(router, http.MethodDelete, fmt.Sprintf("/api/v1/incidents/%s", incidentID), nil, headers)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Incident deleted successfully")
	})
}

func TestToggleVerification(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	headers, actor := bearer(t, tokens, models.RoleCitizen)
	incidentID := uuid.New()

	m.incidents.EXPECT().ToggleVerification(gomock.Any(), actor, incidentID).Return(&models.VerificationResult{
		Action:            "added",
		VerificationCount: 3,
		HasVerified:       true,
		Status:            models.StatusVerified,
	}, nil)

	w := makeRequest(router, http.MethodPost, fmt.Sprintf("/api/v1/incidents/%s/verify", incidentID), nil, headers)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string]any{
		"message":           "Verification added",
		"action":            "added",
		"verificationCount": float64(3),
		"hasVerified":       true,
		"status":            "verified",
	}, resp)
}

func TestGetVerificationStatus(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	headers, actor := bearer(t, tokens, models.RoleCitizen)
	incidentID := uuid.New()

	m.incidents.EXPECT().GetVerificationStatus(gomock.Any(), actor, incidentID).
		Return(&models.VerificationStatus{HasVerified: false, VerificationCount: 2}, nil)

	w := makeRequest(router, http.MethodGet, fmt.Sprintf("/api/v1/incidents/%s/verify/status", incidentID), nil, headers)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hasVerified":false,"verificationCount":2}`, w.Body.String())
}

func TestUpdateStatus(t *testing.T) {
	incidentID := uuid.New()

	t.Run("invalid status", func(t *testing.T) {
		m, tokens, router := newTestHandler(t)
		headers, _ := bearer(t, tokens, models.RoleAdmin)
		m.incidents.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		w := makeRequest(router, http.MethodPut, fmt.Sprintf("/api/v1/incidents/%s/status", incidentID),
			jsonBody(t, UpdateStatusRequest{Status: "closed"}), headers)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		m, tokens, router := newTestHandler(t)
		headers, actor := bearer(t, tokens, models.RoleAdmin)
		m.incidents.EXPECT().UpdateStatus(gomock.Any(), actor, incidentID, models.StatusResolved).
			Return(&models.Incident{ID: incidentID, Status: models.StatusResolved, StatusSetBy: models.StatusSetByAdmin}, nil)

		w := makeRequest(router, http.MethodPut, fmt.Sprintf("/api/v1/incidents/%s/status", incidentID),
			jsonBody(t, UpdateStatusRequest{Status: "resolved"}), headers)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp IncidentEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "resolved", resp.Incident.Status)
		assert.Equal(t, "admin", resp.Incident.StatusSetBy)
	})
}

func TestAssignIncident(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	headers, actor := bearer(t, tokens, models.RoleAdmin)
	incidentID := uuid.New()

	m.incidents.EXPECT().AssignIncident(gomock.Any(), actor, incidentID, "Fire Station 3").
		Return(&models.Incident{ID: incidentID, Status: models.StatusInProgress, AssignedTo: "Fire Station 3"}, nil)

	w := makeRequest(router, http.MethodPut, fmt.Sprintf("/api/v1/incidents/%s/assign", incidentID),
		jsonBody(t, AssignIncidentRequest{AssignedTo: "Fire Station 3"}), headers)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Incident assigned successfully")
}

func TestGetStats(t *testing.T) {
	m, _, router := newTestHandler(t)
	m.incidents.EXPECT().GetStats(gomock.Any()).Return(&models.IncidentStats{
		TotalIncidents:      10,
		ActiveIncidents:     4,
		ResolvedToday:       1,
		CriticalCount:       2,
		PendingVerification: 3,
	}, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/incidents/stats/summary", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"stats":{"totalIncidents":10,"activeIncidents":4,"resolvedToday":1,"criticalCount":2,"pendingVerification":3}}`, w.Body.String())
}

func TestTriggerSOS(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	headers, actor := bearer(t, tokens, models.RoleCitizen)
	alertID := uuid.New()

	m.sos.EXPECT().
		TriggerSOS(gomock.Any(), actor, models.SOSRequest{
			Location:  models.Location{Latitude: 55.75, Longitude: 37.61},
			AlertType: models.AlertTypeMedical,
			Message:   "help",
		}).
		Return(&models.SOSOutcome{
			Alert:            &models.SOSAlert{ID: alertID, UserID: actor.UserID, Status: models.SOSStatusActive},
			ContactsNotified: 2,
			EmailsSent:       1,
			SMSSent:          2,
			AdminsNotified:   1,
		}, nil)

	body := TriggerSOSRequest{
		Location:  SOSLocationRequest{Latitude: floatPtr(55.75), Longitude: floatPtr(37.61)},
		AlertType: "medical",
		Message:   "help",
	}
	w := makeRequest(router, http.MethodPost, "/api/v1/sos/trigger", jsonBody(t, body), headers)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "SOS Alert triggered successfully", resp["message"])
	assert.Equal(t, float64(2), resp["contactsNotified"])
	assert.Equal(t, map[string]any{"emailsSent": float64(1), "smsSent": float64(2), "adminsNotified": float64(1)}, resp["notifications"])
	alert, ok := resp["sosAlert"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, alertID.String(), alert["id"])
}

func TestTriggerSOS_MissingLocation(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	headers, _ := bearer(t, tokens, models.RoleCitizen)
	m.sos.EXPECT().TriggerSOS(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodPost, "/api/v1/sos/trigger", bytes.NewBufferString(`{"alertType":"sos"}`), headers)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActiveAlerts_AdminOnly(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	headers, _ := bearer(t, tokens, models.RoleCitizen)
	m.sos.EXPECT().ActiveAlerts(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodGet, "/api/v1/sos/all", nil, headers)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Admin only")
}

func TestCancelSOS_NotFound(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	headers, actor := bearer(t, tokens, models.RoleCitizen)
	alertID := uuid.New()

	m.sos.EXPECT().CancelSOS(gomock.Any(), actor, alertID).Return(nil, fmt.Errorf("service: %w", models.ErrNotFound))

	w := makeRequest(router, http.MethodPut, fmt.Sprintf("/api/v1/sos/%s/cancel", alertID), nil, headers)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Active SOS alert not found")
}

func TestResolveSOS(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	headers, actor := bearer(t, tokens, models.RoleAdmin)
	alertID := uuid.New()

	m.sos.EXPECT().ResolveSOS(gomock.Any(), actor, alertID).
		Return(&models.SOSAlert{ID: alertID, Status: models.SOSStatusResolved}, nil)

	w := makeRequest(router, http.MethodPut, fmt.Sprintf("/api/v1/sos/%s/resolve", alertID), nil, headers)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SOS alert resolved")
}

func TestCreateContact_DefaultsNotifyOnSOS(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	headers, actor := bearer(t, tokens, models.RoleCitizen)

	m.contacts.EXPECT().
		CreateContact(gomock.Any(), actor, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.Actor, contact *models.EmergencyContact) error {
			assert.True(t, contact.NotifyOnSOS)
			assert.False(t, contact.IsPrimary)
			contact.ID = uuid.New()
			return nil
		})

	body := CreateContactRequest{Name: "Mom", Phone: "+15550001111", Relationship: "mother"}
	w := makeRequest(router, http.MethodPost, "/api/v1/emergency-contacts", jsonBody(t, body), headers)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Emergency contact added successfully")
}

func TestListNotifications(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	headers, actor := bearer(t, tokens, models.RoleCitizen)

	incidentID := uuid.New()
	sosID := uuid.New()
	m.notifications.EXPECT().List(gomock.Any(), actor, 5, true).
		Return([]*models.Notification{
			{
				ID:              uuid.New(),
				Title:           "Incident status updated",
				RelatedIncident: &incidentID,
				Incident: &models.IncidentSummary{
					ID:       incidentID,
					Title:    "Пожар",
					Category: models.CategoryFire,
					Severity: models.SeverityCritical,
				},
			},
			{
				ID:         uuid.New(),
				Title:      "SOS",
				RelatedSOS: &sosID,
				SOS:        &models.SOSSummary{ID: sosID, AlertType: models.AlertTypeMedical, Status: models.SOSStatusActive},
			},
			{ID: uuid.New(), Title: "Welcome"},
		}, 3, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/notifications?limit=5&unreadOnly=true", nil, headers)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp NotificationListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Notifications, 3)
	assert.Equal(t, 3, resp.UnreadCount)
	assert.Equal(t, &RelatedIncidentResponse{ID: incidentID, Title: "Пожар", Category: "fire", Severity: "critical"}, resp.Notifications[0].RelatedIncident)
	assert.Equal(t, &RelatedSOSResponse{ID: sosID, AlertType: "medical", Status: "active"}, resp.Notifications[1].RelatedSOS)
	assert.Nil(t, resp.Notifications[2].RelatedIncident)
	assert.Nil(t, resp.Notifications[2].RelatedSOS)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	headers, actor := bearer(t, tokens, models.RoleCitizen)

	m.notifications.EXPECT().MarkAllRead(gomock.Any(), actor).Return(int64(4), nil)

	w := makeRequest(router, http.MethodPut, "/api/v1/notifications/read-all", nil, headers)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "All notifications marked as read")
}

func TestRegister(t *testing.T) {
	body := RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "secret1"}

	t.Run("success", func(t *testing.T) {
		m, _, router := newTestHandler(t)
		user := &models.User{ID: uuid.New(), Name: "Jane", Email: "jane@example.com", Role: models.RoleCitizen}
		m.auth.EXPECT().
			Register(gomock.Any(), models.Registration{Name: "Jane", Email: "jane@example.com", Password: "secret1"}).
			Return(&models.AuthResult{Token: "jwt", User: user}, nil)

		w := makeRequest(router, http.MethodPost, "/api/v1/auth/register", jsonBody(t, body))

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "jwt", resp.Token)
		assert.Equal(t, "citizen", resp.User.Role)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("email taken", func(t *testing.T) {
		m, _, router := newTestHandler(t)
		m.auth.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, models.ErrEmailTaken)

		w := makeRequest(router, http.MethodPost, "/api/v1/auth/register", jsonBody(t, body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "user already exists with this email")
	})
}

func TestLogin_InvalidCredentials(t *testing.T) {
	m, _, router := newTestHandler(t)
	m.auth.EXPECT().Login(gomock.Any(), "jane@example.com", "wrong").Return(nil, models.ErrInvalidCredentials)

	w := makeRequest(router, http.MethodPost, "/api/v1/auth/login",
		jsonBody(t, LoginRequest{Email: "jane@example.com", Password: "wrong"}))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	m, tokens, router := newTestHandler(t)
	headers, actor := bearer(t, tokens, models.RoleAdmin)

	m.auth.EXPECT().Me(gomock.Any(), actor).
		Return(&models.User{ID: actor.UserID, Name: "Admin", Email: actor.Email, Role: models.RoleAdmin}, nil)

	w := makeRequest(router, http.MethodGet, "/api/v1/auth/me", nil, headers)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, actor.UserID, resp.User.ID)
	assert.Equal(t, "admin", resp.User.Role)
}

func TestMiddleware_CORSPreflight(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, http.MethodOptions, "/api/v1/incidents", nil,
		map[string]string{"Origin": "http://localhost:5173"})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = makeRequest(router, http.MethodOptions, "/api/v1/incidents", nil,
		map[string]string{"Origin": "http://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMiddleware_RequestID(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, http.MethodGet, "/api/v1/system/health", nil, map[string]string{RequestIDHeader: "req-42"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	w = makeRequest(router, http.MethodGet, "/api/v1/system/health", nil)
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}
