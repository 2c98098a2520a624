package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListNotificationsQuery(t *testing.T) {
	userID := uuid.New()

	t.Run("all notifications", func(t *testing.T) {
		query, args, err := listNotificationsQuery(userID, 20, false).ToSql()
		require.NoError(t, err)

		assert.Contains(t, query, "n.id, n.user_id, n.title")
		assert.Contains(t, query, "i.title AS incident_title")
		assert.Contains(t, query, "s.status AS sos_status")
		assert.Contains(t, query, "FROM notifications n LEFT JOIN incidents i ON i.id = n.related_incident LEFT JOIN sos_alerts s ON s.id = n.related_sos")
		assert.Contains(t, query, "WHERE n.user_id = $1 ORDER BY n.created_at DESC LIMIT 20")
		assert.Equal(t, []any{userID}, args)
	})

	t.Run("unread only", func(t *testing.T) {
		query, args, err := listNotificationsQuery(userID, 5, true).ToSql()
		require.NoError(t, err)

		assert.Contains(t, query, "n.is_read = $1")
		assert.Contains(t, query, "n.user_id = $2")
		assert.Equal(t, []any{false, userID}, args)
	})
}

func TestNotificationRowToModel(t *testing.T) {
	incidentID := uuid.New()
	sosID := uuid.New()
	str := func(s string) *string { return &s }

	t.Run("with related records", func(t *testing.T) {
		row := &notificationRow{
			Notification: models.Notification{
				ID:              uuid.New(),
				Title:           "SOS Alert",
				RelatedIncident: &incidentID,
				RelatedSOS:      &sosID,
			},
			IncidentTitle:    str("Пожар на складе"),
			IncidentCategory: str("fire"),
			IncidentSeverity: str("critical"),
			SOSAlertType:     str("medical"),
			SOSStatus:        str("active"),
		}

		n := row.toModel()

		require.NotNil(t, n.Incident)
		assert.Equal(t, models.IncidentSummary{
			ID:       incidentID,
			Title:    "Пожар на складе",
			Category: models.CategoryFire,
			Severity: models.SeverityCritical,
		}, *n.Incident)
		require.NotNil(t, n.SOS)
		assert.Equal(t, models.SOSSummary{ID: sosID, AlertType: models.AlertTypeMedical, Status: models.SOSStatusActive}, *n.SOS)
	})

	t.Run("without related records", func(t *testing.T) {
		row := &notificationRow{Notification: models.Notification{ID: uuid.New(), Title: "Welcome"}}

		n := row.toModel()

		assert.Nil(t, n.Incident)
		assert.Nil(t, n.SOS)
	})
}
