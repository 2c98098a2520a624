package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListIncidentsQuery(t *testing.T) {
	tests := []struct {
		name      string
		filter    models.IncidentFilter
		wantWhere string
		wantTail  string
		wantArgs  []any
	}{
		{
			name:     "no filters",
			filter:   models.IncidentFilter{Page: 1, PageSize: 20},
			wantTail: "FROM incidents ORDER BY created_at DESC LIMIT 20 OFFSET 0",
		},
		{
			name: "status and radius",
			filter: models.IncidentFilter{
				Status:   models.StatusVerified,
				Near:     &models.NearFilter{Latitude: 55.7, Longitude: 37.6, RadiusMeters: 1000},
				Page:     2,
				PageSize: 5,
			},
			wantWhere: "WHERE status = $1 AND ST_DWithin(location, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography, $4)",
			wantTail:  "ORDER BY created_at DESC LIMIT 5 OFFSET 5",
			wantArgs:  []any{models.StatusVerified, 37.6, 55.7, 1000},
		},
		{
			name: "category and severity",
			filter: models.IncidentFilter{
				Category: models.CategoryFire,
				Severity: models.SeverityCritical,
				Page:     1,
				PageSize: 10,
			},
			wantWhere: "WHERE category = $1 AND severity = $2",
			wantTail:  "LIMIT 10 OFFSET 0",
			wantArgs:  []any{models.CategoryFire, models.SeverityCritical},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := listIncidentsQuery(tt.filter).ToSql()
			require.NoError(t, err)

			assert.Contains(t, query, "ST_Y(location::geometry) AS latitude")
			if tt.wantWhere != "" {
				assert.Contains(t, query, tt.wantWhere)
			} else {
				assert.NotContains(t, query, "WHERE")
			}
			assert.Contains(t, query, tt.wantTail)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505"})

	assert.True(t, isUniqueViolation(wrapped))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
}
