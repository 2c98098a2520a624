package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput(t *testing.T) {
	// Подготовка
	var buf bytes.Buffer
	log := NewWithOutput("debug", &buf)

	// Действие
	log.WithField("incident_id", "42").Debug("Incident cached")

	// Проверки
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Incident cached", entry["message"])
	assert.Equal(t, "42", entry["incident_id"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNewWithOutput_InvalidLevel(t *testing.T) {
	log := NewWithOutput("verbose", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
