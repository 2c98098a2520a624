// Package verification реализует голосование сообщества за достоверность
// происшествия и вычисление производного статуса.
package verification

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/rapid_response_hub/internal/models"
)

// Threshold - число голосов, после которого происшествие автоматически подтверждается
const Threshold = 3

const (
	EventAdded        = "Incident verified by community member"
	EventRemoved      = "Verification removed by user"
	EventAutoVerified = "Incident auto-verified (3+ community verifications)"
	SystemActor       = "System"
)

// Action - результат переключения голоса
type Action string

const (
	ActionAdded   Action = "added"
	ActionRemoved Action = "removed"
)

// Outcome описывает изменения, внесенные Toggle
type Outcome struct {
	Action  Action
	Entries []models.TimelineEntry
}

// Toggle переключает голос пользователя userID и применяет правило автоподтверждения.
// actor попадает в журнал как автор голоса. Инцидент изменяется на месте.
//
// Подтвержденный статус никогда не откатывается автоматически: если голосов
// стало меньше порога, статус и verifiedAt остаются прежними.
func Toggle(inc *models.Incident, userID uuid.UUID, actor string, now time.Time) Outcome {
	var out Outcome

	if inc.HasVerifier(userID) {
		inc.VerifiedBy = slices.DeleteFunc(inc.VerifiedBy, func(id uuid.UUID) bool { return id == userID })
		out.Action = ActionRemoved
		out.Entries = append(out.Entries, inc.AppendTimeline(now, EventRemoved, actor))
	} else {
		inc.VerifiedBy = append(inc.VerifiedBy, userID)
		out.Action = ActionAdded
		out.Entries = append(out.Entries, inc.AppendTimeline(now, EventAdded, actor))
	}
	// Счетчик всегда равен размеру множества проголосовавших
	inc.VerificationCount = len(inc.VerifiedBy)

	if inc.VerificationCount >= Threshold && inc.Status == models.StatusUnverified {
		inc.Status = models.StatusVerified
		inc.StatusSetBy = models.StatusSetBySystem
		if inc.VerifiedAt == nil {
			at := now
			inc.VerifiedAt = &at
		}
		out.Entries = append(out.Entries, inc.AppendTimeline(now, EventAutoVerified, SystemActor))
	}

	return out
}

// HasVerified сообщает, голосовал ли пользователь, и текущее число голосов
func HasVerified(inc *models.Incident, userID uuid.UUID) (bool, int) {
	return inc.HasVerifier(userID), len(inc.VerifiedBy)
}
