package verification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIncident(voters ...uuid.UUID) *models.Incident {
	return &models.Incident{
		ID:                uuid.New(),
		Status:            models.StatusUnverified,
		StatusSetBy:       models.StatusSetBySystem,
		VerifiedBy:        voters,
		VerificationCount: len(voters),
	}
}

func TestToggle_AddsVote(t *testing.T) {
	inc := newIncident()
	user := uuid.New()
	now := time.Now()

	out := Toggle(inc, user, "citizen@example.com", now)

	assert.Equal(t, ActionAdded, out.Action)
	assert.Equal(t, 1, inc.VerificationCount)
	assert.Equal(t, []uuid.UUID{user}, inc.VerifiedBy)
	assert.Equal(t, models.StatusUnverified, inc.Status)
	require.Len(t, out.Entries, 1)
	assert.Equal(t, EventAdded, out.Entries[0].Event)
	assert.Equal(t, "citizen@example.com", out.Entries[0].Actor)
	assert.Len(t, inc.Timeline, 1)
}

func TestToggle_IsItsOwnInverse(t *testing.T) {
	for voters := 0; voters <= 4; voters++ {
		existing := make([]uuid.UUID, 0, voters)
		for i := 0; i < voters; i++ {
			existing = append(existing, uuid.New())
		}
		inc := newIncident(existing...)
		user := uuid.New()
		now := time.Now()

		Toggle(inc, user, "a", now)
		// Статус после первого переключения не должен откатываться вторым
		statusAfterAdd := inc.Status
		out := Toggle(inc, user, "a", now)

		assert.Equal(t, ActionRemoved, out.Action)
		assert.Equal(t, voters, inc.VerificationCount)
		assert.ElementsMatch(t, existing, inc.VerifiedBy)
		assert.Equal(t, statusAfterAdd, inc.Status)
		if voters+1 < Threshold {
			assert.Equal(t, models.StatusUnverified, inc.Status)
		}
	}
}

func TestToggle_CountMatchesVoterSet(t *testing.T) {
	inc := newIncident()
	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	sequence := []int{0, 1, 0, 2, 3, 1, 1, 0, 2, 3}

	for _, i := range sequence {
		Toggle(inc, users[i], "u", time.Now())
		assert.Equal(t, len(inc.VerifiedBy), inc.VerificationCount)
		assert.GreaterOrEqual(t, inc.VerificationCount, 0)
	}
}

func TestToggle_EscalatesAtThreshold(t *testing.T) {
	inc := newIncident()
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	Toggle(inc, uuid.New(), "u1", t0.Add(-2*time.Minute))
	Toggle(inc, uuid.New(), "u2", t0.Add(-time.Minute))
	assert.Nil(t, inc.VerifiedAt)

	out := Toggle(inc, uuid.New(), "u3", t0)

	assert.Equal(t, models.StatusVerified, inc.Status)
	require.NotNil(t, inc.VerifiedAt)
	assert.Equal(t, t0, *inc.VerifiedAt)
	require.Len(t, out.Entries, 2)
	assert.Equal(t, EventAutoVerified, out.Entries[1].Event)
	assert.Equal(t, SystemActor, out.Entries[1].Actor)

	// 4-й и 5-й голос не меняют verifiedAt
	Toggle(inc, uuid.New(), "u4", t0.Add(time.Hour))
	Toggle(inc, uuid.New(), "u5", t0.Add(2*time.Hour))
	assert.Equal(t, t0, *inc.VerifiedAt)
	assert.Equal(t, 5, inc.VerificationCount)
}

func TestToggle_SecondCallFromSameUserRemoves(t *testing.T) {
	inc := newIncident(uuid.New())
	user := uuid.New()

	Toggle(inc, user, "u", time.Now())
	require.Equal(t, 2, inc.VerificationCount)

	out := Toggle(inc, user, "u", time.Now())

	assert.Equal(t, ActionRemoved, out.Action)
	assert.Equal(t, 1, inc.VerificationCount)
	assert.Equal(t, EventRemoved, out.Entries[0].Event)
}

func TestToggle_ThirdVoteVerifies(t *testing.T) {
	inc := newIncident(uuid.New(), uuid.New())

	out := Toggle(inc, uuid.New(), "u3", time.Now())

	assert.Equal(t, ActionAdded, out.Action)
	assert.Equal(t, 3, inc.VerificationCount)
	assert.Equal(t, models.StatusVerified, inc.Status)
}

func TestToggle_WithdrawalKeepsVerifiedStatus(t *testing.T) {
	voter := uuid.New()
	t0 := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	inc := newIncident(voter, uuid.New(), uuid.New())
	inc.Status = models.StatusVerified
	inc.VerifiedAt = &t0

	out := Toggle(inc, voter, "u", t0.Add(time.Hour))

	assert.Equal(t, ActionRemoved, out.Action)
	assert.Equal(t, 2, inc.VerificationCount)
	assert.Equal(t, models.StatusVerified, inc.Status)
	assert.Equal(t, t0, *inc.VerifiedAt)
	assert.Len(t, out.Entries, 1)
}

func TestToggle_AdminVerifiedStatusSurvivesVoterChurn(t *testing.T) {
	voter := uuid.New()
	inc := newIncident(voter)
	inc.Status = models.StatusVerified
	inc.StatusSetBy = models.StatusSetByAdmin

	Toggle(inc, voter, "u", time.Now())

	assert.Equal(t, models.StatusVerified, inc.Status)
	assert.Equal(t, models.StatusSetByAdmin, inc.StatusSetBy)
	assert.Nil(t, inc.VerifiedAt)
}

func TestToggle_DoesNotEscalateNonUnverifiedStatus(t *testing.T) {
	inc := newIncident(uuid.New(), uuid.New())
	inc.Status = models.StatusInProgress

	out := Toggle(inc, uuid.New(), "u", time.Now())

	assert.Equal(t, models.StatusInProgress, inc.Status)
	assert.Nil(t, inc.VerifiedAt)
	assert.Len(t, out.Entries, 1)
}

func TestHasVerified(t *testing.T) {
	voter := uuid.New()
	inc := newIncident(voter, uuid.New())

	ok, count := HasVerified(inc, voter)
	assert.True(t, ok)
	assert.Equal(t, 2, count)

	ok, _ = HasVerified(inc, uuid.New())
	assert.False(t, ok)
}
