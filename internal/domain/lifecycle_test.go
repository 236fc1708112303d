package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_Moderate(t *testing.T) {
	t.Run("approve", func(t *testing.T) {
		item := newTestItem(t)
		err := item.Moderate("admin-1", ModerationDecision{Status: ItemStatusActive, Notes: " ok ", RejectionReason: "ignored"}, testNow)
		require.NoError(t, err)

		assert.Equal(t, ItemStatusActive, item.Status)
		require.NotNil(t, item.ModerationInfo)
		assert.Equal(t, "admin-1", item.ModerationInfo.Moderator)
		assert.Equal(t, testNow, item.ModerationInfo.ModeratedAt)
		assert.Equal(t, "ok", item.ModerationInfo.Notes)
		assert.Empty(t, item.ModerationInfo.RejectionReason)
		assert.Empty(t, item.RevisionHistory)
	})

	t.Run("reject needs reason", func(t *testing.T) {
		item := newTestItem(t)
		err := item.Moderate("admin-1", ModerationDecision{Status: ItemStatusModerated}, testNow)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, ItemStatusPending, item.Status)

		err = item.Moderate("admin-1", ModerationDecision{Status: ItemStatusModerated, RejectionReason: "counterfeit"}, testNow)
		require.NoError(t, err)
		assert.Equal(t, ItemStatusModerated, item.Status)
		assert.Equal(t, "counterfeit", item.ModerationInfo.RejectionReason)
	})

	t.Run("only pending items", func(t *testing.T) {
		item := newTestItem(t)
		item.Status = ItemStatusActive
		err := item.Moderate("admin-1", ModerationDecision{Status: ItemStatusModerated, RejectionReason: "x"}, testNow)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("target must be a moderation outcome", func(t *testing.T) {
		item := newTestItem(t)
		err := item.Moderate("admin-1", ModerationDecision{Status: ItemStatusSold}, testNow)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestItem_Revise(t *testing.T) {
	item := newTestItem(t)
	require.NoError(t, item.Moderate("admin-1", ModerationDecision{Status: ItemStatusActive}, testNow))

	later := testNow.Add(time.Hour)
	rev, err := item.Revise("admin-2", ModerationDecision{Status: ItemStatusModerated, Notes: "reported", RejectionReason: "fake brand"}, later)
	require.NoError(t, err)

	assert.Equal(t, Revision{
		PreviousStatus: ItemStatusActive,
		NewStatus:      ItemStatusModerated,
		Notes:          "reported",
		RevisedBy:      "admin-2",
		RevisedAt:      later,
	}, rev)
	assert.Equal(t, []Revision{rev}, item.RevisionHistory)
	assert.Equal(t, ItemStatusModerated, item.Status)
	assert.Equal(t, "admin-2", item.ModerationInfo.Moderator)

	_, err = item.Revise("admin-2", ModerationDecision{Status: ItemStatusActive}, later)
	require.NoError(t, err)
	assert.Len(t, item.RevisionHistory, 2)
}

func TestItem_ReviseRequiresModerationOutcome(t *testing.T) {
	for _, s := range []ItemStatus{ItemStatusPending, ItemStatusDraft, ItemStatusSold, ItemStatusInactive, ItemStatusExpired} {
		item := newTestItem(t)
		item.Status = s
		_, err := item.Revise("admin", ModerationDecision{Status: ItemStatusActive}, testNow)
		assert.ErrorIs(t, err, ErrInvalidTransition, "status %s", s)
		assert.Empty(t, item.RevisionHistory)
	}
}

func TestItem_ToggleStatusTwiceRestoresOriginal(t *testing.T) {
	item := newTestItem(t)
	item.Status = ItemStatusActive

	require.NoError(t, item.ToggleStatus(testNow))
	assert.Equal(t, ItemStatusInactive, item.Status)
	require.NoError(t, item.ToggleStatus(testNow))
	assert.Equal(t, ItemStatusActive, item.Status)
}

func TestItem_ToggleStatusRejectsOtherStates(t *testing.T) {
	for _, s := range []ItemStatus{ItemStatusPending, ItemStatusModerated, ItemStatusSold, ItemStatusExpired, ItemStatusDraft} {
		item := newTestItem(t)
		item.Status = s
		assert.ErrorIs(t, item.ToggleStatus(testNow), ErrInvalidTransition, "status %s", s)
		assert.Equal(t, s, item.Status)
	}
}

func TestItem_ToggleStatusCannotReactivateEndedListing(t *testing.T) {
	item := newTestItem(t)
	item.Status = ItemStatusInactive
	err := item.ToggleStatus(item.Visibility.EndDate.Add(time.Minute))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestItem_MarkSoldIsOneWay(t *testing.T) {
	item := newTestItem(t)
	assert.ErrorIs(t, item.MarkSold(testNow), ErrInvalidTransition)

	item.Status = ItemStatusActive
	require.NoError(t, item.MarkSold(testNow))
	assert.Equal(t, ItemStatusSold, item.Status)

	assert.ErrorIs(t, item.ToggleStatus(testNow), ErrInvalidTransition)
	assert.ErrorIs(t, item.MarkSold(testNow), ErrInvalidTransition)
}

func TestItem_SubmitAndExpire(t *testing.T) {
	item := newTestItem(t)
	assert.ErrorIs(t, item.Submit(testNow), ErrInvalidTransition)
	item.Status = ItemStatusDraft
	require.NoError(t, item.Submit(testNow))
	assert.Equal(t, ItemStatusPending, item.Status)

	item.Status = ItemStatusActive
	assert.ErrorIs(t, item.Expire(testNow), ErrInvalidInput, "window still open")
	require.NoError(t, item.Expire(item.Visibility.EndDate.Add(time.Second)))
	assert.Equal(t, ItemStatusExpired, item.Status)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		action Action
		from   ItemStatus
		to     ItemStatus
		want   bool
	}{
		{ActionModerate, ItemStatusPending, ItemStatusActive, true},
		{ActionModerate, ItemStatusActive, ItemStatusModerated, false},
		{ActionRevise, ItemStatusActive, ItemStatusActive, true},
		{ActionRevise, ItemStatusModerated, ItemStatusModerated, true},
		{ActionRevise, ItemStatusPending, ItemStatusActive, false},
		{ActionSell, ItemStatusActive, ItemStatusSold, true},
		{ActionSell, ItemStatusInactive, ItemStatusSold, false},
		{ActionActivate, ItemStatusExpired, ItemStatusActive, false},
		{ActionExpire, ItemStatusInactive, ItemStatusExpired, true},
		{ActionExpire, ItemStatusPending, ItemStatusExpired, false},
		{ActionEdit, ItemStatusActive, ItemStatusPending, true},
		{ActionEdit, ItemStatusSold, ItemStatusSold, false},
		{ActionSubmit, ItemStatusDraft, ItemStatusActive, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.action, tt.from, tt.to), "%s %s -> %s", tt.action, tt.from, tt.to)
	}
	assert.ElementsMatch(t, []ItemStatus{ItemStatusActive, ItemStatusInactive}, ExpirableStatuses)
}

func TestItem_ReviseKeepingStatus(t *testing.T) {
	item := newTestItem(t)
	require.NoError(t, item.Moderate("admin-1", ModerationDecision{Status: ItemStatusActive}, testNow))

	rev, err := item.Revise("admin-2", ModerationDecision{Status: ItemStatusActive, Notes: "checked again"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, ItemStatusActive, rev.PreviousStatus)
	assert.Equal(t, ItemStatusActive, item.Status)
	assert.Len(t, item.RevisionHistory, 1)
}

func TestItem_ToggleOutsideActiveStates(t *testing.T) {
	for _, s := range []ItemStatus{ItemStatusDraft, ItemStatusPending, ItemStatusModerated, ItemStatusSold, ItemStatusExpired} {
		item := newTestItem(t)
		item.Status = s
		assert.ErrorIs(t, item.ToggleStatus(testNow), ErrInvalidTransition, s)
		assert.Equal(t, s, item.Status)
	}
}
