package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotification(t *testing.T) {
	n, err := NewNotification("user-1", NotificationSystem, " Hello ", "Welcome", nil, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Hello", n.Title)
	assert.False(t, n.IsRead)
	assert.Nil(t, n.ReadAt)

	_, err = NewNotification("", NotificationSystem, "t", "m", nil, testNow)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = NewNotification("u", "sms", "t", "m", nil, testNow)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = NewNotification("u", NotificationMessage, "t", "", nil, testNow)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestModerationNotice(t *testing.T) {
	item := newTestItem(t)
	require.NoError(t, item.Moderate("admin", ModerationDecision{Status: ItemStatusModerated, RejectionReason: "blurry photos"}, testNow))

	n, err := ModerationNotice(item, false, testNow)
	require.NoError(t, err)
	assert.Equal(t, NotificationModeration, n.Type)
	assert.Equal(t, item.Owner, n.Recipient)
	require.NotNil(t, n.Item)
	assert.Equal(t, item.ID, *n.Item)
	assert.Equal(t, "Your item was rejected", n.Title)
	assert.Contains(t, n.Message, "blurry photos")

	_, err = item.Revise("admin", ModerationDecision{Status: ItemStatusActive}, testNow)
	require.NoError(t, err)
	n, err = ModerationNotice(item, true, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Moderation decision revised: your item was approved", n.Title)
}
