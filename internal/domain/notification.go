package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationModeration NotificationType = "moderation"
	NotificationMessage    NotificationType = "message"
	NotificationSystem     NotificationType = "system"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationModeration, NotificationMessage, NotificationSystem:
		return true
	}
	return false
}

type Notification struct {
	ID        primitive.ObjectID
	Recipient string
	Type      NotificationType
	Title     string
	Message   string
	Item      *primitive.ObjectID
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}

func NewNotification(recipient string, typ NotificationType, title, message string, item *primitive.ObjectID, now time.Time) (*Notification, error) {
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if recipient == "" {
		return nil, invalid("recipient is required")
	}
	if !typ.IsValid() {
		return nil, invalid("notification type must be moderation, message or system")
	}
	if title == "" || message == "" {
		return nil, invalid("title and message are required")
	}
	return &Notification{
		ID:        primitive.NewObjectID(),
		Recipient: recipient,
		Type:      typ,
		Title:     title,
		Message:   message,
		Item:      item,
		CreatedAt: now,
	}, nil
}

// ModerationNotice builds the owner notification for a moderation outcome.
func ModerationNotice(item *Item, revised bool, now time.Time) (*Notification, error) {
	var title, msg string
	switch item.Status {
	case ItemStatusActive:
		title = "Your item was approved"
		msg = "\"" + item.Title + "\" is now published."
	default:
		title = "Your item was rejected"
		msg = "\"" + item.Title + "\" did not pass moderation."
		if item.ModerationInfo != nil && item.ModerationInfo.RejectionReason != "" {
			msg += " Reason: " + item.ModerationInfo.RejectionReason
		}
	}
	if revised {
		title = "Moderation decision revised: " + strings.ToLower(title[:1]) + title[1:]
	}
	if item.ModerationInfo != nil && item.ModerationInfo.Notes != "" {
		msg += " Notes: " + item.ModerationInfo.Notes
	}
	id := item.ID
	return NewNotification(item.Owner, NotificationModeration, title, msg, &id, now)
}
