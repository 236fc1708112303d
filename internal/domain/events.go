package domain

import "time"

// Subjects published on the message bus.
const (
	SubjectItemCreated       = "item.created"
	SubjectItemModerated     = "item.moderated"
	SubjectItemRevised       = "item.revised"
	SubjectItemStatusChanged = "item.status_changed"
	SubjectItemSold          = "item.sold"
	SubjectItemDeleted       = "item.deleted"
	SubjectItemsExpired      = "items.expired"
	SubjectCategoryDeleted   = "category.deleted"
)

// ItemEvent is the payload of item subjects.
type ItemEvent struct {
	ItemID     string     `json:"itemId"`
	Owner      string     `json:"owner"`
	Category   string     `json:"category,omitempty"`
	Type       ItemType   `json:"type,omitempty"`
	Status     ItemStatus `json:"status"`
	PrevStatus ItemStatus `json:"previousStatus,omitempty"`
	Actor      string     `json:"actor,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

func NewItemEvent(item *Item, prev ItemStatus, actor string, now time.Time) ItemEvent {
	ev := ItemEvent{
		ItemID:     item.ID.Hex(),
		Owner:      item.Owner,
		Type:       item.Type(),
		Status:     item.Status,
		PrevStatus: prev,
		Actor:      actor,
		OccurredAt: now,
	}
	if !item.Category.IsZero() {
		ev.Category = item.Category.Hex()
	}
	return ev
}

type ItemsExpiredEvent struct {
	Count      int64     `json:"count"`
	OccurredAt time.Time `json:"occurredAt"`
}

type CategoryDeletedEvent struct {
	CategoryIDs  []string  `json:"categoryIds"`
	ItemsDeleted int64     `json:"itemsDeleted"`
	Forced       bool      `json:"forced"`
	Actor        string    `json:"actor"`
	OccurredAt   time.Time `json:"occurredAt"`
}
