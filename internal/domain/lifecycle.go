package domain

import (
	"fmt"
	"strings"
	"time"
)

// Action is an operation that moves an item through its lifecycle.
type Action string

const (
	ActionSubmit     Action = "submit"
	ActionModerate   Action = "moderate"
	ActionRevise     Action = "revise"
	ActionActivate   Action = "activate"
	ActionDeactivate Action = "deactivate"
	ActionSell       Action = "mark as sold"
	ActionExpire     Action = "expire"
	ActionEdit       Action = "update"
)

type rule struct {
	from []ItemStatus
	to   []ItemStatus
}

// lifecycle lists, per action, the statuses it starts from and the ones it may lead to.
var lifecycle = map[Action]rule{
	ActionSubmit:     {from: []ItemStatus{ItemStatusDraft}, to: []ItemStatus{ItemStatusPending}},
	ActionModerate:   {from: []ItemStatus{ItemStatusPending}, to: []ItemStatus{ItemStatusActive, ItemStatusModerated}},
	ActionRevise:     {from: []ItemStatus{ItemStatusActive, ItemStatusModerated}, to: []ItemStatus{ItemStatusActive, ItemStatusModerated}},
	ActionActivate:   {from: []ItemStatus{ItemStatusInactive}, to: []ItemStatus{ItemStatusActive}},
	ActionDeactivate: {from: []ItemStatus{ItemStatusActive}, to: []ItemStatus{ItemStatusInactive}},
	ActionSell:       {from: []ItemStatus{ItemStatusActive}, to: []ItemStatus{ItemStatusSold}},
	ActionExpire:     {from: []ItemStatus{ItemStatusActive, ItemStatusInactive}, to: []ItemStatus{ItemStatusExpired}},
	ActionEdit: {
		from: []ItemStatus{ItemStatusDraft, ItemStatusPending, ItemStatusActive, ItemStatusInactive, ItemStatusModerated},
		to:   []ItemStatus{ItemStatusDraft, ItemStatusPending, ItemStatusInactive},
	},
}

// reviewAfterEdit maps the statuses an edit sends back to moderation.
var reviewAfterEdit = map[ItemStatus]ItemStatus{
	ItemStatusActive:    ItemStatusPending,
	ItemStatusModerated: ItemStatusPending,
}

func hasStatus(list []ItemStatus, s ItemStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether action may move an item from one status to another.
func CanTransition(action Action, from, to ItemStatus) bool {
	r, ok := lifecycle[action]
	return ok && hasStatus(r.from, from) && hasStatus(r.to, to)
}

// ExpirableStatuses are the statuses the expiry sweep acts on.
var ExpirableStatuses = lifecycle[ActionExpire].from

func transitionErr(from ItemStatus, action Action) error {
	return fmt.Errorf("%w: cannot %s an item in status %q", ErrInvalidTransition, action, from)
}

// transition moves the item to status to if action allows it.
func (i *Item) transition(action Action, to ItemStatus, now time.Time) error {
	if !CanTransition(action, i.Status, to) {
		return transitionErr(i.Status, action)
	}
	i.Status = to
	i.UpdatedAt = now
	return nil
}

// ModerationDecision is a moderator's verdict on an item.
type ModerationDecision struct {
	Status          ItemStatus
	Notes           string
	RejectionReason string
}

func (d *ModerationDecision) validate() error {
	d.Notes = strings.TrimSpace(d.Notes)
	d.RejectionReason = strings.TrimSpace(d.RejectionReason)
	switch d.Status {
	case ItemStatusActive:
		d.RejectionReason = ""
	case ItemStatusModerated:
		if d.RejectionReason == "" {
			return invalid("rejectionReason is required when rejecting an item")
		}
	default:
		return invalid("moderation status must be active or moderated")
	}
	return nil
}

// Validate checks the decision without applying it.
func (d ModerationDecision) Validate() error {
	return d.validate()
}

// Moderate applies the first moderation decision to a pending item.
func (i *Item) Moderate(moderator string, d ModerationDecision, now time.Time) error {
	if err := d.validate(); err != nil {
		return err
	}
	if err := i.transition(ActionModerate, d.Status, now); err != nil {
		return err
	}
	i.ModerationInfo = &ModerationInfo{
		Moderator:       moderator,
		ModeratedAt:     now,
		Notes:           d.Notes,
		RejectionReason: d.RejectionReason,
	}
	return nil
}

// Revise overrides an earlier decision on an active or moderated item and
// appends the change to the revision history.
func (i *Item) Revise(moderator string, d ModerationDecision, now time.Time) (Revision, error) {
	if err := d.validate(); err != nil {
		return Revision{}, err
	}
	rev := Revision{
		PreviousStatus: i.Status,
		NewStatus:      d.Status,
		Notes:          d.Notes,
		RevisedBy:      moderator,
		RevisedAt:      now,
	}
	if err := i.transition(ActionRevise, d.Status, now); err != nil {
		return Revision{}, err
	}
	i.RevisionHistory = append(i.RevisionHistory, rev)
	i.ModerationInfo = &ModerationInfo{
		Moderator:       moderator,
		ModeratedAt:     now,
		Notes:           d.Notes,
		RejectionReason: d.RejectionReason,
	}
	return rev, nil
}

// ToggleStatus flips an item between active and inactive.
func (i *Item) ToggleStatus(now time.Time) error {
	if i.Status == ItemStatusActive {
		return i.transition(ActionDeactivate, ItemStatusInactive, now)
	}
	if i.Status == ItemStatusInactive && i.Visibility.EndDate != nil && !now.Before(*i.Visibility.EndDate) {
		return fmt.Errorf("%w: visibility window has ended", ErrInvalidTransition)
	}
	return i.transition(ActionActivate, ItemStatusActive, now)
}

// MarkSold closes an active item for good.
func (i *Item) MarkSold(now time.Time) error {
	return i.transition(ActionSell, ItemStatusSold, now)
}

// Submit sends a draft to moderation.
func (i *Item) Submit(now time.Time) error {
	return i.transition(ActionSubmit, ItemStatusPending, now)
}

// Expire closes an item whose visibility window has ended.
func (i *Item) Expire(now time.Time) error {
	if !CanTransition(ActionExpire, i.Status, ItemStatusExpired) {
		return transitionErr(i.Status, ActionExpire)
	}
	if i.Visibility.EndDate == nil || now.Before(*i.Visibility.EndDate) {
		return invalid("item visibility has not ended")
	}
	return i.transition(ActionExpire, ItemStatusExpired, now)
}
