package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemStatus is the lifecycle state of an item.
type ItemStatus string

const (
	ItemStatusDraft     ItemStatus = "draft"
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusActive    ItemStatus = "active"
	ItemStatusInactive  ItemStatus = "inactive"
	ItemStatusModerated ItemStatus = "moderated"
	ItemStatusSold      ItemStatus = "sold"
	ItemStatusExpired   ItemStatus = "expired"
)

func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusDraft, ItemStatusPending, ItemStatusActive, ItemStatusInactive,
		ItemStatusModerated, ItemStatusSold, ItemStatusExpired:
		return true
	}
	return false
}

// ItemCondition describes wear of a garment.
type ItemCondition string

const (
	ConditionNew     ItemCondition = "new"
	ConditionLikeNew ItemCondition = "like_new"
	ConditionGood    ItemCondition = "good"
	ConditionFair    ItemCondition = "fair"
)

func (c ItemCondition) IsValid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair:
		return true
	}
	return false
}

// StatType names one of the item counters.
type StatType string

const (
	StatViews  StatType = "views"
	StatPhones StatType = "phones"
	StatChats  StatType = "chats"
)

func (s StatType) IsValid() bool {
	return s == StatViews || s == StatPhones || s == StatChats
}

const (
	MaxItemImages          = 12
	DefaultListingDuration = 30 * 24 * time.Hour
	maxTitleLength         = 120
	maxDescriptionLength   = 4000
)

// Asset is a file kept in the object store.
type Asset struct {
	URL      string
	PublicID string
}

type Image struct {
	Asset
	IsMain bool
}

type Stats struct {
	Views  int64
	Phones int64
	Chats  int64
}

// Visibility is the window during which an active item is shown publicly.
type Visibility struct {
	StartDate  time.Time
	EndDate    *time.Time
	IsFeatured bool
	IsUrgent   bool
}

// Validate requires EndDate, when set, to be after StartDate.
func (v Visibility) Validate() error {
	if v.EndDate != nil && !v.StartDate.IsZero() && !v.EndDate.After(v.StartDate) {
		return invalid("visibility.endDate must be after visibility.startDate")
	}
	return nil
}

// Open reports whether now falls inside the window.
func (v Visibility) Open(now time.Time) bool {
	if !v.StartDate.IsZero() && now.Before(v.StartDate) {
		return false
	}
	return v.EndDate == nil || now.Before(*v.EndDate)
}

type ModerationInfo struct {
	Moderator       string
	ModeratedAt     time.Time
	Notes           string
	RejectionReason string
}

// Revision records a moderator overriding an earlier moderation decision.
type Revision struct {
	PreviousStatus ItemStatus
	NewStatus      ItemStatus
	Notes          string
	RevisedBy      string
	RevisedAt      time.Time
}

// Item is a marketplace listing.
type Item struct {
	ID              primitive.ObjectID
	Owner           string
	Category        primitive.ObjectID
	Title           string
	Description     string
	Condition       ItemCondition
	Size            string
	Brand           string
	Location        string
	Offer           Offer
	Images          []Image
	Status          ItemStatus
	Stats           Stats
	Visibility      Visibility
	ModerationInfo  *ModerationInfo
	RevisionHistory []Revision
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ItemDetails are the owner-editable fields of an item.
type ItemDetails struct {
	Category    primitive.ObjectID
	Title       string
	Description string
	Condition   ItemCondition
	Size        string
	Brand       string
	Location    string
	Offer       Offer
	Visibility  Visibility
}

func (d *ItemDetails) normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Size = strings.TrimSpace(d.Size)
	d.Brand = strings.TrimSpace(d.Brand)
	d.Location = strings.TrimSpace(d.Location)
}

// Validate checks field level rules shared by create and update.
func (d ItemDetails) Validate() error {
	if d.Category.IsZero() {
		return invalid("category is required")
	}
	if d.Title == "" {
		return invalid("title is required")
	}
	if len([]rune(d.Title)) > maxTitleLength {
		return invalid("title cannot exceed %d characters", maxTitleLength)
	}
	if d.Description == "" {
		return invalid("description is required")
	}
	if len([]rune(d.Description)) > maxDescriptionLength {
		return invalid("description cannot exceed %d characters", maxDescriptionLength)
	}
	if !d.Condition.IsValid() {
		return invalid("condition must be one of new, like_new, good, fair")
	}
	if d.Offer == nil {
		return invalid("type is required")
	}
	if err := d.Offer.Validate(); err != nil {
		return err
	}
	return d.Visibility.Validate()
}

// NewItem builds a pending item. Images must already be stored.
func NewItem(owner string, details ItemDetails, images []Image, now time.Time) (*Item, error) {
	if owner == "" {
		return nil, invalid("owner is required")
	}
	details.normalize()
	if details.Visibility.StartDate.IsZero() {
		details.Visibility.StartDate = now
	}
	if details.Visibility.EndDate == nil {
		end := details.Visibility.StartDate.Add(DefaultListingDuration)
		details.Visibility.EndDate = &end
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, invalid("at least one image is required")
	}
	if len(images) > MaxItemImages {
		return nil, invalid("an item can have at most %d images", MaxItemImages)
	}

	item := &Item{
		ID:          primitive.NewObjectID(),
		Owner:       owner,
		Category:    details.Category,
		Title:       details.Title,
		Description: details.Description,
		Condition:   details.Condition,
		Size:        details.Size,
		Brand:       details.Brand,
		Location:    details.Location,
		Offer:       details.Offer,
		Images:      append([]Image(nil), images...),
		Status:      ItemStatusPending,
		Visibility:  details.Visibility,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	item.normalizeMainImage()
	return item, nil
}

func (i *Item) Type() ItemType {
	if i.Offer == nil {
		return ""
	}
	return i.Offer.Type()
}

func (i *Item) IsOwnedBy(userID string) bool {
	return userID != "" && i.Owner == userID
}

// IsPublic reports whether anonymous users may see the item at now.
func (i *Item) IsPublic(now time.Time) bool {
	return i.Status == ItemStatusActive && i.Visibility.Open(now)
}

// VisibleTo reports whether actor may read the item regardless of status.
func (i *Item) VisibleTo(actor Actor, now time.Time) bool {
	return i.IsPublic(now) || actor.IsAdmin() || i.IsOwnedBy(actor.UserID)
}

// ApplyDetails replaces owner-editable fields. Items that already went through
// moderation are sent back for review.
func (i *Item) ApplyDetails(details ItemDetails, now time.Time) error {
	to := i.Status
	if s, ok := reviewAfterEdit[i.Status]; ok {
		to = s
	}
	if !CanTransition(ActionEdit, i.Status, to) {
		return transitionErr(i.Status, ActionEdit)
	}
	details.normalize()
	if details.Visibility.StartDate.IsZero() {
		details.Visibility.StartDate = i.Visibility.StartDate
	}
	if details.Visibility.EndDate == nil {
		details.Visibility.EndDate = i.Visibility.EndDate
	}
	if err := details.Validate(); err != nil {
		return err
	}

	i.Category = details.Category
	i.Title = details.Title
	i.Description = details.Description
	i.Condition = details.Condition
	i.Size = details.Size
	i.Brand = details.Brand
	i.Location = details.Location
	i.Offer = details.Offer
	i.Visibility = details.Visibility
	return i.transition(ActionEdit, to, now)
}

// AddImages appends stored images, keeping the limit.
func (i *Item) AddImages(images []Image, now time.Time) error {
	if len(images) == 0 {
		return invalid("no images provided")
	}
	if len(i.Images)+len(images) > MaxItemImages {
		return invalid("an item can have at most %d images", MaxItemImages)
	}
	for _, img := range images {
		img.IsMain = false
		i.Images = append(i.Images, img)
	}
	i.normalizeMainImage()
	i.UpdatedAt = now
	return nil
}

// RemoveImage drops the image with publicID. The last image cannot be removed.
func (i *Item) RemoveImage(publicID string, now time.Time) (Image, error) {
	idx := i.imageIndex(publicID)
	if idx < 0 {
		return Image{}, ErrNotFound
	}
	if len(i.Images) == 1 {
		return Image{}, invalid("an item must keep at least one image")
	}
	removed := i.Images[idx]
	i.Images = append(i.Images[:idx], i.Images[idx+1:]...)
	i.normalizeMainImage()
	i.UpdatedAt = now
	return removed, nil
}

// SetMainImage flags publicID as the main image and clears the others.
func (i *Item) SetMainImage(publicID string, now time.Time) error {
	idx := i.imageIndex(publicID)
	if idx < 0 {
		return ErrNotFound
	}
	for k := range i.Images {
		i.Images[k].IsMain = k == idx
	}
	i.UpdatedAt = now
	return nil
}

// MainImage returns the main image, or the zero Image if the item has none.
func (i *Item) MainImage() Image {
	for _, img := range i.Images {
		if img.IsMain {
			return img
		}
	}
	return Image{}
}

// AssetIDs lists the public ids of every stored image of the item.
func (i *Item) AssetIDs() []string {
	ids := make([]string, 0, len(i.Images))
	for _, img := range i.Images {
		if img.PublicID != "" {
			ids = append(ids, img.PublicID)
		}
	}
	return ids
}

func (i *Item) imageIndex(publicID string) int {
	for k, img := range i.Images {
		if img.PublicID == publicID {
			return k
		}
	}
	return -1
}

// normalizeMainImage keeps exactly one main image, promoting the first one when needed.
func (i *Item) normalizeMainImage() {
	main := -1
	for k := range i.Images {
		if i.Images[k].IsMain {
			if main >= 0 {
				i.Images[k].IsMain = false
				continue
			}
			main = k
		}
	}
	if main < 0 && len(i.Images) > 0 {
		i.Images[0].IsMain = true
	}
}
