package mongodb

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field names follow the camelCase layout of the existing collections.

type assetDocument struct {
	URL      string `bson:"url"`
	PublicID string `bson:"public_id"`
}

type imageDocument struct {
	URL      string `bson:"url"`
	PublicID string `bson:"public_id"`
	IsMain   bool   `bson:"isMain"`
}

type priceDocument struct {
	Amount     float64 `bson:"amount"`
	Currency   string  `bson:"currency"`
	Negotiable bool    `bson:"negotiable"`
}

type rentDetailsDocument struct {
	Duration         string    `bson:"duration"`
	PricePerUnit     float64   `bson:"pricePerUnit"`
	AvailabilityDate time.Time `bson:"availabilityDate"`
	Deposit          float64   `bson:"deposit,omitempty"`
}

type exchangeDetailsDocument struct {
	ExchangeFor         string   `bson:"exchangeFor"`
	PreferredCategories []string `bson:"preferredCategories,omitempty"`
}

type statsDocument struct {
	Views  int64 `bson:"views"`
	Phones int64 `bson:"phones"`
	Chats  int64 `bson:"chats"`
}

type visibilityDocument struct {
	StartDate  time.Time  `bson:"startDate"`
	EndDate    *time.Time `bson:"endDate,omitempty"`
	IsFeatured bool       `bson:"isFeatured"`
	IsUrgent   bool       `bson:"isUrgent"`
}

type moderationInfoDocument struct {
	Moderator       string    `bson:"moderator"`
	ModeratedAt     time.Time `bson:"moderatedAt"`
	Notes           string    `bson:"notes,omitempty"`
	RejectionReason string    `bson:"rejectionReason,omitempty"`
}

type revisionDocument struct {
	PreviousStatus string    `bson:"previousStatus"`
	NewStatus      string    `bson:"newStatus"`
	Notes          string    `bson:"notes,omitempty"`
	RevisedBy      string    `bson:"revisedBy"`
	RevisedAt      time.Time `bson:"revisedAt"`
}

type itemDocument struct {
	ID              primitive.ObjectID       `bson:"_id"`
	Owner           string                   `bson:"owner"`
	Category        primitive.ObjectID       `bson:"category"`
	Title           string                   `bson:"title"`
	Description     string                   `bson:"description"`
	Condition       string                   `bson:"condition"`
	Size            string                   `bson:"size,omitempty"`
	Brand           string                   `bson:"brand,omitempty"`
	Location        string                   `bson:"location,omitempty"`
	Type            string                   `bson:"type"`
	Price           *priceDocument           `bson:"price,omitempty"`
	RentDetails     *rentDetailsDocument     `bson:"rentDetails,omitempty"`
	ExchangeDetails *exchangeDetailsDocument `bson:"exchangeDetails,omitempty"`
	ListPrice       float64                  `bson:"listPrice"`
	Images          []imageDocument          `bson:"images"`
	Status          string                   `bson:"status"`
	Stats           statsDocument            `bson:"stats"`
	Visibility      visibilityDocument       `bson:"visibility"`
	ModerationInfo  *moderationInfoDocument  `bson:"moderationInfo,omitempty"`
	RevisionHistory []revisionDocument       `bson:"revisionHistory,omitempty"`
	CreatedAt       time.Time                `bson:"createdAt"`
	UpdatedAt       time.Time                `bson:"updatedAt"`
}

func fromDomainItem(i *domain.Item) *itemDocument {
	doc := &itemDocument{
		ID:          i.ID,
		Owner:       i.Owner,
		Category:    i.Category,
		Title:       i.Title,
		Description: i.Description,
		Condition:   string(i.Condition),
		Size:        i.Size,
		Brand:       i.Brand,
		Location:    i.Location,
		Status:      string(i.Status),
		Stats:       statsDocument(i.Stats),
		Visibility: visibilityDocument{
			StartDate:  i.Visibility.StartDate,
			EndDate:    i.Visibility.EndDate,
			IsFeatured: i.Visibility.IsFeatured,
			IsUrgent:   i.Visibility.IsUrgent,
		},
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}

	if i.Offer != nil {
		fields := domain.FieldsOf(i.Offer)
		doc.Type = string(fields.Type)
		doc.ListPrice = i.Offer.ListPrice()
		if fields.Price != nil {
			doc.Price = &priceDocument{Amount: fields.Price.Amount, Currency: fields.Price.Currency, Negotiable: fields.Price.Negotiable}
		}
		if fields.RentDetails != nil {
			doc.RentDetails = &rentDetailsDocument{
				Duration:         string(fields.RentDetails.Duration),
				PricePerUnit:     fields.RentDetails.PricePerUnit,
				AvailabilityDate: fields.RentDetails.AvailabilityDate,
				Deposit:          fields.RentDetails.Deposit,
			}
		}
		if fields.ExchangeDetails != nil {
			doc.ExchangeDetails = &exchangeDetailsDocument{
				ExchangeFor:         fields.ExchangeDetails.ExchangeFor,
				PreferredCategories: fields.ExchangeDetails.PreferredCategories,
			}
		}
	}

	doc.Images = make([]imageDocument, len(i.Images))
	for k, img := range i.Images {
		doc.Images[k] = imageDocument{URL: img.URL, PublicID: img.PublicID, IsMain: img.IsMain}
	}
	if i.ModerationInfo != nil {
		doc.ModerationInfo = &moderationInfoDocument{
			Moderator:       i.ModerationInfo.Moderator,
			ModeratedAt:     i.ModerationInfo.ModeratedAt,
			Notes:           i.ModerationInfo.Notes,
			RejectionReason: i.ModerationInfo.RejectionReason,
		}
	}
	for _, r := range i.RevisionHistory {
		doc.RevisionHistory = append(doc.RevisionHistory, revisionDocument{
			PreviousStatus: string(r.PreviousStatus),
			NewStatus:      string(r.NewStatus),
			Notes:          r.Notes,
			RevisedBy:      r.RevisedBy,
			RevisedAt:      r.RevisedAt,
		})
	}
	return doc
}

// toDomain rebuilds the item. A stored document whose detail blocks do not
// match its type yields a nil Offer instead of failing the read.
func (d *itemDocument) toDomain() *domain.Item {
	item := &domain.Item{
		ID:          d.ID,
		Owner:       d.Owner,
		Category:    d.Category,
		Title:       d.Title,
		Description: d.Description,
		Condition:   domain.ItemCondition(d.Condition),
		Size:        d.Size,
		Brand:       d.Brand,
		Location:    d.Location,
		Status:      domain.ItemStatus(d.Status),
		Stats:       domain.Stats(d.Stats),
		Visibility: domain.Visibility{
			StartDate:  d.Visibility.StartDate,
			EndDate:    d.Visibility.EndDate,
			IsFeatured: d.Visibility.IsFeatured,
			IsUrgent:   d.Visibility.IsUrgent,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}

	fields := domain.OfferFields{Type: domain.ItemType(d.Type)}
	if d.Price != nil {
		fields.Price = &domain.Price{Amount: d.Price.Amount, Currency: d.Price.Currency, Negotiable: d.Price.Negotiable}
	}
	if d.RentDetails != nil {
		fields.RentDetails = &domain.RentDetails{
			Duration:         domain.RentDuration(d.RentDetails.Duration),
			PricePerUnit:     d.RentDetails.PricePerUnit,
			AvailabilityDate: d.RentDetails.AvailabilityDate,
			Deposit:          d.RentDetails.Deposit,
		}
	}
	if d.ExchangeDetails != nil {
		fields.ExchangeDetails = &domain.ExchangeDetails{
			ExchangeFor:         d.ExchangeDetails.ExchangeFor,
			PreferredCategories: d.ExchangeDetails.PreferredCategories,
		}
	}
	if offer, err := fields.Offer(); err == nil {
		item.Offer = offer
	}

	item.Images = make([]domain.Image, len(d.Images))
	for k, img := range d.Images {
		item.Images[k] = domain.Image{Asset: domain.Asset{URL: img.URL, PublicID: img.PublicID}, IsMain: img.IsMain}
	}
	if d.ModerationInfo != nil {
		item.ModerationInfo = &domain.ModerationInfo{
			Moderator:       d.ModerationInfo.Moderator,
			ModeratedAt:     d.ModerationInfo.ModeratedAt,
			Notes:           d.ModerationInfo.Notes,
			RejectionReason: d.ModerationInfo.RejectionReason,
		}
	}
	for _, r := range d.RevisionHistory {
		item.RevisionHistory = append(item.RevisionHistory, domain.Revision{
			PreviousStatus: domain.ItemStatus(r.PreviousStatus),
			NewStatus:      domain.ItemStatus(r.NewStatus),
			Notes:          r.Notes,
			RevisedBy:      r.RevisedBy,
			RevisedAt:      r.RevisedAt,
		})
	}
	return item
}

type categoryMetadataDocument struct {
	Color             string            `bson:"color,omitempty"`
	DisplayAttributes map[string]string `bson:"displayAttributes,omitempty"`
}

type categoryDocument struct {
	ID          primitive.ObjectID       `bson:"_id"`
	Name        string                   `bson:"name"`
	Slug        string                   `bson:"slug"`
	Description string                   `bson:"description,omitempty"`
	Icon        assetDocument            `bson:"icon"`
	Parent      *primitive.ObjectID      `bson:"parent"`
	IsActive    bool                     `bson:"isActive"`
	Order       int                      `bson:"order"`
	Metadata    categoryMetadataDocument `bson:"metadata"`
	CreatedAt   time.Time                `bson:"createdAt"`
	UpdatedAt   time.Time                `bson:"updatedAt"`
}

func fromDomainCategory(c *domain.Category) *categoryDocument {
	return &categoryDocument{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Icon:        assetDocument{URL: c.Icon.URL, PublicID: c.Icon.PublicID},
		Parent:      c.Parent,
		IsActive:    c.IsActive,
		Order:       c.Order,
		Metadata: categoryMetadataDocument{
			Color:             c.Metadata.Color,
			DisplayAttributes: c.Metadata.DisplayAttributes,
		},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (d *categoryDocument) toDomain() *domain.Category {
	return &domain.Category{
		ID:          d.ID,
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		Icon:        domain.Asset{URL: d.Icon.URL, PublicID: d.Icon.PublicID},
		Parent:      d.Parent,
		IsActive:    d.IsActive,
		Order:       d.Order,
		Metadata: domain.CategoryMetadata{
			Color:             d.Metadata.Color,
			DisplayAttributes: d.Metadata.DisplayAttributes,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type notificationDocument struct {
	ID        primitive.ObjectID  `bson:"_id"`
	Recipient string              `bson:"recipient"`
	Type      string              `bson:"type"`
	Title     string              `bson:"title"`
	Message   string              `bson:"message"`
	Item      *primitive.ObjectID `bson:"item,omitempty"`
	IsRead    bool                `bson:"isRead"`
	ReadAt    *time.Time          `bson:"readAt,omitempty"`
	CreatedAt time.Time           `bson:"createdAt"`
}

func fromDomainNotification(n *domain.Notification) *notificationDocument {
	return &notificationDocument{
		ID:        n.ID,
		Recipient: n.Recipient,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Item:      n.Item,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func (d *notificationDocument) toDomain() *domain.Notification {
	return &domain.Notification{
		ID:        d.ID,
		Recipient: d.Recipient,
		Type:      domain.NotificationType(d.Type),
		Title:     d.Title,
		Message:   d.Message,
		Item:      d.Item,
		IsRead:    d.IsRead,
		ReadAt:    d.ReadAt,
		CreatedAt: d.CreatedAt,
	}
}

type contactDocument struct {
	Email   string `bson:"email,omitempty"`
	Phone   string `bson:"phone,omitempty"`
	City    string `bson:"city,omitempty"`
	Address string `bson:"address,omitempty"`
}

type socialDocument struct {
	Facebook  bool `bson:"facebook"`
	Instagram bool `bson:"instagram"`
	Telegram  bool `bson:"telegram"`
}

type preferencesDocument struct {
	EmailNotifications bool   `bson:"emailNotifications"`
	PushNotifications  bool   `bson:"pushNotifications"`
	ShowPhone          bool   `bson:"showPhone"`
	Language           string `bson:"language"`
}

type profileDocument struct {
	ID          primitive.ObjectID  `bson:"_id"`
	UserID      string              `bson:"user"`
	FirstName   string              `bson:"firstName"`
	LastName    string              `bson:"lastName,omitempty"`
	DisplayName string              `bson:"displayName,omitempty"`
	Gender      string              `bson:"gender,omitempty"`
	BirthDate   *time.Time          `bson:"birthDate,omitempty"`
	Bio         string              `bson:"bio,omitempty"`
	Avatar      *assetDocument      `bson:"avatar,omitempty"`
	Contact     contactDocument     `bson:"contact"`
	Social      socialDocument      `bson:"social"`
	Preferences preferencesDocument `bson:"preferences"`
	CreatedAt   time.Time           `bson:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

func fromDomainProfile(p *domain.Profile) *profileDocument {
	doc := &profileDocument{
		ID:          p.ID,
		UserID:      p.UserID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DisplayName: p.DisplayName,
		Gender:      string(p.Gender),
		BirthDate:   p.BirthDate,
		Bio:         p.Bio,
		Contact:     contactDocument(p.Contact),
		Social:      socialDocument(p.Social),
		Preferences: preferencesDocument(p.Preferences),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Avatar != nil {
		doc.Avatar = &assetDocument{URL: p.Avatar.URL, PublicID: p.Avatar.PublicID}
	}
	return doc
}

func (d *profileDocument) toDomain() *domain.Profile {
	p := &domain.Profile{
		ID:          d.ID,
		UserID:      d.UserID,
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		DisplayName: d.DisplayName,
		Gender:      domain.Gender(d.Gender),
		BirthDate:   d.BirthDate,
		Bio:         d.Bio,
		Contact:     domain.Contact(d.Contact),
		Social:      domain.SocialConnections(d.Social),
		Preferences: domain.Preferences(d.Preferences),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.Avatar != nil {
		p.Avatar = &domain.Asset{URL: d.Avatar.URL, PublicID: d.Avatar.PublicID}
	}
	return p
}
