package handler

import (
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type assetDTO struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

func (a assetDTO) toDomain() domain.Asset { return domain.Asset{URL: a.URL, PublicID: a.PublicID} }

func toAssetDTO(a domain.Asset) *assetDTO {
	if a.PublicID == "" && a.URL == "" {
		return nil
	}
	return &assetDTO{URL: a.URL, PublicID: a.PublicID}
}

type priceDTO struct {
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency,omitempty"`
	Negotiable bool    `json:"negotiable"`
}

type rentDetailsDTO struct {
	Duration         domain.RentDuration `json:"duration"`
	PricePerUnit     float64             `json:"pricePerUnit"`
	AvailabilityDate time.Time           `json:"availabilityDate"`
	Deposit          float64             `json:"deposit,omitempty"`
}

type exchangeDetailsDTO struct {
	ExchangeFor         string   `json:"exchangeFor"`
	PreferredCategories []string `json:"preferredCategories,omitempty"`
}

type visibilityDTO struct {
	StartDate  *time.Time `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	IsFeatured bool       `json:"isFeatured"`
	IsUrgent   bool       `json:"isUrgent"`
}

// itemRequest is the body of create and update.
type itemRequest struct {
	Category        string               `json:"category"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Condition       domain.ItemCondition `json:"condition"`
	Size            string               `json:"size"`
	Brand           string               `json:"brand"`
	Location        string               `json:"location"`
	Type            domain.ItemType      `json:"type"`
	Price           *priceDTO            `json:"price"`
	RentDetails     *rentDetailsDTO      `json:"rentDetails"`
	ExchangeDetails *exchangeDetailsDTO  `json:"exchangeDetails"`
	Visibility      *visibilityDTO       `json:"visibility"`
	Images          []imageDTO           `json:"images"`
}

func (req itemRequest) details() (domain.ItemDetails, error) {
	category, err := primitive.ObjectIDFromHex(req.Category)
	if err != nil {
		return domain.ItemDetails{}, invalidf("category must be a valid id")
	}

	fields := domain.OfferFields{Type: req.Type}
	if req.Price != nil {
		fields.Price = &domain.Price{Amount: req.Price.Amount, Currency: req.Price.Currency, Negotiable: req.Price.Negotiable}
	}
	if req.RentDetails != nil {
		fields.RentDetails = &domain.RentDetails{
			Duration:         req.RentDetails.Duration,
			PricePerUnit:     req.RentDetails.PricePerUnit,
			AvailabilityDate: req.RentDetails.AvailabilityDate,
			Deposit:          req.RentDetails.Deposit,
		}
	}
	if req.ExchangeDetails != nil {
		fields.ExchangeDetails = &domain.ExchangeDetails{
			ExchangeFor:         req.ExchangeDetails.ExchangeFor,
			PreferredCategories: req.ExchangeDetails.PreferredCategories,
		}
	}
	offer, err := fields.Offer()
	if err != nil {
		return domain.ItemDetails{}, err
	}

	d := domain.ItemDetails{
		Category:    category,
		Title:       req.Title,
		Description: req.Description,
		Condition:   req.Condition,
		Size:        req.Size,
		Brand:       req.Brand,
		Location:    req.Location,
		Offer:       offer,
	}
	if v := req.Visibility; v != nil {
		if v.StartDate != nil {
			d.Visibility.StartDate = *v.StartDate
		}
		d.Visibility.EndDate = v.EndDate
		d.Visibility.IsFeatured = v.IsFeatured
		d.Visibility.IsUrgent = v.IsUrgent
	}
	return d, nil
}

// images keeps the client's isMain flags; NewItem settles them to exactly one main image.
func (req itemRequest) images() []domain.Image {
	out := make([]domain.Image, len(req.Images))
	for k, a := range req.Images {
		out[k] = domain.Image{Asset: domain.Asset{URL: a.URL, PublicID: a.PublicID}, IsMain: a.IsMain}
	}
	return out
}

type imageDTO struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	IsMain   bool   `json:"isMain"`
}

type statsDTO struct {
	Views  int64 `json:"views"`
	Phones int64 `json:"phones"`
	Chats  int64 `json:"chats"`
}

func toStatsDTO(s domain.Stats) statsDTO {
	return statsDTO{Views: s.Views, Phones: s.Phones, Chats: s.Chats}
}

type moderationInfoDTO struct {
	Moderator       string    `json:"moderator"`
	ModeratedAt     time.Time `json:"moderatedAt"`
	Notes           string    `json:"notes,omitempty"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
}

type revisionDTO struct {
	PreviousStatus domain.ItemStatus `json:"previousStatus"`
	NewStatus      domain.ItemStatus `json:"newStatus"`
	Notes          string            `json:"notes,omitempty"`
	RevisedBy      string            `json:"revisedBy"`
	RevisedAt      time.Time         `json:"revisedAt"`
}

type itemResponse struct {
	ID              string               `json:"id"`
	Owner           string               `json:"owner"`
	Category        string               `json:"category"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Condition       domain.ItemCondition `json:"condition"`
	Size            string               `json:"size,omitempty"`
	Brand           string               `json:"brand,omitempty"`
	Location        string               `json:"location,omitempty"`
	Type            domain.ItemType      `json:"type"`
	Price           *priceDTO            `json:"price,omitempty"`
	RentDetails     *rentDetailsDTO      `json:"rentDetails,omitempty"`
	ExchangeDetails *exchangeDetailsDTO  `json:"exchangeDetails,omitempty"`
	Images          []imageDTO           `json:"images"`
	Status          domain.ItemStatus    `json:"status"`
	Stats           statsDTO             `json:"stats"`
	Visibility      visibilityDTO        `json:"visibility"`
	ModerationInfo  *moderationInfoDTO   `json:"moderationInfo,omitempty"`
	RevisionHistory []revisionDTO        `json:"revisionHistory,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

func toItemResponse(i *domain.Item) itemResponse {
	out := itemResponse{
		ID:          i.ID.Hex(),
		Owner:       i.Owner,
		Category:    i.Category.Hex(),
		Title:       i.Title,
		Description: i.Description,
		Condition:   i.Condition,
		Size:        i.Size,
		Brand:       i.Brand,
		Location:    i.Location,
		Type:        i.Type(),
		Images:      make([]imageDTO, len(i.Images)),
		Status:      i.Status,
		Stats:       toStatsDTO(i.Stats),
		Visibility: visibilityDTO{
			EndDate:    i.Visibility.EndDate,
			IsFeatured: i.Visibility.IsFeatured,
			IsUrgent:   i.Visibility.IsUrgent,
		},
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
	if !i.Visibility.StartDate.IsZero() {
		start := i.Visibility.StartDate
		out.Visibility.StartDate = &start
	}

	fields := domain.FieldsOf(i.Offer)
	if p := fields.Price; p != nil {
		out.Price = &priceDTO{Amount: p.Amount, Currency: p.Currency, Negotiable: p.Negotiable}
	}
	if r := fields.RentDetails; r != nil {
		out.RentDetails = &rentDetailsDTO{Duration: r.Duration, PricePerUnit: r.PricePerUnit, AvailabilityDate: r.AvailabilityDate, Deposit: r.Deposit}
	}
	if e := fields.ExchangeDetails; e != nil {
		out.ExchangeDetails = &exchangeDetailsDTO{ExchangeFor: e.ExchangeFor, PreferredCategories: e.PreferredCategories}
	}

	for k, img := range i.Images {
		out.Images[k] = imageDTO{URL: img.URL, PublicID: img.PublicID, IsMain: img.IsMain}
	}
	if m := i.ModerationInfo; m != nil {
		out.ModerationInfo = &moderationInfoDTO{
			Moderator:       m.Moderator,
			ModeratedAt:     m.ModeratedAt,
			Notes:           m.Notes,
			RejectionReason: m.RejectionReason,
		}
	}
	for _, r := range i.RevisionHistory {
		out.RevisionHistory = append(out.RevisionHistory, revisionDTO(r))
	}
	return out
}

func toItemResponses(items []*domain.Item) []itemResponse {
	out := make([]itemResponse, len(items))
	for k, i := range items {
		out[k] = toItemResponse(i)
	}
	return out
}

type moderationRequest struct {
	Status          domain.ItemStatus `json:"status"`
	Notes           string            `json:"notes"`
	RejectionReason string            `json:"rejectionReason"`
	Notify          bool              `json:"notify"`
}

func (req moderationRequest) decision() domain.ModerationDecision {
	return domain.ModerationDecision{Status: req.Status, Notes: req.Notes, RejectionReason: req.RejectionReason}
}

type bulkModerationRequest struct {
	IDs []string `json:"ids"`
	moderationRequest
}

type bulkResultDTO struct {
	ID      string            `json:"id"`
	Success bool              `json:"success"`
	Status  domain.ItemStatus `json:"status,omitempty"`
	Error   string            `json:"error,omitempty"`
}

type categoryMetadataDTO struct {
	Color             string            `json:"color,omitempty"`
	DisplayAttributes map[string]string `json:"displayAttributes,omitempty"`
}

type categoryRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Parent      *string             `json:"parent"`
	IsActive    *bool               `json:"isActive"`
	Order       int                 `json:"order"`
	Metadata    categoryMetadataDTO `json:"metadata"`
	Icon        *assetDTO           `json:"icon"`
}

func (req categoryRequest) details() (domain.CategoryDetails, error) {
	d := domain.CategoryDetails{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
		Order:       req.Order,
		Metadata: domain.CategoryMetadata{
			Color:             req.Metadata.Color,
			DisplayAttributes: req.Metadata.DisplayAttributes,
		},
	}
	if req.Parent != nil && *req.Parent != "" {
		id, err := primitive.ObjectIDFromHex(*req.Parent)
		if err != nil {
			return d, invalidf("parent must be a valid id")
		}
		d.Parent = &id
	}
	return d, nil
}

type categoryResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Slug        string              `json:"slug"`
	Description string              `json:"description,omitempty"`
	Icon        *assetDTO           `json:"icon,omitempty"`
	Parent      *string             `json:"parent"`
	IsActive    bool                `json:"isActive"`
	Order       int                 `json:"order"`
	Metadata    categoryMetadataDTO `json:"metadata"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func toCategoryResponse(c *domain.Category) categoryResponse {
	out := categoryResponse{
		ID:          c.ID.Hex(),
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Icon:        toAssetDTO(c.Icon),
		IsActive:    c.IsActive,
		Order:       c.Order,
		Metadata:    categoryMetadataDTO{Color: c.Metadata.Color, DisplayAttributes: c.Metadata.DisplayAttributes},
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.Parent != nil {
		p := c.Parent.Hex()
		out.Parent = &p
	}
	return out
}

func toCategoryResponses(list []*domain.Category) []categoryResponse {
	out := make([]categoryResponse, len(list))
	for k, c := range list {
		out[k] = toCategoryResponse(c)
	}
	return out
}

type categoryNodeResponse struct {
	categoryResponse
	Children []categoryNodeResponse `json:"children"`
}

func toTree(nodes []*domain.CategoryNode) []categoryNodeResponse {
	out := make([]categoryNodeResponse, len(nodes))
	for k, n := range nodes {
		out[k] = categoryNodeResponse{categoryResponse: toCategoryResponse(n.Category), Children: toTree(n.Children)}
	}
	return out
}

type popularCategoryResponse struct {
	Category   categoryResponse `json:"category"`
	ItemsCount int64            `json:"itemsCount"`
	TotalViews int64            `json:"totalViews"`
	Items      []itemResponse   `json:"items,omitempty"`
}

func toPopular(list []domain.PopularCategory, withItems bool) []popularCategoryResponse {
	out := make([]popularCategoryResponse, len(list))
	for k, p := range list {
		out[k] = popularCategoryResponse{
			Category:   toCategoryResponse(p.Category),
			ItemsCount: p.ItemsCount,
			TotalViews: p.TotalViews,
		}
		if withItems {
			out[k].Items = toItemResponses(p.Items)
		}
	}
	return out
}

type dashboardResponse struct {
	TotalItems      int64                       `json:"totalItems"`
	ByStatus        map[domain.ItemStatus]int64 `json:"byStatus"`
	ByType          map[domain.ItemType]int64   `json:"byType"`
	Totals          statsDTO                    `json:"totals"`
	CreatedLast7d   int64                       `json:"createdLast7Days"`
	OldestPending   *time.Time                  `json:"oldestPending,omitempty"`
	CategoriesTotal int64                       `json:"categoriesTotal"`
	TopCategories   []popularCategoryResponse   `json:"topCategories"`
}

func toDashboard(d *domain.Dashboard) dashboardResponse {
	return dashboardResponse{
		TotalItems:      d.TotalItems,
		ByStatus:        d.ByStatus,
		ByType:          d.ByType,
		Totals:          toStatsDTO(d.Totals),
		CreatedLast7d:   d.CreatedLast7d,
		OldestPending:   d.OldestPending,
		CategoriesTotal: d.CategoriesTotal,
		TopCategories:   toPopular(d.TopCategories, false),
	}
}

type notificationResponse struct {
	ID        string                  `json:"id"`
	Type      domain.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Item      *string                 `json:"item,omitempty"`
	IsRead    bool                    `json:"isRead"`
	ReadAt    *time.Time              `json:"readAt,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}

func toNotificationResponse(n *domain.Notification) notificationResponse {
	out := notificationResponse{
		ID:        n.ID.Hex(),
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
	if n.Item != nil {
		id := n.Item.Hex()
		out.Item = &id
	}
	return out
}

type sendNotificationRequest struct {
	Recipient string  `json:"recipient"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Item      *string `json:"item"`
}

type contactDTO struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	City    string `json:"city,omitempty"`
	Address string `json:"address,omitempty"`
}

type profileRequest struct {
	FirstName   string        `json:"firstName"`
	LastName    string        `json:"lastName"`
	DisplayName string        `json:"displayName"`
	Gender      domain.Gender `json:"gender"`
	BirthDate   *time.Time    `json:"birthDate"`
	Bio         string        `json:"bio"`
	Contact     contactDTO    `json:"contact"`
}

func (req profileRequest) details() domain.ProfileDetails {
	return domain.ProfileDetails{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DisplayName: req.DisplayName,
		Gender:      req.Gender,
		BirthDate:   req.BirthDate,
		Bio:         req.Bio,
		Contact:     domain.Contact(req.Contact),
	}
}

type preferencesRequest struct {
	EmailNotifications *bool   `json:"emailNotifications"`
	PushNotifications  *bool   `json:"pushNotifications"`
	ShowPhone          *bool   `json:"showPhone"`
	Language           *string `json:"language"`
}

type socialRequest struct {
	Facebook  *bool `json:"facebook"`
	Instagram *bool `json:"instagram"`
	Telegram  *bool `json:"telegram"`
}

type preferencesDTO struct {
	EmailNotifications bool   `json:"emailNotifications"`
	PushNotifications  bool   `json:"pushNotifications"`
	ShowPhone          bool   `json:"showPhone"`
	Language           string `json:"language"`
}

type socialDTO struct {
	Facebook  bool `json:"facebook"`
	Instagram bool `json:"instagram"`
	Telegram  bool `json:"telegram"`
}

type profileResponse struct {
	UserID      string          `json:"userId"`
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName,omitempty"`
	DisplayName string          `json:"displayName"`
	Gender      domain.Gender   `json:"gender,omitempty"`
	BirthDate   *time.Time      `json:"birthDate,omitempty"`
	Bio         string          `json:"bio,omitempty"`
	Avatar      *assetDTO       `json:"avatar,omitempty"`
	Contact     contactDTO      `json:"contact"`
	Social      socialDTO       `json:"social"`
	Preferences *preferencesDTO `json:"preferences,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// toProfileResponse renders a profile. Preferences are only shown to the owner.
func toProfileResponse(p *domain.Profile, owner bool) profileResponse {
	out := profileResponse{
		UserID:      p.UserID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DisplayName: p.DisplayName,
		Gender:      p.Gender,
		BirthDate:   p.BirthDate,
		Bio:         p.Bio,
		Contact:     contactDTO(p.Contact),
		Social:      socialDTO(p.Social),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Avatar != nil {
		out.Avatar = toAssetDTO(*p.Avatar)
	}
	if owner {
		prefs := preferencesDTO(p.Preferences)
		out.Preferences = &prefs
	}
	return out
}
