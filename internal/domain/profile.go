package domain

import (
	"net/mail"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Gender string

const (
	GenderUnspecified Gender = ""
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderOther       Gender = "other"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderUnspecified, GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type Contact struct {
	Email   string
	Phone   string
	City    string
	Address string
}

// SocialConnections flags which social accounts the user linked.
type SocialConnections struct {
	Facebook  bool
	Instagram bool
	Telegram  bool
}

type Preferences struct {
	EmailNotifications bool
	PushNotifications  bool
	ShowPhone          bool
	Language           string
}

func DefaultPreferences() Preferences {
	return Preferences{EmailNotifications: true, PushNotifications: true, Language: "uk"}
}

// Profile is the public face of a user account, one per user.
type Profile struct {
	ID          primitive.ObjectID
	UserID      string
	FirstName   string
	LastName    string
	DisplayName string
	Gender      Gender
	BirthDate   *time.Time
	Bio         string
	Avatar      *Asset
	Contact     Contact
	Social      SocialConnections
	Preferences Preferences
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProfileDetails are the user-editable personal fields.
type ProfileDetails struct {
	FirstName   string
	LastName    string
	DisplayName string
	Gender      Gender
	BirthDate   *time.Time
	Bio         string
	Contact     Contact
}

func NewProfile(userID string, d ProfileDetails, now time.Time) (*Profile, error) {
	if userID == "" {
		return nil, invalid("user id is required")
	}
	p := &Profile{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Preferences: DefaultPreferences(),
		CreatedAt:   now,
	}
	if err := p.Apply(d, now); err != nil {
		return nil, err
	}
	return p, nil
}

// Apply validates and sets the personal fields.
func (p *Profile) Apply(d ProfileDetails, now time.Time) error {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.DisplayName = strings.TrimSpace(d.DisplayName)
	d.Bio = strings.TrimSpace(d.Bio)
	d.Contact.Email = strings.TrimSpace(d.Contact.Email)
	d.Contact.Phone = strings.TrimSpace(d.Contact.Phone)

	if d.FirstName == "" {
		return invalid("firstName is required")
	}
	if !d.Gender.IsValid() {
		return invalid("gender must be male, female or other")
	}
	if d.BirthDate != nil && d.BirthDate.After(now) {
		return invalid("birthDate cannot be in the future")
	}
	if d.Contact.Email != "" {
		if _, err := mail.ParseAddress(d.Contact.Email); err != nil {
			return invalid("contact.email is not a valid address")
		}
	}
	if len([]rune(d.Bio)) > 500 {
		return invalid("bio cannot exceed 500 characters")
	}
	if d.DisplayName == "" {
		d.DisplayName = strings.TrimSpace(d.FirstName + " " + d.LastName)
	}

	p.FirstName = d.FirstName
	p.LastName = d.LastName
	p.DisplayName = d.DisplayName
	p.Gender = d.Gender
	p.BirthDate = d.BirthDate
	p.Bio = d.Bio
	p.Contact = d.Contact
	p.UpdatedAt = now
	return nil
}

// PublicView returns a copy safe to show to other users. Email and address are
// never exposed; the phone only when the owner allows it.
func (p *Profile) PublicView() *Profile {
	cp := *p
	cp.Contact = Contact{City: p.Contact.City}
	if p.Preferences.ShowPhone {
		cp.Contact.Phone = p.Contact.Phone
	}
	cp.BirthDate = nil
	return &cp
}

// WantsEmail reports whether moderation emails should be sent to this profile.
func (p *Profile) WantsEmail() bool {
	return p != nil && p.Preferences.EmailNotifications && p.Contact.Email != ""
}
