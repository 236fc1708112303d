package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfile(t *testing.T) {
	p, err := NewProfile("user-1", ProfileDetails{
		FirstName: " Olena ",
		LastName:  "Koval",
		Contact:   Contact{Email: "olena@example.com", Phone: "+380501112233", City: "Lviv", Address: "Main st 1"},
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, "Olena", p.FirstName)
	assert.Equal(t, "Olena Koval", p.DisplayName)
	assert.Equal(t, DefaultPreferences(), p.Preferences)
	assert.True(t, p.WantsEmail())
}

func TestProfile_ApplyValidation(t *testing.T) {
	future := testNow.Add(24 * time.Hour)
	cases := map[string]ProfileDetails{
		"missing first name": {},
		"bad gender":         {FirstName: "A", Gender: "robot"},
		"future birth date":  {FirstName: "A", BirthDate: &future},
		"bad email":          {FirstName: "A", Contact: Contact{Email: "not-an-email"}},
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewProfile("u", d, testNow)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestProfile_PublicViewHidesContacts(t *testing.T) {
	birth := testNow.AddDate(-30, 0, 0)
	p, err := NewProfile("user-1", ProfileDetails{
		FirstName: "Olena",
		BirthDate: &birth,
		Contact:   Contact{Email: "olena@example.com", Phone: "+380501112233", City: "Lviv", Address: "Main st 1"},
	}, testNow)
	require.NoError(t, err)

	pub := p.PublicView()
	assert.Equal(t, Contact{City: "Lviv"}, pub.Contact)
	assert.Nil(t, pub.BirthDate)
	assert.Equal(t, "olena@example.com", p.Contact.Email, "original untouched")

	p.Preferences.ShowPhone = true
	assert.Equal(t, "+380501112233", p.PublicView().Contact.Phone)
}

func TestProfile_WantsEmail(t *testing.T) {
	var nilProfile *Profile
	assert.False(t, nilProfile.WantsEmail())

	p := &Profile{Preferences: Preferences{EmailNotifications: true}}
	assert.False(t, p.WantsEmail(), "no address")
	p.Contact.Email = "a@b.c"
	assert.True(t, p.WantsEmail())
	p.Preferences.EmailNotifications = false
	assert.False(t, p.WantsEmail())
}
