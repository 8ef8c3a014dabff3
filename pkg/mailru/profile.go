package mailru

import (
	"encoding/json"
	"errors"
)

// Provider is the stable provider identifier attached to every profile.
const Provider = "mailru"

// Gender labels produced from the provider's binary sex flag.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Name holds the structured name components of a profile.
type Name struct {
	FamilyName string `json:"family_name,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
}

// Entry wraps a single profile value such as an email address or a photo URL.
type Entry struct {
	Value string `json:"value"`
}

// Profile is the canonical user profile produced from the provider-native
// payload. Emails and Photos are nil when the corresponding raw field is
// empty; they are never empty non-nil slices.
type Profile struct {
	Provider    string  `json:"provider"`
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name,omitempty"`
	Name        Name    `json:"name"`
	Gender      string  `json:"gender"`
	ProfileURL  string  `json:"profile_url,omitempty"`
	Emails      []Entry `json:"emails,omitempty"`
	Photos      []Entry `json:"photos,omitempty"`

	// Diagnostics: the provider payload as received and as decoded.
	Raw    json.RawMessage `json:"-"`
	Parsed *RawProfile     `json:"-"`
}

// flexString decodes values the provider emits either as JSON strings or as
// bare numbers (uid and sex change shape between API versions).
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// RawProfile mirrors the provider-native profile object returned by the
// users.getInfo REST method. Only the fields the normalization consumes are
// declared; everything else stays in Profile.Raw.
type RawProfile struct {
	UID       flexString `json:"uid"`
	Nick      string     `json:"nick"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Sex       flexString `json:"sex"`
	Link      string     `json:"link"`
	Email     string     `json:"email"`
	Pic       string     `json:"pic"`
}

// Normalize maps a provider-native profile into its canonical form. It is
// side-effect-free; malformed input is impossible at this point because the
// payload is already decoded.
func (r RawProfile) Normalize() *Profile {
	p := &Profile{
		Provider:    Provider,
		ID:          string(r.UID),
		DisplayName: r.Nick,
		Name: Name{
			FamilyName: r.LastName,
			GivenName:  r.FirstName,
		},
		Gender:     genderFromSex(r.Sex),
		ProfileURL: r.Link,
	}
	if r.Email != "" {
		p.Emails = []Entry{{Value: r.Email}}
	}
	if r.Pic != "" {
		p.Photos = []Entry{{Value: r.Pic}}
	}
	return p
}

// genderFromSex maps the provider's binary sex flag: zero (or absent) is
// male, anything else is female. This is the provider's fixed convention,
// not a general gender model.
func genderFromSex(sex flexString) string {
	switch sex {
	case "", "0":
		return GenderMale
	default:
		return GenderFemale
	}
}

// ParseProfile decodes a JSON-encoded provider profile object and normalizes
// it. The returned Profile carries the original payload and the decoded
// intermediate for diagnostics.
func ParseProfile(data []byte) (*Profile, error) {
	var raw RawProfile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrMalformedProfile, err)
	}
	p := raw.Normalize()
	p.Raw = json.RawMessage(data)
	p.Parsed = &raw
	return p, nil
}
