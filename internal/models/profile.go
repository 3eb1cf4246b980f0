package models

// UnknownUser is the display name for a user without a profile.
const UnknownUser = "Unknown User"

// Profile is a user document keyed by the auth provider's uid.
type Profile struct {
	ID         string `gorm:"primaryKey;size:128" bson:"_id" json:"id"`
	Name       string `bson:"name" json:"name"`
	Email      string `gorm:"index" bson:"email" json:"email"`
	Profession string `bson:"profession" json:"profession,omitempty"`
	Phone      string `bson:"phone" json:"phone,omitempty"`
	Photo      string `bson:"photo" json:"photo,omitempty"`
	Facebook   string `bson:"facebook" json:"facebook,omitempty"`
	Instagram  string `bson:"instagram" json:"instagram,omitempty"`
	Twitter    string `bson:"twitter" json:"twitter,omitempty"`
	LinkedIn   string `bson:"linkedin" json:"linkedin,omitempty"`
}

// TableName overrides the default table name.
func (Profile) TableName() string { return "users" }

// DisplayName returns the profile name, or UnknownUser when it has none.
func (p Profile) DisplayName() string {
	if p.Name == "" {
		return UnknownUser
	}
	return p.Name
}

// Merge copies every non-empty field of patch onto p. The id never changes.
func (p *Profile) Merge(patch Profile) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.Name, patch.Name)
	set(&p.Email, patch.Email)
	set(&p.Profession, patch.Profession)
	set(&p.Phone, patch.Phone)
	set(&p.Photo, patch.Photo)
	set(&p.Facebook, patch.Facebook)
	set(&p.Instagram, patch.Instagram)
	set(&p.Twitter, patch.Twitter)
	set(&p.LinkedIn, patch.LinkedIn)
}
