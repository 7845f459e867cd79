package entities

import (
	"time"
)

// PostStatusPublish is the status every imported MP ends up with.
const PostStatusPublish = "publish"

type ContactType string

const (
	ContactTypeEmail ContactType = "email"
	ContactTypePhone ContactType = "phone"
	ContactTypeFax   ContactType = "fax"
	ContactTypeOther ContactType = "other"
)

type Contact struct {
	Label string      `json:"label"`
	Value string      `json:"value"`
	Type  ContactType `json:"type"`
}

type SocialNetwork string

const (
	SocialTwitter   SocialNetwork = "twitter"
	SocialFacebook  SocialNetwork = "facebook"
	SocialInstagram SocialNetwork = "instagram"
	SocialLinkedIn  SocialNetwork = "linkedin"
	SocialYouTube   SocialNetwork = "youtube"
	SocialWebsite   SocialNetwork = "website"
	SocialOther     SocialNetwork = "other"
)

type SocialLink struct {
	Network SocialNetwork `json:"network"`
	URL     string        `json:"url"`
}

// MPFields are the typed profile fields written alongside the post columns.
// Social and Biography are never produced by the importer and survive updates.
type MPFields struct {
	FirstName        string       `gorm:"size:255" json:"first_name"`
	LastName         string       `gorm:"size:255" json:"last_name"`
	FullName         string       `gorm:"size:512" json:"full_name"`
	Party            string       `gorm:"index;size:255" json:"party"`
	Constituency     string       `gorm:"index;size:255" json:"constituency"`
	Term             string       `gorm:"index;size:16" json:"term,omitempty"`
	BirthDate        string       `gorm:"size:64" json:"birth_date,omitempty"`
	Education        string       `gorm:"size:255" json:"education,omitempty"`
	PhotoURL         string       `gorm:"size:2048" json:"photo_url,omitempty"`
	SejmPhotoURL     string       `gorm:"size:2048" json:"sejm_photo_url,omitempty"`
	SejmPhotoMiniURL string       `gorm:"size:2048" json:"sejm_photo_mini_url,omitempty"`
	Contacts         []Contact    `gorm:"serializer:json" json:"contacts"`
	Social           []SocialLink `gorm:"serializer:json" json:"social,omitempty"`
	Biography        string       `gorm:"type:text" json:"biography,omitempty"`
	ExtraJSON        string       `gorm:"type:text" json:"extra_json,omitempty"`
}

// MP is a Member of Parliament imported from the upstream directory.
type MP struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	ExternalID        string `gorm:"uniqueIndex;size:64" json:"-"`
	Title             string `gorm:"index;size:512" json:"title"`
	Content           string `gorm:"type:text" json:"content"`
	Excerpt           string `gorm:"type:text" json:"excerpt"`
	Status            string `gorm:"size:20" json:"status"`
	MPFields          `gorm:"embedded"`
	FeaturedImagePath string    `gorm:"size:1024" json:"-"`
	FeaturedImageURL  string    `gorm:"size:2048" json:"featured_image_url,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (MP) TableName() string {
	return "mps"
}

// HasFeaturedImage reports whether a photo was already sideloaded.
func (m *MP) HasFeaturedImage() bool {
	return m.FeaturedImagePath != ""
}

// MPFilter narrows MP listings. Empty fields match everything.
type MPFilter struct {
	Party        string
	Constituency string
	Term         string
	Search       string
	Limit        int
	Offset       int
}
