package domain

import "time"

type ListingStatus string

const (
	StatusPending  ListingStatus = "pending"
	StatusActive   ListingStatus = "active"
	StatusDeclined ListingStatus = "declined"
)

// Valid reports whether s is one of the moderation states.
func (s ListingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusDeclined:
		return true
	}
	return false
}

type Listing struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Price       float64
	Category    string
	Subcategory string
	Location    string
	Images      []string // ordered, Images[0] is the cover
	Image       string   // primary image URL, always Images[0]
	Tags        []string
	Status      ListingStatus
	Verified    bool
	Attributes  map[string]string // category specific fields
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter for owner listings and moderation queues.
type Filter struct {
	UserID   string
	Status   ListingStatus
	Category string
	Page     int64
	Limit    int64
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the authenticated identity taken from the bearer token.
type User struct {
	ID          string
	DisplayName string
	Role        string
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Draft is the durable snapshot of an unsubmitted ad. It never carries
// image binaries.
type Draft struct {
	UserID        string            `json:"user_id"`
	Step          int               `json:"step"`
	Values        map[string]string `json:"values"`
	Tags          []string          `json:"tags,omitempty"`
	TermsAccepted bool              `json:"terms_accepted"`
	SavedAt       time.Time         `json:"saved_at"`
}

// DetailsPrompt is what the text generator receives for title/description
// suggestions.
type DetailsPrompt struct {
	Keywords    string
	Category    string
	Subcategory string
}

type DetailsSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// MaxSuggestedTags caps the tag list returned by the generator.
const MaxSuggestedTags = 10
