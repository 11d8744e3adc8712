package domain

import "context"

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	FindByFilter(ctx context.Context, filter Filter) ([]*Listing, error)
}

// DraftRepository stores at most one draft per user. Delete of a missing
// draft is not an error.
type DraftRepository interface {
	Get(ctx context.Context, userID string) (*Draft, error)
	Save(ctx context.Context, draft *Draft) error
	Delete(ctx context.Context, userID string) error
}

// ListingCache is a best-effort read cache; a miss returns (nil, nil).
type ListingCache interface {
	GetListing(ctx context.Context, id string) (*Listing, error)
	SetListing(ctx context.Context, listing *Listing) error
	DeleteListing(ctx context.Context, id string) error
}

// Storage uploads a file under pathPrefix and returns its public URL.
type Storage interface {
	Upload(ctx context.Context, pathPrefix, fileName, contentType string, data []byte) (string, error)
}

// TextGenerator must fail closed: missing or malformed output is an error.
type TextGenerator interface {
	SuggestDetails(ctx context.Context, prompt DetailsPrompt) (*DetailsSuggestion, error)
	SuggestTags(ctx context.Context, title, description string) ([]string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Notifier tells listing owners about workflow outcomes.
type Notifier interface {
	ListingSubmitted(ctx context.Context, listing *Listing) error
	ListingModerated(ctx context.Context, listing *Listing) error
}
