package usecase

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
)

const (
	SubjectListingCreated       = "listing.created"
	SubjectListingUpdated       = "listing.updated"
	SubjectListingDeleted       = "listing.deleted"
	SubjectListingStatusUpdated = "listing.status.updated"
)

// ListingEvent is the payload published for every listing lifecycle change.
type ListingEvent struct {
	ListingID  string    `json:"listing_id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title,omitempty"`
	Category   string    `json:"category,omitempty"`
	Status     string    `json:"status,omitempty"`
	Verified   bool      `json:"verified"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newListingEvent(l *domain.Listing, at time.Time) ListingEvent {
	return ListingEvent{
		ListingID:  l.ID,
		UserID:     l.UserID,
		Title:      l.Title,
		Category:   l.Category,
		Status:     string(l.Status),
		Verified:   l.Verified,
		OccurredAt: at,
	}
}

// publish never fails the caller, the listing is already persisted.
func publish(ctx context.Context, p domain.EventPublisher, log *logger.Logger, subject string, l *domain.Listing, at time.Time) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, newListingEvent(l, at)); err != nil {
		log.Warn("usecase.publish: event not delivered", "subject", subject, "listing_id", l.ID, "error", err)
	}
}

func cacheListing(ctx context.Context, c domain.ListingCache, log *logger.Logger, l *domain.Listing) {
	if c == nil {
		return
	}
	if err := c.SetListing(ctx, l); err != nil {
		log.Warn("usecase.cacheListing: failed to cache listing", "listing_id", l.ID, "error", err)
	}
}
