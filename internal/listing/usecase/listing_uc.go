package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ListingUsecase struct {
	repo      domain.ListingRepository
	cache     domain.ListingCache
	publisher domain.EventPublisher
	notifier  domain.Notifier
	logger    *logger.Logger
	now       func() time.Time
}

func NewListingUsecase(
	repo domain.ListingRepository,
	cache domain.ListingCache,
	publisher domain.EventPublisher,
	notifier domain.Notifier,
	log *logger.Logger,
) *ListingUsecase {
	return &ListingUsecase{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		notifier:  notifier,
		logger:    log,
		now:       time.Now,
	}
}

// GetListing reads through the cache. Cache failures fall back to the
// repository.
func (uc *ListingUsecase) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	if uc.cache != nil {
		cached, err := uc.cache.GetListing(ctx, id)
		if err != nil {
			uc.logger.Warn("ListingUsecase.GetListing: cache read failed", "listing_id", id, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	listing, err := uc.find(ctx, "GetListing", id)
	if err != nil {
		return nil, err
	}
	cacheListing(ctx, uc.cache, uc.logger, listing)
	return listing, nil
}

// ListMine returns the caller's listings, newest first.
func (uc *ListingUsecase) ListMine(ctx context.Context, user *domain.User, page, limit int64) ([]*domain.Listing, error) {
	if user == nil || user.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	listings, err := uc.repo.FindByFilter(ctx, domain.Filter{UserID: user.ID, Page: page, Limit: limit})
	if err != nil {
		uc.logger.Error("ListingUsecase.ListMine: failed to list listings", "user_id", user.ID, "error", err)
		return nil, err
	}
	return listings, nil
}

// DeleteListing is allowed to the owner and to admins.
func (uc *ListingUsecase) DeleteListing(ctx context.Context, user *domain.User, id string) error {
	if user == nil || user.ID == "" {
		return domain.ErrUnauthenticated
	}
	uc.logger.Info("ListingUsecase.DeleteListing: deleting listing", "listing_id", id, "user_id", user.ID)

	listing, err := uc.find(ctx, "DeleteListing", id)
	if err != nil {
		return err
	}
	if listing.UserID != user.ID && !user.IsAdmin() {
		uc.logger.Warn("ListingUsecase.DeleteListing: forbidden to delete listing",
			"listing_id", id, "listing_owner_id", listing.UserID, "user_id", user.ID)
		return domain.ErrForbidden
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		uc.logger.Error("ListingUsecase.DeleteListing: failed to delete listing in repo", "listing_id", id, "error", err)
		return err
	}
	if uc.cache != nil {
		if err := uc.cache.DeleteListing(ctx, id); err != nil {
			uc.logger.Warn("ListingUsecase.DeleteListing: failed to evict cache", "listing_id", id, "error", err)
		}
	}
	publish(ctx, uc.publisher, uc.logger, SubjectListingDeleted, listing, uc.now())
	return nil
}

// Moderate sets the review outcome of a listing. Admin only.
func (uc *ListingUsecase) Moderate(ctx context.Context, user *domain.User, id string, status domain.ListingStatus, verified bool) (*domain.Listing, error) {
	if user == nil || user.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !user.IsAdmin() {
		uc.logger.Warn("ListingUsecase.Moderate: non-admin moderation attempt", "listing_id", id, "user_id", user.ID)
		return nil, domain.ErrForbidden
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidListingData
	}

	listing, err := uc.find(ctx, "Moderate", id)
	if err != nil {
		return nil, err
	}
	listing.Status = status
	listing.Verified = verified
	listing.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, listing); err != nil {
		uc.logger.Error("ListingUsecase.Moderate: failed to update listing status in repo", "listing_id", id, "error", err)
		return nil, err
	}
	uc.logger.Info("ListingUsecase.Moderate: listing moderated", "listing_id", id, "status", string(status), "verified", verified)

	cacheListing(ctx, uc.cache, uc.logger, listing)
	publish(ctx, uc.publisher, uc.logger, SubjectListingStatusUpdated, listing, listing.UpdatedAt)
	if uc.notifier != nil {
		if err := uc.notifier.ListingModerated(ctx, listing); err != nil {
			uc.logger.Warn("ListingUsecase.Moderate: owner not notified", "listing_id", id, "error", err)
		}
	}
	return listing, nil
}

func (uc *ListingUsecase) find(ctx context.Context, op, id string) (*domain.Listing, error) {
	listing, err := uc.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrListingNotFound) || (err == nil && listing == nil) {
		uc.logger.Warn("ListingUsecase."+op+": listing not found by ID", "listing_id", id)
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		uc.logger.Error("ListingUsecase."+op+": failed to find listing", "listing_id", id, "error", err)
		return nil, err
	}
	return listing, nil
}
