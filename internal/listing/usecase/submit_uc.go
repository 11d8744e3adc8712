package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/draft"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/form"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("adpost-service/usecase")

// MyListingsPath is where clients go after a successful submission.
const MyListingsPath = "/my-listings"

type SubmitResult struct {
	Listing    *domain.Listing `json:"listing"`
	RedirectTo string          `json:"redirect_to"`
}

type SubmitUsecase struct {
	repo      domain.ListingRepository
	cache     domain.ListingCache
	photos    *PhotoUsecase
	drafts    *draft.Manager
	publisher domain.EventPublisher
	notifier  domain.Notifier
	logger    *logger.Logger
	metrics   *metrics.MetricsManager
	now       func() time.Time
}

func NewSubmitUsecase(
	repo domain.ListingRepository,
	cache domain.ListingCache,
	photos *PhotoUsecase,
	drafts *draft.Manager,
	publisher domain.EventPublisher,
	notifier domain.Notifier,
	log *logger.Logger,
	m *metrics.MetricsManager,
) *SubmitUsecase {
	return &SubmitUsecase{
		repo:      repo,
		cache:     cache,
		photos:    photos,
		drafts:    drafts,
		publisher: publisher,
		notifier:  notifier,
		logger:    log,
		metrics:   m,
		now:       time.Now,
	}
}

// Submit validates the whole form, uploads pending images and persists the
// listing. Nothing is written when validation or any upload fails.
func (uc *SubmitUsecase) Submit(ctx context.Context, user *domain.User, s form.State) (*SubmitResult, error) {
	if user == nil || user.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	ctx, span := tracer.Start(ctx, "SubmitUsecase.Submit", oteltrace.WithAttributes(
		attribute.String("mode", string(s.Mode)),
		attribute.String("user_id", user.ID),
		attribute.Int("images", len(s.Images)),
	))
	defer span.End()

	if errs := form.NewSchema(s.Mode).Validate(s); errs != nil {
		uc.logger.Info("SubmitUsecase.Submit: form is invalid", "user_id", user.ID, "fields", len(errs))
		return nil, errs
	}

	var (
		listing *domain.Listing
		err     error
	)
	switch s.Mode {
	case form.ModeCreate:
		listing, err = uc.create(ctx, user, s)
	case form.ModeEdit:
		listing, err = uc.update(ctx, user, s)
	default:
		err = domain.ErrInvalidListingData
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("listing_id", listing.ID))
	uc.metrics.ListingsSubmitted.WithLabelValues(string(s.Mode)).Inc()
	return &SubmitResult{Listing: listing, RedirectTo: MyListingsPath}, nil
}

func (uc *SubmitUsecase) create(ctx context.Context, user *domain.User, s form.State) (*domain.Listing, error) {
	if len(s.Images) == 0 {
		return nil, domain.ErrImagesRequired
	}
	urls, err := uc.photos.UploadAll(ctx, user.ID, s.Images)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	listing := &domain.Listing{
		UserID:    user.ID,
		Status:    domain.StatusPending,
		Verified:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyForm(listing, s); err != nil {
		return nil, err
	}
	setImages(listing, urls)

	if err := uc.repo.Create(ctx, listing); err != nil {
		uc.logger.Error("SubmitUsecase.create: failed to create listing", "user_id", user.ID, "error", err)
		return nil, err
	}
	uc.logger.Info("SubmitUsecase.create: listing created", "listing_id", listing.ID, "user_id", user.ID)

	if err := uc.drafts.Discard(ctx, user.ID); err != nil {
		uc.logger.Warn("SubmitUsecase.create: draft left behind", "user_id", user.ID, "error", err)
	}
	publish(ctx, uc.publisher, uc.logger, SubjectListingCreated, listing, now)
	cacheListing(ctx, uc.cache, uc.logger, listing)
	if uc.notifier != nil {
		if err := uc.notifier.ListingSubmitted(ctx, listing); err != nil {
			uc.logger.Warn("SubmitUsecase.create: owner not notified", "listing_id", listing.ID, "error", err)
		}
	}
	return listing, nil
}

func (uc *SubmitUsecase) update(ctx context.Context, user *domain.User, s form.State) (*domain.Listing, error) {
	existing, err := uc.repo.FindByID(ctx, s.ListingID)
	if errors.Is(err, domain.ErrListingNotFound) || (err == nil && existing == nil) {
		uc.logger.Warn("SubmitUsecase.update: listing not found by ID", "listing_id", s.ListingID)
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		uc.logger.Error("SubmitUsecase.update: failed to find listing", "listing_id", s.ListingID, "error", err)
		return nil, err
	}
	// ownership is checked before any upload so a rejected edit leaves no files
	if existing.UserID != user.ID && !user.IsAdmin() {
		uc.logger.Warn("SubmitUsecase.update: forbidden to update listing",
			"listing_id", existing.ID, "listing_owner_id", existing.UserID, "user_id", user.ID)
		return nil, domain.ErrForbidden
	}

	urls, err := uc.photos.UploadAll(ctx, existing.UserID, s.Images)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if err := applyForm(&updated, s); err != nil {
		return nil, err
	}
	if len(urls) > 0 {
		setImages(&updated, urls)
	} else {
		setImages(&updated, s.ExistingImages)
	}
	if !user.IsAdmin() {
		updated.Status = domain.StatusPending
		updated.Verified = false
	}
	updated.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, &updated); err != nil {
		uc.logger.Error("SubmitUsecase.update: failed to update listing in repo", "listing_id", updated.ID, "error", err)
		return nil, err
	}
	uc.logger.Info("SubmitUsecase.update: listing updated", "listing_id", updated.ID, "user_id", user.ID, "status", string(updated.Status))

	publish(ctx, uc.publisher, uc.logger, SubjectListingUpdated, &updated, updated.UpdatedAt)
	cacheListing(ctx, uc.cache, uc.logger, &updated)
	return &updated, nil
}

// applyForm copies the form fields onto l. Attributes of categories other
// than the active one are not carried over.
func applyForm(l *domain.Listing, s form.State) error {
	price, err := form.ParseNumber(s.Value(form.FieldPrice))
	if err != nil {
		return domain.ErrInvalidListingData
	}
	l.Title = s.Value(form.FieldTitle)
	l.Description = s.Value(form.FieldDescription)
	l.Price = price
	l.Category = s.Value(form.FieldCategory)
	l.Subcategory = s.Value(form.FieldSubcategory)
	l.Location = s.Value(form.FieldLocation)
	l.Tags = append([]string(nil), s.Tags...)

	attrs := make(map[string]string)
	for _, f := range form.AttributeFields(l.Category) {
		if v := s.Value(f); v != "" {
			attrs[f] = v
		}
	}
	l.Attributes = attrs
	return nil
}

func setImages(l *domain.Listing, urls []string) {
	l.Images = append([]string(nil), urls...)
	l.Image = ""
	if len(l.Images) > 0 {
		l.Image = l.Images[0]
	}
}
