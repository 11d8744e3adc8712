package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/draft"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/form"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/imaging"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/metrics"
	"github.com/stretchr/testify/mock"
)

type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	args := m.Called(ctx, l)
	if args.Error(0) == nil && l.ID == "" {
		l.ID = "listing-new"
	}
	return args.Error(0)
}

func (m *MockListingRepository) Update(ctx context.Context, l *domain.Listing) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockListingRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*domain.Listing)
	return l, args.Error(1)
}

func (m *MockListingRepository) FindByFilter(ctx context.Context, f domain.Filter) ([]*domain.Listing, error) {
	args := m.Called(ctx, f)
	ls, _ := args.Get(0).([]*domain.Listing)
	return ls, args.Error(1)
}

type MockListingCache struct {
	mock.Mock
}

func (m *MockListingCache) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*domain.Listing)
	return l, args.Error(1)
}

func (m *MockListingCache) SetListing(ctx context.Context, l *domain.Listing) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockListingCache) DeleteListing(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, prefix, name, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, prefix, name, contentType, data)
	return args.String(0), args.Error(1)
}

type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) SuggestDetails(ctx context.Context, p domain.DetailsPrompt) (*domain.DetailsSuggestion, error) {
	args := m.Called(ctx, p)
	s, _ := args.Get(0).(*domain.DetailsSuggestion)
	return s, args.Error(1)
}

func (m *MockTextGenerator) SuggestTags(ctx context.Context, title, description string) ([]string, error) {
	args := m.Called(ctx, title, description)
	tags, _ := args.Get(0).([]string)
	return tags, args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	return m.Called(ctx, subject, data).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) ListingSubmitted(ctx context.Context, l *domain.Listing) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockNotifier) ListingModerated(ctx context.Context, l *domain.Listing) error {
	return m.Called(ctx, l).Error(0)
}

type MockDraftRepository struct {
	mock.Mock
}

func (m *MockDraftRepository) Get(ctx context.Context, userID string) (*domain.Draft, error) {
	args := m.Called(ctx, userID)
	d, _ := args.Get(0).(*domain.Draft)
	return d, args.Error(1)
}

func (m *MockDraftRepository) Save(ctx context.Context, d *domain.Draft) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDraftRepository) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockImageProcessor struct {
	mock.Mock
}

func (m *MockImageProcessor) AddFiles(ctx context.Context, existing int, files []imaging.Upload) (*imaging.Result, error) {
	args := m.Called(ctx, existing, files)
	r, _ := args.Get(0).(*imaging.Result)
	return r, args.Error(1)
}

var (
	owner = &domain.User{ID: "user-1", Role: domain.RoleUser}
	other = &domain.User{ID: "user-2", Role: domain.RoleUser}
	admin = &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
)

// testDraftDelay keeps autosave out of the way of usecase tests.
const testDraftDelay = time.Hour

func newTestDrafts(repo domain.DraftRepository) *draft.Manager {
	return draft.NewManager(repo, testDraftDelay, logger.NewNop(), nil)
}

func newTestMetrics() *metrics.MetricsManager {
	return metrics.NewMetricsManager("test")
}

func attachment(name string) form.Attachment {
	return form.Attachment{Name: name, ContentType: "image/jpeg", Data: []byte(name), Width: 10, Height: 10}
}

// completeCreateState is a Vehicles ad that passes every step.
func completeCreateState(images ...form.Attachment) form.State {
	s := form.NewCreateState()
	s = form.Reduce(s, form.SetFields{Values: map[string]string{
		form.FieldCategory:    form.CategoryVehicles,
		form.FieldSubcategory: "Cars",
		form.FieldLocation:    "Accra",
		form.FieldTitle:       "Toyota Corolla 2015",
		form.FieldDescription: "Clean, one owner",
		form.FieldCondition:   "Used",
		form.FieldPrice:       "12,500",
	}})
	s = form.Reduce(s, form.SetTerms{Accepted: true})
	s = form.Reduce(s, form.AddTag{Tag: "sedan"})
	if len(images) > 0 {
		s = form.Reduce(s, form.AppendImages{Images: images})
	}
	s.Step = form.LastStep
	return s
}

func existingListing() *domain.Listing {
	return &domain.Listing{
		ID:          "listing-1",
		UserID:      owner.ID,
		Title:       "Old title",
		Description: "Old description",
		Price:       100,
		Category:    form.CategoryVehicles,
		Subcategory: "Cars",
		Location:    "Kumasi",
		Images:      []string{"https://cdn/a.jpg", "https://cdn/b.jpg"},
		Image:       "https://cdn/a.jpg",
		Status:      domain.StatusActive,
		Verified:    true,
		Attributes:  map[string]string{form.FieldCondition: "Used"},
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// memDraftRepository is a DraftRepository backed by a map.
type memDraftRepository struct {
	mu     sync.Mutex
	byUser map[string]*domain.Draft
}

func newMemDraftRepository() *memDraftRepository {
	return &memDraftRepository{byUser: make(map[string]*domain.Draft)}
}

func (r *memDraftRepository) Get(_ context.Context, userID string) (*domain.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byUser[userID]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	return d, nil
}

func (r *memDraftRepository) Save(_ context.Context, d *domain.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[d.UserID] = d
	return nil
}

func (r *memDraftRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userID)
	return nil
}

func (r *memDraftRepository) Has(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byUser[userID]
	return ok
}

// slowNotifier holds the submit tail open long enough for a debounced
// write to fire.
type slowNotifier struct {
	delay time.Duration
}

func (n slowNotifier) ListingSubmitted(context.Context, *domain.Listing) error {
	time.Sleep(n.delay)
	return nil
}

func (n slowNotifier) ListingModerated(context.Context, *domain.Listing) error { return nil }
