package mongodb

import (
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type listingDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	UserID      string               `bson:"user_id"`
	Title       string               `bson:"title"`
	Description string               `bson:"description"`
	Price       float64              `bson:"price"`
	Category    string               `bson:"category"`
	Subcategory string               `bson:"subcategory"`
	Location    string               `bson:"location"`
	Images      []string             `bson:"images,omitempty"`
	Image       string               `bson:"image,omitempty"`
	Tags        []string             `bson:"tags,omitempty"`
	Status      domain.ListingStatus `bson:"status"`
	Verified    bool                 `bson:"verified"`
	Attributes  map[string]string    `bson:"attributes,omitempty"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

// toListingDocument leaves the ObjectID zero when the listing has no ID yet,
// the insert then generates one.
func toListingDocument(l *domain.Listing) (*listingDocument, error) {
	docID := primitive.NilObjectID
	if l.ID != "" {
		var err error
		docID, err = primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("toListingDocument: invalid ID format '%s': %w", l.ID, err)
		}
	}

	return &listingDocument{
		ID:          docID,
		UserID:      l.UserID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Category:    l.Category,
		Subcategory: l.Subcategory,
		Location:    l.Location,
		Images:      l.Images,
		Image:       l.Image,
		Tags:        l.Tags,
		Status:      l.Status,
		Verified:    l.Verified,
		Attributes:  l.Attributes,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}, nil
}

func toDomainListing(d *listingDocument) *domain.Listing {
	if d == nil {
		return nil
	}
	return &domain.Listing{
		ID:          d.ID.Hex(),
		UserID:      d.UserID,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Category:    d.Category,
		Subcategory: d.Subcategory,
		Location:    d.Location,
		Images:      d.Images,
		Image:       d.Image,
		Tags:        d.Tags,
		Status:      d.Status,
		Verified:    d.Verified,
		Attributes:  d.Attributes,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDomainListing(doc))
	}
	return out
}
