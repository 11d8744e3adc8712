package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/form"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/imaging"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/usecase"
)

type errorResponse struct {
	Error    string            `json:"error"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

type listingResponse struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Price       float64           `json:"price"`
	Category    string            `json:"category"`
	Subcategory string            `json:"subcategory"`
	Location    string            `json:"location"`
	Images      []string          `json:"images"`
	Image       string            `json:"image,omitempty"`
	Tags        []string          `json:"tags"`
	Status      string            `json:"status"`
	Verified    bool              `json:"verified"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func toListingResponse(l *domain.Listing) listingResponse {
	return listingResponse{
		ID:          l.ID,
		UserID:      l.UserID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Category:    l.Category,
		Subcategory: l.Subcategory,
		Location:    l.Location,
		Images:      nonNil(l.Images),
		Image:       l.Image,
		Tags:        nonNil(l.Tags),
		Status:      string(l.Status),
		Verified:    l.Verified,
		Attributes:  l.Attributes,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type submitResponse struct {
	Listing    listingResponse `json:"listing"`
	RedirectTo string          `json:"redirect_to"`
}

type filesResponse struct {
	Session  usecase.SessionView `json:"session"`
	Rejected []imaging.Rejection `json:"rejected"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var verrs form.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidListingData), errors.Is(err, domain.ErrImagesRequired):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrDraftNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrImageBatch),
		errors.Is(err, domain.ErrUploadFailed),
		errors.Is(err, domain.ErrSuggestionFailed),
		errors.Is(err, domain.ErrMalformedSuggestion):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorBody(err error, status int) errorResponse {
	var verrs form.ValidationErrors
	if errors.As(err, &verrs) {
		return errorResponse{Error: "validation failed", Fields: verrs}
	}
	if status == http.StatusInternalServerError {
		return errorResponse{Error: "internal error"}
	}
	return errorResponse{Error: err.Error()}
}
