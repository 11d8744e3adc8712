package form

import (
	"strconv"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

const (
	FirstStep = 1
	LastStep  = 3
	MaxImages = 10
)

// Attachment is a compressed image that has not been uploaded yet.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// State is the whole posting form. It is treated as a value: Reduce returns
// a new State and never mutates its input.
type State struct {
	Mode           Mode
	Step           int
	Values         map[string]string
	Tags           []string
	Images         []Attachment // pending uploads, Images[0] is the cover
	ExistingImages []string     // already uploaded URLs (edit mode)
	TermsAccepted  bool
	ListingID      string
}

func NewCreateState() State {
	return State{
		Mode:   ModeCreate,
		Step:   FirstStep,
		Values: map[string]string{},
	}
}

// NewEditState hydrates the form from a persisted listing.
func NewEditState(l *domain.Listing) State {
	values := map[string]string{
		FieldTitle:       l.Title,
		FieldDescription: l.Description,
		FieldPrice:       strconv.FormatFloat(l.Price, 'f', -1, 64),
		FieldLocation:    l.Location,
		FieldCategory:    l.Category,
		FieldSubcategory: l.Subcategory,
	}
	for k, v := range l.Attributes {
		if IsKnownField(k) {
			values[k] = v
		}
	}
	return State{
		Mode:           ModeEdit,
		Step:           FirstStep,
		Values:         values,
		Tags:           append([]string(nil), l.Tags...),
		ExistingImages: append([]string(nil), l.Images...),
		ListingID:      l.ID,
	}
}

// Value returns the trimmed value of a field.
func (s State) Value(name string) string {
	return strings.TrimSpace(s.Values[name])
}

// Clone copies maps and slices. Attachment bytes are shared, they are never
// written after compression.
func (s State) Clone() State {
	out := s
	out.Values = make(map[string]string, len(s.Values))
	for k, v := range s.Values {
		out.Values[k] = v
	}
	out.Tags = append([]string(nil), s.Tags...)
	out.Images = append([]Attachment(nil), s.Images...)
	out.ExistingImages = append([]string(nil), s.ExistingImages...)
	return out
}

// Snapshot produces the durable draft for userID. Image data is left out.
func (s State) Snapshot(userID string, now time.Time) *domain.Draft {
	c := s.Clone()
	return &domain.Draft{
		UserID:        userID,
		Step:          c.Step,
		Values:        c.Values,
		Tags:          c.Tags,
		TermsAccepted: c.TermsAccepted,
		SavedAt:       now,
	}
}

// HasImages reports whether the authoritative image list is non-empty.
func (s State) HasImages() bool {
	if len(s.Images) > 0 {
		return true
	}
	return s.Mode == ModeEdit && len(s.ExistingImages) > 0
}
