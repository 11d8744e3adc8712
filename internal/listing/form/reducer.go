package form

import (
	"strings"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
)

// Event is one user or system action applied to the form through Reduce.
type Event interface {
	event()
}

type SetField struct {
	Name  string
	Value string
}

type SetFields struct {
	Values map[string]string
}

type SetTerms struct {
	Accepted bool
}

type AddTag struct {
	Tag string
}

type RemoveTag struct {
	Tag string
}

// ApplyDetails merges a title/description suggestion.
type ApplyDetails struct {
	Title       string
	Description string
}

type AppendImages struct {
	Images []Attachment
}

type RemoveImage struct {
	Index int
}

// ReorderImages moves the image at From so that it ends up at To.
type ReorderImages struct {
	From int
	To   int
}

type GoToStep struct {
	Step int
}

type RestoreDraft struct {
	Draft domain.Draft
}

// Reset empties a create form back to step 1.
type Reset struct{}

func (SetField) event()      {}
func (SetFields) event()     {}
func (SetTerms) event()      {}
func (AddTag) event()        {}
func (RemoveTag) event()     {}
func (ApplyDetails) event()  {}
func (AppendImages) event()  {}
func (RemoveImage) event()   {}
func (ReorderImages) event() {}
func (GoToStep) event()      {}
func (RestoreDraft) event()  {}
func (Reset) event()         {}

// Reduce applies e to s and returns the resulting state. Unknown fields and
// out-of-range indexes leave the state as it was.
func Reduce(s State, e Event) State {
	next := s.Clone()

	switch ev := e.(type) {
	case SetField:
		if IsKnownField(ev.Name) {
			next.Values[ev.Name] = ev.Value
		}
	case SetFields:
		for name, value := range ev.Values {
			if IsKnownField(name) {
				next.Values[name] = value
			}
		}
	case SetTerms:
		next.TermsAccepted = ev.Accepted
	case AddTag:
		next.Tags = addTag(next.Tags, ev.Tag)
	case RemoveTag:
		next.Tags = removeTag(next.Tags, ev.Tag)
	case ApplyDetails:
		next.Values[FieldTitle] = ev.Title
		next.Values[FieldDescription] = ev.Description
	case AppendImages:
		next.Images = append(next.Images, ev.Images...)
		if len(next.Images) > MaxImages {
			next.Images = next.Images[:MaxImages]
		}
	case RemoveImage:
		if ev.Index >= 0 && ev.Index < len(next.Images) {
			next.Images = append(next.Images[:ev.Index], next.Images[ev.Index+1:]...)
		}
	case ReorderImages:
		next.Images = moveImage(next.Images, ev.From, ev.To)
	case GoToStep:
		next.Step = clampStep(ev.Step)
	case RestoreDraft:
		next.Step = clampStep(ev.Draft.Step)
		next.Values = make(map[string]string, len(ev.Draft.Values))
		for name, value := range ev.Draft.Values {
			if IsKnownField(name) {
				next.Values[name] = value
			}
		}
		next.Tags = append([]string(nil), ev.Draft.Tags...)
		next.TermsAccepted = ev.Draft.TermsAccepted
	case Reset:
		fresh := NewCreateState()
		fresh.Mode = next.Mode
		fresh.ListingID = next.ListingID
		fresh.ExistingImages = next.ExistingImages
		return fresh
	}
	return next
}

func clampStep(step int) int {
	if step < FirstStep {
		return FirstStep
	}
	if step > LastStep {
		return LastStep
	}
	return step
}

func moveImage(images []Attachment, from, to int) []Attachment {
	if from == to || from < 0 || to < 0 || from >= len(images) || to >= len(images) {
		return images
	}
	moved := images[from]
	images = append(images[:from], images[from+1:]...)
	images = append(images[:to], append([]Attachment{moved}, images[to:]...)...)
	return images
}

func addTag(tags []string, tag string) []string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return tags
	}
	for _, existing := range tags {
		if strings.EqualFold(existing, tag) {
			return tags
		}
	}
	return append(tags, tag)
}

func removeTag(tags []string, tag string) []string {
	out := tags[:0]
	for _, existing := range tags {
		if !strings.EqualFold(existing, strings.TrimSpace(tag)) {
			out = append(out, existing)
		}
	}
	return out
}
