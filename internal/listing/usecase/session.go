package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/draft"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/form"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/imaging"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/metrics"
)

type ImageProcessor interface {
	AddFiles(ctx context.Context, existing int, files []imaging.Upload) (*imaging.Result, error)
}

type Submitter interface {
	Submit(ctx context.Context, user *domain.User, s form.State) (*SubmitResult, error)
}

// sessionDeps are shared by every session of a PostingUsecase.
type sessionDeps struct {
	images    ImageProcessor
	generator domain.TextGenerator
	drafts    *draft.Manager
	submitter Submitter
	logger    *logger.Logger
	metrics   *metrics.MetricsManager
}

// PostingSession is one user's pass through the posting form. Mutations are
// serialised by mu. External calls run with mu released and their results
// are applied only while the session is still open.
type PostingSession struct {
	ID   string
	user *domain.User
	deps *sessionDeps

	mu           sync.Mutex
	state        form.State
	schema       *form.Schema
	autosaver    *draft.Autosaver // nil in edit mode
	pendingDraft *domain.Draft
	open         bool
	lastSeen     time.Time

	imagesBusy  bool
	suggestBusy bool
	submitBusy  bool
}

func newSession(id string, user *domain.User, state form.State, autosaver *draft.Autosaver, deps *sessionDeps, now time.Time) *PostingSession {
	return &PostingSession{
		ID:        id,
		user:      user,
		deps:      deps,
		state:     state,
		schema:    form.NewSchema(state.Mode),
		autosaver: autosaver,
		open:      true,
		lastSeen:  now,
	}
}

// ImageView describes a pending attachment without its bytes.
type ImageView struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int    `json:"size"`
}

type SessionView struct {
	ID             string            `json:"id"`
	Mode           form.Mode         `json:"mode"`
	Step           int               `json:"step"`
	Values         map[string]string `json:"values"`
	Tags           []string          `json:"tags"`
	Images         []ImageView       `json:"images"`
	ExistingImages []string          `json:"existing_images,omitempty"`
	TermsAccepted  bool              `json:"terms_accepted"`
	ListingID      string            `json:"listing_id,omitempty"`
	PendingDraft   bool              `json:"pending_draft"`
	UploadingFiles bool              `json:"uploading_files"`
	Suggesting     bool              `json:"suggesting"`
	Submitting     bool              `json:"submitting"`
}

func (s *PostingSession) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *PostingSession) viewLocked() SessionView {
	st := s.state.Clone()
	images := make([]ImageView, 0, len(st.Images))
	for _, img := range st.Images {
		images = append(images, ImageView{Name: img.Name, Width: img.Width, Height: img.Height, Size: len(img.Data)})
	}
	return SessionView{
		ID:             s.ID,
		Mode:           st.Mode,
		Step:           st.Step,
		Values:         st.Values,
		Tags:           st.Tags,
		Images:         images,
		ExistingImages: st.ExistingImages,
		TermsAccepted:  st.TermsAccepted,
		ListingID:      st.ListingID,
		PendingDraft:   s.pendingDraft != nil,
		UploadingFiles: s.imagesBusy,
		Suggesting:     s.suggestBusy,
		Submitting:     s.submitBusy,
	}
}

// State returns a copy of the current form state.
func (s *PostingSession) State() form.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *PostingSession) UserID() string { return s.user.ID }

// apply runs e through the reducer and hands the result to the autosaver.
// Callers hold mu.
func (s *PostingSession) apply(e form.Event) {
	s.state = form.Reduce(s.state, e)
	if s.autosaver != nil {
		s.autosaver.Observe(s.state)
	}
}

func (s *PostingSession) checkOpenLocked() error {
	if !s.open {
		return domain.ErrSessionClosed
	}
	return nil
}

// SetFields records field edits and, when terms is non-nil, the terms
// checkbox.
func (s *PostingSession) SetFields(values map[string]string, terms *bool) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpenLocked(); err != nil {
		return SessionView{}, err
	}
	if len(values) > 0 {
		s.apply(form.SetFields{Values: values})
	}
	if terms != nil {
		s.apply(form.SetTerms{Accepted: *terms})
	}
	return s.viewLocked(), nil
}

// Advance validates the current step. The returned error is a
// form.ValidationErrors when a field blocks the step.
func (s *PostingSession) Advance() (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpenLocked(); err != nil {
		return SessionView{}, err
	}
	next, errs := form.Advance(s.state, s.schema)
	if errs != nil {
		return s.viewLocked(), errs
	}
	if next.Step != s.state.Step {
		s.apply(form.GoToStep{Step: next.Step})
	}
	return s.viewLocked(), nil
}

func (s *PostingSession) Retreat() (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpenLocked(); err != nil {
		return SessionView{}, err
	}
	s.apply(form.GoToStep{Step: form.Retreat(s.state).Step})
	return s.viewLocked(), nil
}

// AddFiles runs a batch through the image pipeline. One batch at a time.
func (s *PostingSession) AddFiles(ctx context.Context, files []imaging.Upload) (*imaging.Result, SessionView, error) {
	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return nil, SessionView{}, err
	}
	if s.imagesBusy {
		s.mu.Unlock()
		return nil, SessionView{}, domain.ErrBusy
	}
	s.imagesBusy = true
	existing := len(s.state.Images)
	s.mu.Unlock()

	res, err := s.deps.images.AddFiles(ctx, existing, files)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.imagesBusy = false
	if !s.open {
		return nil, SessionView{}, domain.ErrSessionClosed
	}
	if err != nil {
		s.deps.logger.Warn("PostingSession.AddFiles: batch dropped", "session_id", s.ID, "error", err)
		return nil, s.viewLocked(), err
	}
	for _, r := range res.Rejected {
		s.deps.metrics.ImagesRejected.WithLabelValues(r.Reason).Inc()
	}
	if len(res.Added) > 0 {
		s.apply(form.AppendImages{Images: res.Added})
	}
	return res, s.viewLocked(), nil
}

func (s *PostingSession) RemoveImage(index int) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpenLocked(); err != nil {
		return SessionView{}, err
	}
	if index < 0 || index >= len(s.state.Images) {
		return SessionView{}, domain.ErrInvalidListingData
	}
	s.apply(form.RemoveImage{Index: index})
	return s.viewLocked(), nil
}

func (s *PostingSession) ReorderImages(from, to int) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpenLocked(); err != nil {
		return SessionView{}, err
	}
	n := len(s.state.Images)
	if from < 0 || from >= n || to < 0 || to >= n {
		return SessionView{}, domain.ErrInvalidListingData
	}
	s.apply(form.ReorderImages{From: from, To: to})
	return s.viewLocked(), nil
}

// SuggestDetails overwrites title and description with generated text.
// Category and subcategory must be chosen first.
func (s *PostingSession) SuggestDetails(ctx context.Context, keywords string) (SessionView, error) {
	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return SessionView{}, err
	}
	prompt := domain.DetailsPrompt{
		Keywords:    keywords,
		Category:    s.state.Value(form.FieldCategory),
		Subcategory: s.state.Value(form.FieldSubcategory),
	}
	errs := form.ValidationErrors{}
	if prompt.Category == "" {
		errs[form.FieldCategory] = "choose a category first"
	}
	if prompt.Subcategory == "" {
		errs[form.FieldSubcategory] = "choose a subcategory first"
	}
	if len(errs) > 0 {
		s.mu.Unlock()
		return SessionView{}, errs
	}
	if s.suggestBusy {
		s.mu.Unlock()
		return SessionView{}, domain.ErrBusy
	}
	s.suggestBusy = true
	s.mu.Unlock()

	suggestion, err := s.deps.generator.SuggestDetails(ctx, prompt)
	if err == nil && (suggestion == nil || suggestion.Title == "" || suggestion.Description == "") {
		err = domain.ErrMalformedSuggestion
	}
	s.countSuggestion("details", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestBusy = false
	if !s.open {
		return SessionView{}, domain.ErrSessionClosed
	}
	if err != nil {
		s.deps.logger.Warn("PostingSession.SuggestDetails: suggestion failed", "session_id", s.ID, "error", err)
		return s.viewLocked(), suggestionError(err)
	}
	s.apply(form.ApplyDetails{Title: suggestion.Title, Description: suggestion.Description})
	return s.viewLocked(), nil
}

// SuggestTags returns candidate tags. They are not merged into the form,
// the client picks them one by one through AddTag.
func (s *PostingSession) SuggestTags(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	title := s.state.Value(form.FieldTitle)
	description := s.state.Value(form.FieldDescription)
	errs := form.ValidationErrors{}
	if title == "" {
		errs[form.FieldTitle] = "enter a title first"
	}
	if description == "" {
		errs[form.FieldDescription] = "enter a description first"
	}
	if len(errs) > 0 {
		s.mu.Unlock()
		return nil, errs
	}
	if s.suggestBusy {
		s.mu.Unlock()
		return nil, domain.ErrBusy
	}
	s.suggestBusy = true
	s.mu.Unlock()

	tags, err := s.deps.generator.SuggestTags(ctx, title, description)
	s.countSuggestion("tags", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestBusy = false
	if !s.open {
		return nil, domain.ErrSessionClosed
	}
	if err != nil {
		s.deps.logger.Warn("PostingSession.SuggestTags: suggestion failed", "session_id", s.ID, "error", err)
		return nil, suggestionError(err)
	}
	if len(tags) > domain.MaxSuggestedTags {
		tags = tags[:domain.MaxSuggestedTags]
	}
	return tags, nil
}

func (s *PostingSession) countSuggestion(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.deps.metrics.SuggestionCalls.WithLabelValues(kind, outcome).Inc()
}

func suggestionError(err error) error {
	if errors.Is(err, domain.ErrMalformedSuggestion) || errors.Is(err, domain.ErrSuggestionFailed) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrSuggestionFailed, err)
}

func (s *PostingSession) AddTag(tag string) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpenLocked(); err != nil {
		return SessionView{}, err
	}
	s.apply(form.AddTag{Tag: tag})
	return s.viewLocked(), nil
}

func (s *PostingSession) RemoveTag(tag string) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpenLocked(); err != nil {
		return SessionView{}, err
	}
	s.apply(form.RemoveTag{Tag: tag})
	return s.viewLocked(), nil
}

// RestoreDraft rehydrates the form from the draft found at session start.
func (s *PostingSession) RestoreDraft() (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpenLocked(); err != nil {
		return SessionView{}, err
	}
	if s.submitBusy {
		return SessionView{}, domain.ErrBusy
	}
	if s.pendingDraft == nil {
		return SessionView{}, domain.ErrDraftNotFound
	}
	s.apply(form.RestoreDraft{Draft: *s.pendingDraft})
	s.pendingDraft = nil
	if s.autosaver != nil {
		s.autosaver.Resume()
	}
	return s.viewLocked(), nil
}

// DiscardDraft deletes the stored draft and empties the form. Calling it
// with no draft left is a no-op reset.
func (s *PostingSession) DiscardDraft(ctx context.Context) (SessionView, error) {
	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return SessionView{}, err
	}
	if s.state.Mode != form.ModeCreate {
		s.mu.Unlock()
		return SessionView{}, domain.ErrInvalidListingData
	}
	if s.submitBusy {
		s.mu.Unlock()
		return SessionView{}, domain.ErrBusy
	}
	// keep a pending or running debounced write from recreating the draft
	s.autosaver.Suspend()
	s.mu.Unlock()

	err := s.deps.drafts.Discard(ctx, s.user.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return SessionView{}, domain.ErrSessionClosed
	}
	if err != nil {
		if s.pendingDraft == nil {
			s.autosaver.Resume()
		}
		return s.viewLocked(), err
	}
	s.apply(form.Reset{})
	s.pendingDraft = nil
	s.autosaver.Resume()
	return s.viewLocked(), nil
}

// Submit hands the form to the submitter. On success the session is
// finished and no longer accepts changes.
func (s *PostingSession) Submit(ctx context.Context) (*SubmitResult, error) {
	s.mu.Lock()
	if err := s.checkOpenLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.submitBusy {
		s.mu.Unlock()
		return nil, domain.ErrBusy
	}
	s.submitBusy = true
	state := s.state.Clone()
	// no snapshot may land after the submitter deletes the draft
	resumeAutosave := false
	if s.autosaver != nil && !s.autosaver.Suspended() {
		s.autosaver.Suspend()
		resumeAutosave = true
	}
	s.mu.Unlock()

	res, err := s.deps.submitter.Submit(ctx, s.user, state)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitBusy = false
	if err != nil {
		if resumeAutosave && s.open {
			s.autosaver.Resume()
			s.autosaver.Observe(s.state)
		}
		return nil, err
	}
	s.closeLocked()
	return res, nil
}

// Close ends the session. In-flight work finishes but its result is dropped.
func (s *PostingSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *PostingSession) closeLocked() {
	s.open = false
	if s.autosaver != nil {
		s.autosaver.Stop()
	}
}

func (s *PostingSession) Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *PostingSession) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *PostingSession) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}
