package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/draft"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/form"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/metrics"
	"github.com/google/uuid"
)

// PostingUsecase opens and tracks posting sessions.
type PostingUsecase struct {
	listings domain.ListingRepository
	sessions *SessionStore
	deps     *sessionDeps
	logger   *logger.Logger
	now      func() time.Time
}

func NewPostingUsecase(
	listings domain.ListingRepository,
	drafts *draft.Manager,
	images ImageProcessor,
	generator domain.TextGenerator,
	submitter Submitter,
	sessions *SessionStore,
	log *logger.Logger,
	m *metrics.MetricsManager,
) *PostingUsecase {
	return &PostingUsecase{
		listings: listings,
		sessions: sessions,
		deps: &sessionDeps{
			images:    images,
			generator: generator,
			drafts:    drafts,
			submitter: submitter,
			logger:    log,
			metrics:   m,
		},
		logger: log,
		now:    time.Now,
	}
}

// StartCreate opens an empty create session. If the user has a saved draft
// the session starts with autosave suspended until the draft is restored or
// discarded.
func (uc *PostingUsecase) StartCreate(ctx context.Context, user *domain.User) (*PostingSession, error) {
	if user == nil || user.ID == "" {
		return nil, domain.ErrUnauthenticated
	}

	saved, err := uc.deps.drafts.Load(ctx, user.ID)
	if err != nil {
		// an unreadable draft must not block posting
		uc.logger.Warn("PostingUsecase.StartCreate: draft lookup failed", "user_id", user.ID, "error", err)
		saved = nil
	}

	autosaver := uc.deps.drafts.NewAutosaver(user.ID)
	sess := newSession(uuid.NewString(), user, form.NewCreateState(), autosaver, uc.deps, uc.now())
	if saved != nil {
		sess.pendingDraft = saved
		autosaver.Suspend()
	}
	uc.sessions.Add(sess)

	uc.logger.Info("PostingUsecase.StartCreate: session opened", "session_id", sess.ID, "user_id", user.ID, "pending_draft", saved != nil)
	return sess, nil
}

// StartEdit opens a session prefilled from an existing listing. Only the
// owner or an admin may edit.
func (uc *PostingUsecase) StartEdit(ctx context.Context, user *domain.User, listingID string) (*PostingSession, error) {
	if user == nil || user.ID == "" {
		return nil, domain.ErrUnauthenticated
	}

	listing, err := uc.listings.FindByID(ctx, listingID)
	if errors.Is(err, domain.ErrListingNotFound) || (err == nil && listing == nil) {
		uc.logger.Warn("PostingUsecase.StartEdit: listing not found by ID", "listing_id", listingID)
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		uc.logger.Error("PostingUsecase.StartEdit: failed to find listing", "listing_id", listingID, "error", err)
		return nil, err
	}
	if listing.UserID != user.ID && !user.IsAdmin() {
		uc.logger.Warn("PostingUsecase.StartEdit: forbidden to edit listing",
			"listing_id", listingID, "listing_owner_id", listing.UserID, "user_id", user.ID)
		return nil, domain.ErrForbidden
	}

	sess := newSession(uuid.NewString(), user, form.NewEditState(listing), nil, uc.deps, uc.now())
	uc.sessions.Add(sess)

	uc.logger.Info("PostingUsecase.StartEdit: session opened", "session_id", sess.ID, "listing_id", listingID, "user_id", user.ID)
	return sess, nil
}

// Session returns an open session owned by user.
func (uc *PostingUsecase) Session(id string, user *domain.User) (*PostingSession, error) {
	if user == nil || user.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	sess := uc.sessions.Get(id)
	if sess == nil || !sess.Open() {
		return nil, domain.ErrSessionNotFound
	}
	if sess.UserID() != user.ID {
		return nil, domain.ErrForbidden
	}
	sess.touch(uc.now())
	return sess, nil
}

// Submit finalizes the session and forgets it on success.
func (uc *PostingUsecase) Submit(ctx context.Context, id string, user *domain.User) (*SubmitResult, error) {
	sess, err := uc.Session(id, user)
	if err != nil {
		return nil, err
	}
	res, err := sess.Submit(ctx)
	if errors.Is(err, domain.ErrListingNotFound) {
		// the edit target is gone, the session cannot be submitted again
		sess.Close()
		uc.sessions.Remove(id)
		uc.logger.Info("PostingUsecase.Submit: edit target deleted, session closed", "session_id", id)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	uc.sessions.Remove(id)
	return res, nil
}

// Close abandons a session. A pending draft write is dropped, the last
// saved draft stays.
func (uc *PostingUsecase) Close(id string, user *domain.User) error {
	sess, err := uc.Session(id, user)
	if err != nil {
		return err
	}
	sess.Close()
	uc.sessions.Remove(id)
	uc.logger.Info("PostingUsecase.Close: session closed", "session_id", id, "user_id", user.ID)
	return nil
}

// SessionStore keeps open sessions in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*PostingSession
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*PostingSession), now: time.Now}
}

func (st *SessionStore) Add(s *PostingSession) {
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
}

func (st *SessionStore) Get(id string) *PostingSession {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}

func (st *SessionStore) Remove(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// EvictIdle closes and removes sessions untouched for longer than ttl and
// returns how many were evicted.
func (st *SessionStore) EvictIdle(ttl time.Duration) int {
	now := st.now()

	st.mu.Lock()
	var idle []*PostingSession
	for id, s := range st.sessions {
		if s.idleSince(now) > ttl {
			idle = append(idle, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	return len(idle)
}

// CloseAll is used on shutdown.
func (st *SessionStore) CloseAll() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[string]*PostingSession)
	st.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
