package draft

import (
	"context"
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/form"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/metrics"
)

// writeTimeout bounds a debounced write, which runs detached from any request.
const writeTimeout = 5 * time.Second

type Manager struct {
	repo    domain.DraftRepository
	delay   time.Duration
	logger  *logger.Logger
	metrics *metrics.MetricsManager
	now     func() time.Time
}

func NewManager(repo domain.DraftRepository, delay time.Duration, log *logger.Logger, m *metrics.MetricsManager) *Manager {
	return &Manager{
		repo:    repo,
		delay:   delay,
		logger:  log,
		metrics: m,
		now:     time.Now,
	}
}

// Load returns the saved draft for userID, or nil if there is none.
func (m *Manager) Load(ctx context.Context, userID string) (*domain.Draft, error) {
	d, err := m.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrDraftNotFound) {
		return nil, nil
	}
	if err != nil {
		m.logger.Error("DraftManager.Load: failed to read draft", "userID", userID, "error", err)
		return nil, err
	}
	return d, nil
}

// Discard deletes the user's draft. Discarding twice is not an error.
func (m *Manager) Discard(ctx context.Context, userID string) error {
	if err := m.repo.Delete(ctx, userID); err != nil {
		m.logger.Error("DraftManager.Discard: failed to delete draft", "userID", userID, "error", err)
		return err
	}
	m.logger.Info("DraftManager.Discard: draft removed", "userID", userID)
	return nil
}

// NewAutosaver returns a debounced writer for one posting session.
func (m *Manager) NewAutosaver(userID string) *Autosaver {
	a := &Autosaver{userID: userID, manager: m}
	a.debouncer = NewDebouncer(m.delay, m.write)
	return a
}

func (m *Manager) write(d *domain.Draft) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := m.repo.Save(ctx, d); err != nil {
		m.logger.Warn("DraftManager.write: draft not saved", "userID", d.UserID, "error", err)
		if m.metrics != nil {
			m.metrics.DraftWriteErrors.Inc()
		}
		return
	}
	if m.metrics != nil {
		m.metrics.DraftsSaved.Inc()
	}
	m.logger.Debug("DraftManager.write: draft saved", "userID", d.UserID, "step", d.Step)
}

// Autosaver snapshots create-mode form state after every change. Edit
// sessions never produce drafts.
type Autosaver struct {
	userID    string
	manager   *Manager
	debouncer *Debouncer
}

func (a *Autosaver) Observe(s form.State) {
	if s.Mode != form.ModeCreate {
		return
	}
	a.debouncer.Schedule(s.Snapshot(a.userID, a.manager.now()))
}

func (a *Autosaver) Suspend()        { a.debouncer.Suspend() }
func (a *Autosaver) Resume()         { a.debouncer.Resume() }
func (a *Autosaver) Suspended() bool { return a.debouncer.Suspended() }
func (a *Autosaver) Stop()           { a.debouncer.Stop() }
