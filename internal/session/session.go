// Package session holds the logged-in identity and persists it between
// runs so the app can reopen on the checklist screen.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/wellness/internal/model"
)

// ErrNoSession is returned by a Store when nothing is persisted.
var ErrNoSession = errors.New("no persisted session")

// Identity is the persisted form of a logged-in user.
type Identity struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists a single encoded identity.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// Session is the explicit context of one login. Async work started for a
// session carries its Seq so results arriving after logout can be dropped.
type Session struct {
	Identity

	Seq uint64

	ctx    context.Context
	cancel context.CancelFunc
}

// Context is cancelled when the session ends.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Done reports whether the session has ended.
func (s *Session) Done() bool {
	return s.ctx.Err() != nil
}

// Manager creates, restores and ends sessions.
type Manager struct {
	store Store
	log   zerolog.Logger
	seq   atomic.Uint64
}

// NewManager creates a Manager backed by store.
func NewManager(store Store, log zerolog.Logger) *Manager {
	return &Manager{store: store, log: log}
}

// Begin persists user as the current identity and starts a new session.
// A failure to persist is logged; the session is still returned.
func (m *Manager) Begin(ctx context.Context, user *model.User) *Session {
	id := Identity{UserID: user.ID, Name: user.Name, CreatedAt: user.CreatedAt}

	data, err := json.Marshal(id)
	if err == nil {
		err = m.store.Save(ctx, data)
	}
	if err != nil {
		m.log.Warn().Err(err).Str("user_name", user.Name).Msg("failed to persist session")
	}

	return m.start(id)
}

// Restore returns the persisted session, if any. Missing, unreadable or
// corrupt data all report false; corrupt data is cleared.
func (m *Manager) Restore(ctx context.Context) (*Session, bool) {
	data, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			m.log.Warn().Err(err).Msg("failed to read persisted session")
		}
		return nil, false
	}

	id, err := decode(data)
	if err != nil {
		m.log.Warn().Err(err).Msg("discarding corrupt session")
		if cerr := m.store.Clear(ctx); cerr != nil && !errors.Is(cerr, ErrNoSession) {
			m.log.Warn().Err(cerr).Msg("failed to clear corrupt session")
		}
		return nil, false
	}

	return m.start(id), true
}

// End cancels the session and clears the persisted identity.
func (m *Manager) End(ctx context.Context, s *Session) {
	if s != nil {
		s.cancel()
	}
	if err := m.store.Clear(ctx); err != nil && !errors.Is(err, ErrNoSession) {
		m.log.Warn().Err(err).Msg("failed to clear persisted session")
	}
}

func (m *Manager) start(id Identity) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		Identity: id,
		Seq:      m.seq.Add(1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func decode(data []byte) (Identity, error) {
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, fmt.Errorf("decoding session: %w", err)
	}
	if id.UserID == "" || id.Name == "" {
		return Identity{}, fmt.Errorf("decoding session: missing user")
	}
	return id, nil
}
