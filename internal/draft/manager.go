package draft

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultAutosaveInterval = 30 * time.Second
	DefaultIdleTimeout      = 30 * time.Minute
)

// Observer receives autosave and submit outcomes, e.g. for metrics.
type Observer interface {
	AutosaveTick(outcome TickOutcome)
	Submitted(err error)
	SessionsOpen(n int)
}

type nopObserver struct{}

func (nopObserver) AutosaveTick(TickOutcome) {}
func (nopObserver) Submitted(error)          {}
func (nopObserver) SessionsOpen(int)         {}

// Options configures a Manager. Zero values fall back to defaults.
type Options struct {
	Interval    time.Duration
	IdleTimeout time.Duration
	Logger      *zerolog.Logger
	Observer    Observer
	Now         func() time.Time
}

type sessionOptions struct {
	Interval time.Duration
	Now      func() time.Time
	Logger   zerolog.Logger
	Observer Observer
}

// Manager keeps the open edit sessions of all authors.
type Manager struct {
	store       Store
	idleTimeout time.Duration
	opts        sessionOptions

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager backed by st.
func NewManager(st Store, opts Options) *Manager {
	so := sessionOptions{
		Interval: opts.Interval,
		Now:      opts.Now,
		Observer: opts.Observer,
		Logger:   zerolog.Nop(),
	}
	if so.Interval <= 0 {
		so.Interval = DefaultAutosaveInterval
	}
	if so.Now == nil {
		so.Now = time.Now
	}
	if so.Observer == nil {
		so.Observer = nopObserver{}
	}
	if opts.Logger != nil {
		so.Logger = opts.Logger.With().Str("component", "draft").Logger()
	}
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Manager{
		store:       st,
		idleTimeout: idle,
		opts:        so,
		sessions:    make(map[string]*Session),
	}
}

// Open starts an edit session for author. postID zero opens an empty draft;
// otherwise the post is loaded and must belong to author. The autosave timer
// starts once loading has finished.
func (m *Manager) Open(ctx context.Context, author Author, postID uint) (*Session, error) {
	if !author.CanWrite() {
		return nil, ErrForbidden
	}

	var snap *Snapshot
	if postID != 0 {
		loaded, err := m.store.FindPost(ctx, postID, author.UserID)
		if err != nil {
			return nil, err
		}
		snap = loaded
	}

	sess := newSession(uuid.NewString(), author, m.store, snap, m.opts)

	m.mu.Lock()
	m.sessions[sess.id] = sess
	open := len(m.sessions)
	m.mu.Unlock()

	m.opts.Observer.SessionsOpen(open)
	sess.Start()
	return sess, nil
}

// Get returns the open session id if it belongs to userID.
func (m *Manager) Get(id string, userID uint) (*Session, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok || sess.author.UserID != userID || sess.Closed() {
		return nil, ErrSessionNotFound
	}
	sess.touch()
	return sess, nil
}

// Submit runs a manual submit on the session and, on success, closes it:
// the author leaves the editor.
func (m *Manager) Submit(ctx context.Context, id string, userID uint) (SubmitResult, error) {
	sess, err := m.Get(id, userID)
	if err != nil {
		return SubmitResult{}, err
	}
	res, err := sess.Submit(ctx)
	if err != nil {
		return SubmitResult{}, err
	}
	m.Close(id)
	return res, nil
}

// Close stops and forgets a session. It reports whether the session was open.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	open := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return false
	}
	sess.Close()
	m.opts.Observer.SessionsOpen(open)
	return true
}

// CloseForUser closes every session of userID, e.g. on logout or role loss.
func (m *Manager) CloseForUser(userID uint) int {
	return m.closeWhere(func(s *Session) bool { return s.author.UserID == userID })
}

// CloseAll closes every open session.
func (m *Manager) CloseAll() int {
	return m.closeWhere(func(*Session) bool { return true })
}

// Sweep closes sessions untouched for longer than the idle timeout.
func (m *Manager) Sweep() int {
	cutoff := m.opts.Now().Add(-m.idleTimeout)
	return m.closeWhere(func(s *Session) bool { return s.idleSince().Before(cutoff) })
}

func (m *Manager) closeWhere(match func(*Session) bool) int {
	m.mu.Lock()
	var closing []*Session
	for id, sess := range m.sessions {
		if match(sess) {
			closing = append(closing, sess)
			delete(m.sessions, id)
		}
	}
	open := len(m.sessions)
	m.mu.Unlock()

	for _, sess := range closing {
		sess.Close()
	}
	if len(closing) > 0 {
		m.opts.Observer.SessionsOpen(open)
		m.opts.Logger.Debug().Int("closed", len(closing)).Int("open", open).Msg("closed edit sessions")
	}
	return len(closing)
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Run sweeps idle sessions until ctx is cancelled, then closes the rest.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.idleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.CloseAll()
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
