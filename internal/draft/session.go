package draft

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/inkwell/internal/db"
	"github.com/rs/zerolog"
)

// DashboardPath is where a successful manual submit sends the author.
const DashboardPath = "/dashboard"

// TickOutcome describes what a single autosave tick did.
type TickOutcome string

const (
	TickSaved   TickOutcome = "saved"
	TickFailed  TickOutcome = "error"
	TickIdle    TickOutcome = "idle"
	TickSkipped TickOutcome = "skipped"
	TickBusy    TickOutcome = "busy"
	TickClosed  TickOutcome = "closed"
)

// View is a point-in-time copy of a session for callers outside the package.
type View struct {
	SessionID   string     `json:"session_id"`
	Draft       Draft      `json:"draft"`
	Status      Status     `json:"status"`
	Pending     bool       `json:"pending"`
	LastSaved   *time.Time `json:"last_saved,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Address     string     `json:"address"`
}

// SubmitResult reports a successful manual submit.
type SubmitResult struct {
	PostID      uint       `json:"post_id"`
	Created     bool       `json:"created"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at"`
	Redirect    string     `json:"redirect"`
}

// Session is one author editing one draft. It owns the draft, its identity,
// the autosave status and the autosave timer.
//
// saveMu admits a single save at a time: autosave gives up its tick when a
// save is running, manual submit waits for it. mu guards every other field
// and is never held across store calls.
type Session struct {
	id       string
	author   Author
	store    Store
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
	observer Observer

	saveMu sync.Mutex

	mu                 sync.Mutex
	draft              Draft
	rev                uint64
	savedRev           uint64
	status             Status
	lastSaved          time.Time
	lastErr            string
	persistedPublished bool
	publishedAt        *time.Time
	submitting         bool
	touched            time.Time
	started            bool
	closed             bool
	stop               chan struct{}
	done               chan struct{}
}

func newSession(id string, author Author, st Store, snap *Snapshot, opts sessionOptions) *Session {
	s := &Session{
		id:       id,
		author:   author,
		store:    st,
		interval: opts.Interval,
		now:      opts.Now,
		log:      opts.Logger.With().Str("edit_session", id).Uint("author_id", author.UserID).Logger(),
		observer: opts.Observer,
		status:   StatusIdle,
		done:     make(chan struct{}),
	}
	if snap != nil {
		s.draft = snap.Draft.clone()
		s.draft.TagIDs = NormalizeTagIDs(s.draft.TagIDs)
		s.persistedPublished = snap.Draft.Published
		s.publishedAt = snap.PublishedAt
	}
	if s.draft.ContentFormat == "" {
		s.draft.ContentFormat = db.ContentFormatHTML
	}
	s.touched = s.now()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Author returns the user the session acts for.
func (s *Session) Author() Author {
	return s.author
}

// View returns a copy of the current session state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := View{
		SessionID: s.id,
		Draft:     s.draft.clone(),
		Status:    s.status,
		Pending:   s.rev != s.savedRev,
		LastError: s.lastErr,
		Address:   address(s.draft.ID),
	}
	if !s.lastSaved.IsZero() {
		saved := s.lastSaved
		v.LastSaved = &saved
	}
	if s.publishedAt != nil {
		at := *s.publishedAt
		v.PublishedAt = &at
	}
	return v
}

func address(id uint) string {
	if id == 0 {
		return "/write"
	}
	return fmt.Sprintf("/write/%d", id)
}

// Apply mutates the in-memory draft. Changing any persisted field except the
// published flag marks the draft as having unsaved changes.
func (s *Session) Apply(p Patch) (View, error) {
	if p.ContentFormat != nil && !validFormat(*p.ContentFormat) {
		return View{}, ErrUnsupportedFormat
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return View{}, ErrSessionClosed
	}

	changed := false
	setText := func(dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}
	setText(&s.draft.Title, p.Title)
	setText(&s.draft.Content, p.Content)
	setText(&s.draft.ContentFormat, p.ContentFormat)
	setText(&s.draft.Excerpt, p.Excerpt)
	setText(&s.draft.FeaturedImage, p.FeaturedImage)
	setText(&s.draft.Language, p.Language)

	if p.Category != nil && !sameCategory(s.draft.CategoryID, p.Category.ID) {
		if p.Category.ID == nil {
			s.draft.CategoryID = nil
		} else {
			id := *p.Category.ID
			s.draft.CategoryID = &id
		}
		changed = true
	}
	if p.TagIDs != nil {
		tags := NormalizeTagIDs(p.TagIDs)
		if !sameTags(s.draft.TagIDs, tags) {
			s.draft.TagIDs = tags
			changed = true
		}
	}
	if p.Published != nil {
		s.draft.Published = *p.Published
	}

	if changed {
		s.rev++
	}
	s.touched = s.now()
	return s.viewLocked(), nil
}

// Autosave runs one autosave tick. Autosave never publishes: its record
// carries no publish state, so a new post is inserted unpublished and an
// existing post keeps whatever state it has in storage.
func (s *Session) Autosave(ctx context.Context) TickOutcome {
	outcome := s.autosave(ctx)
	s.observer.AutosaveTick(outcome)
	return outcome
}

func (s *Session) autosave(ctx context.Context) TickOutcome {
	if !s.saveMu.TryLock() {
		return TickBusy
	}
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return TickClosed
	}
	if !s.author.CanWrite() || !s.draft.Ready() {
		s.mu.Unlock()
		return TickSkipped
	}
	if s.rev == s.savedRev {
		if s.status == StatusSaved || s.status == StatusError {
			s.status = StatusIdle
		}
		s.mu.Unlock()
		return TickIdle
	}
	snapshot := s.draft.clone()
	rev := s.rev
	s.status = StatusSaving
	s.mu.Unlock()

	id, err := persist(ctx, s.store, snapshot.ID, BuildRecord(snapshot, s.author, nil), snapshot.TagIDs)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		if err != nil {
			return TickFailed
		}
		return TickSaved
	}
	s.adoptIdentityLocked(id)
	if err != nil {
		s.status = StatusError
		s.lastErr = err.Error()
		s.log.Warn().Err(err).Uint("post_id", s.draft.ID).Msg("autosave failed")
		return TickFailed
	}
	s.status = StatusSaved
	s.lastErr = ""
	s.lastSaved = s.now()
	s.savedRev = rev
	s.log.Debug().Uint("post_id", s.draft.ID).Msg("autosaved draft")
	return TickSaved
}

// Submit is the explicit save/publish. It always writes, includes the publish
// state, and rejects re-entry while a previous submit is still running.
func (s *Session) Submit(ctx context.Context) (SubmitResult, error) {
	res, err := s.submit(ctx)
	s.observer.Submitted(err)
	return res, err
}

func (s *Session) submit(ctx context.Context) (SubmitResult, error) {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return SubmitResult{}, ErrSessionClosed
	case s.submitting:
		s.mu.Unlock()
		return SubmitResult{}, ErrSubmitInProgress
	case strings.TrimSpace(s.draft.Title) == "":
		s.mu.Unlock()
		return SubmitResult{}, ErrTitleRequired
	case strings.TrimSpace(s.draft.Content) == "":
		s.mu.Unlock()
		return SubmitResult{}, ErrContentRequired
	}
	s.submitting = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	snapshot := s.draft.clone()
	rev := s.rev
	pub := s.publicationLocked()
	s.mu.Unlock()

	id, err := persist(ctx, s.store, snapshot.ID, BuildRecord(snapshot, s.author, &pub), snapshot.TagIDs)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.adoptIdentityLocked(id)
	if err != nil {
		s.log.Warn().Err(err).Uint("post_id", s.draft.ID).Msg("submit failed")
		return SubmitResult{}, err
	}
	s.persistedPublished = pub.Published
	s.publishedAt = pub.PublishedAt
	s.savedRev = rev
	s.lastSaved = s.now()
	s.log.Info().Uint("post_id", s.draft.ID).Bool("published", pub.Published).Msg("post submitted")

	return SubmitResult{
		PostID:      s.draft.ID,
		Created:     snapshot.ID == 0,
		Published:   pub.Published,
		PublishedAt: pub.PublishedAt,
		Redirect:    DashboardPath,
	}, nil
}

// publicationLocked stamps published_at on a false→true transition, keeps the
// stored timestamp while the post stays published and clears it on unpublish.
func (s *Session) publicationLocked() Publication {
	if !s.draft.Published {
		return Publication{Published: false}
	}
	if s.persistedPublished && s.publishedAt != nil {
		at := *s.publishedAt
		return Publication{Published: true, PublishedAt: &at}
	}
	now := s.now()
	return Publication{Published: true, PublishedAt: &now}
}

func (s *Session) adoptIdentityLocked(id uint) {
	if id == 0 || s.draft.ID != 0 {
		return
	}
	s.draft.ID = id
	s.log.Info().Uint("post_id", id).Str("address", address(id)).Msg("draft persisted")
}

// Start launches the autosave timer. Calling it more than once, or after
// Close, has no effect.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true
	s.stop = make(chan struct{})
	go s.loop(s.stop)
}

func (s *Session) loop(stop <-chan struct{}) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.interval)
			s.Autosave(ctx)
			cancel()
		}
	}
}

// Close tears the timer down. A save already in flight runs to completion
// but its result no longer changes the session. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.started {
		close(s.stop)
	} else {
		close(s.done)
	}
}

// Done is closed once the timer goroutine has exited (or immediately after
// Close when the timer never started).
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) touch() {
	s.mu.Lock()
	s.touched = s.now()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}
