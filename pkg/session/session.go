// Package session keeps one viewer state per browser.
//
// Sessions live in memory only; restarting the server forgets every
// uploaded tree. IDs are random UUIDs carried in a cookie, and a session
// expires after a period without use.
//
// # Usage
//
//	store := session.NewStore(session.Options{
//	    TTL:      session.DefaultTTL,
//	    NewState: func() *viewer.State { return viewer.New(viewer.Options{}) },
//	})
//	go store.Run(ctx, time.Minute) // periodic cleanup
//
//	sess, created := store.GetOrCreate(cookieValue)
package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/famtree/pkg/viewer"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")

	// ErrInvalidID is returned for IDs that are not UUIDs.
	ErrInvalidID = errors.New("invalid session id")
)

// Default limits.
const (
	// DefaultTTL is how long an idle session survives.
	DefaultTTL = 2 * time.Hour

	// DefaultMaxSessions bounds memory use; the least recently used
	// session is evicted beyond it.
	DefaultMaxSessions = 1000
)

// Session is one browser's view.
type Session struct {
	ID        string
	State     *viewer.State
	CreatedAt time.Time

	lastUsed time.Time
}

// Options configures a Store.
type Options struct {
	TTL         time.Duration
	MaxSessions int
	NewState    func() *viewer.State
	Logger      *log.Logger
}

// Store is an in-memory session store. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	opts     Options
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore(opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.NewState == nil {
		opts.NewState = func() *viewer.State { return viewer.New(viewer.Options{}) }
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Store{sessions: make(map[string]*Session), opts: opts, now: time.Now}
}

// ValidID reports whether id looks like a session ID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Create starts a new session.
func (s *Store) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked()
}

func (s *Store) createLocked() *Session {
	if len(s.sessions) >= s.opts.MaxSessions {
		s.evictLocked()
	}
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		State:     s.opts.NewState(),
		CreatedAt: now,
		lastUsed:  now,
	}
	s.sessions[sess.ID] = sess
	s.opts.Logger.Debug("session created", "id", sess.ID, "sessions", len(s.sessions))
	return sess
}

// Get returns a live session and refreshes its expiry.
func (s *Store) Get(id string) (*Session, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.expiredLocked(sess) {
		delete(s.sessions, id)
		return nil, ErrExpired
	}
	sess.lastUsed = s.now()
	return sess, nil
}

// GetOrCreate returns the session for id, or a new one when id is unknown,
// malformed or expired. created reports which happened.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	if sess, err := s.Get(id); err == nil {
		return sess, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(), true
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup removes expired sessions and returns how many it removed.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		if s.expiredLocked(sess) {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.opts.Logger.Debug("sessions expired", "removed", n, "remaining", len(s.sessions))
	}
	return n
}

// Run calls Cleanup every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.Cleanup()
		}
	}
}

func (s *Store) expiredLocked(sess *Session) bool {
	return s.now().Sub(sess.lastUsed) > s.opts.TTL
}

// evictLocked drops the least recently used session.
func (s *Store) evictLocked() {
	var oldest *Session
	for _, sess := range s.sessions {
		if oldest == nil || sess.lastUsed.Before(oldest.lastUsed) {
			oldest = sess
		}
	}
	if oldest != nil {
		delete(s.sessions, oldest.ID)
		s.opts.Logger.Debug("session evicted", "id", oldest.ID)
	}
}
