package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

// SessionRegistry owns every active session. The id map is shared, each session
// has its own lock so moves on one session never wait for another.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionSlot

	now func() time.Time
}

type sessionSlot struct {
	mu      sync.Mutex
	session *entity.Session
	touched time.Time
	removed bool
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*sessionSlot),
		now:      time.Now,
	}
}

// Create inserts a new session. An id collision is reported, never overwritten.
func (that *SessionRegistry) Create(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[session.ID]; ok {
		return fmt.Errorf("%w: %s", apperror.ErrSessionExists, session.ID)
	}

	that.sessions[session.ID] = &sessionSlot{
		session: session.Clone(),
		touched: that.now(),
	}

	return nil
}

func (that *SessionRegistry) GetByID(_ context.Context, id string) (*entity.Session, error) {
	slot, err := that.getSlot(id)
	if err != nil {
		return nil, err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.removed {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return slot.session.Clone(), nil
}

// Update runs apply on a working copy while holding the session lock.
// The copy is committed only when apply succeeds, so a rejected change is never visible.
func (that *SessionRegistry) Update(_ context.Context, id string, apply func(session *entity.Session) error) (*entity.Session, error) {
	slot, err := that.getSlot(id)
	if err != nil {
		return nil, err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.removed {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	working := slot.session.Clone()
	if err = apply(working); err != nil {
		return nil, err
	}

	slot.session = working
	slot.touched = that.now()

	return working.Clone(), nil
}

// DeleteByID removes a session and returns its last state, or nil when it was already gone.
func (that *SessionRegistry) DeleteByID(_ context.Context, id string) *entity.Session {
	that.mu.Lock()
	slot, ok := that.sessions[id]
	delete(that.sessions, id)
	that.mu.Unlock()

	if !ok {
		return nil
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	slot.removed = true

	return slot.session.Clone()
}

// DeleteIdle removes sessions that were not touched since before.
func (that *SessionRegistry) DeleteIdle(_ context.Context, before time.Time) []*entity.Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	var expired []*entity.Session
	for id, slot := range that.sessions {
		slot.mu.Lock()
		if slot.touched.Before(before) {
			slot.removed = true
			delete(that.sessions, id)
			expired = append(expired, slot.session.Clone())
		}
		slot.mu.Unlock()
	}

	return expired
}

func (that *SessionRegistry) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.sessions)
}

func (that *SessionRegistry) getSlot(id string) (*sessionSlot, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	slot, ok := that.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return slot, nil
}
