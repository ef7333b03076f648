package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/maps"
	"github.com/Project-NewSight/CIS4398-Project-NewSight-Backend/internal/shared/geo"
)

// ErrNoActiveSession means update or a lookup referenced an unknown session
// id. A failed update never creates or mutates a session.
var ErrNoActiveSession = errors.New("session: no active navigation for this session")

// Status values carried on navigation updates.
const (
	StatusNavigating    = "navigating"
	StatusStepCompleted = "step_completed"
	StatusArrived       = "arrived"
)

// step completion radius, sized above pedestrian GPS noise (5-15 m) so the
// arrived/not-arrived decision does not flicker.
const completionRadiusMeters = 20

// tier is a discrete proximity band used to debounce announcements. Each tier
// fires at most once per step, in descending-distance order.
type tier int

const (
	tierNone tier = iota
	tierFar
	tierNear100
	tierNear50
	tierNear25
)

// Session is one user's in-progress navigation. Its mutex serializes updates
// for this id while unrelated sessions proceed in parallel.
type Session struct {
	mu        sync.Mutex
	ID        string
	Route     maps.Route
	StepIndex int
	lastTier  tier
}

// Snapshot is a read-only view of a session for listing endpoints.
type Snapshot struct {
	SessionID   string `json:"session_id"`
	Destination string `json:"destination"`
	CurrentStep int    `json:"current_step"`
	TotalSteps  int    `json:"total_steps"`
	Status      string `json:"status"`
}

// Update is the navigation update emitted after each location fix.
type Update struct {
	Status         string  `json:"status"`
	CurrentStep    int     `json:"current_step"`
	TotalSteps     int     `json:"total_steps"`
	Instruction    string  `json:"instruction"`
	DistanceToNext float64 `json:"distance_to_next"`
	ShouldAnnounce bool    `json:"should_announce"`
	Announcement   string  `json:"announcement,omitempty"`
}

// Store holds one mutable session record per id. The store mutex guards the
// map only; per-session state is guarded by the session's own mutex.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: map[string]*Session{}}
}

// Put stores a fully initialized session, overwriting any prior session for
// the same id.
func (s *Store) Put(id string, route maps.Route) *Session {
	sess := &Session{ID: id, Route: route}
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session for id, or ErrNoActiveSession.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNoActiveSession
	}
	return sess, nil
}

// Stop removes the session if present. Idempotent.
func (s *Store) Stop(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of active sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Snapshots lists the active sessions.
func (s *Store) Snapshots() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Snapshot, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sess.mu.Lock()
		out = append(out, Snapshot{
			SessionID:   sess.ID,
			Destination: sess.Route.Destination,
			CurrentStep: sess.StepIndex + 1,
			TotalSteps:  len(sess.Route.Steps),
			Status:      "active",
		})
		sess.mu.Unlock()
	}
	return out
}

// Update advances the session state machine with a new location fix and
// computes the resulting navigation update. Terminal states (arrival) remove
// the session from the store. Lock order is always store then session, so
// the session mutex is released before the terminal removal.
func (s *Store) Update(id string, current geo.Coordinate) (Update, error) {
	sess, err := s.Get(id)
	if err != nil {
		return Update{}, err
	}

	upd, arrived := sess.advance(current)
	if arrived {
		s.Stop(id)
	}
	return upd, nil
}

func (sess *Session) advance(current geo.Coordinate) (Update, bool) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	steps := sess.Route.Steps
	total := len(steps)
	if sess.StepIndex >= total {
		return arrivedUpdate(total), true
	}

	step := steps[sess.StepIndex]
	d := geo.DistanceMeters(current, step.End)

	if d < completionRadiusMeters {
		sess.StepIndex++
		sess.lastTier = tierNone

		if sess.StepIndex >= total {
			return arrivedUpdate(total), true
		}

		next := steps[sess.StepIndex]
		return Update{
			Status:         StatusStepCompleted,
			CurrentStep:    sess.StepIndex + 1,
			TotalSteps:     total,
			Instruction:    next.Instruction,
			DistanceToNext: float64(next.DistanceMeters),
			ShouldAnnounce: true,
			Announcement:   next.Instruction,
		}, false
	}

	announcement := ""
	switch {
	case d > 100 && sess.lastTier != tierFar:
		sess.lastTier = tierFar
	case d >= 90 && d <= 110 && sess.lastTier != tierNear100:
		announcement = announceAt(d, step.Instruction, true)
		sess.lastTier = tierNear100
	case d >= 40 && d <= 60 && sess.lastTier != tierNear50:
		announcement = announceAt(d, step.Instruction, false)
		sess.lastTier = tierNear50
	case d >= 20 && d <= 30 && sess.lastTier != tierNear25:
		announcement = announceAt(d, step.Instruction, false)
		sess.lastTier = tierNear25
	}

	return Update{
		Status:         StatusNavigating,
		CurrentStep:    sess.StepIndex + 1,
		TotalSteps:     total,
		Instruction:    step.Instruction,
		DistanceToNext: d,
		ShouldAnnounce: announcement != "",
		Announcement:   announcement,
	}, false
}

func arrivedUpdate(total int) Update {
	return Update{
		Status:         StatusArrived,
		CurrentStep:    total,
		TotalSteps:     total,
		Instruction:    "You have arrived",
		DistanceToNext: 0,
		ShouldAnnounce: true,
		Announcement:   "You have arrived at your destination",
	}
}

// announceAt formats a proximity announcement. Tier thresholds stay in
// meters; units are a formatting concern only. Near distances are spoken in
// feet, the far tier falls back to meters above ~0.1 mile.
func announceAt(meters float64, instruction string, allowMetersFallback bool) string {
	feet := geo.MetersToFeet(meters)
	if allowMetersFallback && feet >= 528 {
		return fmt.Sprintf("In 100 meters, %s", instruction)
	}
	return fmt.Sprintf("In %d feet, %s", int(feet), instruction)
}
