package auth

import (
	"time"

	"github.com/q6kkhvmy6s/rsvp/internal/models"
)

type SessionState int

const (
	StateUninitialized SessionState = iota
	StateResolving
	StateResolved
)

func (s SessionState) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	}
	return "uninitialized"
}

// Session is the per-request identity. It is created by the auth middleware
// and handed to services explicitly.
type Session struct {
	state    SessionState
	user     *models.User
	issuedAt time.Time
}

func NewSession() *Session { return &Session{} }

// Begin moves the session into the resolving state.
func (s *Session) Begin() { s.state = StateResolving }

// Resolve finishes resolution. A nil user leaves the session anonymous.
func (s *Session) Resolve(u *models.User, issuedAt time.Time) {
	s.user = u
	s.issuedAt = issuedAt
	s.state = StateResolved
}

// ForUser returns a resolved session, mostly for tests and internal callers.
func ForUser(u *models.User, issuedAt time.Time) *Session {
	s := NewSession()
	s.Resolve(u, issuedAt)
	return s
}

func Anonymous() *Session {
	return ForUser(nil, time.Time{})
}

func (s *Session) State() SessionState { return s.state }

func (s *Session) IsAnonymous() bool { return s == nil || s.user == nil }

func (s *Session) User() *models.User {
	if s == nil {
		return nil
	}
	return s.user
}

func (s *Session) UID() string {
	if s.IsAnonymous() {
		return ""
	}
	return s.user.ID
}

func (s *Session) IsAdmin() bool {
	return !s.IsAnonymous() && s.user.Role == models.RoleAdmin
}

func (s *Session) IsPromoter() bool {
	return !s.IsAnonymous() && s.user.Role == models.RolePromoter
}

// CanManageReservation is true for admins and for the promoter the
// reservation is attributed to.
func (s *Session) CanManageReservation(r *models.Reservation) bool {
	if s.IsAdmin() {
		return true
	}
	return !s.IsAnonymous() && r.Promoter() != "" && r.Promoter() == s.user.ID
}

// CanViewEvent is true for admins and for promoters attached to the event.
func (s *Session) CanViewEvent(e *models.Event) bool {
	if s.IsAdmin() {
		return true
	}
	return !s.IsAnonymous() && e.HasPromoter(s.user.ID)
}

// LoggedInWithin reports whether the credentials behind this session were
// presented less than window ago.
func (s *Session) LoggedInWithin(window time.Duration, now time.Time) bool {
	if s.IsAnonymous() || s.issuedAt.IsZero() {
		return false
	}
	return now.Sub(s.issuedAt) <= window
}
