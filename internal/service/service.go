// Package service holds the reservation workflows: event management, the
// public form, and accounts. Every operation takes the caller's session
// explicitly.
package service

import (
	"context"
	"errors"

	"github.com/q6kkhvmy6s/rsvp/internal/auth"
	"github.com/q6kkhvmy6s/rsvp/internal/export"
	"github.com/q6kkhvmy6s/rsvp/internal/repository"
	"github.com/q6kkhvmy6s/rsvp/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrForbidden           = errors.New("you do not have permission to perform this action")
	ErrEventDisabled       = errors.New("This event is no longer accepting reservations.")
	ErrReservationsPaused  = errors.New("Reservations for this event are currently paused. Please check back later.")
	ErrMissingAnswers      = errors.New("please fill in all required fields")
	ErrInvalidEvent        = errors.New("invalid event")
	ErrNotInternalField    = errors.New("prefilled links can only target internal fields")
	ErrEmptyPrefillValue   = errors.New("a value is required for a prefilled link")
	ErrNothingToExport     = export.ErrNothingToExport
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidEmail        = errors.New("a valid email is required")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
	ErrInvalidRole         = errors.New("role must be admin or promoter")
	ErrSelfDemotion        = errors.New("you cannot remove your own admin role")
	ErrRecentLoginRequired = errors.New("for security, please log out and log back in before retrying this action")
)

// Publisher emits domain messages. A nil Publisher disables publishing.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

func publish(ctx context.Context, p Publisher, routingKey string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, routingKey, payload); err != nil {
		logger.Log.Warn("publish failed", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

func requireUser(s *auth.Session) error {
	if s.IsAnonymous() {
		return ErrUnauthenticated
	}
	return nil
}

func requireAdmin(s *auth.Session) error {
	if err := requireUser(s); err != nil {
		return err
	}
	if !s.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// notFound maps the store's not-found onto the operation's own sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}
