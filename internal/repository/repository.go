// Package repository persists events, reservations and users. Two backends
// implement the same interfaces: gorm over PostgreSQL and the MongoDB driver.
package repository

import (
	"context"
	"errors"

	"github.com/q6kkhvmy6s/rsvp/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id string) (*models.Event, error)
	// FindAll returns every event, newest first.
	FindAll(ctx context.Context) ([]models.Event, error)
	// FindByPromoter returns the events whose promoters contain uid, newest first.
	FindByPromoter(ctx context.Context, uid string) ([]models.Event, error)
	// Update writes only the members set on patch and returns the stored event.
	Update(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error)
	// AttachPromoter adds uid to the event's promoters and eventID to the
	// user's events in one atomic step. Attaching twice is a no-op; the
	// returned bool is false in that case.
	AttachPromoter(ctx context.Context, eventID, uid string) (bool, error)
	// DetachPromoter removes uid from every event's promoters.
	DetachPromoter(ctx context.Context, uid string) (int64, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, r *models.Reservation) error
	FindByID(ctx context.Context, id string) (*models.Reservation, error)
	// FindByEventID returns the event's reservations, newest first.
	FindByEventID(ctx context.Context, eventID string) ([]models.Reservation, error)
	// CountByEvent returns the number of reservations per event id. Events
	// without reservations are absent from the map.
	CountByEvent(ctx context.Context, eventIDs []string) (map[string]int64, error)
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id string, role models.Role) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

// Store groups the repositories of one backend.
type Store struct {
	Events       EventRepository
	Reservations ReservationRepository
	Users        UserRepository
}
