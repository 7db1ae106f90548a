package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/q6kkhvmy6s/rsvp/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewGormStore wires the PostgreSQL-backed repositories.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Events:       NewEventRepository(db),
		Reservations: NewReservationRepository(db),
		Users:        NewUserRepository(db),
	}
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("insert event: %w", translate(err))
	}
	return nil
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	return r.find(r.db.WithContext(ctx), id)
}

func (r *eventRepository) find(tx *gorm.DB, id string) (*models.Event, error) {
	var event models.Event
	if err := tx.First(&event, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (r *eventRepository) FindAll(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (r *eventRepository) FindByPromoter(ctx context.Context, uid string) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("promoters @> ?::jsonb", containsJSON(uid)).
		Order("created_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list events for promoter: %w", err)
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error) {
	event, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return event, nil
	}

	patch.Apply(event)
	event.UpdatedAt = time.Now().UTC()

	err = r.db.WithContext(ctx).
		Model(event).
		Select(patchColumns(patch)).
		Updates(event).Error
	if err != nil {
		return nil, fmt.Errorf("update event %s: %w", id, err)
	}
	return event, nil
}

// AttachPromoter locks the event and the user rows so concurrent joins of the
// same pair serialize and the membership check below stays accurate.
func (r *eventRepository) AttachPromoter(ctx context.Context, eventID, uid string) (bool, error) {
	attached := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event, "id = ?", eventID).Error; err != nil {
			return translate(err)
		}
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", uid).Error; err != nil {
			return translate(err)
		}

		now := time.Now().UTC()
		if !event.HasPromoter(uid) {
			event.Promoters = append(event.Promoters, uid)
			event.UpdatedAt = now
			if err := tx.Model(&event).Select("promoters", "updated_at").Updates(&event).Error; err != nil {
				return err
			}
			attached = true
		}
		if !contains(user.Events, eventID) {
			user.Events = append(user.Events, eventID)
			user.UpdatedAt = now
			if err := tx.Model(&user).Select("events", "updated_at").Updates(&user).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("attach promoter %s to %s: %w", uid, eventID, err)
	}
	return attached, nil
}

func (r *eventRepository) DetachPromoter(ctx context.Context, uid string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("promoters @> ?::jsonb", containsJSON(uid)).
		UpdateColumns(map[string]any{
			"promoters":  gorm.Expr("promoters - ?", uid),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("detach promoter %s: %w", uid, res.Error)
	}
	return res.RowsAffected, nil
}

func patchColumns(p models.EventPatch) []string {
	cols := []string{"updated_at"}
	add := func(set bool, col string) {
		if set {
			cols = append(cols, col)
		}
	}
	add(p.Title != nil, "title")
	add(p.Description != nil, "description")
	add(p.Time != nil, "time")
	add(p.Place != nil, "place")
	add(p.Address != nil, "address")
	add(p.Note != nil, "note")
	add(p.ImageURL != nil, "image_url")
	add(p.Fields != nil, "fields")
	add(p.PrimaryField != nil, "primary_field")
	add(p.Status != nil, "status")
	add(p.AcceptingReservations != nil, "accepting_reservations")
	return cols
}

// containsJSON is the jsonb operand matching an array that holds s.
func containsJSON(s string) string {
	b, _ := json.Marshal([]string{s})
	return string(b)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
