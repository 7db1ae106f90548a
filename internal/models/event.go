package models

import "time"

type EventStatus string

const (
	EventActive   EventStatus = "active"
	EventDisabled EventStatus = "disabled"
)

// ImagePlaceholder marks an event without an uploaded image.
const ImagePlaceholder = "placeholder"

type Event struct {
	ID                    string      `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Title                 string      `gorm:"not null" bson:"title" json:"title"`
	Description           string      `bson:"description" json:"description"`
	Time                  string      `bson:"time" json:"time"`
	Place                 string      `bson:"place" json:"place"`
	Address               string      `bson:"address" json:"address"`
	Note                  string      `bson:"note" json:"note"`
	ImageURL              string      `bson:"image_url" json:"imageUrl"`
	Fields                []Field     `gorm:"serializer:json;type:jsonb;not null" bson:"fields" json:"fields"`
	PrimaryField          *int64      `bson:"primary_field" json:"primaryField"`
	Status                EventStatus `gorm:"type:varchar(16);not null;index" bson:"status" json:"status"`
	AcceptingReservations bool        `gorm:"not null" bson:"accepting_reservations" json:"acceptingReservations"`
	Promoters             []string    `gorm:"serializer:json;type:jsonb;not null" bson:"promoters" json:"promoters"`
	CreatedAt             time.Time   `gorm:"index" bson:"created_at" json:"createdAt"`
	UpdatedAt             time.Time   `bson:"updated_at" json:"updatedAt"`
}

func (e *Event) IsDisabled() bool { return e.Status == EventDisabled }

// HasImage reports whether ImageURL points at an actual upload.
func (e *Event) HasImage() bool {
	return e.ImageURL != "" && e.ImageURL != ImagePlaceholder
}

func (e *Event) HasPromoter(uid string) bool {
	for _, p := range e.Promoters {
		if p == uid {
			return true
		}
	}
	return false
}

// InternalFields returns the fields usable for prefilled links.
func (e *Event) InternalFields() []Field {
	out := make([]Field, 0)
	for _, f := range e.Fields {
		if f.IsInternal {
			out = append(out, f)
		}
	}
	return out
}

// EventPatch is a partial update. Nil members are left untouched, both when
// applied in memory and when written to the store.
type EventPatch struct {
	Title                 *string
	Description           *string
	Time                  *string
	Place                 *string
	Address               *string
	Note                  *string
	ImageURL              *string
	Fields                *[]Field
	PrimaryField          **int64
	Status                *EventStatus
	AcceptingReservations *bool
}

func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Time == nil && p.Place == nil &&
		p.Address == nil && p.Note == nil && p.ImageURL == nil && p.Fields == nil &&
		p.PrimaryField == nil && p.Status == nil && p.AcceptingReservations == nil
}

// Apply copies the set members onto e.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Place != nil {
		e.Place = *p.Place
	}
	if p.Address != nil {
		e.Address = *p.Address
	}
	if p.Note != nil {
		e.Note = *p.Note
	}
	if p.ImageURL != nil {
		e.ImageURL = *p.ImageURL
	}
	if p.Fields != nil {
		e.Fields = *p.Fields
	}
	if p.PrimaryField != nil {
		e.PrimaryField = *p.PrimaryField
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.AcceptingReservations != nil {
		e.AcceptingReservations = *p.AcceptingReservations
	}
}
