package models

import "time"

// Reservation is one attendee submission. FormData is keyed by field label.
type Reservation struct {
	ID         string            `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	EventID    string            `gorm:"type:varchar(36);not null;index" bson:"event_id" json:"eventId"`
	FormData   map[string]string `gorm:"serializer:json;type:jsonb;not null" bson:"form_data" json:"formData"`
	PromoterID *string           `gorm:"type:varchar(64);index" bson:"promoter_id" json:"promoterId"`
	CreatedAt  time.Time         `gorm:"index" bson:"created_at" json:"createdAt"`
}

// Promoter returns the attributing user id, or "" for direct submissions.
func (r *Reservation) Promoter() string {
	if r.PromoterID == nil {
		return ""
	}
	return *r.PromoterID
}
