package dto

import (
	"bytes"
	"encoding/json"

	"github.com/q6kkhvmy6s/rsvp/internal/models"
)

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type RoleRequest struct {
	Role models.Role `json:"role"`
}

type PrefilledLinkRequest struct {
	FieldID int64  `json:"fieldId"`
	Value   string `json:"value"`
}

type SubmitReservationRequest struct {
	FormData map[string]string `json:"formData"`
}

// NullableID tells an absent JSON member apart from an explicit null.
type NullableID struct {
	Set   bool
	Value *int64
}

func (n *NullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(b, []byte("null")) {
		n.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// EventRequest is the body of event create and edit. Absent members are
// left untouched on edit.
type EventRequest struct {
	Title        *string             `json:"title"`
	Description  *string             `json:"description"`
	Time         *string             `json:"time"`
	Place        *string             `json:"place"`
	Address      *string             `json:"address"`
	Note         *string             `json:"note"`
	Fields       *[]models.Field     `json:"fields"`
	PrimaryField NullableID          `json:"primaryField"`
	Status       *models.EventStatus `json:"status"`
	Accepting    *bool               `json:"acceptingReservations"`
}

func (r *EventRequest) ToModel() *models.Event {
	e := &models.Event{}
	r.ToPatch().Apply(e)
	return e
}

func (r *EventRequest) ToPatch() models.EventPatch {
	p := models.EventPatch{
		Title:                 r.Title,
		Description:           r.Description,
		Time:                  r.Time,
		Place:                 r.Place,
		Address:               r.Address,
		Note:                  r.Note,
		Fields:                r.Fields,
		Status:                r.Status,
		AcceptingReservations: r.Accepting,
	}
	if r.PrimaryField.Set {
		primary := r.PrimaryField.Value
		p.PrimaryField = &primary
	}
	return p
}
