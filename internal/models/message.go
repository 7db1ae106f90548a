package models

// PromoterAttached is published when a user joins an event team.
type PromoterAttached struct {
	EventID string `json:"eventId"`
	UID     string `json:"uid"`
}

// UserDeleted is published after an account removes itself.
type UserDeleted struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// ReservationDeleted carries enough to locate the removed row.
type ReservationDeleted struct {
	ID      string `json:"id"`
	EventID string `json:"eventId"`
}
