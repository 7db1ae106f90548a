package dto

import (
	"github.com/q6kkhvmy6s/rsvp/internal/form"
	"github.com/q6kkhvmy6s/rsvp/internal/models"
	"github.com/q6kkhvmy6s/rsvp/internal/service"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func ToAuthResponse(r *service.AuthResult) AuthResponse {
	return AuthResponse{Token: r.Token, User: r.User}
}

// EventResponse is an event as its team sees it. Warning is set when part of
// the request (an image upload) could not be honored.
type EventResponse struct {
	*models.Event
	Warning string `json:"warning,omitempty"`
}

// PublicEventResponse omits the team and the form definition.
type PublicEventResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Time        string `json:"time"`
	Place       string `json:"place"`
	Address     string `json:"address"`
	Note        string `json:"note"`
	ImageURL    string `json:"imageUrl"`
}

func ToPublicEventResponse(e *models.Event) PublicEventResponse {
	return PublicEventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Time:        e.Time,
		Place:       e.Place,
		Address:     e.Address,
		Note:        e.Note,
		ImageURL:    e.ImageURL,
	}
}

type PublicFormResponse struct {
	Event    PublicEventResponse `json:"event"`
	Controls []form.Control      `json:"controls"`
	Ref      string              `json:"ref,omitempty"`
}

func ToPublicFormResponse(pf *service.PublicForm) PublicFormResponse {
	return PublicFormResponse{
		Event:    ToPublicEventResponse(pf.Event),
		Controls: pf.Controls,
		Ref:      pf.Ref,
	}
}

type DashboardResponse struct {
	Active                  []service.DashboardEvent `json:"active"`
	Past                    []service.DashboardEvent `json:"past"`
	TotalActiveReservations int64                    `json:"totalActiveReservations"`
}

func ToDashboardResponse(d *service.Dashboard) DashboardResponse {
	return DashboardResponse{
		Active:                  d.Active,
		Past:                    d.Past,
		TotalActiveReservations: d.TotalActiveReservations,
	}
}

type LinksResponse struct {
	ReservationURL string `json:"reservationUrl"`
	InviteURL      string `json:"inviteUrl"`
}

type PrefilledLinkResponse struct {
	URL string `json:"url"`
}

type ReservationRow struct {
	models.Reservation
	PromoterName string `json:"promoterName"`
}

type ReservationListResponse struct {
	Reservations []ReservationRow `json:"reservations"`
	Total        int              `json:"total"`
	All          int              `json:"all"`
}

func ToReservationListResponse(l *service.ReservationList) ReservationListResponse {
	rows := make([]ReservationRow, len(l.Reservations))
	for i, r := range l.Reservations {
		rows[i] = ReservationRow{Reservation: r, PromoterName: l.PromoterNames[r.Promoter()]}
	}
	return ReservationListResponse{Reservations: rows, Total: l.Total, All: l.All}
}
