package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/q6kkhvmy6s/rsvp/internal/auth"
	"github.com/q6kkhvmy6s/rsvp/internal/export"
	"github.com/q6kkhvmy6s/rsvp/internal/form"
	"github.com/q6kkhvmy6s/rsvp/internal/links"
	"github.com/q6kkhvmy6s/rsvp/internal/models"
	"github.com/q6kkhvmy6s/rsvp/internal/repository"
	"github.com/q6kkhvmy6s/rsvp/pkg/rabbitmq"
)

// PublicForm is what an attendee sees before submitting.
type PublicForm struct {
	Event    *models.Event
	Controls []form.Control
	Ref      string
}

// ReservationList is the reservations of one event as the caller may see
// them, with the display names of the attributing promoters. Total counts
// the visible rows, All every reservation of the event.
type ReservationList struct {
	Event         *models.Event
	Reservations  []models.Reservation
	PromoterNames map[string]string
	Total         int
	All           int
}

type ReservationService interface {
	PublicForm(ctx context.Context, eventID string, p links.Prefill) (*PublicForm, error)
	Submit(ctx context.Context, eventID string, p links.Prefill, answers map[string]string) (*models.Reservation, error)
	List(ctx context.Context, s *auth.Session, eventID, sortKey string, dir export.Direction) (*ReservationList, error)
	Delete(ctx context.Context, s *auth.Session, eventID, reservationID string) error
	Export(ctx context.Context, s *auth.Session, eventID string, w io.Writer) (string, error)
}

type reservationService struct {
	events       repository.EventRepository
	reservations repository.ReservationRepository
	users        repository.UserRepository
	publisher    Publisher
	loc          *time.Location
	now          func() time.Time
}

func NewReservationService(
	events repository.EventRepository,
	reservations repository.ReservationRepository,
	users repository.UserRepository,
	publisher Publisher,
	loc *time.Location,
) ReservationService {
	if loc == nil {
		loc = time.UTC
	}
	return &reservationService{
		events:       events,
		reservations: reservations,
		users:        users,
		publisher:    publisher,
		loc:          loc,
		now:          time.Now,
	}
}

// openEvent loads an event that is currently taking reservations.
func (s *reservationService) openEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	if event.IsDisabled() {
		return nil, ErrEventDisabled
	}
	if !event.AcceptingReservations {
		return nil, ErrReservationsPaused
	}
	return event, nil
}

func (s *reservationService) PublicForm(ctx context.Context, eventID string, p links.Prefill) (*PublicForm, error) {
	event, err := s.openEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	answers := form.BuildEditableState(event.Fields)
	prefilled := prefilledField(event.Fields, answers, p)

	return &PublicForm{
		Event:    event,
		Controls: form.Render(event.Fields, answers, prefilled),
		Ref:      p.Ref,
	}, nil
}

// Submit stores a reservation. Answers are restricted to the public fields
// plus the prefilled one, and the prefilled value from the link wins over
// whatever the client sent for it. ref is stored verbatim.
func (s *reservationService) Submit(ctx context.Context, eventID string, p links.Prefill, answers map[string]string) (*models.Reservation, error) {
	event, err := s.openEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var prefilled *int64
	if p.HasValue() {
		if _, ok := models.FindField(event.Fields, *p.FieldID); ok {
			prefilled = p.FieldID
		}
	}
	state := form.Restrict(event.Fields, answers, prefilled)
	if prefilled != nil {
		form.ApplyPrefill(event.Fields, state, *prefilled, p.Value)
	}

	if missing := form.MissingRequired(event.Fields, state); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingAnswers, strings.Join(missing, ", "))
	}

	r := &models.Reservation{
		ID:        uuid.NewString(),
		EventID:   event.ID,
		FormData:  form.ToSubmission(state),
		CreatedAt: s.now().UTC(),
	}
	if p.Ref != "" {
		ref := p.Ref
		r.PromoterID = &ref
	}

	if err := s.reservations.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	publish(ctx, s.publisher, rabbitmq.KeyReservationCreated, r)
	return r, nil
}

func prefilledField(fields []models.Field, answers form.Answers, p links.Prefill) *int64 {
	if !p.HasValue() {
		return nil
	}
	if form.ApplyPrefill(fields, answers, *p.FieldID, p.Value) {
		return p.FieldID
	}
	return nil
}

func (s *reservationService) List(ctx context.Context, sess *auth.Session, eventID, sortKey string, dir export.Direction) (*ReservationList, error) {
	event, all, names, err := s.load(ctx, sess, eventID)
	if err != nil {
		return nil, err
	}
	visible := export.VisibleTo(sess, all)
	if sortKey == "" {
		sortKey = export.KeyCreatedAt
	}
	sorted := export.Sort(event.Fields, visible, sortKey, dir, names)

	return &ReservationList{
		Event:         event,
		Reservations:  sorted,
		PromoterNames: names,
		Total:         len(sorted),
		All:           len(all),
	}, nil
}

// load fetches an event the caller may view together with all of its
// reservations and the names of the promoters they are attributed to.
func (s *reservationService) load(ctx context.Context, sess *auth.Session, eventID string) (*models.Event, []models.Reservation, map[string]string, error) {
	if err := requireUser(sess); err != nil {
		return nil, nil, nil, err
	}
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, nil, nil, notFound(err, ErrEventNotFound)
	}
	if !sess.CanViewEvent(event) {
		return nil, nil, nil, ErrForbidden
	}

	all, err := s.reservations.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, nil, nil, err
	}
	names, err := s.promoterNames(ctx, all)
	if err != nil {
		return nil, nil, nil, err
	}
	return event, all, names, nil
}

func (s *reservationService) promoterNames(ctx context.Context, rs []models.Reservation) (map[string]string, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, r := range rs {
		uid := r.Promoter()
		if uid == "" {
			continue
		}
		if _, ok := seen[uid]; !ok {
			seen[uid] = struct{}{}
			ids = append(ids, uid)
		}
	}

	names := make(map[string]string, len(ids))
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve promoters: %w", err)
	}
	for _, u := range users {
		names[u.ID] = u.DisplayName()
	}
	return names, nil
}

// Delete removes a reservation. Admins may delete any; a promoter only the
// ones attributed to them.
func (s *reservationService) Delete(ctx context.Context, sess *auth.Session, eventID, reservationID string) error {
	if err := requireUser(sess); err != nil {
		return err
	}
	r, err := s.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return notFound(err, ErrReservationNotFound)
	}
	if r.EventID != eventID {
		return ErrReservationNotFound
	}
	if !sess.CanManageReservation(r) {
		return ErrForbidden
	}

	if err := s.reservations.Delete(ctx, reservationID); err != nil {
		return notFound(err, ErrReservationNotFound)
	}

	publish(ctx, s.publisher, rabbitmq.KeyReservationDeleted, models.ReservationDeleted{ID: r.ID, EventID: eventID})
	return nil
}

// Export writes every reservation of the event as CSV and returns the
// download filename.
func (s *reservationService) Export(ctx context.Context, sess *auth.Session, eventID string, w io.Writer) (string, error) {
	if err := requireAdmin(sess); err != nil {
		return "", err
	}
	event, all, names, err := s.load(ctx, sess, eventID)
	if err != nil {
		return "", err
	}
	if err := export.WriteCSV(w, event, all, names, s.loc); err != nil {
		return "", err
	}
	return export.Filename(event.Title, s.now().In(s.loc)), nil
}
