package service

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/q6kkhvmy6s/rsvp/internal/auth"
	"github.com/q6kkhvmy6s/rsvp/internal/links"
	"github.com/q6kkhvmy6s/rsvp/internal/models"
	"github.com/q6kkhvmy6s/rsvp/internal/repository"
	"github.com/q6kkhvmy6s/rsvp/pkg/logger"
	"github.com/q6kkhvmy6s/rsvp/pkg/rabbitmq"
	"go.uber.org/zap"
)

// WarningImageUpload accompanies a saved event whose image could not be stored.
const WarningImageUpload = "Failed to upload image. The event was saved without changing the image."

// Dashboard sort orders.
const (
	SortByDate         = "date"
	SortByName         = "name"
	SortByReservations = "reservations"
)

// ImageStore keeps uploaded event images and returns their public URL.
type ImageStore interface {
	Save(ctx context.Context, eventID, filename string, r io.Reader) (string, error)
}

type DashboardEvent struct {
	models.Event
	ReservationCount int64 `json:"reservationCount"`
}

// Dashboard splits the visible events into active and disabled ("past").
type Dashboard struct {
	Active                  []DashboardEvent
	Past                    []DashboardEvent
	TotalActiveReservations int64
}

type EventLinks struct {
	Reservation string
	Invite      string
}

type EventService interface {
	CreateEvent(ctx context.Context, s *auth.Session, event *models.Event) error
	GetEvent(ctx context.Context, s *auth.Session, id string) (*models.Event, error)
	ListDashboard(ctx context.Context, s *auth.Session, sortBy string) (*Dashboard, error)
	UpdateEvent(ctx context.Context, s *auth.Session, id string, patch models.EventPatch) (*models.Event, error)
	ToggleStatus(ctx context.Context, s *auth.Session, id string) (*models.Event, error)
	ToggleAccepting(ctx context.Context, s *auth.Session, id string) (*models.Event, error)
	SetImage(ctx context.Context, s *auth.Session, id, filename string, r io.Reader) (*models.Event, string, error)
	Links(ctx context.Context, s *auth.Session, id string) (*EventLinks, error)
	PrefilledLink(ctx context.Context, s *auth.Session, id string, fieldID int64, value string) (string, error)
	PublicSummary(ctx context.Context, id string) (*models.Event, error)
	Join(ctx context.Context, s *auth.Session, id string) error
}

type eventService struct {
	events       repository.EventRepository
	reservations repository.ReservationRepository
	images       ImageStore
	publisher    Publisher
	baseURL      string
	now          func() time.Time
}

func NewEventService(
	events repository.EventRepository,
	reservations repository.ReservationRepository,
	images ImageStore,
	publisher Publisher,
	baseURL string,
) EventService {
	return &eventService{
		events:       events,
		reservations: reservations,
		images:       images,
		publisher:    publisher,
		baseURL:      baseURL,
		now:          time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, sess *auth.Session, event *models.Event) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if strings.TrimSpace(event.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}

	if len(event.Fields) == 0 {
		event.Fields = models.DefaultFields()
	}
	models.AssignFieldIDs(event.Fields, s.now())
	for i := range event.Fields {
		event.Fields[i] = event.Fields[i].Normalize()
	}
	if err := models.ValidateFields(event.Fields, event.PrimaryField); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	now := s.now().UTC()
	event.ID = uuid.NewString()
	event.Status = models.EventActive
	event.AcceptingReservations = true
	event.Promoters = []string{}
	if event.ImageURL == "" {
		event.ImageURL = models.ImagePlaceholder
	}
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.events.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	publish(ctx, s.publisher, rabbitmq.KeyEventCreated, event)
	return nil
}

// GetEvent is open to admins and to promoters attached to the event.
func (s *eventService) GetEvent(ctx context.Context, sess *auth.Session, id string) (*models.Event, error) {
	if err := requireUser(sess); err != nil {
		return nil, err
	}
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	if !sess.CanViewEvent(event) {
		return nil, ErrForbidden
	}
	return event, nil
}

func (s *eventService) ListDashboard(ctx context.Context, sess *auth.Session, sortBy string) (*Dashboard, error) {
	if err := requireUser(sess); err != nil {
		return nil, err
	}

	var (
		events []models.Event
		err    error
	)
	if sess.IsAdmin() {
		events, err = s.events.FindAll(ctx)
	} else {
		events, err = s.events.FindByPromoter(ctx, sess.UID())
	}
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	counts, err := s.reservations.CountByEvent(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]DashboardEvent, len(events))
	for i, e := range events {
		rows[i] = DashboardEvent{Event: e, ReservationCount: counts[e.ID]}
	}
	sortDashboard(rows, sortBy)

	d := &Dashboard{Active: []DashboardEvent{}, Past: []DashboardEvent{}}
	for _, row := range rows {
		if row.IsDisabled() {
			d.Past = append(d.Past, row)
			continue
		}
		d.Active = append(d.Active, row)
		d.TotalActiveReservations += row.ReservationCount
	}
	return d, nil
}

func sortDashboard(rows []DashboardEvent, sortBy string) {
	slices.SortStableFunc(rows, func(a, b DashboardEvent) int {
		switch sortBy {
		case SortByName:
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case SortByReservations:
			return cmp.Compare(b.ReservationCount, a.ReservationCount)
		default:
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	})
}

// UpdateEvent applies a partial edit. Existing fields keep their original
// type; options are dropped from non-select fields.
func (s *eventService) UpdateEvent(ctx context.Context, sess *auth.Session, id string, patch models.EventPatch) (*models.Event, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	current, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if patch.Status != nil && *patch.Status != models.EventActive && *patch.Status != models.EventDisabled {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidEvent, *patch.Status)
	}

	fields := current.Fields
	if patch.Fields != nil {
		next := append([]models.Field(nil), (*patch.Fields)...)
		models.AssignFieldIDs(next, s.now())
		merged := models.MergeFieldTypes(current.Fields, next)
		patch.Fields = &merged
		fields = merged
	}
	primary := current.PrimaryField
	if patch.PrimaryField != nil {
		primary = *patch.PrimaryField
	}
	if err := models.ValidateFields(fields, primary); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	return s.update(ctx, id, patch)
}

func (s *eventService) update(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error) {
	event, err := s.events.Update(ctx, id, patch)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	publish(ctx, s.publisher, rabbitmq.KeyEventUpdated, event)
	return event, nil
}

// ToggleStatus flips an event between active and disabled.
func (s *eventService) ToggleStatus(ctx context.Context, sess *auth.Session, id string) (*models.Event, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}

	next := models.EventDisabled
	if event.IsDisabled() {
		next = models.EventActive
	}
	return s.update(ctx, id, models.EventPatch{Status: &next})
}

// ToggleAccepting pauses or resumes reservations without disabling the event.
func (s *eventService) ToggleAccepting(ctx context.Context, sess *auth.Session, id string) (*models.Event, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}

	next := !event.AcceptingReservations
	return s.update(ctx, id, models.EventPatch{AcceptingReservations: &next})
}

// SetImage stores the upload and points the event at it. A storage failure
// leaves the event as it was and is reported through the returned warning.
func (s *eventService) SetImage(ctx context.Context, sess *auth.Session, id, filename string, r io.Reader) (*models.Event, string, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, "", err
	}
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, "", notFound(err, ErrEventNotFound)
	}

	if s.images == nil {
		return event, WarningImageUpload, nil
	}
	url, err := s.images.Save(ctx, id, filename, r)
	if err != nil {
		logger.Log.Warn("image upload failed", zap.String("event_id", id), zap.Error(err))
		return event, WarningImageUpload, nil
	}

	event, err = s.update(ctx, id, models.EventPatch{ImageURL: &url})
	if err != nil {
		return nil, "", err
	}
	return event, "", nil
}

// Links returns the shareable URLs of an event. Promoters get their uid as
// the attribution ref.
func (s *eventService) Links(ctx context.Context, sess *auth.Session, id string) (*EventLinks, error) {
	event, err := s.GetEvent(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return &EventLinks{
		Reservation: links.ReservationURL(s.baseURL, event.ID, s.refFor(sess)),
		Invite:      links.InviteURL(s.baseURL, event.ID),
	}, nil
}

func (s *eventService) PrefilledLink(ctx context.Context, sess *auth.Session, id string, fieldID int64, value string) (string, error) {
	event, err := s.GetEvent(ctx, sess, id)
	if err != nil {
		return "", err
	}
	if _, ok := models.FindField(event.InternalFields(), fieldID); !ok {
		return "", ErrNotInternalField
	}
	if value == "" {
		return "", ErrEmptyPrefillValue
	}
	return links.PrefilledURL(s.baseURL, event.ID, s.refFor(sess), fieldID, value), nil
}

func (s *eventService) refFor(sess *auth.Session) string {
	if sess.IsPromoter() {
		return sess.UID()
	}
	return ""
}

// PublicSummary backs the join page and is readable without a session.
func (s *eventService) PublicSummary(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	return event, nil
}

// Join attaches the caller to the event team. Joining again is harmless and
// an admin keeps the admin role.
func (s *eventService) Join(ctx context.Context, sess *auth.Session, id string) error {
	if err := requireUser(sess); err != nil {
		return err
	}
	attached, err := s.events.AttachPromoter(ctx, id, sess.UID())
	if err != nil {
		return notFound(err, ErrEventNotFound)
	}
	if attached {
		publish(ctx, s.publisher, rabbitmq.KeyPromoterAttached, models.PromoterAttached{EventID: id, UID: sess.UID()})
	}
	return nil
}
