package handler

import (
	"context"
	"io"
	"time"

	"github.com/q6kkhvmy6s/rsvp/internal/auth"
	"github.com/q6kkhvmy6s/rsvp/internal/export"
	"github.com/q6kkhvmy6s/rsvp/internal/links"
	"github.com/q6kkhvmy6s/rsvp/internal/models"
	"github.com/q6kkhvmy6s/rsvp/internal/service"
)

// --- Mock EventService ---

type mockEventService struct {
	createFn    func(ctx context.Context, s *auth.Session, event *models.Event) error
	getFn       func(ctx context.Context, s *auth.Session, id string) (*models.Event, error)
	dashboardFn func(ctx context.Context, s *auth.Session, sortBy string) (*service.Dashboard, error)
	updateFn    func(ctx context.Context, s *auth.Session, id string, patch models.EventPatch) (*models.Event, error)
	toggleFn    func(ctx context.Context, s *auth.Session, id string) (*models.Event, error)
	setImageFn  func(ctx context.Context, s *auth.Session, id, filename string, r io.Reader) (*models.Event, string, error)
	linksFn     func(ctx context.Context, s *auth.Session, id string) (*service.EventLinks, error)
	prefilledFn func(ctx context.Context, s *auth.Session, id string, fieldID int64, value string) (string, error)
	publicFn    func(ctx context.Context, id string) (*models.Event, error)
	joinFn      func(ctx context.Context, s *auth.Session, id string) error
}

func (m *mockEventService) CreateEvent(ctx context.Context, s *auth.Session, event *models.Event) error {
	return m.createFn(ctx, s, event)
}
func (m *mockEventService) GetEvent(ctx context.Context, s *auth.Session, id string) (*models.Event, error) {
	return m.getFn(ctx, s, id)
}
func (m *mockEventService) ListDashboard(ctx context.Context, s *auth.Session, sortBy string) (*service.Dashboard, error) {
	return m.dashboardFn(ctx, s, sortBy)
}
func (m *mockEventService) UpdateEvent(ctx context.Context, s *auth.Session, id string, patch models.EventPatch) (*models.Event, error) {
	return m.updateFn(ctx, s, id, patch)
}
func (m *mockEventService) ToggleStatus(ctx context.Context, s *auth.Session, id string) (*models.Event, error) {
	return m.toggleFn(ctx, s, id)
}
func (m *mockEventService) ToggleAccepting(ctx context.Context, s *auth.Session, id string) (*models.Event, error) {
	return m.toggleFn(ctx, s, id)
}
func (m *mockEventService) SetImage(ctx context.Context, s *auth.Session, id, filename string, r io.Reader) (*models.Event, string, error) {
	return m.setImageFn(ctx, s, id, filename, r)
}
func (m *mockEventService) Links(ctx context.Context, s *auth.Session, id string) (*service.EventLinks, error) {
	return m.linksFn(ctx, s, id)
}
func (m *mockEventService) PrefilledLink(ctx context.Context, s *auth.Session, id string, fieldID int64, value string) (string, error) {
	return m.prefilledFn(ctx, s, id, fieldID, value)
}
func (m *mockEventService) PublicSummary(ctx context.Context, id string) (*models.Event, error) {
	return m.publicFn(ctx, id)
}
func (m *mockEventService) Join(ctx context.Context, s *auth.Session, id string) error {
	return m.joinFn(ctx, s, id)
}

// --- Mock ReservationService ---

type mockReservationService struct {
	formFn   func(ctx context.Context, eventID string, p links.Prefill) (*service.PublicForm, error)
	submitFn func(ctx context.Context, eventID string, p links.Prefill, answers map[string]string) (*models.Reservation, error)
	listFn   func(ctx context.Context, s *auth.Session, eventID, sortKey string, dir export.Direction) (*service.ReservationList, error)
	deleteFn func(ctx context.Context, s *auth.Session, eventID, reservationID string) error
	exportFn func(ctx context.Context, s *auth.Session, eventID string, w io.Writer) (string, error)
}

func (m *mockReservationService) PublicForm(ctx context.Context, eventID string, p links.Prefill) (*service.PublicForm, error) {
	return m.formFn(ctx, eventID, p)
}
func (m *mockReservationService) Submit(ctx context.Context, eventID string, p links.Prefill, answers map[string]string) (*models.Reservation, error) {
	return m.submitFn(ctx, eventID, p, answers)
}
func (m *mockReservationService) List(ctx context.Context, s *auth.Session, eventID, sortKey string, dir export.Direction) (*service.ReservationList, error) {
	return m.listFn(ctx, s, eventID, sortKey, dir)
}
func (m *mockReservationService) Delete(ctx context.Context, s *auth.Session, eventID, reservationID string) error {
	return m.deleteFn(ctx, s, eventID, reservationID)
}
func (m *mockReservationService) Export(ctx context.Context, s *auth.Session, eventID string, w io.Writer) (string, error) {
	return m.exportFn(ctx, s, eventID, w)
}

// --- Mock AccountService ---

type mockAccountService struct {
	signupFn   func(ctx context.Context, in service.SignupInput) (*service.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*service.AuthResult, error)
	meFn       func(ctx context.Context, s *auth.Session) (*models.User, error)
	joinFn     func(ctx context.Context, in service.SignupInput, eventID string) (*service.AuthResult, error)
	listFn     func(ctx context.Context, s *auth.Session) ([]models.User, error)
	roleFn     func(ctx context.Context, s *auth.Session, uid string, role models.Role) (*models.User, error)
	passwordFn func(ctx context.Context, s *auth.Session, password string) error
	deleteFn   func(ctx context.Context, s *auth.Session) error
}

func (m *mockAccountService) Signup(ctx context.Context, in service.SignupInput) (*service.AuthResult, error) {
	return m.signupFn(ctx, in)
}
func (m *mockAccountService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	return m.loginFn(ctx, email, password)
}
func (m *mockAccountService) Authenticate(ctx context.Context, token string) (*models.User, time.Time, error) {
	return nil, time.Time{}, auth.ErrInvalidToken
}
func (m *mockAccountService) Me(ctx context.Context, s *auth.Session) (*models.User, error) {
	return m.meFn(ctx, s)
}
func (m *mockAccountService) SignupAndJoin(ctx context.Context, in service.SignupInput, eventID string) (*service.AuthResult, error) {
	return m.joinFn(ctx, in, eventID)
}
func (m *mockAccountService) ListUsers(ctx context.Context, s *auth.Session) ([]models.User, error) {
	return m.listFn(ctx, s)
}
func (m *mockAccountService) ChangeRole(ctx context.Context, s *auth.Session, uid string, role models.Role) (*models.User, error) {
	return m.roleFn(ctx, s, uid, role)
}
func (m *mockAccountService) ChangePassword(ctx context.Context, s *auth.Session, password string) error {
	return m.passwordFn(ctx, s, password)
}
func (m *mockAccountService) DeleteAccount(ctx context.Context, s *auth.Session) error {
	return m.deleteFn(ctx, s)
}
