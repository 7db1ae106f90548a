package service

import (
	"context"
	"io"
	"sync"

	"github.com/q6kkhvmy6s/rsvp/internal/models"
	"github.com/q6kkhvmy6s/rsvp/internal/repository"
)

// --- Mock EventRepository ---

type mockEventRepo struct {
	createFn         func(ctx context.Context, event *models.Event) error
	findByIDFn       func(ctx context.Context, id string) (*models.Event, error)
	findAllFn        func(ctx context.Context) ([]models.Event, error)
	findByPromoterFn func(ctx context.Context, uid string) ([]models.Event, error)
	updateFn         func(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error)
	attachFn         func(ctx context.Context, eventID, uid string) (bool, error)
	detachFn         func(ctx context.Context, uid string) (int64, error)
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	return m.createFn(ctx, event)
}
func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	if m.findByIDFn == nil {
		return nil, repository.ErrNotFound
	}
	return m.findByIDFn(ctx, id)
}
func (m *mockEventRepo) FindAll(ctx context.Context) ([]models.Event, error) {
	return m.findAllFn(ctx)
}
func (m *mockEventRepo) FindByPromoter(ctx context.Context, uid string) ([]models.Event, error) {
	return m.findByPromoterFn(ctx, uid)
}
func (m *mockEventRepo) Update(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error) {
	return m.updateFn(ctx, id, patch)
}
func (m *mockEventRepo) AttachPromoter(ctx context.Context, eventID, uid string) (bool, error) {
	return m.attachFn(ctx, eventID, uid)
}
func (m *mockEventRepo) DetachPromoter(ctx context.Context, uid string) (int64, error) {
	return m.detachFn(ctx, uid)
}

// updateInPlace backs Update with an in-memory event.
func updateInPlace(ev *models.Event) func(context.Context, string, models.EventPatch) (*models.Event, error) {
	return func(_ context.Context, _ string, patch models.EventPatch) (*models.Event, error) {
		patch.Apply(ev)
		return ev, nil
	}
}

// --- Mock ReservationRepository ---

type mockReservationRepo struct {
	createFn   func(ctx context.Context, r *models.Reservation) error
	findByIDFn func(ctx context.Context, id string) (*models.Reservation, error)
	findFn     func(ctx context.Context, eventID string) ([]models.Reservation, error)
	countFn    func(ctx context.Context, eventIDs []string) (map[string]int64, error)
	deleteFn   func(ctx context.Context, id string) error
}

func (m *mockReservationRepo) Create(ctx context.Context, r *models.Reservation) error {
	return m.createFn(ctx, r)
}
func (m *mockReservationRepo) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockReservationRepo) FindByEventID(ctx context.Context, eventID string) ([]models.Reservation, error) {
	return m.findFn(ctx, eventID)
}
func (m *mockReservationRepo) CountByEvent(ctx context.Context, eventIDs []string) (map[string]int64, error) {
	if m.countFn == nil {
		return map[string]int64{}, nil
	}
	return m.countFn(ctx, eventIDs)
}
func (m *mockReservationRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

// --- Mock UserRepository ---

type mockUserRepo struct {
	createFn      func(ctx context.Context, u *models.User) error
	findByIDFn    func(ctx context.Context, id string) (*models.User, error)
	findByEmailFn func(ctx context.Context, email string) (*models.User, error)
	findByIDsFn   func(ctx context.Context, ids []string) ([]models.User, error)
	findAllFn     func(ctx context.Context) ([]models.User, error)
	updateRoleFn  func(ctx context.Context, id string, role models.Role) error
	updatePwFn    func(ctx context.Context, id, hash string) error
	deleteFn      func(ctx context.Context, id string) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *models.User) error {
	return m.createFn(ctx, u)
}
func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findByEmailFn(ctx, email)
}
func (m *mockUserRepo) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if m.findByIDsFn == nil {
		return nil, nil
	}
	return m.findByIDsFn(ctx, ids)
}
func (m *mockUserRepo) FindAll(ctx context.Context) ([]models.User, error) {
	return m.findAllFn(ctx)
}
func (m *mockUserRepo) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return m.updateRoleFn(ctx, id, role)
}
func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return m.updatePwFn(ctx, id, hash)
}
func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

// --- Mock Publisher ---

type published struct {
	key     string
	payload any
}

type mockPublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (m *mockPublisher) Publish(_ context.Context, key string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, published{key: key, payload: payload})
	return m.err
}

func (m *mockPublisher) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	for i, p := range m.sent {
		out[i] = p.key
	}
	return out
}

// --- Mock ImageStore ---

type mockImageStore struct {
	saveFn func(ctx context.Context, eventID, filename string, r io.Reader) (string, error)
}

func (m *mockImageStore) Save(ctx context.Context, eventID, filename string, r io.Reader) (string, error) {
	return m.saveFn(ctx, eventID, filename, r)
}
