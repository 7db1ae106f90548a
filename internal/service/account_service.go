package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/q6kkhvmy6s/rsvp/internal/auth"
	"github.com/q6kkhvmy6s/rsvp/internal/models"
	"github.com/q6kkhvmy6s/rsvp/internal/repository"
	"github.com/q6kkhvmy6s/rsvp/pkg/rabbitmq"
)

const minPasswordLength = 6

// AuthResult is a signed-in user with a fresh session token.
type AuthResult struct {
	User  *models.User
	Token string
}

type SignupInput struct {
	Email    string
	Password string
	Username string
}

type AccountService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Authenticate resolves a bearer token to its user and issue time.
	Authenticate(ctx context.Context, token string) (*models.User, time.Time, error)
	Me(ctx context.Context, s *auth.Session) (*models.User, error)
	SignupAndJoin(ctx context.Context, in SignupInput, eventID string) (*AuthResult, error)
	ListUsers(ctx context.Context, s *auth.Session) ([]models.User, error)
	ChangeRole(ctx context.Context, s *auth.Session, uid string, role models.Role) (*models.User, error)
	ChangePassword(ctx context.Context, s *auth.Session, password string) error
	DeleteAccount(ctx context.Context, s *auth.Session) error
}

type accountService struct {
	users        repository.UserRepository
	events       repository.EventRepository
	issuer       *auth.Issuer
	publisher    Publisher
	admins       map[string]struct{}
	recentWindow time.Duration
	now          func() time.Time
}

func NewAccountService(
	users repository.UserRepository,
	events repository.EventRepository,
	issuer *auth.Issuer,
	publisher Publisher,
	bootstrapAdmins []string,
	recentWindow time.Duration,
) AccountService {
	admins := make(map[string]struct{}, len(bootstrapAdmins))
	for _, e := range bootstrapAdmins {
		admins[normalizeEmail(e)] = struct{}{}
	}
	return &accountService{
		users:        users,
		events:       events,
		issuer:       issuer,
		publisher:    publisher,
		admins:       admins,
		recentWindow: recentWindow,
		now:          time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *accountService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	u, err := s.createUser(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.signIn(u)
}

func (s *accountService) createUser(ctx context.Context, in SignupInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}
	role := models.RolePromoter
	if _, ok := s.admins[email]; ok {
		role = models.RoleAdmin
	}

	now := s.now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Events:       []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *accountService) signIn(u *models.User) (*AuthResult, error) {
	token, err := s.issuer.Issue(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: u, Token: token}, nil
}

func (s *accountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.signIn(u)
}

func (s *accountService) Authenticate(ctx context.Context, token string) (*models.User, time.Time, error) {
	uid, issuedAt, err := s.issuer.Parse(token)
	if err != nil {
		return nil, time.Time{}, err
	}
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, time.Time{}, auth.ErrInvalidToken
		}
		return nil, time.Time{}, err
	}
	return u, issuedAt, nil
}

func (s *accountService) Me(ctx context.Context, sess *auth.Session) (*models.User, error) {
	if err := requireUser(sess); err != nil {
		return nil, err
	}
	return sess.User(), nil
}

// SignupAndJoin creates an account from the invite page and attaches it to
// the event in the same request.
func (s *accountService) SignupAndJoin(ctx context.Context, in SignupInput, eventID string) (*AuthResult, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	u, err := s.createUser(ctx, in)
	if err != nil {
		return nil, err
	}

	attached, err := s.events.AttachPromoter(ctx, eventID, u.ID)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	u.Events = append(u.Events, eventID)
	if attached {
		publish(ctx, s.publisher, rabbitmq.KeyPromoterAttached, models.PromoterAttached{EventID: eventID, UID: u.ID})
	}
	return s.signIn(u)
}

func (s *accountService) ListUsers(ctx context.Context, sess *auth.Session) ([]models.User, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return s.users.FindAll(ctx)
}

// ChangeRole sets another user's role. An admin cannot demote themselves.
func (s *accountService) ChangeRole(ctx context.Context, sess *auth.Session, uid string, role models.Role) (*models.User, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if uid == sess.UID() && role != models.RoleAdmin {
		return nil, ErrSelfDemotion
	}

	if err := s.users.UpdateRole(ctx, uid, role); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	u, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return u, nil
}

func (s *accountService) requireRecentLogin(sess *auth.Session) error {
	if err := requireUser(sess); err != nil {
		return err
	}
	if !sess.LoggedInWithin(s.recentWindow, s.now()) {
		return ErrRecentLoginRequired
	}
	return nil
}

func (s *accountService) ChangePassword(ctx context.Context, sess *auth.Session, password string) error {
	if err := s.requireRecentLogin(sess); err != nil {
		return err
	}
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, sess.UID(), hash); err != nil {
		return notFound(err, ErrUserNotFound)
	}
	return nil
}

// DeleteAccount removes the caller's user record. Event membership is
// cleaned up asynchronously by the user.deleted consumer.
func (s *accountService) DeleteAccount(ctx context.Context, sess *auth.Session) error {
	if err := s.requireRecentLogin(sess); err != nil {
		return err
	}
	u := sess.User()
	if err := s.users.Delete(ctx, u.ID); err != nil {
		return notFound(err, ErrUserNotFound)
	}

	publish(ctx, s.publisher, rabbitmq.KeyUserDeleted, models.UserDeleted{UID: u.ID, Email: u.Email})
	return nil
}
