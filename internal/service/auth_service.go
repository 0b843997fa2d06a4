package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/pkg/util/errorutil"
)

// AuthService coordinates registration, login and session flows.
type AuthService struct {
	users       repository.UserRepository
	sessions    repository.SessionRepository
	hasher      *auth.PasswordHasher
	tokens      *auth.TokenManager
	sessionTTL  time.Duration
	adminSecret string
	dummyHash   string
	metrics     *observability.Metrics
	logger      *zap.Logger
	events      publisher
	now         func() time.Time
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// RegisterInput is the payload of an admin-key registration.
type RegisterInput struct {
	Email     string
	Password  string
	Name      *string
	SecretKey string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) (*AuthService, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	// Unknown emails are verified against this hash so both login failures
	// cost one bcrypt comparison.
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}

	return &AuthService{
		users:       deps.UserRepo,
		sessions:    deps.SessionRepo,
		hasher:      hasher,
		tokens:      auth.NewTokenManager(cfg.Session.Secret, cfg.App.Name),
		sessionTTL:  cfg.Session.TTL(),
		adminSecret: cfg.Auth.AdminSecretKey,
		dummyHash:   dummy,
		metrics:     deps.Metrics,
		logger:      logger,
		events:      publisher{dispatcher: deps.Dispatcher, metrics: deps.Metrics, logger: logger},
		now:         time.Now,
	}, nil
}

// Hasher exposes the password hasher shared with the user service.
func (s *AuthService) Hasher() *auth.PasswordHasher {
	return s.hasher
}

// Login verifies credentials and opens a session. Unknown email and wrong
// password are indistinguishable; a disabled account is only reported once
// the password matched.
func (s *AuthService) Login(ctx context.Context, email, password string) (_ *domain.User, _ *domain.IssuedSession, err error) {
	ctx, span := startSpan(ctx, "AuthService.Login")
	defer func() { endSpan(span, err) }()

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, nil, storeError(err)
		}
		s.hasher.Verify(password, s.dummyHash)
		s.metrics.RecordAuth("login", "invalid_credentials")
		return nil, nil, errorutil.ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.metrics.RecordAuth("login", "invalid_credentials")
		return nil, nil, errorutil.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.metrics.RecordAuth("login", "account_disabled")
		return nil, nil, errorutil.ErrAccountDisabled
	}

	issued, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.RecordAuth("login", "success")
	s.events.publish(ctx, events.NewEvent(events.EventUserLoggedIn, user.ID, events.ActorFromUser(user), nil))
	return user, issued, nil
}

// Register creates an active admin account when the caller presents the
// configured admin secret. Public registration is disabled.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (_ *domain.User, _ *domain.IssuedSession, err error) {
	ctx, span := startSpan(ctx, "AuthService.Register")
	defer func() { endSpan(span, err) }()

	if input.SecretKey == "" {
		s.metrics.RecordAuth("register", "disabled")
		return nil, nil, errorutil.ErrRegistrationDisabled
	}
	if s.adminSecret == "" {
		s.logger.Error("registration attempted with an admin key but ADMIN_SECRET_KEY is not configured")
		s.metrics.RecordAuth("register", "secret_unconfigured")
		return nil, nil, errorutil.ErrAdminSecretUnconfigured
	}
	if !secretsEqual(input.SecretKey, s.adminSecret) {
		s.metrics.RecordAuth("register", "bad_secret")
		return nil, nil, errorutil.ErrRegistrationDisabled
	}

	email := normalizeEmail(input.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		s.metrics.RecordAuth("register", "email_exists")
		return nil, nil, errorutil.ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, storeError(err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, nil, hashError(err)
	}

	user := &domain.User{
		Email:        email,
		Name:         normalizeName(input.Name),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, storeError(err)
	}

	issued, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.RecordAuth("register", "success")
	s.events.publish(ctx, events.NewEvent(events.EventUserRegistered, user.ID, nil, events.UserAccountPayload{
		Email:    user.Email,
		Role:     user.Role,
		IsActive: user.IsActive,
	}))
	return user, issued, nil
}

// Logout revokes a single session.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) (err error) {
	ctx, span := startSpan(ctx, "AuthService.Logout")
	defer func() { endSpan(span, err) }()

	if principal == nil || principal.Session == nil {
		return errorutil.ErrUnauthorized
	}
	if err := s.sessions.Delete(ctx, principal.Session.ID); err != nil {
		return errorutil.NewInternalError(err)
	}
	s.events.publish(ctx, events.NewEvent(events.EventUserLoggedOut, principal.User.ID, events.ActorFromUser(principal.User), nil))
	return nil
}

// Authenticate resolves a session token to its active user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (_ *domain.User, _ *domain.Session, err error) {
	ctx, span := startSpan(ctx, "AuthService.Authenticate")
	defer func() { endSpan(span, err) }()

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, errorutil.ErrUnauthorized
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, errorutil.ErrUnauthorized
	}

	session, err := s.sessions.Get(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, errorutil.ErrUnauthorized
		}
		return nil, nil, errorutil.NewInternalError(err)
	}
	if session.UserID != userID || session.Expired(s.now()) {
		return nil, nil, errorutil.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = s.sessions.Delete(ctx, session.ID)
			return nil, nil, errorutil.ErrUnauthorized
		}
		return nil, nil, storeError(err)
	}
	if !user.IsActive {
		return nil, nil, errorutil.ErrAccountDisabled
	}
	return user, session, nil
}

// Activate marks the account active. Activating an active account is a no-op.
func (s *AuthService) Activate(ctx context.Context, actor *domain.User, id int64) (*domain.User, error) {
	return s.setActive(ctx, actor, id, true)
}

// Deactivate marks the account inactive and revokes all of its sessions.
func (s *AuthService) Deactivate(ctx context.Context, actor *domain.User, id int64) (*domain.User, error) {
	return s.setActive(ctx, actor, id, false)
}

func (s *AuthService) setActive(ctx context.Context, actor *domain.User, id int64, active bool) (_ *domain.User, err error) {
	ctx, span := startSpan(ctx, "AuthService.SetActive")
	defer func() { endSpan(span, err) }()

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}

	if user.IsActive != active {
		user.IsActive = active
		if err := s.users.Update(ctx, user); err != nil {
			return nil, storeError(err)
		}
	}

	eventType := events.EventUserActivated
	if !active {
		eventType = events.EventUserDeactivated
		if err := s.sessions.DeleteByUser(ctx, user.ID, ""); err != nil {
			return nil, errorutil.NewInternalError(err)
		}
	}
	s.events.publish(ctx, events.NewEvent(eventType, user.ID, events.ActorFromUser(actor), nil))
	return user, nil
}

// EnsureAdminUser creates an active admin with the given credentials unless
// the email is already registered. Empty credentials disable the bootstrap.
func (s *AuthService) EnsureAdminUser(ctx context.Context, email, password, name string) (created bool, err error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}
	user := &domain.User{
		Email:        email,
		Name:         normalizeName(&name),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return false, nil
		}
		return false, err
	}

	s.logger.Info("bootstrap admin created", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	s.events.publish(ctx, events.NewEvent(events.EventUserCreated, user.ID, nil, events.UserAccountPayload{
		Email:    user.Email,
		Role:     user.Role,
		IsActive: user.IsActive,
	}))
	return true, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*domain.IssuedSession, error) {
	now := s.now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, errorutil.NewInternalError(err)
	}

	token, expiresAt, err := s.tokens.Issue(session)
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, errorutil.NewInternalError(err)
	}
	return &domain.IssuedSession{Session: session, Token: token, ExpiresAt: expiresAt}, nil
}

// secretsEqual compares digests so neither content nor length leaks through timing.
func secretsEqual(a, b string) bool {
	da := sha256.Sum256([]byte(a))
	db := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(da[:], db[:]) == 1
}
