package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/pkg/util/errorutil"
)

// UserService implements the users resource.
type UserService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	hasher   *auth.PasswordHasher
	events   publisher
}

// UserDependencies bundles collaborators of the user service.
type UserDependencies struct {
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	Hasher      *auth.PasswordHasher
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// CreateUserInput describes an admin-created account.
type CreateUserInput struct {
	Email    string
	Password string
	Name     *string
	Role     domain.Role
	IsActive bool
}

// UpdateUserInput holds the fields any owner may change. Nil means untouched.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
}

// AdminUpdateInput extends UpdateUserInput with admin-only fields.
type AdminUpdateInput struct {
	UpdateUserInput
	Role     *domain.Role
	IsActive *bool
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:    deps.UserRepo,
		sessions: deps.SessionRepo,
		hasher:   deps.Hasher,
		events:   publisher{dispatcher: deps.Dispatcher, metrics: deps.Metrics, logger: logger},
	}
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (_ *domain.User, err error) {
	ctx, span := startSpan(ctx, "UserService.Get")
	defer func() { endSpan(span, err) }()

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return user, nil
}

// List returns all users ordered by id.
func (s *UserService) List(ctx context.Context) (_ []domain.User, err error) {
	ctx, span := startSpan(ctx, "UserService.List")
	defer func() { endSpan(span, err) }()

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return users, nil
}

// Create adds an account on behalf of an admin.
func (s *UserService) Create(ctx context.Context, actor *domain.User, input CreateUserInput) (_ *domain.User, err error) {
	ctx, span := startSpan(ctx, "UserService.Create")
	defer func() { endSpan(span, err) }()

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, errorutil.NewValidationError(map[string]any{"role": "invalidRole"})
	}

	email := normalizeEmail(input.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, errorutil.ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, hashError(err)
	}

	user := &domain.User{
		Email:        email,
		Name:         normalizeName(input.Name),
		PasswordHash: hash,
		Role:         role,
		IsActive:     input.IsActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeError(err)
	}

	s.events.publish(ctx, events.NewEvent(events.EventUserCreated, user.ID, events.ActorFromUser(actor), events.UserAccountPayload{
		Email:    user.Email,
		Role:     user.Role,
		IsActive: user.IsActive,
	}))
	return user, nil
}

// UpdateSelf applies an owner update. Admins may update any account through
// this path too. A password change revokes the target's other sessions.
func (s *UserService) UpdateSelf(ctx context.Context, principal *auth.Principal, id int64, input UpdateUserInput) (_ *domain.User, err error) {
	ctx, span := startSpan(ctx, "UserService.UpdateSelf")
	defer func() { endSpan(span, err) }()

	if principal == nil || principal.User == nil {
		return nil, errorutil.ErrUnauthorized
	}
	if principal.User.ID != id && !principal.User.IsAdmin() {
		return nil, errorutil.ErrNotOwner
	}
	return s.update(ctx, principal, id, AdminUpdateInput{UpdateUserInput: input})
}

// AdminUpdate applies an admin update including role and activation state.
// Deactivating revokes all sessions of the user.
func (s *UserService) AdminUpdate(ctx context.Context, principal *auth.Principal, id int64, input AdminUpdateInput) (_ *domain.User, err error) {
	ctx, span := startSpan(ctx, "UserService.AdminUpdate")
	defer func() { endSpan(span, err) }()

	if principal == nil || !principal.User.IsAdmin() {
		return nil, errorutil.ErrAdminRequired
	}
	return s.update(ctx, principal, id, input)
}

func (s *UserService) update(ctx context.Context, principal *auth.Principal, id int64, input AdminUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}

	var changed []string
	passwordChanged := false
	deactivated := false

	if input.Name != nil {
		user.Name = normalizeName(input.Name)
		changed = append(changed, "name")
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email != user.Email {
			other, err := s.users.GetByEmail(ctx, email)
			switch {
			case err == nil && other.ID != user.ID:
				return nil, errorutil.ErrEmailExists.WithKey("emailInUse")
			case err != nil && !errors.Is(err, repository.ErrNotFound):
				return nil, storeError(err)
			}
			user.Email = email
			changed = append(changed, "email")
		}
	}
	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, hashError(err)
		}
		user.PasswordHash = hash
		passwordChanged = true
		changed = append(changed, "password")
	}
	if input.Role != nil && *input.Role != user.Role {
		if !input.Role.Valid() {
			return nil, errorutil.NewValidationError(map[string]any{"role": "invalidRole"})
		}
		if user.IsAdmin() {
			admins, err := s.users.CountAdmins(ctx)
			if err != nil {
				return nil, storeError(err)
			}
			if admins <= 1 {
				return nil, errorutil.ErrLastAdmin
			}
		}
		user.Role = *input.Role
		changed = append(changed, "role")
	}
	if input.IsActive != nil && *input.IsActive != user.IsActive {
		user.IsActive = *input.IsActive
		deactivated = !user.IsActive
		changed = append(changed, "isActive")
	}

	if len(changed) == 0 {
		return user, nil
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, errorutil.ErrEmailExists.WithKey("emailInUse")
		}
		return nil, storeError(err)
	}

	switch {
	case deactivated:
		if err := s.sessions.DeleteByUser(ctx, user.ID, ""); err != nil {
			return nil, errorutil.NewInternalError(err)
		}
	case passwordChanged:
		keep := ""
		if principal.User.ID == user.ID && principal.Session != nil {
			keep = principal.Session.ID
		}
		if err := s.sessions.DeleteByUser(ctx, user.ID, keep); err != nil {
			return nil, errorutil.NewInternalError(err)
		}
	}

	s.events.publish(ctx, events.NewEvent(events.EventUserUpdated, user.ID, events.ActorFromUser(principal.User), events.UserChangedPayload{Fields: changed}))
	return user, nil
}

// Delete removes a user. The last admin is protected by the store.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id int64) (_ *domain.User, err error) {
	ctx, span := startSpan(ctx, "UserService.Delete")
	defer func() { endSpan(span, err) }()

	user, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if err := s.sessions.DeleteByUser(ctx, id, ""); err != nil {
		return nil, errorutil.NewInternalError(err)
	}

	s.events.publish(ctx, events.NewEvent(events.EventUserDeleted, id, events.ActorFromUser(actor), nil))
	return user, nil
}
