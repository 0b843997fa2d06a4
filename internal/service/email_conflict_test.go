package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/repository/memory"
	"github.com/spec-kit/account-service/pkg/util/errorutil"
)

// lateConflictUsers passes every email lookup but rejects writes on the
// unique constraint, as when a concurrent request wins between the two.
type lateConflictUsers struct {
	*memory.UserStore
}

func (lateConflictUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func (lateConflictUsers) Create(context.Context, *domain.User) error {
	return repository.ErrEmailTaken
}

func (lateConflictUsers) Update(context.Context, *domain.User) error {
	return repository.ErrEmailTaken
}

func TestStoreUniquenessRejectionSurfacesAsEmailExists(t *testing.T) {
	ctx := context.Background()
	store := memory.NewUserStore()
	target := &domain.User{Email: "target@example.com", PasswordHash: "x", Role: domain.RoleUser, IsActive: true}
	require.NoError(t, store.Create(ctx, target))

	users := lateConflictUsers{UserStore: store}
	sessions := memory.NewSessionStore()
	authSvc, err := NewAuthService(testConfig(testAdminSecret), AuthDependencies{UserRepo: users, SessionRepo: sessions})
	require.NoError(t, err)
	userSvc := NewUserService(UserDependencies{UserRepo: users, SessionRepo: sessions, Hasher: authSvc.Hasher()})

	_, _, err = authSvc.Register(ctx, RegisterInput{Email: "race@example.com", Password: "secret1", SecretKey: testAdminSecret})
	assert.ErrorIs(t, err, errorutil.ErrEmailExists)
	assert.Zero(t, sessions.Len())

	_, err = userSvc.Create(ctx, nil, CreateUserInput{Email: "race@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, errorutil.ErrEmailExists)

	admin := &domain.User{ID: 99, Email: "admin@example.com", Role: domain.RoleAdmin, IsActive: true}
	_, err = userSvc.AdminUpdate(ctx, &auth.Principal{User: admin}, target.ID, AdminUpdateInput{
		UpdateUserInput: UpdateUserInput{Email: strPtr("race@example.com")},
	})
	require.ErrorIs(t, err, errorutil.ErrEmailExists)
	assert.Equal(t, "emailInUse", errorutil.ToDomainError(err).Key)
}

func TestConcurrentRegistrationsCreateOneAccount(t *testing.T) {
	f := newFixture(t, testAdminSecret)
	const attempts = 8

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = f.auth.Register(context.Background(), RegisterInput{
				Email:     "same@example.com",
				Password:  "secret1",
				SecretKey: testAdminSecret,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, errorutil.ErrEmailExists)
	}
	assert.Equal(t, 1, succeeded)

	users, err := f.users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestOverlongPasswordIsValidationError(t *testing.T) {
	f := newFixture(t, testAdminSecret)
	ctx := context.Background()
	long := strings.Repeat("p", 80)
	owner := f.seedUser(t, "owner@example.com", "secret1", domain.RoleUser, true)

	_, _, err := f.auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: long, SecretKey: testAdminSecret})
	assert.ErrorIs(t, err, errorutil.ErrValidation)

	_, err = f.users.Create(ctx, nil, CreateUserInput{Email: "b@example.com", Password: long})
	assert.ErrorIs(t, err, errorutil.ErrValidation)

	_, err = f.users.UpdateSelf(ctx, &auth.Principal{User: owner}, owner.ID, UpdateUserInput{Password: &long})
	require.ErrorIs(t, err, errorutil.ErrValidation)
	assert.Equal(t, "passwordMaxLength", errorutil.ToDomainError(err).Details["password"])

	_, _, err = f.auth.Login(ctx, "owner@example.com", "secret1")
	assert.NoError(t, err)
}
