package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	"github.com/spec-kit/account-service/internal/repository/memory"
)

const testAdminSecret = "let-me-in"

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	auth     *AuthService
	users    *UserService
	store    *memory.UserStore
	sessions *memory.SessionStore
	events   *recordedEvents
}

func testConfig(adminSecret string) config.Config {
	return config.Config{
		App:     config.AppConfig{Name: "account-service-test", Env: config.EnvDevelopment},
		Auth:    config.AuthConfig{BcryptCost: bcrypt.MinCost, AdminSecretKey: adminSecret},
		Session: config.SessionConfig{Secret: "test-session-secret", TTLMinutes: 60},
	}
}

func newFixture(t *testing.T, adminSecret string) *fixture {
	t.Helper()

	store := memory.NewUserStore()
	sessions := memory.NewSessionStore()
	dispatcher := events.NewInMemoryDispatcher()
	recorded := &recordedEvents{}
	for _, et := range events.AllEventTypes {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			recorded.mu.Lock()
			recorded.events = append(recorded.events, e)
			recorded.mu.Unlock()
			return nil
		})
	}

	authSvc, err := NewAuthService(testConfig(adminSecret), AuthDependencies{
		UserRepo:    store,
		SessionRepo: sessions,
		Dispatcher:  dispatcher,
	})
	require.NoError(t, err)

	userSvc := NewUserService(UserDependencies{
		UserRepo:    store,
		SessionRepo: sessions,
		Hasher:      authSvc.Hasher(),
		Dispatcher:  dispatcher,
	})

	return &fixture{auth: authSvc, users: userSvc, store: store, sessions: sessions, events: recorded}
}

// seedUser creates an account directly through the user service.
func (f *fixture) seedUser(t *testing.T, email, password string, role domain.Role, active bool) *domain.User {
	t.Helper()
	user, err := f.users.Create(context.Background(), nil, CreateUserInput{
		Email:    email,
		Password: password,
		Role:     role,
		IsActive: active,
	})
	require.NoError(t, err)
	return user
}

func strPtr(s string) *string { return &s }
