package repository_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/observability"
	"github.com/spec-kit/account-service/internal/repository"
	"github.com/spec-kit/account-service/internal/repository/memory"
)

func TestInstrumentedUsersPassThrough(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	repo := repository.InstrumentUsers(memory.NewUserStore(), metrics)

	runUserRepositoryContract(t, repo)

	_, err := repo.GetByID(context.Background(), 424242)
	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.Zero(t, testutil.CollectAndCount(metrics.StoreErrorsTotal), "expected outcomes are not store errors")
}

func TestInstrumentedSessionsPassThrough(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	runSessionRepositoryContract(t, repository.InstrumentSessions(memory.NewSessionStore(), metrics))
}

func TestInstrumentWithoutMetricsReturnsRepo(t *testing.T) {
	store := memory.NewUserStore()
	assert.Same(t, repository.UserRepository(store), repository.InstrumentUsers(store, nil))

	user := &domain.User{Email: "n@example.com", PasswordHash: "h", Role: domain.RoleUser}
	require.NoError(t, store.Create(context.Background(), user))
}
