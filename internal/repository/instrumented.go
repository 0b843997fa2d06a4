package repository

import (
	"context"

	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/observability"
)

// InstrumentUsers times every call on repo and counts unexpected failures.
func InstrumentUsers(repo UserRepository, metrics *observability.Metrics) UserRepository {
	if metrics == nil {
		return repo
	}
	return &instrumentedUsers{next: repo, metrics: metrics}
}

type instrumentedUsers struct {
	next    UserRepository
	metrics *observability.Metrics
}

func (r *instrumentedUsers) Create(ctx context.Context, user *domain.User) error {
	return r.metrics.ObserveStore("users.create", func() error {
		return r.next.Create(ctx, user)
	}, ErrEmailTaken)
}

func (r *instrumentedUsers) Update(ctx context.Context, user *domain.User) error {
	return r.metrics.ObserveStore("users.update", func() error {
		return r.next.Update(ctx, user)
	}, ErrEmailTaken, ErrNotFound)
}

func (r *instrumentedUsers) GetByID(ctx context.Context, id int64) (user *domain.User, err error) {
	err = r.metrics.ObserveStore("users.get_by_id", func() error {
		user, err = r.next.GetByID(ctx, id)
		return err
	}, ErrNotFound)
	return user, err
}

func (r *instrumentedUsers) GetByEmail(ctx context.Context, email string) (user *domain.User, err error) {
	err = r.metrics.ObserveStore("users.get_by_email", func() error {
		user, err = r.next.GetByEmail(ctx, email)
		return err
	}, ErrNotFound)
	return user, err
}

func (r *instrumentedUsers) List(ctx context.Context) (users []domain.User, err error) {
	err = r.metrics.ObserveStore("users.list", func() error {
		users, err = r.next.List(ctx)
		return err
	})
	return users, err
}

func (r *instrumentedUsers) Delete(ctx context.Context, id int64) (user *domain.User, err error) {
	err = r.metrics.ObserveStore("users.delete", func() error {
		user, err = r.next.Delete(ctx, id)
		return err
	}, ErrNotFound, ErrLastAdmin)
	return user, err
}

func (r *instrumentedUsers) CountAdmins(ctx context.Context) (n int, err error) {
	err = r.metrics.ObserveStore("users.count_admins", func() error {
		n, err = r.next.CountAdmins(ctx)
		return err
	})
	return n, err
}

// InstrumentSessions times every call on repo and counts unexpected failures.
func InstrumentSessions(repo SessionRepository, metrics *observability.Metrics) SessionRepository {
	if metrics == nil {
		return repo
	}
	return &instrumentedSessions{next: repo, metrics: metrics}
}

type instrumentedSessions struct {
	next    SessionRepository
	metrics *observability.Metrics
}

func (r *instrumentedSessions) Create(ctx context.Context, session *domain.Session) error {
	return r.metrics.ObserveStore("sessions.create", func() error {
		return r.next.Create(ctx, session)
	})
}

func (r *instrumentedSessions) Get(ctx context.Context, id string) (session *domain.Session, err error) {
	err = r.metrics.ObserveStore("sessions.get", func() error {
		session, err = r.next.Get(ctx, id)
		return err
	}, ErrNotFound)
	return session, err
}

func (r *instrumentedSessions) Delete(ctx context.Context, id string) error {
	return r.metrics.ObserveStore("sessions.delete", func() error {
		return r.next.Delete(ctx, id)
	})
}

func (r *instrumentedSessions) DeleteByUser(ctx context.Context, userID int64, keepID string) error {
	return r.metrics.ObserveStore("sessions.delete_by_user", func() error {
		return r.next.DeleteByUser(ctx, userID, keepID)
	})
}
