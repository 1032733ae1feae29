package notification

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/openlearn/lms-api/internal/model"
)

// In-memory fakes backing the service tests.

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
	err   error
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*model.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*model.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListActive(_ context.Context, accountType *model.AccountType) ([]*model.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*model.User
	for _, u := range r.users {
		if u.Status != model.UserStatusActive {
			continue
		}
		if accountType != nil && u.AccountType != *accountType {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = passwordHash
	return nil
}

type fakeCourseRepo struct {
	courses  map[uuid.UUID]*model.Course
	enrolled map[uuid.UUID][]*model.User
	err      error
}

func newFakeCourseRepo(courses ...*model.Course) *fakeCourseRepo {
	r := &fakeCourseRepo{
		courses:  make(map[uuid.UUID]*model.Course),
		enrolled: make(map[uuid.UUID][]*model.User),
	}
	for _, c := range courses {
		r.courses[c.ID] = c
	}
	return r
}

func (r *fakeCourseRepo) Get(_ context.Context, id uuid.UUID) (*model.Course, error) {
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (r *fakeCourseRepo) ListEnrolledStudents(_ context.Context, courseID uuid.UUID) ([]*model.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.enrolled[courseID], nil
}

type fakeNotificationRepo struct {
	store map[uuid.UUID]*model.Notification

	// failRecipients makes Create fail for the listed recipients,
	// exercising the best-effort broadcast path.
	failRecipients map[uuid.UUID]bool
	createErr      error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		store:          make(map[uuid.UUID]*model.Notification),
		failRecipients: make(map[uuid.UUID]bool),
	}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	if r.failRecipients[n.RecipientID] {
		return errors.New("insert failed")
	}
	clone := *n
	r.store[n.ID] = &clone
	return nil
}

func (r *fakeNotificationRepo) Get(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	n, ok := r.store[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return n, nil
}

func (r *fakeNotificationRepo) ListByRecipient(_ context.Context, recipientID uuid.UUID, limit, offset int) ([]*model.NotificationWithRelated, error) {
	var all []*model.Notification
	for _, n := range r.store {
		if n.RecipientID == recipientID {
			all = append(all, n)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	var out []*model.NotificationWithRelated
	for i := offset; i < len(all) && len(out) < limit; i++ {
		out = append(out, &model.NotificationWithRelated{Notification: *all[i]})
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountByRecipient(_ context.Context, recipientID uuid.UUID) (int, error) {
	count := 0
	for _, n := range r.store {
		if n.RecipientID == recipientID {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, recipientID uuid.UUID) (int, error) {
	count := 0
	for _, n := range r.store {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, recipientID uuid.UUID) (*model.Notification, error) {
	n, ok := r.store[id]
	if !ok || n.RecipientID != recipientID {
		return nil, sql.ErrNoRows
	}
	n.Read = true
	return n, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, recipientID uuid.UUID) (int64, error) {
	var updated int64
	for _, n := range r.store {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			updated++
		}
	}
	return updated, nil
}

func (r *fakeNotificationRepo) FindByBulkID(_ context.Context, bulkID uuid.UUID) ([]*model.Notification, error) {
	var out []*model.Notification
	for _, n := range r.store {
		if n.BulkID != nil && *n.BulkID == bulkID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) DeleteByBulkID(_ context.Context, bulkID uuid.UUID) (int64, error) {
	var deleted int64
	for id, n := range r.store {
		if n.BulkID != nil && *n.BulkID == bulkID {
			delete(r.store, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeNotificationRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	if _, ok := r.store[id]; !ok {
		return 0, nil
	}
	delete(r.store, id)
	return 1, nil
}

func newTestUser(accountType model.AccountType) *model.User {
	return &model.User{
		ID:          uuid.New(),
		Email:       uuid.New().String() + "@example.com",
		FirstName:   "Test",
		LastName:    "User",
		AccountType: accountType,
		Status:      model.UserStatusActive,
		CreatedAt:   time.Now(),
	}
}
