package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlearn/lms-api/internal/model"
	apperrors "github.com/openlearn/lms-api/pkg/errors"
)

func TestBroadcastFansOutToAudience(t *testing.T) {
	repo := newFakeNotificationRepo()
	users := newFakeUserRepo(
		newTestUser(model.AccountTypeStudent),
		newTestUser(model.AccountTypeStudent),
		newTestUser(model.AccountTypeInstructor),
	)
	svc := NewService(repo, users, newFakeCourseRepo())

	result, err := svc.Broadcast(context.Background(), &model.BroadcastRequest{
		Title:      "Maintenance window",
		Message:    "The platform goes down at midnight",
		Recipients: "students",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.RecipientCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.Len(t, repo.store, 2)

	seen := make(map[uuid.UUID]bool)
	for _, n := range repo.store {
		require.NotNil(t, n.BulkID)
		assert.Equal(t, result.NotificationID, *n.BulkID)
		assert.Equal(t, model.NotificationAdminAnnouncement, n.Type)
		assert.Equal(t, model.PriorityMedium, n.Priority)
		assert.False(t, seen[n.RecipientID], "recipient notified twice")
		seen[n.RecipientID] = true
	}
}

func TestBroadcastBatchIDsAreUnique(t *testing.T) {
	repo := newFakeNotificationRepo()
	users := newFakeUserRepo(newTestUser(model.AccountTypeStudent))
	svc := NewService(repo, users, newFakeCourseRepo())

	req := &model.BroadcastRequest{Title: "t", Message: "m", Recipients: "all"}

	first, err := svc.Broadcast(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Broadcast(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.NotificationID, second.NotificationID)
}

func TestBroadcastToExplicitIDs(t *testing.T) {
	repo := newFakeNotificationRepo()
	a := newTestUser(model.AccountTypeStudent)
	b := newTestUser(model.AccountTypeInstructor)
	users := newFakeUserRepo(a, b)
	svc := NewService(repo, users, newFakeCourseRepo())

	result, err := svc.Broadcast(context.Background(), &model.BroadcastRequest{
		Title:           "t",
		Message:         "m",
		Recipients:      "specific",
		SelectedUserIDs: []string{a.ID.String(), b.ID.String()},
		Priority:        model.PriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.RecipientCount)

	for _, n := range repo.store {
		assert.Equal(t, model.PriorityHigh, n.Priority)
	}
}

func TestBroadcastRejectsUnknownExplicitIDs(t *testing.T) {
	repo := newFakeNotificationRepo()
	known := newTestUser(model.AccountTypeStudent)
	users := newFakeUserRepo(known)
	svc := NewService(repo, users, newFakeCourseRepo())

	missing := uuid.New()
	_, err := svc.Broadcast(context.Background(), &model.BroadcastRequest{
		Title:           "t",
		Message:         "m",
		Recipients:      "specific",
		SelectedUserIDs: []string{known.ID.String(), missing.String()},
	})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrInvalidRecipients, appErr.Code)
	assert.Equal(t, []string{missing.String()}, appErr.InvalidIDs)
	assert.Empty(t, repo.store, "no records created when validation fails")
}

func TestBroadcastEmptyAudience(t *testing.T) {
	repo := newFakeNotificationRepo()
	users := newFakeUserRepo(newTestUser(model.AccountTypeStudent))
	svc := NewService(repo, users, newFakeCourseRepo())

	_, err := svc.Broadcast(context.Background(), &model.BroadcastRequest{
		Title:      "t",
		Message:    "m",
		Recipients: "admins",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrValidation))
}

func TestBroadcastBestEffortOnPartialFailure(t *testing.T) {
	repo := newFakeNotificationRepo()
	ok1 := newTestUser(model.AccountTypeStudent)
	broken := newTestUser(model.AccountTypeStudent)
	ok2 := newTestUser(model.AccountTypeStudent)
	users := newFakeUserRepo(ok1, broken, ok2)
	repo.failRecipients[broken.ID] = true

	svc := NewService(repo, users, newFakeCourseRepo())

	result, err := svc.Broadcast(context.Background(), &model.BroadcastRequest{
		Title:      "t",
		Message:    "m",
		Recipients: "students",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.RecipientCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Len(t, repo.store, 2)
}

func TestBroadcastFailsWhenNothingCreated(t *testing.T) {
	repo := newFakeNotificationRepo()
	student := newTestUser(model.AccountTypeStudent)
	users := newFakeUserRepo(student)
	repo.failRecipients[student.ID] = true

	svc := NewService(repo, users, newFakeCourseRepo())

	_, err := svc.Broadcast(context.Background(), &model.BroadcastRequest{
		Title:      "t",
		Message:    "m",
		Recipients: "students",
	})
	assert.Error(t, err)
}
