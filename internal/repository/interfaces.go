package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openlearn/lms-api/internal/model"
)

// All repository interfaces in one file
type (
	// UserRepository is the user directory consumed by the recipient
	// resolver and the password-reset flow.
	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.User, error)
		ListActive(ctx context.Context, accountType *model.AccountType) ([]*model.User, error)
		UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	}

	// CourseRepository offers point lookups for display hydration and
	// event context.
	CourseRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Course, error)
		ListEnrolledStudents(ctx context.Context, courseID uuid.UUID) ([]*model.User, error)
	}

	// NotificationRepository persists per-recipient notification rows.
	// Read-state and delete-resolution rules live in the service; the
	// repository exposes the primitives they compose.
	NotificationRepository interface {
		Create(ctx context.Context, n *model.Notification) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*model.NotificationWithRelated, error)
		CountByRecipient(ctx context.Context, recipientID uuid.UUID) (int, error)
		CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error)
		MarkRead(ctx context.Context, id, recipientID uuid.UUID) (*model.Notification, error)
		MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
		FindByBulkID(ctx context.Context, bulkID uuid.UUID) ([]*model.Notification, error)
		DeleteByBulkID(ctx context.Context, bulkID uuid.UUID) (int64, error)
		Delete(ctx context.Context, id uuid.UUID) (int64, error)
	}

	TokenRepository interface {
		StoreResetToken(ctx context.Context, userID uuid.UUID, token string, expiry time.Time) error
		ValidateResetToken(ctx context.Context, token string) (uuid.UUID, error)
		InvalidateResetToken(ctx context.Context, token string) error
	}
)
