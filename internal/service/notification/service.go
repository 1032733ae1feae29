package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openlearn/lms-api/internal/model"
	"github.com/openlearn/lms-api/internal/repository"
	apperrors "github.com/openlearn/lms-api/pkg/errors"
)

// Service is the notification surface exposed to handlers and to the
// domain event entry points in events.go.
type Service interface {
	Create(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error)
	CreateAdvanced(ctx context.Context, req *model.AdvancedNotificationRequest) (*model.Notification, error)
	List(ctx context.Context, recipientID uuid.UUID, p model.Pagination) (*model.NotificationPage, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) (*model.Notification, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.DeleteResult, error)
	Broadcast(ctx context.Context, req *model.BroadcastRequest) (*model.BroadcastResult, error)

	Events
}

type service struct {
	repo     repository.NotificationRepository
	users    repository.UserRepository
	courses  repository.CourseRepository
	resolver *Resolver
}

func NewService(repo repository.NotificationRepository, users repository.UserRepository, courses repository.CourseRepository) Service {
	return &service{
		repo:     repo,
		users:    users,
		courses:  courses,
		resolver: NewResolver(users),
	}
}

// priorityForEvent maps an event type to its fixed priority. Course
// status changes are high only when the course went live; anything
// unmapped defaults to medium.
func priorityForEvent(t model.NotificationType, meta model.Metadata) model.Priority {
	switch t {
	case model.NotificationEnrollmentConfirmed, model.NotificationInstructorApproval:
		return model.PriorityHigh
	case model.NotificationCourseStatusChange:
		if m, ok := meta.(*model.CourseStatusMetadata); ok && m.NewStatus == model.CourseStatusPublished {
			return model.PriorityHigh
		}
		return model.PriorityMedium
	case model.NotificationNewUserRegistration:
		return model.PriorityLow
	default:
		return model.PriorityMedium
	}
}

func (s *service) Create(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error) {
	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid recipient id", err)
	}

	n := &model.Notification{
		RecipientID: recipientID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Priority:    priorityForEvent(req.Type, nil),
	}

	if req.RelatedCourseID != nil {
		courseID, err := uuid.Parse(*req.RelatedCourseID)
		if err != nil {
			return nil, apperrors.NewValidation("invalid related course id", err)
		}
		n.RelatedCourseID = &courseID
	}

	return s.create(ctx, n)
}

func (s *service) CreateAdvanced(ctx context.Context, req *model.AdvancedNotificationRequest) (*model.Notification, error) {
	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid recipient id", err)
	}

	meta, err := model.DecodeMetadata(req.Type, req.Metadata)
	if err != nil {
		return nil, apperrors.NewValidation("invalid metadata", err)
	}

	n := &model.Notification{
		RecipientID: recipientID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		ActionURL:   req.ActionURL,
		Metadata:    meta,
	}

	if req.Priority != "" {
		if !req.Priority.Valid() {
			return nil, apperrors.NewValidation(fmt.Sprintf("invalid priority: %s", req.Priority), nil)
		}
		n.Priority = req.Priority
	} else {
		n.Priority = priorityForEvent(req.Type, meta)
	}

	for _, ref := range []struct {
		raw  *string
		dest **uuid.UUID
		name string
	}{
		{req.RelatedCourseID, &n.RelatedCourseID, "related course id"},
		{req.RelatedUserID, &n.RelatedUserID, "related user id"},
		{req.RelatedSectionID, &n.RelatedSectionID, "related section id"},
		{req.RelatedSubSectionID, &n.RelatedSubSectionID, "related subsection id"},
	} {
		if ref.raw == nil {
			continue
		}
		id, err := uuid.Parse(*ref.raw)
		if err != nil {
			return nil, apperrors.NewValidation(fmt.Sprintf("invalid %s", ref.name), err)
		}
		*ref.dest = &id
	}

	return s.create(ctx, n)
}

func (s *service) create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	if _, err := s.users.Get(ctx, n.RecipientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewInvalidRecipients([]string{n.RecipientID.String()})
		}
		return nil, fmt.Errorf("failed to verify recipient: %w", err)
	}

	n.ID = uuid.New()
	n.CreatedAt = time.Now()

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return n, nil
}

func (s *service) List(ctx context.Context, recipientID uuid.UUID, p model.Pagination) (*model.NotificationPage, error) {
	p.Normalize()

	items, err := s.repo.ListByRecipient(ctx, recipientID, p.PageSize, p.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	total, err := s.repo.CountByRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	unread, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return &model.NotificationPage{
		Items:       items,
		TotalCount:  total,
		UnreadCount: unread,
		Page:        p.Page,
		PageSize:    p.PageSize,
		TotalPages:  (total + p.PageSize - 1) / p.PageSize,
	}, nil
}

// MarkRead flips a single record to read. Records that do not exist
// and records owned by someone else fail identically so the endpoint
// cannot be used to probe for other users' notifications.
func (s *service) MarkRead(ctx context.Context, id, recipientID uuid.UUID) (*model.Notification, error) {
	n, err := s.repo.MarkRead(ctx, id, recipientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("notification", err)
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return n, nil
}

func (s *service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	return updated, nil
}

func (s *service) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	count, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// Delete resolves the given id against both batches and single
// records. The admin UI exposes one control that must transparently
// delete either an individual notification or an entire broadcast
// depending on what the identifier turns out to reference:
//
//  1. ids matching a bulk_id delete the whole batch,
//  2. otherwise the id is looked up as a record id; a record that
//     belongs to a batch expands to that batch,
//  3. a standalone record deletes alone.
func (s *service) Delete(ctx context.Context, id uuid.UUID) (*model.DeleteResult, error) {
	batch, err := s.repo.FindByBulkID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bulk id: %w", err)
	}

	if len(batch) > 0 {
		deleted, err := s.repo.DeleteByBulkID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to delete notification batch: %w", err)
		}
		return &model.DeleteResult{DeletedCount: deleted}, nil
	}

	n, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("notification", err)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	if n.BulkID != nil {
		deleted, err := s.repo.DeleteByBulkID(ctx, *n.BulkID)
		if err != nil {
			return nil, fmt.Errorf("failed to delete notification batch: %w", err)
		}
		return &model.DeleteResult{DeletedCount: deleted}, nil
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete notification: %w", err)
	}
	if deleted == 0 {
		return nil, apperrors.NewNotFound("notification", nil)
	}

	return &model.DeleteResult{DeletedCount: deleted}, nil
}
