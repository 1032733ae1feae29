package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openlearn/lms-api/internal/model"
	"github.com/openlearn/lms-api/internal/repository"
)

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

const notificationColumns = `
	id, recipient_id, type, title, message, read, priority,
	related_course_id, related_user_id, related_section_id, related_subsection_id,
	action_url, metadata, bulk_id, created_at
`

// notificationRow adds the raw metadata column so the typed variant
// can be decoded once the type is known.
type notificationRow struct {
	model.Notification
	RawMetadata []byte `db:"metadata"`
}

func (row *notificationRow) toModel() (*model.Notification, error) {
	n := row.Notification
	meta, err := model.DecodeMetadata(n.Type, row.RawMetadata)
	if err != nil {
		return nil, err
	}
	n.Metadata = meta
	return &n, nil
}

type notificationRelatedRow struct {
	model.NotificationWithRelated
	RawMetadata []byte `db:"metadata"`
}

func (row *notificationRelatedRow) toModel() (*model.NotificationWithRelated, error) {
	n := row.NotificationWithRelated
	meta, err := model.DecodeMetadata(n.Type, row.RawMetadata)
	if err != nil {
		return nil, err
	}
	n.Metadata = meta
	return &n, nil
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (
			id, recipient_id, type, title, message, read, priority,
			related_course_id, related_user_id, related_section_id, related_subsection_id,
			action_url, metadata, bulk_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	metadata, err := model.EncodeMetadata(n.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		n.ID,
		n.RecipientID,
		n.Type,
		n.Title,
		n.Message,
		n.Read,
		n.Priority,
		n.RelatedCourseID,
		n.RelatedUserID,
		n.RelatedSectionID,
		n.RelatedSubSectionID,
		n.ActionURL,
		metadata,
		n.BulkID,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (r *notificationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE id = $1
	`

	var row notificationRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return row.toModel()
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*model.NotificationWithRelated, error) {
	query := `
		SELECT n.id, n.recipient_id, n.type, n.title, n.message, n.read, n.priority,
			   n.related_course_id, n.related_user_id, n.related_section_id, n.related_subsection_id,
			   n.action_url, n.metadata, n.bulk_id, n.created_at,
			   c.title AS related_course_title,
			   u.first_name || ' ' || u.last_name AS related_user_name,
			   s.title AS related_section_title,
			   ss.title AS related_subsection_title
		FROM notifications n
		LEFT JOIN courses c ON c.id = n.related_course_id
		LEFT JOIN users u ON u.id = n.related_user_id
		LEFT JOIN sections s ON s.id = n.related_section_id
		LEFT JOIN subsections ss ON ss.id = n.related_subsection_id
		WHERE n.recipient_id = $1
		ORDER BY n.created_at DESC
		LIMIT $2 OFFSET $3
	`

	var rows []notificationRelatedRow
	if err := r.db.SelectContext(ctx, &rows, query, recipientID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	items := make([]*model.NotificationWithRelated, 0, len(rows))
	for i := range rows {
		item, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func (r *notificationRepository) CountByRecipient(ctx context.Context, recipientID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = $1
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, recipientID); err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	return count, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = $1 AND read = false
	`

	var count int
	if err := r.db.GetContext(ctx, &count, query, recipientID); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead flips the read flag only when the record belongs to the
// given recipient. A zero-row update surfaces as sql.ErrNoRows so the
// service reports missing and foreign-owned records identically.
func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID uuid.UUID) (*model.Notification, error) {
	query := `
		UPDATE notifications
		SET read = true
		WHERE id = $1 AND recipient_id = $2
		RETURNING ` + notificationColumns + `
	`

	var row notificationRow
	if err := r.db.GetContext(ctx, &row, query, id, recipientID); err != nil {
		return nil, err
	}

	return row.toModel()
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	query := `
		UPDATE notifications
		SET read = true
		WHERE recipient_id = $1 AND read = false
	`

	result, err := r.db.ExecContext(ctx, query, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

func (r *notificationRepository) FindByBulkID(ctx context.Context, bulkID uuid.UUID) ([]*model.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE bulk_id = $1
	`

	var rows []notificationRow
	if err := r.db.SelectContext(ctx, &rows, query, bulkID); err != nil {
		return nil, fmt.Errorf("failed to find notifications by bulk id: %w", err)
	}

	items := make([]*model.Notification, 0, len(rows))
	for i := range rows {
		item, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func (r *notificationRepository) DeleteByBulkID(ctx context.Context, bulkID uuid.UUID) (int64, error) {
	query := `
		DELETE FROM notifications
		WHERE bulk_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, bulkID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications by bulk id: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	query := `
		DELETE FROM notifications
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}
