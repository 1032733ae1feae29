package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/openlearn/lms-api/internal/model"
	apperrors "github.com/openlearn/lms-api/pkg/errors"
)

// NewBatchID returns a fresh identifier correlating every record of
// one broadcast. Random 128-bit ids keep concurrent broadcasts from
// ever colliding.
func NewBatchID() uuid.UUID {
	return uuid.New()
}

// Broadcast fans one template out to every resolved recipient as
// independent per-recipient records sharing a single batch id.
// Creation is best-effort: a failed record is logged and counted, and
// its siblings are still attempted.
func (s *service) Broadcast(ctx context.Context, req *model.BroadcastRequest) (*model.BroadcastResult, error) {
	rule := RecipientRule{Audience: Audience(req.Recipients)}
	for _, raw := range req.SelectedUserIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperrors.NewValidation("invalid selected user id", err)
		}
		rule.UserIDs = append(rule.UserIDs, id)
	}

	recipients, err := s.resolver.Resolve(ctx, rule)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, apperrors.NewValidation("no recipients match the requested audience", nil)
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidation(fmt.Sprintf("invalid priority: %s", priority), nil)
	}

	bulkID := NewBatchID()
	meta := &model.BroadcastMetadata{
		Audience:       req.Recipients,
		RecipientCount: len(recipients),
	}

	created := 0
	failed := 0
	for _, recipient := range recipients {
		n := &model.Notification{
			ID:          uuid.New(),
			RecipientID: recipient.ID,
			Type:        model.NotificationAdminAnnouncement,
			Title:       req.Title,
			Message:     req.Message,
			Priority:    priority,
			Metadata:    meta,
			BulkID:      &bulkID,
			CreatedAt:   time.Now(),
		}

		if err := s.repo.Create(ctx, n); err != nil {
			log.Error().
				Err(err).
				Str("bulk_id", bulkID.String()).
				Str("recipient_id", recipient.ID.String()).
				Msg("failed to create broadcast notification")
			failed++
			continue
		}
		created++
	}

	if created == 0 {
		return nil, fmt.Errorf("broadcast %s failed for all %d recipients", bulkID, len(recipients))
	}

	return &model.BroadcastResult{
		NotificationID: bulkID,
		RecipientCount: created,
		FailedCount:    failed,
	}, nil
}
