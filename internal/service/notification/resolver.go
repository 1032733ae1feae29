package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/openlearn/lms-api/internal/model"
	"github.com/openlearn/lms-api/internal/repository"
	apperrors "github.com/openlearn/lms-api/pkg/errors"
)

type Audience string

const (
	AudienceAll         Audience = "all"
	AudienceStudents    Audience = "students"
	AudienceInstructors Audience = "instructors"
	AudienceAdmins      Audience = "admins"
	AudienceSpecific    Audience = "specific"
)

// RecipientRule selects the recipients of a broadcast: a whole
// audience, or an explicit id list when Audience is specific.
type RecipientRule struct {
	Audience Audience
	UserIDs  []uuid.UUID
}

// Resolver turns a targeting rule into the concrete set of recipient
// users by querying the user directory.
type Resolver struct {
	users repository.UserRepository
}

func NewResolver(users repository.UserRepository) *Resolver {
	return &Resolver{users: users}
}

// Resolve returns the users matched by the rule. An audience that
// matches no active users yields an empty set; the caller decides
// whether that is an error. An explicit list containing any unknown
// id rejects the whole operation, listing every invalid id.
func (r *Resolver) Resolve(ctx context.Context, rule RecipientRule) ([]*model.User, error) {
	switch rule.Audience {
	case AudienceAll:
		return r.listActive(ctx, nil)
	case AudienceStudents:
		t := model.AccountTypeStudent
		return r.listActive(ctx, &t)
	case AudienceInstructors:
		t := model.AccountTypeInstructor
		return r.listActive(ctx, &t)
	case AudienceAdmins:
		t := model.AccountTypeAdmin
		return r.listActive(ctx, &t)
	case AudienceSpecific:
		return r.resolveExplicit(ctx, rule.UserIDs)
	}
	return nil, apperrors.NewValidation(fmt.Sprintf("unknown recipient audience: %s", rule.Audience), nil)
}

func (r *Resolver) listActive(ctx context.Context, accountType *model.AccountType) ([]*model.User, error) {
	users, err := r.users.ListActive(ctx, accountType)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}
	return users, nil
}

func (r *Resolver) resolveExplicit(ctx context.Context, ids []uuid.UUID) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, apperrors.NewValidation("selected user ids are required", nil)
	}

	users, err := r.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}

	found := make(map[uuid.UUID]bool, len(users))
	for _, u := range users {
		found[u.ID] = true
	}

	var invalid []string
	for _, id := range ids {
		if !found[id] {
			invalid = append(invalid, id.String())
		}
	}
	if len(invalid) > 0 {
		return nil, apperrors.NewInvalidRecipients(invalid)
	}

	return users, nil
}
