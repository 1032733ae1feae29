package email

import (
	"context"
)

type Service interface {
	SendPasswordReset(ctx context.Context, email string, token string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}
