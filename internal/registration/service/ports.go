package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/hackreg/pkg/slogx"
)

// Notifier delivers outbound email. Calls happen after the state change has
// been stored; a failed delivery is logged and never undoes it.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
	SendAcceptanceEmail(ctx context.Context, email string, confirmBy *time.Time) error
	SendPasswordResetEmail(ctx context.Context, email, token string) error
	SendPasswordChangedEmail(ctx context.Context, email string) error
	SendSponsorCredentials(ctx context.Context, email, password string) error
	SendDeferredEmail(ctx context.Context, email string) error
	SendWalkInEmail(ctx context.Context, email, token string) error
	SendApplicationReminder(ctx context.Context, email string) error
}

// BlobStore holds resume files. Get returns blob.ErrNotFound for unknown keys.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

func logNotifyFailure(ctx context.Context, kind, email string, err error) {
	if err == nil {
		return
	}
	slogx.FromContext(ctx).Error("failed to send email",
		slog.String("kind", kind),
		slog.String("email", email),
		slog.Any("error", err),
	)
}
