// Package notify renders outbound registration email. Delivery is left to
// whatever consumes the structured log stream; nothing here talks SMTP.
package notify

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/hackreg/pkg/slogx"
)

// Log is a Notifier that writes each email as one structured log record.
// Links carry secrets, so they are only logged at debug level.
type Log struct {
	// BaseURL prefixes the links placed in emails, e.g. https://reg.example.com.
	BaseURL string
}

func NewLog(baseURL string) *Log {
	return &Log{BaseURL: strings.TrimSuffix(baseURL, "/")}
}

func (n *Log) SendVerificationEmail(ctx context.Context, email, token string) error {
	n.send(ctx, "verification", email, "Verify your email", n.link("/verify/", token))
	return nil
}

func (n *Log) SendAcceptanceEmail(ctx context.Context, email string, confirmBy *time.Time) error {
	subject := "You're in!"
	if confirmBy != nil {
		subject += " Confirm by " + confirmBy.UTC().Format(time.RFC1123)
	}
	n.send(ctx, "acceptance", email, subject, n.link("/confirmation", ""))
	return nil
}

func (n *Log) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	n.send(ctx, "password_reset", email, "Password reset requested", n.link("/reset/", token))
	return nil
}

func (n *Log) SendPasswordChangedEmail(ctx context.Context, email string) error {
	n.send(ctx, "password_changed", email, "Your password has been changed", "")
	return nil
}

// SendSponsorCredentials never logs the password itself.
func (n *Log) SendSponsorCredentials(ctx context.Context, email, _ string) error {
	n.send(ctx, "sponsor_credentials", email, "Your sponsor account", n.link("/login", ""))
	return nil
}

func (n *Log) SendDeferredEmail(ctx context.Context, email string) error {
	n.send(ctx, "deferred", email, "An update on your application", "")
	return nil
}

func (n *Log) SendWalkInEmail(ctx context.Context, email, token string) error {
	n.send(ctx, "walk_in", email, "Finish setting up your account", n.link("/walkin/", token))
	return nil
}

func (n *Log) SendApplicationReminder(ctx context.Context, email string) error {
	n.send(ctx, "application_reminder", email, "Finish your application", n.link("/application", ""))
	return nil
}

func (n *Log) link(path, token string) string {
	if token != "" {
		path += url.PathEscape(token)
	}
	return n.BaseURL + path
}

func (n *Log) send(ctx context.Context, kind, email, subject, link string) {
	log := slogx.FromContext(ctx).With(
		slog.String("kind", kind),
		slog.String("to", email),
	)
	log.Info("email queued", slog.String("subject", subject))
	if link != "" {
		log.Debug("email link", slog.String("link", link))
	}
}
