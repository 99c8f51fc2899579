package mail

import (
	"context"
	"log/slog"

	"github.com/SscSPs/inkpress/internal/core/domain"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/middleware"
)

// LogMailer writes emails to the request logger instead of sending them.
// It is the default for local development.
type LogMailer struct{}

var _ portssvc.Mailer = LogMailer{}

func (LogMailer) Send(ctx context.Context, msg domain.EmailMessage) error {
	middleware.GetLoggerFromCtx(ctx).Info("Email not sent (log mailer)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("text", msg.Text),
	)
	return nil
}
