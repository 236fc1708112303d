package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends moderation results to item owners.
type SMTPMailer struct {
	from   string
	d      dialer
	logger *logger.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, log *logger.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.From == "" {
		return nil, fmt.Errorf("SMTP host, port, and sender email must be configured")
	}
	return &SMTPMailer{
		from:   cfg.From,
		d:      gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: log.Named("SMTPMailer"),
	}, nil
}

func moderationMessage(from, to string, item *domain.Item) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)

	var body strings.Builder
	if item.Status == domain.ItemStatusActive {
		m.SetHeader("Subject", "Your item was approved")
		fmt.Fprintf(&body, "Your item %q passed moderation and is now visible to buyers.\n", item.Title)
	} else {
		m.SetHeader("Subject", "Your item was rejected")
		fmt.Fprintf(&body, "Your item %q did not pass moderation.\n", item.Title)
		if item.ModerationInfo != nil && item.ModerationInfo.RejectionReason != "" {
			fmt.Fprintf(&body, "Reason: %s\n", item.ModerationInfo.RejectionReason)
		}
	}
	if item.ModerationInfo != nil && item.ModerationInfo.Notes != "" {
		fmt.Fprintf(&body, "Moderator notes: %s\n", item.ModerationInfo.Notes)
	}
	m.SetBody("text/plain", body.String())
	return m
}

// SendModerationResult honours ctx cancellation; the SMTP exchange itself keeps running in the background.
func (s *SMTPMailer) SendModerationResult(ctx context.Context, to string, item *domain.Item) error {
	if to == "" {
		return fmt.Errorf("no recipient provided for email")
	}
	m := moderationMessage(s.from, to, item)

	done := make(chan error, 1)
	go func() {
		done <- s.d.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		s.logger.Warn("Email sending cancelled or timed out", zap.String("to", to), zap.Error(ctx.Err()))
		return fmt.Errorf("email sending cancelled or timed out: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			s.logger.Error("Failed to send email", zap.String("to", to), zap.Error(err))
			return fmt.Errorf("failed to send email: %w", err)
		}
	}
	s.logger.Info("Moderation email sent", zap.String("to", to), zap.String("item_id", item.ID.Hex()))
	return nil
}
