package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/debttrack/debt-service/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendPasswordReset sends a reset link built from the app base URL and token
func (s *Sender) SendPasswordReset(to, username, token string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Password Reset Request"

	link := fmt.Sprintf("%s/update-password?token=%s", s.cfg.AppBaseURL, token)
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"We received a request to reset your password.\n"+
			"Follow this link to choose a new one:\n\n%s\n\n"+
			"The link is valid for a limited time and can be used once.\n"+
			"If you did not request a reset, you can ignore this email.\n"+
			"\nBest regards,\nDebtTracker",
		username, link,
	)
	e.Text = []byte(body)

	return s.send(e)
}

// SendOverdueNotice tells a user how many of their debts went overdue
func (s *Sender) SendOverdueNotice(to, username string, count int) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Overdue Debts Notification"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"%d of your tracked debts passed the due date and were marked overdue.\n"+
			"Sign in to review the affected customers.\n"+
			"\nBest regards,\nDebtTracker",
		username, count,
	)
	e.Text = []byte(body)

	return s.send(e)
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", e.To[0], err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Infof("Email sent to %s: %s", e.To[0], e.Subject)
	return nil
}
