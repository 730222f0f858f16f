// Package notify sends account emails over SMTP.
package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/auth-service/internal/config"
	"github.com/Dan9191/auth-service/internal/models"
)

// SendFunc delivers a prepared message to an SMTP server
type SendFunc func(e *email.Email, addr string, a smtp.Auth) error

func sendSMTP(e *email.Email, addr string, a smtp.Auth) error {
	return e.Send(addr, a)
}

// EmailNotifier handles sending emails via SMTP
type EmailNotifier struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   SendFunc
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg *config.Config, logger *logrus.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:    cfg,
		logger: logger,
		send:   sendSMTP,
	}
}

// WithSender replaces the SMTP transport
func (n *EmailNotifier) WithSender(send SendFunc) *EmailNotifier {
	n.send = send
	return n
}

// UserRegistered sends a welcome email to a newly registered user
func (n *EmailNotifier) UserRegistered(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = n.cfg.SenderEmail
	e.To = []string{user.Email}
	e.Subject = "Welcome"

	name := user.Name
	if name == "" {
		name = user.Username
	}
	body := fmt.Sprintf("Dear %s,\n\n", name)
	body += fmt.Sprintf(
		"Your account has been created.\n"+
			"You can now sign in with the username %q.\n",
		user.Username,
	)
	body += "\nBest regards,\nAuth Service"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", n.cfg.SMTPHost, n.cfg.SMTPPort)
	var auth smtp.Auth
	if n.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", n.cfg.SMTPUsername, n.cfg.SMTPPassword, n.cfg.SMTPHost)
	}
	if err := n.send(e, addr, auth); err != nil {
		n.logger.Errorf("Failed to send email to %s: %v", user.Email, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Infof("Email sent to %s: %s", user.Email, e.Subject)
	return nil
}
