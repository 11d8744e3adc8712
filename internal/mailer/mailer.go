package mailer

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"gopkg.in/gomail.v2"
)

// EmailLookup resolves a listing owner's address.
type EmailLookup interface {
	GetEmailByID(ctx context.Context, userID string) (string, error)
}

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer emails listing owners about submissions and moderation results.
type Mailer struct {
	from   string
	sender Sender
	users  EmailLookup
	logger *logger.Logger
}

func New(host string, port int, from, password string, users EmailLookup, log *logger.Logger) *Mailer {
	return NewWithSender(from, gomail.NewDialer(host, port, from, password), users, log)
}

func NewWithSender(from string, sender Sender, users EmailLookup, log *logger.Logger) *Mailer {
	return &Mailer{from: from, sender: sender, users: users, logger: log}
}

func (m *Mailer) ListingSubmitted(ctx context.Context, l *domain.Listing) error {
	body := fmt.Sprintf("Your listing '%s' has been submitted and is waiting for review.\n"+
		"We will let you know once it is published.", l.Title)
	return m.send(ctx, l, "Listing submitted for review", body)
}

func (m *Mailer) ListingModerated(ctx context.Context, l *domain.Listing) error {
	var subject, body string
	switch l.Status {
	case domain.StatusActive:
		subject = "Your listing is live"
		body = fmt.Sprintf("Good news! Your listing '%s' has been approved and is now visible to buyers.", l.Title)
	case domain.StatusDeclined:
		subject = "Your listing was declined"
		body = fmt.Sprintf("Your listing '%s' did not pass review. Edit it from My Listings and submit it again.", l.Title)
	default:
		subject = "Your listing is under review"
		body = fmt.Sprintf("Your listing '%s' is waiting for review.", l.Title)
	}
	return m.send(ctx, l, subject, body)
}

func (m *Mailer) send(ctx context.Context, l *domain.Listing, subject, body string) error {
	to, err := m.users.GetEmailByID(ctx, l.UserID)
	if err != nil {
		return fmt.Errorf("lookup owner email: %w", err)
	}
	if to == "" {
		m.logger.Warn("Mailer.send: owner has no email", "user_id", l.UserID, "listing_id", l.ID)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.sender.DialAndSend(msg); err != nil {
		m.logger.Error("Mailer.send: SMTP delivery failed", "listing_id", l.ID, "error", err)
		return err
	}
	m.logger.Info("Mailer.send: email sent", "listing_id", l.ID, "subject", subject)
	return nil
}
