package mailer

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"github.com/joho/godotenv"
)

type staticLookup string

func (s staticLookup) GetEmailByID(context.Context, string) (string, error) { return string(s), nil }

// Sends a real email when TEST_RECEIVER_EMAIL and SMTP credentials are set.
func TestListingSubmitted_Integration(t *testing.T) {
	_ = godotenv.Load("../../.env")

	to := os.Getenv("TEST_RECEIVER_EMAIL")
	from := os.Getenv("SMTP_EMAIL")
	if to == "" || from == "" {
		t.Skip("TEST_RECEIVER_EMAIL or SMTP_EMAIL not set")
	}
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}

	m := New(host, port, from, os.Getenv("SMTP_PASSWORD"), staticLookup(to), logger.NewNop())
	err = m.ListingSubmitted(context.Background(), &domain.Listing{ID: "integration", UserID: "u", Title: "Integration Test Listing"})
	if err != nil {
		t.Errorf("send failed: %v", err)
	}
}
