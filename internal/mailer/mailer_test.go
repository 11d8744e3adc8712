package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) DialAndSend(msgs ...*gomail.Message) error {
	return m.Called(msgs).Error(0)
}

type MockEmailLookup struct {
	mock.Mock
}

func (m *MockEmailLookup) GetEmailByID(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func render(t *testing.T, msg *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestListingSubmitted(t *testing.T) {
	sender := new(MockSender)
	users := new(MockEmailLookup)
	users.On("GetEmailByID", mock.Anything, "user-1").Return("owner@example.com", nil)

	var sent *gomail.Message
	sender.On("DialAndSend", mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(0).([]*gomail.Message)[0]
	}).Return(nil).Once()

	m := NewWithSender("noreply@example.com", sender, users, logger.NewNop())
	err := m.ListingSubmitted(context.Background(), &domain.Listing{ID: "l-1", UserID: "user-1", Title: "Red bike"})

	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.Equal(t, []string{"owner@example.com"}, sent.GetHeader("To"))
	assert.Equal(t, []string{"Listing submitted for review"}, sent.GetHeader("Subject"))
	assert.Contains(t, render(t, sent), "Red bike")
	sender.AssertExpectations(t)
}

func TestListingModerated_SubjectFollowsStatus(t *testing.T) {
	tests := []struct {
		status  domain.ListingStatus
		subject string
	}{
		{domain.StatusActive, "Your listing is live"},
		{domain.StatusDeclined, "Your listing was declined"},
		{domain.StatusPending, "Your listing is under review"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			sender := new(MockSender)
			users := new(MockEmailLookup)
			users.On("GetEmailByID", mock.Anything, "user-1").Return("owner@example.com", nil)
			var subject []string
			sender.On("DialAndSend", mock.Anything).Run(func(args mock.Arguments) {
				subject = args.Get(0).([]*gomail.Message)[0].GetHeader("Subject")
			}).Return(nil)

			m := NewWithSender("noreply@example.com", sender, users, logger.NewNop())
			err := m.ListingModerated(context.Background(), &domain.Listing{UserID: "user-1", Title: "Bike", Status: tt.status})

			require.NoError(t, err)
			assert.Equal(t, []string{tt.subject}, subject)
		})
	}
}

func TestSend_LookupFailure(t *testing.T) {
	sender := new(MockSender)
	users := new(MockEmailLookup)
	users.On("GetEmailByID", mock.Anything, "ghost").Return("", errors.New("user not found"))

	m := NewWithSender("noreply@example.com", sender, users, logger.NewNop())
	err := m.ListingSubmitted(context.Background(), &domain.Listing{UserID: "ghost"})

	assert.Error(t, err)
	sender.AssertNotCalled(t, "DialAndSend", mock.Anything)
}

func TestSend_NoAddressIsSkipped(t *testing.T) {
	sender := new(MockSender)
	users := new(MockEmailLookup)
	users.On("GetEmailByID", mock.Anything, "user-1").Return("", nil)

	m := NewWithSender("noreply@example.com", sender, users, logger.NewNop())

	assert.NoError(t, m.ListingSubmitted(context.Background(), &domain.Listing{UserID: "user-1"}))
	sender.AssertNotCalled(t, "DialAndSend", mock.Anything)
}
