package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messaging-service/internal/models"
	"messaging-service/internal/notifications"
	"messaging-service/internal/quota"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, listingID, senderID, recipientID int, body string) (models.Message, error) {
	args := m.Called(ctx, listingID, senderID, recipientID, body)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListInbox(ctx context.Context, recipientID int) ([]models.InboxEntry, error) {
	args := m.Called(ctx, recipientID)
	var entries []models.InboxEntry
	if val := args.Get(0); val != nil {
		entries = val.([]models.InboxEntry)
	}
	return entries, args.Error(1)
}

func (m *MessageRepositoryMock) MarkRead(ctx context.Context, messageID int, recipientID int) error {
	args := m.Called(ctx, messageID, recipientID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) UnreadCount(ctx context.Context, recipientID int) (int, error) {
	args := m.Called(ctx, recipientID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) CountSentToday(ctx context.Context, senderID, recipientID int) (int, error) {
	args := m.Called(ctx, senderID, recipientID)
	return args.Int(0), args.Error(1)
}

type ListingRepositoryMock struct {
	mock.Mock
}

func (m *ListingRepositoryMock) GetListing(ctx context.Context, listingID int) (models.Listing, error) {
	args := m.Called(ctx, listingID)
	var listing models.Listing
	if val := args.Get(0); val != nil {
		listing = val.(models.Listing)
	}
	return listing, args.Error(1)
}

type BlockRepositoryMock struct {
	mock.Mock
}

func (m *BlockRepositoryMock) IsBlocked(ctx context.Context, userA, userB int) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *BlockRepositoryMock) CreateBlock(ctx context.Context, userA, userB, createdBy int, reason string) error {
	args := m.Called(ctx, userA, userB, createdBy, reason)
	return args.Error(0)
}

func (m *BlockRepositoryMock) RemoveBlock(ctx context.Context, userA, userB int) error {
	args := m.Called(ctx, userA, userB)
	return args.Error(0)
}

type ReportRepositoryMock struct {
	mock.Mock
}

func (m *ReportRepositoryMock) CreateReport(ctx context.Context, report models.Report) (models.Report, error) {
	args := m.Called(ctx, report)
	var created models.Report
	if val := args.Get(0); val != nil {
		created = val.(models.Report)
	}
	return created, args.Error(1)
}

type QuotaOracleMock struct {
	mock.Mock
}

func (m *QuotaOracleMock) Limit() int {
	args := m.Called()
	return args.Int(0)
}

func (m *QuotaOracleMock) Remaining(ctx context.Context, senderID, recipientID int) (int, error) {
	args := m.Called(ctx, senderID, recipientID)
	return args.Int(0), args.Error(1)
}

func (m *QuotaOracleMock) Consume(ctx context.Context, senderID, recipientID int) (int, quota.Claim, error) {
	args := m.Called(ctx, senderID, recipientID)
	return args.Int(0), args.Get(1).(quota.Claim), args.Error(2)
}

func (m *QuotaOracleMock) Refund(ctx context.Context, claim quota.Claim) {
	m.Called(ctx, claim)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) Enqueue(n notifications.Notification) {
	m.Called(n)
}
