// Package testutil provides testify mocks for the flow engine's
// collaborators.
package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/akhromov/domobot/internal/domopult"
)

// MockUpstream mocks the tenant API client.
type MockUpstream struct {
	mock.Mock
}

func (m *MockUpstream) RequestSMSCode(ctx context.Context, phone string) error {
	args := m.Called(ctx, phone)
	return args.Error(0)
}

func (m *MockUpstream) LoginByCode(ctx context.Context, phone, code string) (string, error) {
	args := m.Called(ctx, phone, code)
	return args.String(0), args.Error(1)
}

func (m *MockUpstream) LoginByPassword(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockUpstream) ConfigurationItems(ctx context.Context, token string) (*domopult.ConfigurationItems, error) {
	args := m.Called(ctx, token)
	items, _ := args.Get(0).(*domopult.ConfigurationItems)
	return items, args.Error(1)
}

func (m *MockUpstream) PaymentsDetail(ctx context.Context, token, accountID string) (*domopult.PaymentsPage, error) {
	args := m.Called(ctx, token, accountID)
	page, _ := args.Get(0).(*domopult.PaymentsPage)
	return page, args.Error(1)
}

func (m *MockUpstream) Meters(ctx context.Context, token string, configItemID int64) ([]domopult.MeterEntry, error) {
	args := m.Called(ctx, token, configItemID)
	meters, _ := args.Get(0).([]domopult.MeterEntry)
	return meters, args.Error(1)
}

func (m *MockUpstream) SubmitMeterValue(ctx context.Context, token string, meterID int64, value string) error {
	args := m.Called(ctx, token, meterID, value)
	return args.Error(0)
}

func (m *MockUpstream) ReceiptPDF(ctx context.Context, token, accountID, date string) ([]byte, error) {
	args := m.Called(ctx, token, accountID, date)
	pdf, _ := args.Get(0).([]byte)
	return pdf, args.Error(1)
}

// MockCredentials mocks the credential store.
type MockCredentials struct {
	mock.Mock
}

func (m *MockCredentials) Save(ctx context.Context, userID int64, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockCredentials) Token(ctx context.Context, userID int64) (string, bool, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockCredentials) Delete(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockCredentials) SetAccountID(ctx context.Context, userID int64, accountID string) error {
	args := m.Called(ctx, userID, accountID)
	return args.Error(0)
}

func (m *MockCredentials) AccountID(ctx context.Context, userID int64) (string, bool, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Bool(1), args.Error(2)
}
