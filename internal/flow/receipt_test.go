package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/akhromov/domobot/internal/domopult"
)

func enterReceiptFlow(t *testing.T, engine *Engine) {
	t.Helper()
	acts := engine.Handle(context.Background(), buttonEvent(1, ButtonReceipt))
	st := firstSendText(t, acts)
	require.Equal(t, msgReceiptAskYear, st.Text)
	require.True(t, engine.InProgress(1))
}

func TestReceiptFlowSendsPDF(t *testing.T) {
	engine, up, creds := newTestEngine()
	ctx := context.Background()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)
	creds.On("AccountID", mock.Anything, int64(1)).Return("77", true, nil)
	up.On("ReceiptPDF", mock.Anything, "tok", "77", "2023-07-01").
		Return([]byte("%PDF-1.4"), nil)

	enterReceiptFlow(t, engine)

	acts := engine.Handle(ctx, textEvent(1, 20, "2023"))
	st := firstSendText(t, acts)
	assert.Equal(t, msgReceiptAskMonth, st.Text)

	acts = engine.Handle(ctx, textEvent(1, 21, "07"))
	require.Len(t, acts, 1)
	file, ok := acts[0].(SendFile)
	require.True(t, ok, "expected SendFile, got %#v", acts[0])
	assert.Equal(t, "2023-07-01.pdf", file.Name)
	assert.Equal(t, []byte("%PDF-1.4"), file.Data)
	assert.False(t, engine.InProgress(1))
}

func TestReceiptYearValidation(t *testing.T) {
	engine, _, _ := newTestEngine()
	enterReceiptFlow(t, engine)

	for _, year := range []string{"23", "abcd", "20233", "2о23"} {
		acts := engine.Handle(context.Background(), textEvent(1, 20, year))
		st := firstSendText(t, acts)
		assert.Equal(t, msgReceiptBadYear, st.Text, "year %q", year)
	}
	assert.True(t, engine.InProgress(1))
}

func TestReceiptMonthValidation(t *testing.T) {
	engine, _, _ := newTestEngine()
	ctx := context.Background()
	enterReceiptFlow(t, engine)
	engine.Handle(ctx, textEvent(1, 20, "2023"))

	for _, month := range []string{"13", "00", "1", "007", "ab"} {
		acts := engine.Handle(ctx, textEvent(1, 21, month))
		st := firstSendText(t, acts)
		assert.Equal(t, msgReceiptBadMonth, st.Text, "month %q", month)
	}
	assert.True(t, engine.InProgress(1))
}

func TestReceiptUnavailableForPeriod(t *testing.T) {
	engine, up, creds := newTestEngine()
	ctx := context.Background()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)
	creds.On("AccountID", mock.Anything, int64(1)).Return("77", true, nil)
	up.On("ReceiptPDF", mock.Anything, "tok", "77", "2024-12-01").
		Return(nil, &domopult.StatusError{StatusCode: 400, Body: "not ready"})

	enterReceiptFlow(t, engine)
	engine.Handle(ctx, textEvent(1, 20, "2024"))

	acts := engine.Handle(ctx, textEvent(1, 21, "12"))

	st := firstSendText(t, acts)
	assert.Equal(t, msgReceiptUnavailable, st.Text)
	for _, a := range acts {
		_, isFile := a.(SendFile)
		assert.False(t, isFile)
	}
	assert.False(t, engine.InProgress(1))
}

func TestReceiptUpstreamErrorShowsStatus(t *testing.T) {
	engine, up, creds := newTestEngine()
	ctx := context.Background()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)
	creds.On("AccountID", mock.Anything, int64(1)).Return("77", true, nil)
	up.On("ReceiptPDF", mock.Anything, "tok", "77", "2024-01-01").
		Return(nil, &domopult.StatusError{StatusCode: 503, Body: "maintenance"})

	enterReceiptFlow(t, engine)
	engine.Handle(ctx, textEvent(1, 20, "2024"))

	acts := engine.Handle(ctx, textEvent(1, 21, "01"))

	st := firstSendText(t, acts)
	assert.Contains(t, st.Text, "Статус: 503")
	assert.Contains(t, st.Text, "maintenance")
	assert.False(t, engine.InProgress(1))
}

func TestReceiptMissingAccountResets(t *testing.T) {
	engine, up, creds := newTestEngine()
	ctx := context.Background()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)
	creds.On("AccountID", mock.Anything, int64(1)).Return("", false, nil)

	enterReceiptFlow(t, engine)
	engine.Handle(ctx, textEvent(1, 20, "2024"))

	acts := engine.Handle(ctx, textEvent(1, 21, "02"))

	st := firstSendText(t, acts)
	assert.Equal(t, msgAuthIncomplete, st.Text)
	assert.False(t, engine.InProgress(1))
	up.AssertNotCalled(t, "ReceiptPDF", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
