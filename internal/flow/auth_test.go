package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/akhromov/domobot/internal/domopult"
)

// enterPhoneState drives the session to the phone prompt.
func enterPhoneState(t *testing.T, engine *Engine, userID int64) {
	t.Helper()
	engine.Handle(context.Background(), textEvent(userID, 10, "/start"))
	acts := engine.Handle(context.Background(), buttonEvent(userID, ButtonPhone))
	et := firstEditText(t, acts)
	require.Equal(t, msgPhonePrompt, et.Text)
}

func enterEmailState(t *testing.T, engine *Engine, userID int64) {
	t.Helper()
	engine.Handle(context.Background(), textEvent(userID, 10, "/start"))
	acts := engine.Handle(context.Background(), buttonEvent(userID, ButtonEmail))
	et := firstEditText(t, acts)
	require.Equal(t, msgEmailPrompt, et.Text)
}

func TestPhoneLoginHappyPath(t *testing.T) {
	engine, up, creds := newTestEngine()
	ctx := context.Background()

	creds.On("Token", mock.Anything, int64(1)).Return("", false, nil)
	up.On("RequestSMSCode", mock.Anything, "+79991234567").Return(nil)
	up.On("LoginByCode", mock.Anything, "+79991234567", "4321").Return("tok-1", nil)
	creds.On("Save", mock.Anything, int64(1), "tok-1").Return(nil)
	expectSummary(up, creds, "tok-1")

	enterPhoneState(t, engine, 1)

	acts := engine.Handle(ctx, textEvent(1, 20, "+79991234567"))
	assert.True(t, hasDelete(acts, 20))
	st := firstSendText(t, acts)
	assert.Equal(t, msgSMSSent, st.Text)
	require.Len(t, st.Buttons, 1)
	assert.Equal(t, ButtonCancel, st.Buttons[0][0].Data)

	acts = engine.Handle(ctx, textEvent(1, 21, "4321"))
	assert.True(t, hasDelete(acts, 21))
	summary := firstSendText(t, acts)
	assert.Equal(t, ModeHTML, summary.Mode)
	assert.Contains(t, summary.Text, "Добро пожаловать в личный кабинет, Иван")
	assert.Contains(t, summary.Text, "900-121")
	assert.Contains(t, summary.Text, "1532.5")
	require.Len(t, summary.Buttons, 4)

	assert.False(t, engine.InProgress(1))
	creds.AssertNumberOfCalls(t, "Save", 1)
}

func TestPhoneValidation(t *testing.T) {
	engine, up, creds := newTestEngine()
	creds.On("Token", mock.Anything, int64(1)).Return("", false, nil)
	enterPhoneState(t, engine, 1)

	for _, phone := range []string{"89991234567", "+7999123456", "+799912345678", "79991234567Х"} {
		acts := engine.Handle(context.Background(), textEvent(1, 20, phone))
		st := firstSendText(t, acts)
		assert.Equal(t, msgPhoneInvalid, st.Text, "phone %q", phone)
	}
	up.AssertNotCalled(t, "RequestSMSCode", mock.Anything, mock.Anything)
	assert.True(t, engine.InProgress(1))
}

func TestSMSRequestFailureStaysOnPhone(t *testing.T) {
	engine, up, creds := newTestEngine()
	creds.On("Token", mock.Anything, int64(1)).Return("", false, nil)
	up.On("RequestSMSCode", mock.Anything, "+79991234567").
		Return(&domopult.StatusError{StatusCode: 500, Body: "boom"})
	enterPhoneState(t, engine, 1)

	acts := engine.Handle(context.Background(), textEvent(1, 20, "+79991234567"))

	st := firstSendText(t, acts)
	assert.Equal(t, msgSMSSendFail, st.Text)
	assert.False(t, hasDelete(acts, 20))
}

func TestSMSCodeRejectedFallsBackToPhone(t *testing.T) {
	engine, up, creds := newTestEngine()
	ctx := context.Background()
	creds.On("Token", mock.Anything, int64(1)).Return("", false, nil)
	up.On("RequestSMSCode", mock.Anything, "+79991234567").Return(nil)
	up.On("LoginByCode", mock.Anything, "+79991234567", "0000").
		Return("", &domopult.StatusError{StatusCode: 403, Body: "wrong code"})

	enterPhoneState(t, engine, 1)
	engine.Handle(ctx, textEvent(1, 20, "+79991234567"))

	acts := engine.Handle(ctx, textEvent(1, 21, "0000"))
	st := firstSendText(t, acts)
	assert.Equal(t, msgCodeRejected, st.Text)

	// Follow-up text is treated as a phone number again.
	acts = engine.Handle(ctx, textEvent(1, 22, "not-a-phone"))
	st = firstSendText(t, acts)
	assert.Equal(t, msgPhoneInvalid, st.Text)
}

func TestSMSCodeTransportFailureKeepsState(t *testing.T) {
	engine, up, creds := newTestEngine()
	ctx := context.Background()
	creds.On("Token", mock.Anything, int64(1)).Return("", false, nil)
	up.On("RequestSMSCode", mock.Anything, "+79991234567").Return(nil)
	up.On("LoginByCode", mock.Anything, "+79991234567", "4321").
		Return("", errors.New("dial tcp: connection refused")).Twice()

	enterPhoneState(t, engine, 1)
	engine.Handle(ctx, textEvent(1, 20, "+79991234567"))

	acts := engine.Handle(ctx, textEvent(1, 21, "4321"))
	st := firstSendText(t, acts)
	assert.Equal(t, msgTransportFail, st.Text)

	// Same state: the next text is submitted as a code again.
	engine.Handle(ctx, textEvent(1, 22, "4321"))
	up.AssertNumberOfCalls(t, "LoginByCode", 2)
}

func TestEmailCyrillicRejected(t *testing.T) {
	engine, _, creds := newTestEngine()
	creds.On("Token", mock.Anything, int64(1)).Return("", false, nil)
	enterEmailState(t, engine, 1)

	acts := engine.Handle(context.Background(), textEvent(1, 20, "почта@mail.ru"))

	st := firstSendText(t, acts)
	assert.Equal(t, msgEmailCyrillic, st.Text)
	assert.True(t, engine.InProgress(1))
}

func TestPasswordLoginHappyPath(t *testing.T) {
	engine, up, creds := newTestEngine()
	ctx := context.Background()

	creds.On("Token", mock.Anything, int64(1)).Return("", false, nil)
	up.On("LoginByPassword", mock.Anything, "user@mail.com", "s3cret").Return("tok-2", nil)
	creds.On("Save", mock.Anything, int64(1), "tok-2").Return(nil)
	expectSummary(up, creds, "tok-2")

	enterEmailState(t, engine, 1)

	acts := engine.Handle(ctx, textEvent(1, 20, "user@mail.com"))
	assert.True(t, hasDelete(acts, 20))
	st := firstSendText(t, acts)
	assert.Equal(t, msgPasswordPrompt, st.Text)

	acts = engine.Handle(ctx, textEvent(1, 21, "s3cret"))
	assert.True(t, hasDelete(acts, 21))
	summary := firstSendText(t, acts)
	assert.Contains(t, summary.Text, "Добро пожаловать в личный кабинет")

	assert.False(t, engine.InProgress(1))
	creds.AssertNumberOfCalls(t, "Save", 1)
}

func TestPasswordRejectedFallsBackToEmail(t *testing.T) {
	engine, up, creds := newTestEngine()
	ctx := context.Background()
	creds.On("Token", mock.Anything, int64(1)).Return("", false, nil)
	up.On("LoginByPassword", mock.Anything, "user@mail.com", "wrong").
		Return("", &domopult.StatusError{StatusCode: 403, Body: "denied"})

	enterEmailState(t, engine, 1)
	engine.Handle(ctx, textEvent(1, 20, "user@mail.com"))

	acts := engine.Handle(ctx, textEvent(1, 21, "wrong"))
	st := firstSendText(t, acts)
	assert.Equal(t, msgEmailRejected, st.Text)

	// Back on the email prompt.
	acts = engine.Handle(ctx, textEvent(1, 22, "кириллица"))
	st = firstSendText(t, acts)
	assert.Equal(t, msgEmailCyrillic, st.Text)
}

func TestEmptyTokenReturnsToEmail(t *testing.T) {
	engine, up, creds := newTestEngine()
	ctx := context.Background()
	creds.On("Token", mock.Anything, int64(1)).Return("", false, nil)
	up.On("LoginByPassword", mock.Anything, "user@mail.com", "s3cret").Return("", nil)

	enterEmailState(t, engine, 1)
	engine.Handle(ctx, textEvent(1, 20, "user@mail.com"))

	acts := engine.Handle(ctx, textEvent(1, 21, "s3cret"))

	st := firstSendText(t, acts)
	assert.Equal(t, msgTokenEmpty, st.Text)
	creds.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}
