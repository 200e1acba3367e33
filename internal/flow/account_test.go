package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/akhromov/domobot/internal/domopult"
)

func TestStartAuthenticatedRendersSummary(t *testing.T) {
	engine, up, creds := newTestEngine()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)
	expectSummary(up, creds, "tok")

	acts := engine.Handle(context.Background(), textEvent(1, 10, "/start"))

	st := firstSendText(t, acts)
	assert.Equal(t, ModeHTML, st.Mode)
	assert.Contains(t, st.Text, "Лицевой счёт:</b> 900-121")
	assert.Contains(t, st.Text, "ул. Ленина, д. 1, кв. 2")
	assert.Contains(t, st.Text, "ColdWater")
	require.Len(t, st.Buttons, 4)
	assert.Equal(t, ButtonTopUp, st.Buttons[0][0].Data)
	assert.Equal(t, ButtonReceipt, st.Buttons[1][0].Data)
	assert.Equal(t, ButtonCounters, st.Buttons[2][0].Data)
	assert.Equal(t, ButtonDetailed, st.Buttons[3][0].Data)
	assert.False(t, engine.InProgress(1))
}

func TestStartButtonEditsInPlace(t *testing.T) {
	engine, up, creds := newTestEngine()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)
	expectSummary(up, creds, "tok")

	acts := engine.Handle(context.Background(), buttonEvent(1, ButtonStart))

	et := firstEditText(t, acts)
	assert.Contains(t, et.Text, "Добро пожаловать в личный кабинет")
}

func TestSummaryExpiredTokenDeletesCredential(t *testing.T) {
	engine, up, creds := newTestEngine()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)
	up.On("ConfigurationItems", mock.Anything, "tok").
		Return(nil, &domopult.StatusError{StatusCode: 401, Body: "expired"})
	creds.On("Delete", mock.Anything, int64(1)).Return(nil)

	acts := engine.Handle(context.Background(), textEvent(1, 10, "/start"))

	st := firstSendText(t, acts)
	assert.Equal(t, msgTokenExpired, st.Text)
	creds.AssertCalled(t, "Delete", mock.Anything, int64(1))
}

func TestSummaryUpstreamErrorShowsStatusAndBody(t *testing.T) {
	engine, up, creds := newTestEngine()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)
	up.On("ConfigurationItems", mock.Anything, "tok").
		Return(nil, &domopult.StatusError{StatusCode: 502, Body: "bad gateway"})

	acts := engine.Handle(context.Background(), textEvent(1, 10, "/start"))

	st := firstSendText(t, acts)
	assert.Contains(t, st.Text, "Статус: 502")
	assert.Contains(t, st.Text, "bad gateway")
}

func TestSummaryMeterFailureDegradesToNotice(t *testing.T) {
	engine, up, creds := newTestEngine()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)
	items := &domopult.ConfigurationItems{Items: []domopult.ConfigurationItem{{
		ID:              9,
		PersonalAccount: &domopult.PersonalAccount{ID: 77},
	}}}
	page := &domopult.PaymentsPage{Results: []domopult.PaymentResult{{
		PersonalAccount: &domopult.PersonalAccount{
			Number:            "900-121",
			ConfigurationItem: &domopult.AccountConfigItem{ID: 5},
		},
	}}}
	up.On("ConfigurationItems", mock.Anything, "tok").Return(items, nil)
	creds.On("SetAccountID", mock.Anything, int64(1), "77").Return(nil)
	up.On("PaymentsDetail", mock.Anything, "tok", "77").Return(page, nil)
	up.On("Meters", mock.Anything, "tok", int64(5)).
		Return(nil, &domopult.StatusError{StatusCode: 500, Body: "boom"})

	acts := engine.Handle(context.Background(), textEvent(1, 10, "/start"))

	st := firstSendText(t, acts)
	assert.Contains(t, st.Text, msgMetersLineFail)
	assert.Contains(t, st.Text, "900-121")
}

func TestSummaryNoClientData(t *testing.T) {
	engine, up, creds := newTestEngine()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)
	up.On("ConfigurationItems", mock.Anything, "tok").
		Return(&domopult.ConfigurationItems{}, nil)

	acts := engine.Handle(context.Background(), textEvent(1, 10, "/start"))

	st := firstSendText(t, acts)
	assert.Equal(t, msgNoClientData, st.Text)
}

func TestDetailedInfoFormatsCachedPayload(t *testing.T) {
	engine, up, creds := newTestEngine()
	ctx := context.Background()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)

	items := &domopult.ConfigurationItems{Items: []domopult.ConfigurationItem{{
		ID:              9,
		PersonalAccount: &domopult.PersonalAccount{ID: 77},
	}}}
	page := &domopult.PaymentsPage{Results: []domopult.PaymentResult{{
		ID:              501,
		TransactionalID: "tx-501",
		Status:          "COMPLETED",
		PaymentSum:      1200,
		CreationDate:    "2024-07-20T12:30:45Z",
		PersonalAccount: &domopult.PersonalAccount{
			ID:               77,
			Number:           "900-121",
			UtilitiesBalance: 1532.5,
			IsActive:         true,
			ConfigurationItem: &domopult.AccountConfigItem{
				ID:       5,
				CIGroups: []domopult.CIGroup{{ID: 3, Name: "Корпус 1", Description: "жилой"}},
			},
		},
		Client: &domopult.Client{
			ID: 8,
			Contact: &domopult.Contact{
				Name:   "Иван Иванов",
				Phone:  "+79991234567",
				Emails: []domopult.ClientMail{{Email: "user@mail.com"}},
			},
		},
	}}}
	up.On("ConfigurationItems", mock.Anything, "tok").Return(items, nil).Once()
	creds.On("SetAccountID", mock.Anything, int64(1), "77").Return(nil)
	up.On("PaymentsDetail", mock.Anything, "tok", "77").Return(page, nil).Once()
	up.On("Meters", mock.Anything, "tok", int64(5)).Return(nil,
		&domopult.StatusError{StatusCode: 500, Body: "boom"}).Once()

	engine.Handle(ctx, textEvent(1, 10, "/start"))

	acts := engine.Handle(ctx, buttonEvent(1, ButtonDetailed))

	et := firstEditText(t, acts)
	assert.Contains(t, et.Text, "<pre>")
	assert.Contains(t, et.Text, "Личный счет:")
	assert.Contains(t, et.Text, "Номер: 900-121")
	assert.Contains(t, et.Text, "Иван Иванов")
	assert.Contains(t, et.Text, "20.07.2024 12:30:45")
	assert.Contains(t, et.Text, "Корпус 1")
	require.Len(t, et.Buttons, 1)
	assert.Equal(t, ButtonStart, et.Buttons[0][0].Data)

	// The .Once() expectations above guarantee no second round of upstream
	// calls happened for the detailed view.
	up.AssertExpectations(t)
}

func TestDetailedInfoWithoutCache(t *testing.T) {
	engine, _, _ := newTestEngine()

	acts := engine.Handle(context.Background(), buttonEvent(1, ButtonDetailed))

	et := firstEditText(t, acts)
	assert.Equal(t, msgDetailsMissing, et.Text)
}

func TestTopUpStub(t *testing.T) {
	engine, _, _ := newTestEngine()

	acts := engine.Handle(context.Background(), buttonEvent(1, ButtonTopUp))

	et := firstEditText(t, acts)
	assert.Equal(t, msgTopUpStub, et.Text)
	require.Len(t, et.Buttons, 1)
	assert.Equal(t, ButtonStart, et.Buttons[0][0].Data)
}
