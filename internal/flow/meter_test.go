package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/akhromov/domobot/internal/domopult"
)

func enterMeterFlow(t *testing.T, engine *Engine) EditText {
	t.Helper()
	acts := engine.Handle(context.Background(), buttonEvent(1, ButtonCounters))
	et := firstEditText(t, acts)
	require.True(t, engine.InProgress(1))
	return et
}

func TestCountersListsWaterMeters(t *testing.T) {
	engine, up, creds := newTestEngine()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)
	items := &domopult.ConfigurationItems{Items: []domopult.ConfigurationItem{{ID: 9}}}
	meters := []domopult.MeterEntry{
		{Meter: domopult.Meter{ID: 100, Type: domopult.MeterTypeColdWater, Number: "CW-1"}},
		{Meter: domopult.Meter{ID: 101, Type: domopult.MeterTypeHotWater, Number: "HW-1"}},
		{Meter: domopult.Meter{ID: 102, Type: "Electricity", Number: "EL-1"}},
	}
	up.On("ConfigurationItems", mock.Anything, "tok").Return(items, nil)
	up.On("Meters", mock.Anything, "tok", int64(9)).Return(meters, nil)

	et := enterMeterFlow(t, engine)

	assert.Equal(t, ModeHTML, et.Mode)
	assert.Contains(t, et.Text, "CW-1")
	assert.Contains(t, et.Text, "HW-1")
	assert.NotContains(t, et.Text, "EL-1")
	require.Len(t, et.Buttons, 3)
	assert.Equal(t, "meter_100", et.Buttons[0][0].Data)
	assert.Equal(t, "meter_101", et.Buttons[1][0].Data)
	assert.Equal(t, ButtonStart, et.Buttons[2][0].Data)
}

func TestMeterSubmitHappyPath(t *testing.T) {
	engine, up, creds := newTestEngine()
	ctx := context.Background()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)
	items := &domopult.ConfigurationItems{Items: []domopult.ConfigurationItem{{ID: 9}}}
	meters := []domopult.MeterEntry{
		{Meter: domopult.Meter{ID: 100, Type: domopult.MeterTypeColdWater, Number: "CW-1"}},
	}
	up.On("ConfigurationItems", mock.Anything, "tok").Return(items, nil)
	up.On("Meters", mock.Anything, "tok", int64(9)).Return(meters, nil)
	up.On("SubmitMeterValue", mock.Anything, "tok", int64(100), "123.45").Return(nil)

	enterMeterFlow(t, engine)

	acts := engine.Handle(ctx, buttonEvent(1, "meter_100"))
	et := firstEditText(t, acts)
	assert.Equal(t, msgReadingPrompt, et.Text)

	acts = engine.Handle(ctx, textEvent(1, 20, "123.45"))
	st := firstSendText(t, acts)
	assert.Equal(t, msgReadingOK, st.Text)
	assert.False(t, engine.InProgress(1))
}

func TestReadingWithoutDotReturnsToSelection(t *testing.T) {
	engine, up, creds := newTestEngine()
	ctx := context.Background()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)
	items := &domopult.ConfigurationItems{Items: []domopult.ConfigurationItem{{ID: 9}}}
	meters := []domopult.MeterEntry{
		{Meter: domopult.Meter{ID: 100, Type: domopult.MeterTypeColdWater, Number: "CW-1"}},
	}
	up.On("ConfigurationItems", mock.Anything, "tok").Return(items, nil)
	up.On("Meters", mock.Anything, "tok", int64(9)).Return(meters, nil)

	enterMeterFlow(t, engine)
	engine.Handle(ctx, buttonEvent(1, "meter_100"))

	acts := engine.Handle(ctx, textEvent(1, 20, "12345"))
	st := firstSendText(t, acts)
	assert.Equal(t, msgReadingNoDot, st.Text)
	up.AssertNotCalled(t, "SubmitMeterValue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// Back on meter selection: picking a meter works again.
	acts = engine.Handle(ctx, buttonEvent(1, "meter_100"))
	et := firstEditText(t, acts)
	assert.Equal(t, msgReadingPrompt, et.Text)
}

func TestMeterSubmitFailure(t *testing.T) {
	engine, up, creds := newTestEngine()
	ctx := context.Background()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)
	items := &domopult.ConfigurationItems{Items: []domopult.ConfigurationItem{{ID: 9}}}
	meters := []domopult.MeterEntry{
		{Meter: domopult.Meter{ID: 100, Type: domopult.MeterTypeColdWater, Number: "CW-1"}},
	}
	up.On("ConfigurationItems", mock.Anything, "tok").Return(items, nil)
	up.On("Meters", mock.Anything, "tok", int64(9)).Return(meters, nil)
	up.On("SubmitMeterValue", mock.Anything, "tok", int64(100), "123.45").
		Return(&domopult.StatusError{StatusCode: 500, Body: "boom"})

	enterMeterFlow(t, engine)
	engine.Handle(ctx, buttonEvent(1, "meter_100"))

	acts := engine.Handle(ctx, textEvent(1, 20, "123.45"))

	st := firstSendText(t, acts)
	assert.Equal(t, msgReadingFail, st.Text)
	assert.False(t, engine.InProgress(1))
}

func TestMeterSubmitExpiredTokenDeletesCredential(t *testing.T) {
	engine, up, creds := newTestEngine()
	ctx := context.Background()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)
	creds.On("Delete", mock.Anything, int64(1)).Return(nil)
	items := &domopult.ConfigurationItems{Items: []domopult.ConfigurationItem{{ID: 9}}}
	meters := []domopult.MeterEntry{
		{Meter: domopult.Meter{ID: 100, Type: domopult.MeterTypeColdWater, Number: "CW-1"}},
	}
	up.On("ConfigurationItems", mock.Anything, "tok").Return(items, nil)
	up.On("Meters", mock.Anything, "tok", int64(9)).Return(meters, nil)
	up.On("SubmitMeterValue", mock.Anything, "tok", int64(100), "123.45").
		Return(&domopult.StatusError{StatusCode: 401, Body: "expired"})

	enterMeterFlow(t, engine)
	engine.Handle(ctx, buttonEvent(1, "meter_100"))

	acts := engine.Handle(ctx, textEvent(1, 20, "123.45"))

	st := firstSendText(t, acts)
	assert.Equal(t, msgTokenExpired, st.Text)
	creds.AssertCalled(t, "Delete", mock.Anything, int64(1))
}

func TestCountersUnauthenticated(t *testing.T) {
	engine, up, creds := newTestEngine()
	creds.On("Token", mock.Anything, int64(1)).Return("", false, nil)

	acts := engine.Handle(context.Background(), buttonEvent(1, ButtonCounters))

	et := firstEditText(t, acts)
	assert.Equal(t, msgAuthIncomplete, et.Text)
	assert.False(t, engine.InProgress(1))
	up.AssertNotCalled(t, "ConfigurationItems", mock.Anything, mock.Anything)
}

func TestCountersListFailure(t *testing.T) {
	engine, up, creds := newTestEngine()
	creds.On("Token", mock.Anything, int64(1)).Return("tok", true, nil)
	items := &domopult.ConfigurationItems{Items: []domopult.ConfigurationItem{{ID: 9}}}
	up.On("ConfigurationItems", mock.Anything, "tok").Return(items, nil)
	up.On("Meters", mock.Anything, "tok", int64(9)).
		Return(nil, &domopult.StatusError{StatusCode: 500, Body: "boom"})

	acts := engine.Handle(context.Background(), buttonEvent(1, ButtonCounters))

	et := firstEditText(t, acts)
	assert.Equal(t, msgMetersFail, et.Text)
	assert.False(t, engine.InProgress(1))
}
