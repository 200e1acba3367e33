package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/akhromov/domobot/core/logger"
	"github.com/akhromov/domobot/internal/domopult"
	"github.com/akhromov/domobot/internal/session"
)

// startMeters enters the meter flow: resolves the configuration item, lists
// the water meters and offers one button per meter.
func (e *Engine) startMeters(ctx context.Context, s *session.Session) []Action {
	token, ok, err := e.creds.Token(ctx, s.UserID)
	if err != nil || !ok {
		s.Reset()
		return actions(EditText{Text: msgAuthIncomplete, Mode: ModeMarkdown})
	}

	items, err := e.upstream.ConfigurationItems(ctx, token)
	if err != nil {
		s.Reset()
		if domopult.IsUnauthorized(err) {
			return e.upstreamFailure(ctx, s.UserID, err, msgClientInfoFail, true)
		}
		logger.Warn(ctx, "fsm", "meters.config_item_failed",
			slog.Int64("user_id", s.UserID), slog.Any("err", err))
		return actions(EditText{Text: msgNoConfigItem, Mode: ModeMarkdown})
	}
	if len(items.Items) == 0 || items.Items[0].ID == 0 {
		s.Reset()
		return actions(EditText{Text: msgNoConfigItem, Mode: ModeMarkdown})
	}
	configItemID := items.Items[0].ID

	meters, err := e.upstream.Meters(ctx, token, configItemID)
	if err != nil {
		s.Reset()
		if domopult.IsUnauthorized(err) {
			return e.upstreamFailure(ctx, s.UserID, err, msgClientInfoFail, true)
		}
		logger.Warn(ctx, "fsm", "meters.list_failed",
			slog.Int64("user_id", s.UserID),
			slog.Int64("config_item_id", configItemID),
			slog.Any("err", err))
		return actions(EditText{Text: msgMetersFail, Mode: ModeMarkdown})
	}

	var info strings.Builder
	var keyboard [][]Button
	for _, entry := range meters {
		m := entry.Meter
		if m.Type != domopult.MeterTypeColdWater && m.Type != domopult.MeterTypeHotWater {
			continue
		}
		last := m.LastReading()
		if last == "" {
			last = msgMeterNoReading
		}
		fmt.Fprintf(&info, msgCounterLine, m.Type, m.Number, last)
		keyboard = append(keyboard, []Button{{
			Label: fmt.Sprintf(msgMeterBtn, m.Type),
			Data:  meterButtonPrefix + strconv.FormatInt(m.ID, 10),
		}})
	}
	keyboard = append(keyboard, []Button{{Label: msgBtnBack, Data: ButtonStart}})

	e.enter(ctx, s, session.FlowMeter, StateMeterSelect)
	return actions(EditText{
		Text:    msgMetersHeader + info.String(),
		Mode:    ModeHTML,
		Buttons: keyboard,
	})
}

// selectMeter stores the chosen meter and asks for the reading.
func (e *Engine) selectMeter(ctx context.Context, s *session.Session, ev Event) []Action {
	if s.Flow != session.FlowMeter || s.State != StateMeterSelect {
		return nil
	}
	meterID := strings.TrimPrefix(ev.Button, meterButtonPrefix)
	if meterID == "" {
		return nil
	}
	s.PutString(scratchMeterID, meterID)
	e.advance(ctx, s, StateMeterReading)
	return actions(EditText{Text: msgReadingPrompt})
}

// meterReading submits the typed value.
func (e *Engine) meterReading(ctx context.Context, s *session.Session, ev Event) []Action {
	if !validReading(ev.Text) {
		// TODO: keep the selected meter and re-prompt for the reading
		// instead of bouncing back to meter selection.
		e.advance(ctx, s, StateMeterSelect)
		return actions(SendText{Text: msgReadingNoDot})
	}

	rawID, _ := s.GetString(scratchMeterID)
	meterID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || meterID == 0 {
		e.finish(ctx, s, "error")
		return actions(SendText{Text: msgAuthRestart, Mode: ModeMarkdown})
	}

	token, ok, err := e.creds.Token(ctx, ev.UserID)
	if err != nil || !ok {
		e.finish(ctx, s, "error")
		return actions(SendText{Text: msgAuthIncomplete, Mode: ModeMarkdown})
	}

	if err := e.upstream.SubmitMeterValue(ctx, token, meterID, ev.Text); err != nil {
		logger.Warn(ctx, "fsm", "meter.submit_failed",
			slog.Int64("user_id", ev.UserID),
			slog.Int64("meter_id", meterID),
			slog.Any("err", err))
		out := e.meterSubmitFailure(ctx, ev.UserID, err)
		e.finish(ctx, s, "error")
		return out
	}
	logger.Info(ctx, "fsm", "meter.submitted",
		slog.Int64("user_id", ev.UserID),
		slog.Int64("meter_id", meterID))
	e.finish(ctx, s, "ok")
	return actions(SendText{Text: msgReadingOK})
}

func (e *Engine) meterSubmitFailure(ctx context.Context, userID int64, err error) []Action {
	if domopult.IsUnauthorized(err) {
		return e.upstreamFailure(ctx, userID, err, msgClientInfoFail, false)
	}
	return actions(SendText{Text: msgReadingFail, Mode: ModeMarkdown})
}
