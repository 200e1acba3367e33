package bot

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/akhromov/domobot/core/telegram/callbacks"
	"github.com/akhromov/domobot/core/telegram/helpers"
	"github.com/akhromov/domobot/core/telegram/keyboard"
	"github.com/akhromov/domobot/internal/flow"
)

// meterCallbackKey is the registry key of the parameterized meter button.
// Its payload carries the meter id so a single handler serves every meter.
const meterCallbackKey = "meter"

// Adapter translates telebot updates into engine events and engine actions
// back into telebot calls.
type Adapter struct {
	engine *flow.Engine
}

// NewAdapter wraps the flow engine.
func NewAdapter(engine *flow.Engine) *Adapter {
	return &Adapter{engine: engine}
}

// InProgress implements the router FSM gate.
func (a *Adapter) InProgress(userID int64) bool {
	return a.engine.InProgress(userID)
}

// ManagerHandler feeds in-flow text and document updates to the engine.
func (a *Adapter) ManagerHandler(c tele.Context) error {
	return a.run(c, a.eventFrom(c, ""))
}

// CommandHandler feeds a slash command to the engine as text.
func (a *Adapter) CommandHandler(command string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ev := a.eventFrom(c, "")
		ev.Text = command
		return a.run(c, ev)
	}
}

// ButtonHandler feeds a fixed-vocabulary button press to the engine.
func (a *Adapter) ButtonHandler(data string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return a.run(c, a.eventFrom(c, data))
	}
}

// MeterHandler reconstructs the meter button from the callback payload.
// Payloads that do not parse as a meter id are dropped here.
func (a *Adapter) MeterHandler() tele.HandlerFunc {
	return func(c tele.Context) error {
		id, err := callbacks.PayloadInt64(c)
		if err != nil {
			return nil
		}
		return a.run(c, a.eventFrom(c, "meter_"+strconv.FormatInt(id, 10)))
	}
}

func (a *Adapter) run(c tele.Context, ev flow.Event) error {
	ctx := helpers.BuildContext(c)
	return a.perform(c, a.engine.Handle(ctx, ev))
}

func (a *Adapter) eventFrom(c tele.Context, button string) flow.Event {
	var ev flow.Event
	if sender := c.Sender(); sender != nil {
		ev.UserID = sender.ID
		ev.FirstName = sender.FirstName
	}
	if chat := c.Chat(); chat != nil {
		ev.ChatID = chat.ID
	}
	if msg := c.Message(); msg != nil {
		ev.MessageID = msg.ID
		if button == "" {
			ev.Text = msg.Text
		}
	}
	ev.Button = button
	return ev
}

// perform executes engine actions in order. The first failure is returned
// after the remaining actions ran, so a failed delete does not swallow the
// message that follows it.
func (a *Adapter) perform(c tele.Context, acts []flow.Action) error {
	var firstErr error
	for _, act := range acts {
		var err error
		switch v := act.(type) {
		case flow.SendText:
			err = a.sendText(c, v)
		case flow.EditText:
			err = a.editText(c, v)
		case flow.SendFile:
			err = helpers.SendDocument(c, v.Name, v.Data)
		case flow.DeleteMessage:
			err = helpers.DeleteMessage(c, v.MessageID)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *Adapter) sendText(c tele.Context, v flow.SendText) error {
	if opts := sendOptions(v.Mode, markupFor(v.Buttons)); opts != nil {
		return helpers.SendText(c, v.Text, opts)
	}
	return helpers.SendText(c, v.Text)
}

// editText edits the message that carried the pressed button. Outside a
// callback (or when the message is gone) it degrades to a regular send.
func (a *Adapter) editText(c tele.Context, v flow.EditText) error {
	if opts := sendOptions(v.Mode, markupFor(v.Buttons)); opts != nil {
		return c.EditOrSend(v.Text, opts)
	}
	return c.EditOrSend(v.Text)
}

func sendOptions(mode flow.ParseMode, rm *tele.ReplyMarkup) *tele.SendOptions {
	parse := tele.ModeDefault
	switch mode {
	case flow.ModeMarkdown:
		parse = tele.ModeMarkdown
	case flow.ModeHTML:
		parse = tele.ModeHTML
	}
	if parse == tele.ModeDefault && rm == nil {
		return nil
	}
	return &tele.SendOptions{ParseMode: parse, ReplyMarkup: rm}
}

// markupFor maps engine button rows onto an inline keyboard. Meter buttons
// share the "meter" unique with the id in the payload; everything else uses
// its data value as the unique directly.
func markupFor(buttons [][]flow.Button) *tele.ReplyMarkup {
	if len(buttons) == 0 {
		return nil
	}
	rows := make([][]keyboard.InlineBtn, 0, len(buttons))
	for _, row := range buttons {
		r := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			if id, ok := strings.CutPrefix(b.Data, "meter_"); ok {
				r = append(r, keyboard.InlineBtn{Text: b.Label, Unique: meterCallbackKey, Data: id})
				continue
			}
			r = append(r, keyboard.InlineBtn{Text: b.Label, Unique: b.Data})
		}
		rows = append(rows, r)
	}
	return keyboard.InlineButtonsRows(rows...)
}
