package helpers

import (
	"bytes"
	"errors"
	"strconv"
	"sync/atomic"

	"log/slog"

	"github.com/akhromov/domobot/core/logger"
	"github.com/akhromov/domobot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends text to the current recipient. Parse mode and reply
// markup come through the optional send options.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendDocument sends an in-memory file as a document to the current recipient.
// Documents are sent synchronously: the payload reader cannot be replayed on retry.
func SendDocument(c tele.Context, name string, data []byte) error {
	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(data)),
		FileName: name,
	}
	return c.Send(doc)
}

// DeleteMessage removes a message by id in the current chat.
func DeleteMessage(c tele.Context, messageID int) error {
	chat := c.Chat()
	if chat == nil {
		return errors.New("helpers: no chat in context")
	}
	stored := tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chat.ID,
	}
	return sendAsync(c, "delete.message", "deleteMessage", func() error {
		return c.Bot().Delete(stored)
	})
}
