// Package commands defines the registration metadata for bot commands.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command binds a slash command to its handler and menu metadata.
// Hidden commands stay callable but are left out of the Telegram menu.
// AdminOnly commands answer only the configured administrator.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}
