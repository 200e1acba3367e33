package main

import (
	"log"

	"github.com/akhromov/domobot/core/cmd"
	"github.com/akhromov/domobot/internal/bot"
)

func main() {
	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return bot.LoadConfig(path)
		},
		Bootstrap: func(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			return bot.New(carrier.(*bot.Config))
		},
	})
	if err != nil {
		log.Fatalf("bot exited: %v", err)
	}
}
