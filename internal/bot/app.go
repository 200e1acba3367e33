// Package bot wires the flow engine, credential store and domopult client
// into the core Telegram runtime.
package bot

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/akhromov/domobot/core/bootstrap"
	"github.com/akhromov/domobot/core/buildinfo"
	coretelegram "github.com/akhromov/domobot/core/telegram"
	"github.com/akhromov/domobot/core/telegram/commands"
	"github.com/akhromov/domobot/core/telegram/helpers"
	"github.com/akhromov/domobot/core/telegram/router"
	"github.com/akhromov/domobot/internal/credential"
	"github.com/akhromov/domobot/internal/domopult"
	"github.com/akhromov/domobot/internal/flow"
	"github.com/akhromov/domobot/internal/session"
)

// App is the assembled bot application.
type App struct {
	cfg     *Config
	db      *sqlx.DB
	adapter *Adapter
}

// New bootstraps infrastructure (logger, database, migrations) and builds
// the engine with its collaborators.
func New(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	upstream, err := domopult.New(cfg.Domopult, nil)
	if err != nil {
		_ = res.DB.Close()
		return nil, fmt.Errorf("bot: upstream client init failed: %w", err)
	}

	creds := credential.NewStore(res.DB)
	engine := flow.NewEngine(session.NewStore(), upstream, creds)

	return &App{
		cfg:     cfg,
		db:      res.DB,
		adapter: NewAdapter(engine),
	}, nil
}

// TelegramRunOptions builds the runtime configuration: registry, routes and
// middleware chain.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.registerCommands(reg)
	if err := a.registerCallbacks(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.adapter, reg, router.TextOptions{})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}

func (a *App) registerCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.adapter.CommandHandler("/start"),
		Description: "Личный кабинет",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.adapter.CommandHandler("/cancel"),
		Description: "Отменить текущую операцию",
	})
	reg.RegisterCommand("/version", commands.Command{
		Handler:     versionHandler,
		Description: "Версия сборки",
		AdminOnly:   true,
		Hidden:      true,
	})
}

func (a *App) registerCallbacks(reg *coretelegram.Registry) error {
	fixed := []string{
		flow.ButtonStart,
		flow.ButtonCancel,
		flow.ButtonPhone,
		flow.ButtonEmail,
		flow.ButtonTopUp,
		flow.ButtonReceipt,
		flow.ButtonCounters,
		flow.ButtonDetailed,
	}
	for _, key := range fixed {
		if err := reg.RegisterCallback(key, a.adapter.ButtonHandler(key)); err != nil {
			return err
		}
	}
	return reg.RegisterCallback(meterCallbackKey, a.adapter.MeterHandler())
}

func versionHandler(c tele.Context) error {
	text := fmt.Sprintf("version: %s\ncommit: %s\ndate: %s",
		buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	return helpers.SendText(c, text)
}
