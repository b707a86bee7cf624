package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"glitchstudio/internal/app"
	"glitchstudio/internal/config"
	"glitchstudio/pkg/studio"
)

var cfgFile = flag.String("config", "", "config file")
var fit = flag.Int("fit", 1600, "scale uploads down to this size")
var history = flag.Int("history", 3, "renders kept per chat")
var idle = flag.Duration("idle", studio.DefaultIdle, "close chat sessions idle this long, 0 keeps them")
var debug = flag.Bool("debug", false, "set debug")

func main() {
	flag.Parse()

	logger, err := app.NewLogger(*debug)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.LoadConfig(context.Background(), *cfgFile, logger)
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}

	if cfg.TelegramToken == "" {
		logger.Fatal("TELEGRAM_TOKEN is required")
	}

	renderer, release, err := app.NewRenderer(cfg, logger)
	if err != nil {
		logger.Fatal("renderer failed", zap.Error(err))
	}
	defer release()

	deps, err := app.NewDeps(cfg, logger)
	if err != nil {
		logger.Fatal("collaborators failed", zap.Error(err))
	}

	bot, err := studio.NewBot(cfg.TelegramToken, func(chat int64) (*studio.Studio, error) {
		return app.NewStudio(cfg, renderer, deps, logger.With(zap.Int64("chat", chat)),
			studio.WithFit(*fit),
			studio.WithHistory(*history),
		)
	}, logger, studio.WithIdle(*idle))
	if err != nil {
		logger.Fatal("bot failed", zap.Error(err))
	}

	bot.Start()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	<-signals
	logger.Info("shutting down")
	bot.Stop()
	logger.Info("exited")
}
