package main

import (
	"context"
	"log"
	"net/http"

	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"glitchstudio/internal/app"
	"glitchstudio/internal/config"
	"glitchstudio/pkg/glitch"
	"glitchstudio/pkg/remote"
)

var cfgFile = flag.String("config", "", "config file")
var listen = flag.String("listen", ":9123", "listen addr")
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

	fx.New(
		fx.Supply(logger, cfg),
		fx.Provide(
			func() *http.Server {
				return &http.Server{Addr: *listen}
			},
			func(cfg *config.Config, logger *zap.Logger) (glitch.Renderer, error) {
				// the daemon always renders locally
				local := *cfg
				local.RenderAddr = ""
				r, _, err := app.NewRenderer(&local, logger)
				return r, err
			},
		),
		fx.Invoke(
			remote.Proxy,
		),
	).Run()
}
