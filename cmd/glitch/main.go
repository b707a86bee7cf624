package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"glitchstudio/internal/app"
	"glitchstudio/internal/config"
	"glitchstudio/pkg/bitmap"
	"glitchstudio/pkg/collab"
	"glitchstudio/pkg/source"
	"glitchstudio/pkg/studio"
)

var cfgFile = flag.String("config", "", "config file")
var in = flag.String("in", "", "source image file")
var out = flag.String("out", "glitch.png", "output file")
var effect = flag.String("effect", "", "effect name")
var intensity = flag.Int("intensity", -1, "effect intensity 0-100")
var fit = flag.Int("fit", 0, "scale sources down to this size")
var download = flag.Bool("download", false, "also save into the download dir")
var share = flag.String("share", "", "share to platform (warpcast, base)")
var shareText = flag.String("share-text", studio.DefaultShareText, "share text")
var mint = flag.String("mint", "", "mint to wallet address")
var whQuery = flag.String("wh-query", "", "use a random wallhaven wallpaper as source")
var whCategory = flag.String("wh-category", "", "wallhaven category names")
var whPurity = flag.String("wh-purity", "", "wallhaven purity levels")
var whRatio = flag.String("wh-ratio", "", "wallhaven ratio filter")
var timeout = flag.Duration("timeout", time.Minute, "overall timeout")
var debug = flag.Bool("debug", false, "set debug")

func main() {
	flag.Parse()

	logger, err := app.NewLogger(*debug)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	cfg, err := config.LoadConfig(ctx, *cfgFile, logger)
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
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

	outFormat, err := bitmap.FormatFromName(*out)
	if err != nil {
		logger.Fatal("output format failed", zap.Error(err))
	}

	s, err := app.NewStudio(cfg, renderer, deps, logger, studio.WithFit(*fit), studio.WithFormat(outFormat))
	if err != nil {
		logger.Fatal("studio failed", zap.Error(err))
	}
	defer s.Close()

	src, err := readSource(cfg, logger)
	if err != nil {
		logger.Fatal("read source failed", zap.Error(err))
	}

	if err := s.Load(src); err != nil {
		logger.Fatal("load source failed", zap.Error(err))
	}

	if *effect != "" {
		if err := s.SetEffect(*effect); err != nil {
			logger.Fatal("set effect failed", zap.Error(err))
		}
	}

	if *intensity >= 0 {
		if err := s.SetIntensity(*intensity); err != nil {
			logger.Fatal("set intensity failed", zap.Error(err))
		}
	}

	bs, err := s.Export(ctx)
	if err != nil {
		logger.Fatal("render failed", zap.Error(err))
	}

	if err := afero.WriteFile(afero.NewOsFs(), *out, bs, 0644); err != nil {
		logger.Fatal("write output failed", zap.Error(err))
	}

	st := s.Session().State()
	logger.With(
		zap.String("file", *out),
		zap.String("effect", string(st.Effect)),
		zap.Int("intensity", st.Intensity),
		zap.String("size", bytesize.New(float64(len(bs))).String()),
	).Info("rendered")

	if *download {
		if name, err := s.Download(ctx); err != nil {
			logger.Error("download failed", zap.Error(err))
		} else {
			logger.With(zap.String("file", name)).Info("downloaded")
		}
	}

	if *share != "" {
		p, err := collab.ParsePlatform(*share)
		if err != nil {
			logger.Fatal("share failed", zap.Error(err))
		}
		sharer := collab.NewComposeSharer(p, collab.LogOpener(logger))
		if _, err := s.ShareTo(ctx, sharer, *shareText); err != nil {
			logger.Error("share failed", zap.Error(err))
		}
	}

	if *mint != "" {
		if ret, err := s.Mint(ctx, *mint); err != nil {
			logger.Error("mint failed", zap.Error(err))
		} else {
			logger.With(
				zap.String("tx", ret.Receipt.TransactionHash),
				zap.String("metadata", ret.Metadata.URI),
			).Info("minted")
		}
	}
}

func readSource(cfg *config.Config, logger *zap.Logger) (io.Reader, error) {
	if *whQuery != "" || *in == "" {
		wh := source.NewWallhaven(source.WallhavenOptions{
			Key:      cfg.WallhavenKey,
			Query:    *whQuery,
			Category: *whCategory,
			Purity:   *whPurity,
			Ratio:    *whRatio,
			Debug:    *debug,
		}, source.NewDownloader(nil, logger).ShowProgress(true), logger)

		bs, err := wh.Random()
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(bs), nil
	}

	bs, err := afero.ReadFile(afero.NewOsFs(), *in)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(bs), nil
}
