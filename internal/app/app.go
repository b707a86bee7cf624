// Package app turns a loaded configuration into the renderer, collaborators
// and studios the commands run.
package app

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"glitchstudio/internal/config"
	"glitchstudio/pkg/collab"
	"glitchstudio/pkg/glitch"
	"glitchstudio/pkg/remote"
	"glitchstudio/pkg/session"
	"glitchstudio/pkg/studio"
)

func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// dir roots an fs at path, creating it first.
func dir(path string) (afero.Fs, error) {
	if err := afero.NewOsFs().MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	return studio.NewFs(path)
}

// NewRenderer picks the remote renderer when an address is configured and
// wraps it in a disk cache when a cache dir is set. The returned func
// releases the remote connection.
func NewRenderer(cfg *config.Config, logger *zap.Logger) (glitch.Renderer, func(), error) {
	var r glitch.Renderer = glitch.Local
	release := func() {}

	if cfg.RenderAddr != "" {
		cli, err := remote.New(cfg.RenderAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("connect renderer failed: %w", err)
		}
		logger.With(zap.String("addr", cfg.RenderAddr)).Info("rendering remotely")
		r = cli
		release = func() {
			_ = cli.Close()
		}
	}

	if cfg.CacheDir != "" {
		fs, err := dir(cfg.CacheDir)
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("open cache dir failed: %w", err)
		}
		r = studio.NewCache(fs, r, logger)
	}

	return r, release, nil
}

// NewDeps builds the collaborators. Anything not configured falls back to
// the dry runner, which only logs.
func NewDeps(cfg *config.Config, logger *zap.Logger) (studio.Deps, error) {
	dry := collab.DryRun(logger)
	deps := studio.Deps{
		Uploader: dry,
		Minter:   dry,
		Sharer:   dry,
		Identity: collab.Anonymous{},
	}

	switch {
	case cfg.NFTStorageToken != "":
		deps.Uploader = collab.NewNFTStorage(cfg.NFTStorageToken)
	case cfg.StoreDir != "":
		fs, err := dir(cfg.StoreDir)
		if err != nil {
			return deps, fmt.Errorf("open store dir failed: %w", err)
		}
		deps.Uploader = collab.NewLocalStore(fs, "", cfg.StoreURL)
	}

	if cfg.MintEndpoint != "" {
		deps.Minter = collab.NewMintService(cfg.MintEndpoint)
	}

	if cfg.FarcasterFID > 0 || cfg.FarcasterUsername != "" {
		deps.Identity = collab.StaticIdentity(cfg.FarcasterFID, cfg.FarcasterUsername)
	}

	if cfg.DownloadDir != "" {
		fs, err := dir(cfg.DownloadDir)
		if err != nil {
			return deps, fmt.Errorf("open download dir failed: %w", err)
		}
		deps.Downloads = fs
	}

	return deps, nil
}

// NewStudio starts a session with the configured defaults and wraps it.
func NewStudio(cfg *config.Config, renderer glitch.Renderer, deps studio.Deps, logger *zap.Logger, opts ...studio.Option) (*studio.Studio, error) {
	eff, err := glitch.ParseEffect(cfg.DefaultEffect)
	if err != nil {
		return nil, err
	}

	format, err := imaging.FormatFromExtension(cfg.OutputFormat)
	if err != nil {
		return nil, fmt.Errorf("output format failed: %w", err)
	}

	sess := session.New(renderer, logger,
		session.WithEffect(eff),
		session.WithIntensity(cfg.DefaultIntensity),
		session.WithMaxDimension(cfg.MaxDimension),
	)

	base := []studio.Option{studio.WithFormat(format), studio.WithDecodeLimit(cfg.MaxDecode)}
	return studio.New(sess, deps, logger, append(base, opts...)...), nil
}
