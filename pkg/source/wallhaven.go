package source

import (
	"fmt"
	"strings"

	"github.com/moolex/wallhaven-go/api"
	"go.uber.org/zap"
)

type WallhavenOptions struct {
	Key      string
	Query    string
	Category string
	Purity   string
	Ratio    string
	Debug    bool
}

func NewWallhaven(opts WallhavenOptions, dl *Downloader, logger *zap.Logger) *Wallhaven {
	wh := api.New(opts.Key)
	wh.SetLogger(logger)
	if opts.Debug {
		wh.SetDebug()
	}

	q := api.NewQuery(opts.Query)
	if opts.Category != "" {
		q.SetCategory(strings.Split(opts.Category, ",")...)
	}
	if opts.Purity != "" {
		q.SetPurity(strings.Split(opts.Purity, ",")...)
	}
	if opts.Ratio != "" {
		q.SetRatio(opts.Ratio)
	}
	q.Random()

	return &Wallhaven{api: wh, q: q, dl: dl, log: logger}
}

// Wallhaven supplies random wallpapers as source images.
type Wallhaven struct {
	api *api.API
	q   *api.QueryCond
	dl  *Downloader
	log *zap.Logger
}

func (w *Wallhaven) Random() ([]byte, error) {
	ret, err := w.api.Query(w.q)
	if err != nil {
		return nil, fmt.Errorf("query wallhaven failed: %w", err)
	}

	wp, err := ret.Pick(api.PickRand)
	if err != nil {
		return nil, fmt.Errorf("get wallpaper failed: %w", err)
	}

	w.log.With(zap.String("id", wp.Id), zap.String("url", wp.Url)).Info("picked")

	bs, err := w.dl.Get(wp.Path)
	if err != nil {
		return nil, fmt.Errorf("download wallpaper failed: %w", err)
	}
	return bs, nil
}
