package source

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"path"

	"github.com/go-resty/resty/v2"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// NewDownloader fetches source images over HTTP. With a non-nil fs every
// download is kept there and served from it the next time.
func NewDownloader(fs afero.Fs, logger *zap.Logger) *Downloader {
	return &Downloader{
		fs:  fs,
		cli: resty.New().SetDoNotParseResponse(true),
		log: logger,
	}
}

type Downloader struct {
	fs       afero.Fs
	cli      *resty.Client
	log      *zap.Logger
	progress bool
}

// ShowProgress draws a progress bar on stdout while downloading.
func (d *Downloader) ShowProgress(on bool) *Downloader {
	d.progress = on
	return d
}

func (d *Downloader) filename(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Path == "" {
		return ""
	}
	return path.Join(u.Host, path.Base(u.Path))
}

func (d *Downloader) Get(link string) ([]byte, error) {
	file := d.filename(link)

	if d.fs != nil && file != "" {
		if exists, err := afero.Exists(d.fs, file); err != nil {
			return nil, err
		} else if exists {
			return afero.ReadFile(d.fs, file)
		}
	}

	resp, err := d.cli.R().Get(link)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.RawBody().Close()
	}()

	if resp.StatusCode() >= 400 {
		return nil, fmt.Errorf("download %s failed: %s", link, resp.Status())
	}

	var buf bytes.Buffer
	var w io.Writer = &buf
	if d.progress {
		bar := progressbar.DefaultBytes(resp.RawResponse.ContentLength, fmt.Sprintf("Downloading %s", link))
		w = io.MultiWriter(&buf, bar)
	}

	if _, err := io.Copy(w, resp.RawBody()); err != nil {
		return nil, err
	}

	if d.fs != nil && file != "" {
		if err := d.save(file, buf.Bytes()); err != nil {
			d.log.With(zap.String("file", file), zap.Error(err)).Info("keep download failed")
		}
	}

	return buf.Bytes(), nil
}

func (d *Downloader) save(file string, bs []byte) error {
	dir := path.Dir(file)
	if exists, err := afero.DirExists(d.fs, dir); err != nil {
		return err
	} else if !exists {
		if err2 := d.fs.MkdirAll(dir, 0755); err2 != nil {
			return err2
		}
	}

	if err := afero.WriteFile(d.fs, file, bs, 0644); err != nil {
		return err
	}

	d.log.With(zap.String("file", file)).Debug("download saved")
	return nil
}
