package studio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/disintegration/imaging"
	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"glitchstudio/pkg/bitmap"
	"glitchstudio/pkg/collab"
	"glitchstudio/pkg/glitch"
	"glitchstudio/pkg/session"
)

var ErrNoOutput = errors.New("no output rendered")

const DefaultShareText = "Check out my glitch art! #GlitchArt"

// DefaultDecodeLimit caps the sides of uploads that are scaled down with
// WithFit before they reach the session.
const DefaultDecodeLimit = 8192

// Deps are the collaborators the studio hands finished images to.
type Deps struct {
	Uploader  collab.Uploader
	Minter    collab.Minter
	Sharer    collab.Sharer
	Identity  collab.Identity
	Downloads afero.Fs
}

func New(sess *session.Session, deps Deps, logger *zap.Logger, opts ...Option) *Studio {
	if deps.Identity == nil {
		deps.Identity = collab.Anonymous{}
	}

	s := &Studio{
		sess: sess,
		deps: deps,
		log:  logger.With(zap.String("session", sess.ID())),
		// options
		now:     time.Now,
		format:  imaging.PNG,
		network: "Base",
		decode:  DefaultDecodeLimit,
		history: NewHistory(3),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Studio runs one editing session from uploaded bytes to exported,
// shared or minted output.
type Studio struct {
	sess *session.Session
	deps Deps
	log  *zap.Logger
	// options
	now     func() time.Time
	format  imaging.Format
	network string
	fit     int
	decode  int
	history *History
}

type MintResult struct {
	Image    *collab.Upload
	Metadata *collab.Upload
	Receipt  *collab.MintReceipt
}

type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Attributes  []Attribute `json:"attributes"`
}

type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

func (s *Studio) Session() *session.Session {
	return s.sess
}

func (s *Studio) History() *History {
	return s.history
}

func (s *Studio) Close() {
	s.sess.Close()
}

// Load decodes r as the new source. Images the session would refuse, or
// above the decode limit when fitting, are refused from their header.
func (s *Studio) Load(r io.Reader) error {
	limit := s.decode
	if sessMax := s.sess.MaxDimension(); s.fit <= 0 && (limit <= 0 || sessMax < limit) {
		limit = sessMax
	}

	buf, format, err := bitmap.DecodeMax(r, limit)
	if err != nil {
		return err
	}

	s.log.With(
		zap.String("format", format),
		zap.Int("w", buf.Width()),
		zap.Int("h", buf.Height()),
	).Info("source loaded")

	return s.LoadImage(buf)
}

func (s *Studio) LoadImage(buf *glitch.PixelBuffer) error {
	if s.fit > 0 {
		fitted, err := bitmap.Fit(buf, s.fit)
		if err != nil {
			return fmt.Errorf("fit source failed: %w", err)
		}
		buf = fitted
	}
	return s.sess.SetSource(buf)
}

func (s *Studio) SetEffect(name string) error {
	eff, err := glitch.ParseEffect(name)
	if err != nil {
		return err
	}
	return s.sess.SetEffect(eff)
}

func (s *Studio) SetIntensity(intensity int) error {
	return s.sess.SetIntensity(intensity)
}

// snapshot waits for the current parameters to settle and returns the
// output with the parameters it was rendered with.
func (s *Studio) snapshot(ctx context.Context) (*session.Event, error) {
	if err := s.sess.Wait(ctx); err != nil {
		return nil, err
	}

	ev := s.sess.Snapshot()
	if ev == nil {
		return nil, ErrNoOutput
	}
	return ev, nil
}

// Render waits for the current parameters to settle and returns the output.
func (s *Studio) Render(ctx context.Context) (*glitch.PixelBuffer, error) {
	ev, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ev.Output, nil
}

func (s *Studio) Export(ctx context.Context) ([]byte, error) {
	_, bs, err := s.export(ctx)
	return bs, err
}

func (s *Studio) export(ctx context.Context) (*session.Event, []byte, error) {
	ev, err := s.snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	bs, err := bitmap.EncodeBytes(ev.Output, s.format)
	if err != nil {
		return nil, nil, err
	}
	return ev, bs, nil
}

func (s *Studio) ContentType() string {
	return bitmap.ContentType(s.format)
}

// Download writes the output as glitch-<unix ms>.<ext> into the downloads
// fs and returns the file name.
func (s *Studio) Download(ctx context.Context) (string, error) {
	if s.deps.Downloads == nil {
		return "", errors.New("no download target")
	}

	ev, bs, err := s.export(ctx)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("glitch-%d.%s", s.now().UnixMilli(), bitmap.Ext(s.format))
	if err := afero.WriteFile(s.deps.Downloads, name, bs, 0644); err != nil {
		return "", fmt.Errorf("save %s failed: %w", name, err)
	}

	s.history.Add(name, ev.Effect, ev.Intensity, ev.Output)
	s.log.With(zap.String("file", name), zap.String("size", bytesize.New(float64(len(bs))).String())).Info("downloaded")
	return name, nil
}

func (s *Studio) Share(ctx context.Context, text string) (*collab.Upload, error) {
	return s.ShareTo(ctx, s.deps.Sharer, text)
}

// ShareTo uploads the output and passes its URL to sharer.
func (s *Studio) ShareTo(ctx context.Context, sharer collab.Sharer, text string) (*collab.Upload, error) {
	if sharer == nil || s.deps.Uploader == nil {
		return nil, errors.New("sharing is not configured")
	}
	if text == "" {
		text = DefaultShareText
	}

	bs, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}

	up, err := s.deps.Uploader.Upload(ctx, "shared-image."+bitmap.Ext(s.format), s.ContentType(), bs)
	if err != nil {
		return nil, fmt.Errorf("upload share image failed: %w", err)
	}

	if err := sharer.Share(ctx, up.URL(), text); err != nil {
		return up, fmt.Errorf("share failed: %w", err)
	}
	return up, nil
}

// Mint uploads the output and its metadata, then submits a mint for wallet.
func (s *Studio) Mint(ctx context.Context, wallet string) (*MintResult, error) {
	if s.deps.Minter == nil || s.deps.Uploader == nil {
		return nil, errors.New("minting is not configured")
	}
	if wallet == "" {
		return nil, collab.ErrNoWallet
	}

	ev, bs, err := s.export(ctx)
	if err != nil {
		return nil, err
	}

	ts := s.now()

	img, err := s.deps.Uploader.Upload(ctx, fmt.Sprintf("%d-glitch.%s", ts.UnixMilli(), bitmap.Ext(s.format)), s.ContentType(), bs)
	if err != nil {
		return nil, fmt.Errorf("upload image failed: %w", err)
	}

	meta := s.metadata(ctx, ev, img, ts)
	mbs, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}

	mup, err := s.deps.Uploader.Upload(ctx, fmt.Sprintf("%d-metadata.json", ts.UnixMilli()), "application/json", mbs)
	if err != nil {
		return nil, fmt.Errorf("upload metadata failed: %w", err)
	}

	rc, err := s.deps.Minter.Mint(ctx, &collab.MintRequest{
		MetadataURI:   mup.URI,
		WalletAddress: wallet,
		Name:          meta.Name,
		Description:   meta.Description,
	})
	if err != nil {
		return nil, err
	}

	s.log.With(
		zap.String("metadata", mup.URI),
		zap.String("tx", rc.TransactionHash),
	).Info("minted")

	return &MintResult{Image: img, Metadata: mup, Receipt: rc}, nil
}

func (s *Studio) metadata(ctx context.Context, ev *session.Event, img *collab.Upload, ts time.Time) *Metadata {
	meta := &Metadata{
		Name:        fmt.Sprintf("Glitch Art %d", ts.UnixMilli()),
		Description: fmt.Sprintf("Glitch effect: %s, intensity: %d", ev.Effect, ev.Intensity),
		Image:       img.URI,
		Attributes: []Attribute{
			{TraitType: "Type", Value: "Glitch Art"},
			{TraitType: "Created With", Value: "Glitch Photo Editor"},
			{TraitType: "Network", Value: s.network},
			{TraitType: "Timestamp", Value: ts.UTC().Format(time.RFC3339)},
			{TraitType: "Effect", Value: ev.Effect.Title()},
			{TraitType: "Intensity", Value: ev.Intensity},
		},
	}

	u, err := s.deps.Identity.Current(ctx)
	if err != nil {
		s.log.With(zap.Error(err)).Warn("identity lookup failed")
	} else if u != nil {
		creator := fmt.Sprintf("fid:%d", u.FID)
		if u.Username != "" {
			creator = "@" + u.Username
		}
		meta.Attributes = append(meta.Attributes, Attribute{TraitType: "Creator", Value: creator})
	}

	return meta
}
