package studio

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"glitchstudio/pkg/bitmap"
	"glitchstudio/pkg/glitch"
)

// NewCache wraps next with a PNG render cache stored in fs. Renders are
// deterministic, so a hit is byte-identical to rendering again. A nil fs
// disables caching.
func NewCache(fs afero.Fs, next glitch.Renderer, logger *zap.Logger) *Cache {
	return &Cache{
		fs:   fs,
		next: next,
		log:  logger.With(zap.String("via", "render-cache")),
	}
}

type Cache struct {
	fs   afero.Fs
	next glitch.Renderer
	log  *zap.Logger
}

func (c *Cache) dirname(eff glitch.Effect, intensity int) string {
	return fmt.Sprintf("%s-%d", eff, intensity)
}

func (c *Cache) filename(src *glitch.PixelBuffer, eff glitch.Effect, intensity int) string {
	h := sha256.New()
	_ = binary.Write(h, binary.BigEndian, [2]uint32{uint32(src.Width()), uint32(src.Height())})
	h.Write(src.Pix())
	return fmt.Sprintf("%s/%s.png", c.dirname(eff, intensity), hex.EncodeToString(h.Sum(nil)))
}

func (c *Cache) Render(src *glitch.PixelBuffer, eff glitch.Effect, intensity int) (*glitch.PixelBuffer, error) {
	if c.fs == nil || src == nil || !eff.Valid() {
		return c.next.Render(src, eff, intensity)
	}

	intensity = glitch.ClampIntensity(intensity)
	file := c.filename(src, eff, intensity)
	log := c.log.With(zap.String("file", file))

	if hit, err := c.load(file); err != nil {
		log.With(zap.Error(err)).Info("load cache failed")
	} else if hit != nil {
		log.Debug("hit")
		return hit, nil
	}

	out, err := c.next.Render(src, eff, intensity)
	if err != nil {
		return nil, err
	}

	if err := c.save(eff, intensity, file, out); err != nil {
		log.With(zap.Error(err)).Info("save cache failed")
	}
	return out, nil
}

func (c *Cache) load(file string) (*glitch.PixelBuffer, error) {
	bs, err := afero.ReadFile(c.fs, file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	buf, _, err := bitmap.Decode(bytes.NewReader(bs))
	return buf, err
}

func (c *Cache) save(eff glitch.Effect, intensity int, file string, out *glitch.PixelBuffer) error {
	bs, err := bitmap.EncodeBytes(out, imaging.PNG)
	if err != nil {
		return err
	}

	dir := c.dirname(eff, intensity)
	if exists, err := afero.DirExists(c.fs, dir); err != nil {
		return err
	} else if !exists {
		if err2 := c.fs.MkdirAll(dir, 0755); err2 != nil {
			return err2
		}
	}

	return afero.WriteFile(c.fs, file, bs, 0644)
}
