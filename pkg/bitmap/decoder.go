package bitmap

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"

	"glitchstudio/pkg/glitch"
)

// Decode reads a PNG, JPEG, GIF or WEBP image and returns its pixels along
// with the format name reported by the decoder.
func Decode(r io.Reader) (*glitch.PixelBuffer, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("image decode failed: %w", err)
	}

	buf, err := FromImage(img)
	if err != nil {
		return nil, format, err
	}
	return buf, format, nil
}

// DecodeMax is Decode for untrusted input: the header is read first and
// images wider or taller than maxDim fail with glitch.ErrImageTooLarge
// before any pixel is decoded. maxDim <= 0 disables the check.
func DecodeMax(r io.Reader, maxDim int) (*glitch.PixelBuffer, string, error) {
	if maxDim <= 0 {
		return Decode(r)
	}

	var head bytes.Buffer
	cfg, format, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, "", fmt.Errorf("image decode failed: %w", err)
	}

	if cfg.Width > maxDim || cfg.Height > maxDim {
		return nil, format, errors.Wrapf(glitch.ErrImageTooLarge, "%s %dx%d exceeds %d", format, cfg.Width, cfg.Height, maxDim)
	}

	return Decode(io.MultiReader(&head, r))
}

func FromImage(img image.Image) (*glitch.PixelBuffer, error) {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	return glitch.FromPix(b.Dx(), b.Dy(), nrgba.Pix)
}

// Fit scales buf down so neither side exceeds maxDim, keeping the aspect
// ratio. Smaller buffers are returned as is.
func Fit(buf *glitch.PixelBuffer, maxDim int) (*glitch.PixelBuffer, error) {
	if maxDim <= 0 || (buf.Width() <= maxDim && buf.Height() <= maxDim) {
		return buf, nil
	}
	return FromImage(imaging.Fit(ToImage(buf), maxDim, maxDim, imaging.Lanczos))
}
