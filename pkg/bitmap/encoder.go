package bitmap

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"

	"glitchstudio/pkg/glitch"
)

const jpegQuality = 95

func ToImage(buf *glitch.PixelBuffer) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, buf.Width(), buf.Height()))
	img.Pix = buf.Pix()
	return img
}

func FormatFromName(name string) (imaging.Format, error) {
	return imaging.FormatFromFilename(name)
}

func Encode(w io.Writer, buf *glitch.PixelBuffer, format imaging.Format) error {
	if err := imaging.Encode(w, ToImage(buf), format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("encode %s failed: %w", format, err)
	}
	return nil
}

func EncodeBytes(buf *glitch.PixelBuffer, format imaging.Format) ([]byte, error) {
	var b bytes.Buffer
	if err := Encode(&b, buf, format); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// ContentType of the encoded output.
func ContentType(format imaging.Format) string {
	switch format {
	case imaging.JPEG:
		return "image/jpeg"
	case imaging.GIF:
		return "image/gif"
	case imaging.TIFF:
		return "image/tiff"
	case imaging.BMP:
		return "image/bmp"
	}
	return "image/png"
}

// Ext returns the file extension, without dot, used for format.
func Ext(format imaging.Format) string {
	switch format {
	case imaging.JPEG:
		return "jpg"
	case imaging.GIF:
		return "gif"
	case imaging.TIFF:
		return "tiff"
	case imaging.BMP:
		return "bmp"
	}
	return "png"
}
