package glitch

import (
	"bytes"
	"image/color"
	"math"
)

// PixelBuffer is an immutable raster of straight (non-premultiplied) RGBA
// samples, 4 bytes per pixel in row-major order.
type PixelBuffer struct {
	width  int
	height int
	pix    []uint8
}

// sizeOf returns the sample count for width x height, or false when the
// dimensions are not positive or the count overflows int.
func sizeOf(width, height int) (int, bool) {
	if width <= 0 || height <= 0 || width > math.MaxInt/4/height {
		return 0, false
	}
	return width * height * 4, true
}

func NewPixelBuffer(width, height int) (*PixelBuffer, error) {
	n, ok := sizeOf(width, height)
	if !ok {
		return nil, ErrInvalidDimensions
	}
	return &PixelBuffer{
		width:  width,
		height: height,
		pix:    make([]uint8, n),
	}, nil
}

// FromPix copies pix into a new buffer.
func FromPix(width, height int, pix []uint8) (*PixelBuffer, error) {
	if n, ok := sizeOf(width, height); !ok || len(pix) != n {
		return nil, ErrInvalidDimensions
	}
	b := &PixelBuffer{
		width:  width,
		height: height,
		pix:    make([]uint8, len(pix)),
	}
	copy(b.pix, pix)
	return b, nil
}

func (b *PixelBuffer) Width() int {
	return b.width
}

func (b *PixelBuffer) Height() int {
	return b.height
}

// Pix returns a copy of the samples.
func (b *PixelBuffer) Pix() []uint8 {
	out := make([]uint8, len(b.pix))
	copy(out, b.pix)
	return out
}

func (b *PixelBuffer) At(x, y int) color.NRGBA {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return color.NRGBA{}
	}
	i := b.offset(x, y)
	return color.NRGBA{R: b.pix[i], G: b.pix[i+1], B: b.pix[i+2], A: b.pix[i+3]}
}

func (b *PixelBuffer) Equal(o *PixelBuffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.width == o.width && b.height == o.height && bytes.Equal(b.pix, o.pix)
}

func (b *PixelBuffer) valid() bool {
	if b == nil {
		return false
	}
	n, ok := sizeOf(b.width, b.height)
	return ok && len(b.pix) == n
}

func (b *PixelBuffer) offset(x, y int) int {
	return (y*b.width + x) * 4
}

// clampX and clampY pin a coordinate to the nearest valid column/row.
func (b *PixelBuffer) clampX(x int) int {
	return min(max(x, 0), b.width-1)
}

func (b *PixelBuffer) clampY(y int) int {
	return min(max(y, 0), b.height-1)
}

func (b *PixelBuffer) blank() *PixelBuffer {
	return &PixelBuffer{
		width:  b.width,
		height: b.height,
		pix:    make([]uint8, len(b.pix)),
	}
}

func (b *PixelBuffer) clone() *PixelBuffer {
	c := b.blank()
	copy(c.pix, b.pix)
	return c
}
