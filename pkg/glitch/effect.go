package glitch

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var (
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrUnsupportedEffect = errors.New("unsupported effect")
	ErrImageTooLarge     = errors.New("image too large")
)

const (
	MinIntensity = 0
	MaxIntensity = 100
)

// Effect is the tag selecting one entry of the catalog.
type Effect string

const (
	Scanlines Effect = "scanlines"
	Chromatic Effect = "chromatic"
	Pixelate  Effect = "pixelate"
	RGBShift  Effect = "rgb-shift"
)

// processor is one catalog entry. Process reads src and fills dst, which
// has the same dimensions and starts as a copy of src.
type processor interface {
	Name() Effect
	Title() string
	Process(src, dst *PixelBuffer, intensity int)
}

var catalog = []processor{
	scanlines{},
	chromatic{},
	pixelate{},
	rgbShift{},
}

func lookup(eff Effect) (processor, bool) {
	return lo.Find(catalog, func(p processor) bool { return p.Name() == eff })
}

// Effects returns the catalog tags in display order.
func Effects() []Effect {
	return lo.Map(catalog, func(p processor, _ int) Effect { return p.Name() })
}

func (e Effect) Title() string {
	if p, ok := lookup(e); ok {
		return p.Title()
	}
	return string(e)
}

func (e Effect) Valid() bool {
	_, ok := lookup(e)
	return ok
}

func ParseEffect(s string) (Effect, error) {
	e := Effect(s)
	if !e.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEffect, s)
	}
	return e, nil
}

func ClampIntensity(i int) int {
	return lo.Clamp(i, MinIntensity, MaxIntensity)
}

// Apply runs eff over src and returns a new buffer. src is never modified.
func Apply(src *PixelBuffer, eff Effect, intensity int) (*PixelBuffer, error) {
	if !src.valid() {
		return nil, ErrInvalidDimensions
	}

	p, ok := lookup(eff)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEffect, string(eff))
	}

	dst := src.clone()
	if i := ClampIntensity(intensity); i > 0 {
		p.Process(src, dst, i)
	}
	return dst, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func saturate(v int) uint8 {
	return uint8(lo.Clamp(v, 0, 255))
}
