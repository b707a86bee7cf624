package glitch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func makeTestBuffer(t *testing.T, w, h int) *PixelBuffer {
	t.Helper()
	pix := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			pix[i] = uint8((x * 17) ^ (y * 31))
			pix[i+1] = uint8((x * 43) + (y * 13))
			pix[i+2] = uint8((x * 7) ^ (y * 11))
			pix[i+3] = uint8(200 + (x+y)%56)
		}
	}
	b, err := FromPix(w, h, pix)
	require.NoError(t, err)
	return b
}

func fill(t *testing.T, w, h int, r, g, b, a uint8) *PixelBuffer {
	t.Helper()
	pix := make([]uint8, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = r, g, b, a
	}
	buf, err := FromPix(w, h, pix)
	require.NoError(t, err)
	return buf
}

func TestApply_ZeroIntensityIsIdentity(t *testing.T) {
	src := makeTestBuffer(t, 37, 23)
	for _, eff := range Effects() {
		t.Run(string(eff), func(t *testing.T) {
			out, err := Apply(src, eff, 0)
			require.NoError(t, err)
			require.True(t, out.Equal(src))
		})
	}
}

func TestApply_NegativeIntensityClampsToIdentity(t *testing.T) {
	src := makeTestBuffer(t, 8, 8)
	out, err := Apply(src, RGBShift, -40)
	require.NoError(t, err)
	require.True(t, out.Equal(src))
}

func TestApply_Deterministic(t *testing.T) {
	src := makeTestBuffer(t, 31, 17)
	for _, eff := range Effects() {
		for _, n := range []int{1, 33, 67, 100} {
			a, err := Apply(src, eff, n)
			require.NoError(t, err)
			b, err := Apply(src, eff, n)
			require.NoError(t, err)
			require.Equal(t, a.Pix(), b.Pix(), "%s@%d", eff, n)
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	src := makeTestBuffer(t, 16, 16)
	before := src.Pix()
	for _, eff := range Effects() {
		_, err := Apply(src, eff, 100)
		require.NoError(t, err)
	}
	require.Equal(t, before, src.Pix())
}

func TestApply_PreservesDimensions(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {1, 9}, {9, 1}, {64, 3}} {
		src := makeTestBuffer(t, size[0], size[1])
		for _, eff := range Effects() {
			for _, n := range []int{0, 50, 100, 250} {
				out, err := Apply(src, eff, n)
				require.NoError(t, err)
				require.Equal(t, src.Width(), out.Width())
				require.Equal(t, src.Height(), out.Height())
				require.Len(t, out.Pix(), size[0]*size[1]*4)
			}
		}
	}
}

func TestApply_ExtremesStayInRange(t *testing.T) {
	// Samples are uint8 so wraparound would show up as a dark pixel
	// where the source was saturated.
	white := fill(t, 5, 5, 255, 255, 255, 255)
	for _, eff := range []Effect{Chromatic, Pixelate, RGBShift} {
		out, err := Apply(white, eff, 100)
		require.NoError(t, err)
		require.True(t, out.Equal(white), eff)
	}

	black := fill(t, 5, 5, 0, 0, 0, 0)
	for _, eff := range Effects() {
		out, err := Apply(black, eff, 100)
		require.NoError(t, err)
		require.True(t, out.Equal(black), eff)
	}
}

func TestApply_InvalidDimensions(t *testing.T) {
	for _, src := range []*PixelBuffer{nil, {}, {width: 0, height: 2}, {width: 2, height: 2, pix: make([]uint8, 3)}} {
		out, err := Apply(src, Scanlines, 50)
		require.ErrorIs(t, err, ErrInvalidDimensions)
		require.Nil(t, out)
	}
}

func TestApply_UnsupportedEffect(t *testing.T) {
	src := makeTestBuffer(t, 4, 4)
	out, err := Apply(src, Effect("vhs"), 50)
	require.True(t, errors.Is(err, ErrUnsupportedEffect))
	require.Nil(t, out)
}

func TestApply_InvalidDimensionsWinsOverUnknownEffect(t *testing.T) {
	_, err := Apply(&PixelBuffer{}, Effect("vhs"), 50)
	require.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestScanlines_WhiteTwoByTwo(t *testing.T) {
	src := fill(t, 2, 2, 255, 255, 255, 255)
	out, err := Apply(src, Scanlines, 100)
	require.NoError(t, err)

	darkened := 0
	for y := 0; y < 2; y++ {
		row := out.At(0, y)
		require.Equal(t, row, out.At(1, y))
		require.EqualValues(t, 255, row.A)
		if row.R < 255 {
			darkened++
			require.EqualValues(t, 51, row.R)
		}
	}
	require.GreaterOrEqual(t, darkened, 1)
}

func TestScanlines_RowsBetweenLinesUntouched(t *testing.T) {
	src := makeTestBuffer(t, 6, 12)
	out, err := Apply(src, Scanlines, 100)
	require.NoError(t, err)
	for y := 1; y < 12; y += 2 {
		for x := 0; x < 6; x++ {
			require.Equal(t, src.At(x, y), out.At(x, y))
		}
	}
}

func TestPixelate_FullIntensitySingleBlock(t *testing.T) {
	pix := make([]uint8, 4*4*4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			i := (y*4 + x) * 4
			v := uint8(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, 255
		}
	}
	src, err := FromPix(4, 4, pix)
	require.NoError(t, err)

	out, err := Apply(src, Pixelate, 100)
	require.NoError(t, err)

	want := src.At(0, 0)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			require.Equal(t, want, out.At(x, y))
		}
	}
}

func TestPixelate_BlocksUseTopLeftSample(t *testing.T) {
	src := makeTestBuffer(t, 20, 20)
	out, err := Apply(src, Pixelate, 50)
	require.NoError(t, err)

	size := pixelateBlock(50, 20, 20)
	require.Greater(t, size, 1)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			require.Equal(t, src.At(x-x%size, y-y%size), out.At(x, y))
		}
	}
}

func TestChromatic_MovesRedAndBlueOnly(t *testing.T) {
	src := makeTestBuffer(t, 30, 3)
	out, err := Apply(src, Chromatic, 40)
	require.NoError(t, err)

	d := chromaticOffset(40)
	for y := 0; y < 3; y++ {
		for x := 0; x < 30; x++ {
			got := out.At(x, y)
			require.Equal(t, src.At(min(max(x-d, 0), 29), y).R, got.R)
			require.Equal(t, src.At(min(max(x+d, 0), 29), y).B, got.B)
			require.Equal(t, src.At(x, y).G, got.G)
			require.Equal(t, src.At(x, y).A, got.A)
		}
	}
}

func TestRGBShift_SeparatesChannels(t *testing.T) {
	// a single white dot on black splits into three coloured dots
	pix := make([]uint8, 40*40*4)
	for i := 3; i < len(pix); i += 4 {
		pix[i] = 255
	}
	c := (20*40 + 20) * 4
	pix[c], pix[c+1], pix[c+2] = 255, 255, 255
	src, err := FromPix(40, 40, pix)
	require.NoError(t, err)

	out, err := Apply(src, RGBShift, 40)
	require.NoError(t, err)

	d := rgbShiftOffset(40)
	require.EqualValues(t, 255, out.At(20+d, 20).R)
	require.EqualValues(t, 255, out.At(20, 20+d/2).G)
	require.EqualValues(t, 255, out.At(20-d, 20-d/2).B)
	require.EqualValues(t, 0, out.At(20, 20).R)
	require.EqualValues(t, 0, out.At(20, 20).B)
}

func TestMagnitude_Monotonic(t *testing.T) {
	for n := 0; n < MaxIntensity; n++ {
		require.LessOrEqual(t, scanlineSpacing(n+1), scanlineSpacing(n))
		require.LessOrEqual(t, scanlineKeep(n+1), scanlineKeep(n))
		require.GreaterOrEqual(t, chromaticOffset(n+1), chromaticOffset(n))
		require.GreaterOrEqual(t, rgbShiftOffset(n+1), rgbShiftOffset(n))
		require.GreaterOrEqual(t, pixelateBlock(n+1, 640, 480), pixelateBlock(n, 640, 480))
	}

	require.Equal(t, 0, chromaticOffset(0))
	require.Equal(t, 0, rgbShiftOffset(0))
	require.Equal(t, 1, pixelateBlock(0, 640, 480))
	require.Equal(t, 640, pixelateBlock(100, 640, 480))
	require.GreaterOrEqual(t, chromaticOffset(80), chromaticOffset(40))
}

func TestParseEffect(t *testing.T) {
	e, err := ParseEffect("rgb-shift")
	require.NoError(t, err)
	require.Equal(t, RGBShift, e)
	require.Equal(t, "RGB Shift", e.Title())

	_, err = ParseEffect("RGB Shift")
	require.ErrorIs(t, err, ErrUnsupportedEffect)

	require.Equal(t, []Effect{Scanlines, Chromatic, Pixelate, RGBShift}, Effects())
}
