package glitch

type scanlines struct{}

func (scanlines) Name() Effect {
	return Scanlines
}

func (scanlines) Title() string {
	return "Scanlines"
}

// scanlineSpacing is the row period, 10 at the lowest intensity down to 2.
func scanlineSpacing(intensity int) int {
	return 2 + (MaxIntensity-intensity)*8/MaxIntensity
}

// scanlineKeep is the percentage of brightness left on a darkened row.
func scanlineKeep(intensity int) int {
	return 100 - intensity*4/5
}

func (scanlines) Process(src, dst *PixelBuffer, intensity int) {
	spacing := scanlineSpacing(intensity)
	keep := scanlineKeep(intensity)

	for y := 0; y < src.height; y += spacing {
		for x := 0; x < src.width; x++ {
			i := src.offset(x, y)
			dst.pix[i] = saturate(int(src.pix[i]) * keep / 100)
			dst.pix[i+1] = saturate(int(src.pix[i+1]) * keep / 100)
			dst.pix[i+2] = saturate(int(src.pix[i+2]) * keep / 100)
		}
	}
}
