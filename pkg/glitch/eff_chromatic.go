package glitch

type chromatic struct{}

func (chromatic) Name() Effect {
	return Chromatic
}

func (chromatic) Title() string {
	return "Chromatic"
}

// chromaticOffset is the horizontal red/blue split in pixels, up to 20.
func chromaticOffset(intensity int) int {
	return ceilDiv(intensity, 5)
}

func (chromatic) Process(src, dst *PixelBuffer, intensity int) {
	d := chromaticOffset(intensity)

	for y := 0; y < src.height; y++ {
		for x := 0; x < src.width; x++ {
			i := src.offset(x, y)
			dst.pix[i] = src.pix[src.offset(src.clampX(x-d), y)]
			dst.pix[i+2] = src.pix[src.offset(src.clampX(x+d), y)+2]
		}
	}
}
