package glitch

type rgbShift struct{}

func (rgbShift) Name() Effect {
	return RGBShift
}

func (rgbShift) Title() string {
	return "RGB Shift"
}

// rgbShiftOffset is the base separation in pixels, up to 30. Red moves
// right, green moves down by half of it and blue moves up-left.
func rgbShiftOffset(intensity int) int {
	return ceilDiv(intensity*3, 10)
}

func (rgbShift) Process(src, dst *PixelBuffer, intensity int) {
	d := rgbShiftOffset(intensity)
	h := d / 2

	for y := 0; y < src.height; y++ {
		for x := 0; x < src.width; x++ {
			i := dst.offset(x, y)
			dst.pix[i] = src.pix[src.offset(src.clampX(x-d), y)]
			dst.pix[i+1] = src.pix[src.offset(x, src.clampY(y-h))+1]
			dst.pix[i+2] = src.pix[src.offset(src.clampX(x+d), src.clampY(y+h))+2]
		}
	}
}
