package glitch

type pixelate struct{}

func (pixelate) Name() Effect {
	return Pixelate
}

func (pixelate) Title() string {
	return "Pixelate"
}

// pixelateBlock grows quadratically from 1px to the longest image side.
func pixelateBlock(intensity, width, height int) int {
	side := max(width, height)
	return 1 + (side-1)*intensity*intensity/(MaxIntensity*MaxIntensity)
}

// Process paints every block with its top-left source pixel.
func (pixelate) Process(src, dst *PixelBuffer, intensity int) {
	size := pixelateBlock(intensity, src.width, src.height)
	if size <= 1 {
		return
	}

	for by := 0; by < src.height; by += size {
		for bx := 0; bx < src.width; bx += size {
			s := src.offset(bx, by)
			sample := src.pix[s : s+4]

			for y := by; y < min(by+size, src.height); y++ {
				for x := bx; x < min(bx+size, src.width); x++ {
					copy(dst.pix[dst.offset(x, y):], sample)
				}
			}
		}
	}
}
