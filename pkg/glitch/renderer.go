package glitch

// Renderer produces the effect output for a source buffer. Implementations
// must honor the Apply contract: same inputs give the same output and src is
// never modified.
type Renderer interface {
	Render(src *PixelBuffer, eff Effect, intensity int) (*PixelBuffer, error)
}

type RendererFunc func(src *PixelBuffer, eff Effect, intensity int) (*PixelBuffer, error)

func (f RendererFunc) Render(src *PixelBuffer, eff Effect, intensity int) (*PixelBuffer, error) {
	return f(src, eff, intensity)
}

// Local renders in-process.
var Local Renderer = RendererFunc(Apply)
