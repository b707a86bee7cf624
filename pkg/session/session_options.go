package session

import "glitchstudio/pkg/glitch"

type Option func(s *Session)

func WithEffect(eff glitch.Effect) Option {
	return func(s *Session) {
		s.effect = eff
	}
}

func WithIntensity(intensity int) Option {
	return func(s *Session) {
		s.intensity = glitch.ClampIntensity(intensity)
	}
}

// WithMaxDimension bounds the width and height of accepted sources.
func WithMaxDimension(max int) Option {
	return func(s *Session) {
		s.maxDim = max
	}
}

// WithListener registers fn for settled generations. It runs on the session
// worker and must not block.
func WithListener(fn func(Event)) Option {
	return func(s *Session) {
		s.listeners = append(s.listeners, fn)
	}
}
