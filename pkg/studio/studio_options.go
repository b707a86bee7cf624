package studio

import (
	"time"

	"github.com/disintegration/imaging"
)

type Option func(s *Studio)

func WithClock(now func() time.Time) Option {
	return func(s *Studio) {
		s.now = now
	}
}

func WithFormat(format imaging.Format) Option {
	return func(s *Studio) {
		s.format = format
	}
}

func WithNetwork(name string) Option {
	return func(s *Studio) {
		s.network = name
	}
}

// WithFit scales sources down to maxDim before they reach the session.
func WithFit(maxDim int) Option {
	return func(s *Studio) {
		s.fit = maxDim
	}
}

// WithDecodeLimit sets the largest side Load decodes when fitting.
func WithDecodeLimit(maxDim int) Option {
	return func(s *Studio) {
		s.decode = maxDim
	}
}

func WithHistory(max int) Option {
	return func(s *Studio) {
		s.history = NewHistory(max)
	}
}
