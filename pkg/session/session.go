package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"go.uber.org/zap"

	"glitchstudio/pkg/glitch"
)

var (
	// ErrSuperseded marks a finished computation whose generation is no
	// longer current. It is only logged.
	ErrSuperseded    = errors.New("computation superseded")
	ErrImageTooLarge = glitch.ErrImageTooLarge
	ErrClosed        = errors.New("session closed")
)

// Event is delivered to listeners once a generation settles.
type Event struct {
	Generation uint64
	Effect     glitch.Effect
	Intensity  int
	Output     *glitch.PixelBuffer
	Err        error
}

type State struct {
	ID         string
	Effect     glitch.Effect
	Intensity  int
	Generation uint64
	HasSource  bool
	HasOutput  bool
}

type request struct {
	gen       uint64
	src       *glitch.PixelBuffer
	effect    glitch.Effect
	intensity int
}

func New(renderer glitch.Renderer, logger *zap.Logger, opts ...Option) *Session {
	s := &Session{
		id:       xid.New().String(),
		renderer: renderer,
		// options
		maxDim:    4096,
		effect:    glitch.Scanlines,
		intensity: 50,

		wakeup:  make(chan struct{}, 1),
		changed: make(chan struct{}),
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.log = logger.With(zap.String("session", s.id))

	go s.loop()
	return s
}

// Session owns one editor's source image and effect parameters. Every
// parameter change bumps the generation; only the result computed for the
// current generation is ever committed.
type Session struct {
	l sync.Mutex

	id       string
	renderer glitch.Renderer
	log      *zap.Logger
	// options
	maxDim    int
	listeners []func(Event)

	source     *glitch.PixelBuffer
	output     *Event
	effect     glitch.Effect
	intensity  int
	generation uint64
	settled    uint64
	err        error
	closed     bool

	pending *request
	wakeup  chan struct{}
	changed chan struct{}
	done    chan struct{}
	exited  chan struct{}
}

func (s *Session) ID() string {
	return s.id
}

// MaxDimension is the largest width or height SetSource accepts.
func (s *Session) MaxDimension() int {
	return s.maxDim
}

func (s *Session) SetSource(img *glitch.PixelBuffer) error {
	if img != nil && (img.Width() > s.maxDim || img.Height() > s.maxDim) {
		return errors.Wrapf(ErrImageTooLarge, "%dx%d exceeds %d", img.Width(), img.Height(), s.maxDim)
	}

	s.l.Lock()
	defer s.l.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.source = img
	s.output = nil
	s.err = nil
	s.trigger()
	return nil
}

func (s *Session) SetEffect(eff glitch.Effect) error {
	s.l.Lock()
	defer s.l.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.effect = eff
	s.trigger()
	return nil
}

func (s *Session) SetIntensity(intensity int) error {
	s.l.Lock()
	defer s.l.Unlock()

	if s.closed {
		return ErrClosed
	}

	s.intensity = glitch.ClampIntensity(intensity)
	s.trigger()
	return nil
}

func (s *Session) CurrentOutput() *glitch.PixelBuffer {
	s.l.Lock()
	defer s.l.Unlock()
	if s.output == nil {
		return nil
	}
	return s.output.Output
}

// Snapshot returns the committed output together with the generation and
// parameters it was rendered with, or nil before the first success.
func (s *Session) Snapshot() *Event {
	s.l.Lock()
	defer s.l.Unlock()
	if s.output == nil {
		return nil
	}
	ev := *s.output
	return &ev
}

func (s *Session) Source() *glitch.PixelBuffer {
	s.l.Lock()
	defer s.l.Unlock()
	return s.source
}

// Err is the failure of the latest settled generation, nil when it
// rendered fine.
func (s *Session) Err() error {
	s.l.Lock()
	defer s.l.Unlock()
	return s.err
}

func (s *Session) Generation() uint64 {
	s.l.Lock()
	defer s.l.Unlock()
	return s.generation
}

func (s *Session) State() State {
	s.l.Lock()
	defer s.l.Unlock()
	return State{
		ID:         s.id,
		Effect:     s.effect,
		Intensity:  s.intensity,
		Generation: s.generation,
		HasSource:  s.source != nil,
		HasOutput:  s.output != nil,
	}
}

// Wait blocks until the current generation has settled and returns its
// render failure, if any.
func (s *Session) Wait(ctx context.Context) error {
	for {
		s.l.Lock()
		if s.settled == s.generation {
			err := s.err
			s.l.Unlock()
			return err
		}
		if s.closed {
			s.l.Unlock()
			return ErrClosed
		}
		ch := s.changed
		s.l.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops the worker. A computation in flight runs to completion and
// is discarded.
func (s *Session) Close() {
	s.l.Lock()
	if s.closed {
		s.l.Unlock()
		return
	}
	s.closed = true
	s.pending = nil
	s.broadcast()
	s.l.Unlock()

	close(s.done)
	<-s.exited
}

// trigger must be called with the lock held.
func (s *Session) trigger() {
	s.generation++

	if s.source == nil {
		s.pending = nil
		s.settled = s.generation
		s.broadcast()
		return
	}

	s.pending = &request{
		gen:       s.generation,
		src:       s.source,
		effect:    s.effect,
		intensity: s.intensity,
	}

	select {
	case s.wakeup <- struct{}{}:
	default:
	}
}

func (s *Session) broadcast() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Session) loop() {
	defer close(s.exited)

	for {
		select {
		case <-s.done:
			return
		case <-s.wakeup:
		}

		s.l.Lock()
		req := s.pending
		s.pending = nil
		s.l.Unlock()

		if req == nil {
			continue
		}

		out, err := s.renderer.Render(req.src, req.effect, req.intensity)
		s.commit(req, out, err)
	}
}

func (s *Session) commit(req *request, out *glitch.PixelBuffer, err error) {
	log := s.log.With(
		zap.Uint64("generation", req.gen),
		zap.String("effect", string(req.effect)),
		zap.Int("intensity", req.intensity),
	)

	s.l.Lock()
	if req.gen != s.generation || s.closed {
		s.l.Unlock()
		log.With(zap.Error(ErrSuperseded)).Debug("dropped")
		return
	}

	ev := Event{
		Generation: req.gen,
		Effect:     req.effect,
		Intensity:  req.intensity,
		Output:     out,
		Err:        err,
	}

	if err != nil {
		s.err = err
	} else {
		committed := ev
		s.output = &committed
		s.err = nil
	}
	listeners := s.listeners
	s.l.Unlock()

	switch {
	case err == nil:
		log.Debug("rendered")
	case errors.Is(err, glitch.ErrUnsupportedEffect):
		log.With(zap.Error(err)).Error("render failed")
	default:
		log.With(zap.Error(err)).Warn("render failed")
	}

	for _, fn := range listeners {
		fn(ev)
	}

	// waiters wake only after listeners have seen the result
	s.l.Lock()
	if req.gen > s.settled {
		s.settled = req.gen
	}
	s.broadcast()
	s.l.Unlock()
}
