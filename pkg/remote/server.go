package remote

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/rpc"

	"github.com/disintegration/imaging"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"glitchstudio/pkg/bitmap"
	"glitchstudio/pkg/glitch"
)

func NewServer(renderer glitch.Renderer, logger *zap.Logger) (*rpc.Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("Service", &Service{renderer: renderer, log: logger}); err != nil {
		return nil, err
	}
	return srv, nil
}

// Proxy serves renderer over HTTP for the lifetime of the fx app. Start
// fails when srv.Addr cannot be bound; afterwards srv.Addr holds the bound
// address.
func Proxy(renderer glitch.Renderer, srv *http.Server, logger *zap.Logger, lifecycle fx.Lifecycle) error {
	rs, err := NewServer(renderer, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, rs)
	srv.Handler = mux

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("listen %s failed: %w", srv.Addr, err)
			}
			srv.Addr = ln.Addr().String()

			go func() {
				if err := srv.Serve(ln); err != http.ErrServerClosed {
					logger.With(zap.Error(err)).Error("serve failed")
				}
			}()
			logger.With(zap.String("addr", srv.Addr)).Info("serving")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return nil
}

type Service struct {
	renderer glitch.Renderer
	log      *zap.Logger
}

func (s *Service) Render(req *RenderRequest, resp *RenderResponse) error {
	src, _, err := bitmap.Decode(bytes.NewReader(req.Image))
	if err != nil {
		return err
	}

	out, err := s.renderer.Render(src, glitch.Effect(req.Effect), req.Intensity)
	if err != nil {
		s.log.With(zap.String("effect", req.Effect), zap.Error(err)).Info("render failed")
		return err
	}

	bs, err := bitmap.EncodeBytes(out, imaging.PNG)
	if err != nil {
		return err
	}

	s.log.With(
		zap.String("effect", req.Effect),
		zap.Int("intensity", req.Intensity),
		zap.Int("w", out.Width()),
		zap.Int("h", out.Height()),
	).Debug("render")

	resp.Image = bs
	return nil
}
