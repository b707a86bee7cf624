package remote

import (
	"bytes"
	"fmt"
	"net/rpc"
	"strings"

	"github.com/disintegration/imaging"

	"glitchstudio/pkg/bitmap"
	"glitchstudio/pkg/glitch"
)

func New(addr string) (*Client, error) {
	client, err := rpc.DialHTTP("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Client{rpc: client}, nil
}

// Client renders on a remote glitchd.
type Client struct {
	rpc *rpc.Client
}

func (c *Client) Render(src *glitch.PixelBuffer, eff glitch.Effect, intensity int) (*glitch.PixelBuffer, error) {
	if src == nil || src.Width() <= 0 || src.Height() <= 0 {
		return nil, glitch.ErrInvalidDimensions
	}

	img, err := bitmap.EncodeBytes(src, imaging.PNG)
	if err != nil {
		return nil, err
	}

	var resp RenderResponse
	if err := c.rpc.Call("Service.Render", &RenderRequest{
		Effect:    string(eff),
		Intensity: intensity,
		Image:     img,
	}, &resp); err != nil {
		return nil, remoteError(err)
	}

	out, _, err := bitmap.Decode(bytes.NewReader(resp.Image))
	return out, err
}

func (c *Client) Close() error {
	return c.rpc.Close()
}

// remoteError restores the engine sentinels lost in the rpc error string.
func remoteError(err error) error {
	se, ok := err.(rpc.ServerError)
	if !ok {
		return err
	}

	for _, sentinel := range []error{glitch.ErrInvalidDimensions, glitch.ErrUnsupportedEffect} {
		if strings.HasPrefix(string(se), sentinel.Error()) {
			return fmt.Errorf("%w (remote: %s)", sentinel, string(se))
		}
	}
	return err
}
