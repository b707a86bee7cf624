package collab

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

type Platform string

const (
	Warpcast Platform = "warpcast"
	Base     Platform = "base"
)

func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(s)); p {
	case Warpcast, Base:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown platform %q", ErrValidation, s)
}

// componentEscaper turns url.QueryEscape output into encodeURIComponent
// form: spaces as %20 and !*'() left as they are.
var componentEscaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%2A", "*",
	"%27", "'",
	"%28", "(",
	"%29", ")",
)

func escape(s string) string {
	return componentEscaper.Replace(url.QueryEscape(s))
}

// ComposeURL builds the composer deep link embedding imageURL.
func ComposeURL(p Platform, text, imageURL string) string {
	switch p {
	case Base:
		return fmt.Sprintf("https://basedcast.xyz/compose?text=%s&embed=%s", escape(text), escape(imageURL))
	default:
		return fmt.Sprintf("https://warpcast.com/~/compose?text=%s&embeds[]=%s", escape(text), escape(imageURL))
	}
}

// Opener presents a link to the user.
type Opener interface {
	Open(ctx context.Context, link string) error
}

type OpenerFunc func(ctx context.Context, link string) error

func (f OpenerFunc) Open(ctx context.Context, link string) error {
	return f(ctx, link)
}

func NewComposeSharer(p Platform, opener Opener) *ComposeSharer {
	return &ComposeSharer{platform: p, opener: opener}
}

type ComposeSharer struct {
	platform Platform
	opener   Opener
}

func (s *ComposeSharer) Share(ctx context.Context, imageURL, text string) error {
	return s.opener.Open(ctx, ComposeURL(s.platform, text, imageURL))
}

// LogOpener only logs the link.
func LogOpener(logger *zap.Logger) Opener {
	return OpenerFunc(func(_ context.Context, link string) error {
		logger.With(zap.String("link", link)).Info("share-link")
		return nil
	})
}
