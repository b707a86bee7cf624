package studio

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/samber/lo"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"glitchstudio/pkg/collab"
	"glitchstudio/pkg/glitch"
)

const botTimeout = 30 * time.Second

// DefaultIdle is how long a chat's studio survives without messages.
const DefaultIdle = 30 * time.Minute

// Factory builds the studio for a chat.
type Factory func(chat int64) (*Studio, error)

type BotOption func(b *Bot)

// WithIdle sets how long an unused chat studio is kept. Zero keeps them
// until Stop.
func WithIdle(d time.Duration) BotOption {
	return func(b *Bot) {
		b.chats.idle = d
	}
}

func NewBot(token string, factory Factory, logger *zap.Logger, opts ...BotOption) (*Bot, error) {
	pref := tele.Settings{
		Token: token,
		Poller: &tele.LongPoller{
			Timeout: 30 * time.Second,
		},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		b:     b,
		chats: newChats(factory, DefaultIdle),
		log:   logger.With(zap.String("via", "bot")),
		done:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(bot)
	}

	return bot, nil
}

// Bot is a chat front-end to the studio. Every chat edits in its own
// session.
type Bot struct {
	b     *tele.Bot
	chats *chats
	log   *zap.Logger
	done  chan struct{}
}

func (b *Bot) studio(chat int64) (*Studio, error) {
	return b.chats.get(chat)
}

func (b *Bot) janitor() {
	tick := max(b.chats.idle/2, time.Minute)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			if ids := b.chats.evict(); len(ids) > 0 {
				b.log.With(zap.Int64s("chats", ids), zap.Int("open", b.chats.size())).Info("idle studios closed")
			}
		}
	}
}

// Opener posts share links back into the chat.
func (b *Bot) Opener(chat int64) collab.Opener {
	return collab.OpenerFunc(func(_ context.Context, link string) error {
		_, err := b.b.Send(tele.ChatID(chat), link)
		return err
	})
}

type handler func(ctx context.Context, c tele.Context, s *Studio) error

func (b *Bot) handle(endpoint string, fn handler) {
	b.b.Handle(endpoint, func(c tele.Context) error {
		s, err := b.studio(c.Chat().ID)
		if err != nil {
			return c.Reply(fmt.Sprintf("open session failed: %s", err))
		}

		ctx, cancel := context.WithTimeout(context.Background(), botTimeout)
		defer cancel()

		return fn(ctx, c, s)
	})
}

func (b *Bot) sendPreview(ctx context.Context, c tele.Context, s *Studio) error {
	bs, err := s.Export(ctx)
	if err != nil {
		return c.Reply(fmt.Sprintf("render failed: %s", err))
	}

	st := s.Session().State()
	return c.Send(&tele.Photo{
		File:    tele.FromReader(bytes.NewReader(bs)),
		Caption: fmt.Sprintf("%s, intensity %d", st.Effect.Title(), st.Intensity),
	})
}

func (b *Bot) load(ctx context.Context, c tele.Context, s *Studio, file *tele.File) error {
	rc, err := b.b.File(file)
	if err != nil {
		return c.Reply(fmt.Sprintf("fetch image failed: %s", err))
	}
	defer func() {
		_ = rc.Close()
	}()

	if err := s.Load(rc); err != nil {
		return c.Reply(fmt.Sprintf("load image failed: %s", err))
	}

	return b.sendPreview(ctx, c, s)
}

func (b *Bot) handleSource() {
	b.handle(tele.OnPhoto, func(ctx context.Context, c tele.Context, s *Studio) error {
		return b.load(ctx, c, s, &c.Message().Photo.File)
	})

	b.handle(tele.OnDocument, func(ctx context.Context, c tele.Context, s *Studio) error {
		doc := c.Message().Document
		if !strings.HasPrefix(doc.MIME, "image/") {
			return c.Reply("Send an image")
		}
		return b.load(ctx, c, s, &doc.File)
	})
}

func (b *Bot) handleParams() {
	b.handle("/effects", func(_ context.Context, c tele.Context, _ *Studio) error {
		return c.Reply(effectList())
	})

	b.handle("/effect", func(ctx context.Context, c tele.Context, s *Studio) error {
		in := c.Message().Payload
		if in == "" {
			return c.Reply(fmt.Sprintf("%s\n\n%s", s.Session().State().Effect, effectList()))
		}

		if err := s.SetEffect(in); err != nil {
			return c.Reply(fmt.Sprintf("change failed: %s", err))
		}
		return b.previewIfLoaded(ctx, c, s)
	})

	b.handle("/intensity", func(ctx context.Context, c tele.Context, s *Studio) error {
		in := c.Message().Payload
		if in == "" {
			return c.Reply(strconv.Itoa(s.Session().State().Intensity))
		}

		parsed, err := strconv.Atoi(in)
		if err != nil {
			return c.Reply(fmt.Sprintf("change failed: %s", err))
		}
		if err := s.SetIntensity(parsed); err != nil {
			return c.Reply(fmt.Sprintf("change failed: %s", err))
		}
		return b.previewIfLoaded(ctx, c, s)
	})
}

func (b *Bot) previewIfLoaded(ctx context.Context, c tele.Context, s *Studio) error {
	if !s.Session().State().HasSource {
		return c.Reply("OK, send an image to start")
	}
	return b.sendPreview(ctx, c, s)
}

func (b *Bot) handleAction() {
	b.handle("/preview", b.sendPreview)

	b.handle("/download", func(ctx context.Context, c tele.Context, s *Studio) error {
		name, err := s.Download(ctx)
		if err != nil {
			return c.Reply(fmt.Sprintf("download failed: %s", err))
		}

		bs, err := s.Export(ctx)
		if err != nil {
			return c.Reply(fmt.Sprintf("download failed: %s", err))
		}

		return c.Send(&tele.Document{
			File:     tele.FromReader(bytes.NewReader(bs)),
			FileName: name,
			MIME:     s.ContentType(),
		})
	})

	b.handle("/share", func(ctx context.Context, c tele.Context, s *Studio) error {
		platform, text, err := parseShare(c.Args())
		if err != nil {
			return c.Reply(err.Error())
		}

		sharer := collab.NewComposeSharer(platform, b.Opener(c.Chat().ID))
		if _, err := s.ShareTo(ctx, sharer, text); err != nil {
			return c.Reply(fmt.Sprintf("share failed: %s", err))
		}
		return nil
	})

	b.handle("/mint", func(ctx context.Context, c tele.Context, s *Studio) error {
		res, err := s.Mint(ctx, strings.TrimSpace(c.Message().Payload))
		if err != nil {
			return c.Reply(fmt.Sprintf("mint failed: %s", err))
		}

		lines := []string{
			fmt.Sprintf("Image: %s", res.Image.URL()),
			fmt.Sprintf("Metadata: %s", res.Metadata.URI),
			lo.Ternary(res.Receipt.TransactionHash != "",
				fmt.Sprintf("Transaction: %s", res.Receipt.TransactionHash),
				res.Receipt.Message),
		}
		return c.Reply(strings.Join(lines, "\n"))
	})

	b.handle("/info", func(ctx context.Context, c tele.Context, s *Studio) error {
		return c.Reply(info(ctx, s))
	})

	b.handle("/prev", func(ctx context.Context, c tele.Context, s *Studio) error {
		log := s.History().Prev()
		if log == nil {
			return c.Reply("Previous no item")
		}

		if err := s.Session().SetEffect(log.Effect); err != nil {
			return c.Reply(fmt.Sprintf("restore failed: %s", err))
		}
		if err := s.SetIntensity(log.Intensity); err != nil {
			return c.Reply(fmt.Sprintf("restore failed: %s", err))
		}
		return b.previewIfLoaded(ctx, c, s)
	})
}

func effectList() string {
	return strings.Join(lo.Map(glitch.Effects(), func(e glitch.Effect, _ int) string {
		return fmt.Sprintf("%s - %s", e, e.Title())
	}), "\n")
}

func parseShare(args []string) (collab.Platform, string, error) {
	if len(args) == 0 {
		return collab.Warpcast, "", nil
	}

	p, err := collab.ParsePlatform(args[0])
	if err != nil {
		return "", "", err
	}
	return p, strings.Join(args[1:], " "), nil
}

func info(ctx context.Context, s *Studio) string {
	st := s.Session().State()
	lines := []string{
		fmt.Sprintf("Effect: %s", st.Effect.Title()),
		fmt.Sprintf("Intensity: %d", st.Intensity),
		fmt.Sprintf("Generation: %d", st.Generation),
	}

	if src := s.Session().Source(); src != nil {
		lines = append(lines, fmt.Sprintf("Source: %dx%d", src.Width(), src.Height()))
	}

	if bs, err := s.Export(ctx); err == nil {
		lines = append(lines, fmt.Sprintf("Output size: %s", bytesize.New(float64(len(bs))).String()))
	} else {
		lines = append(lines, fmt.Sprintf("Output: %s", err))
	}

	return strings.Join(lines, "\n")
}

func (b *Bot) Start() {
	b.handleSource()
	b.handleParams()
	b.handleAction()
	if b.chats.idle > 0 {
		go b.janitor()
	}
	go b.b.Start()
}

func (b *Bot) Stop() {
	b.b.Stop()
	close(b.done)
	b.chats.closeAll()
}
