package transport

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gotd/td/constant"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/entity"
	"github.com/gotd/td/telegram/message/html"
	"github.com/gotd/td/telegram/message/styling"
	"github.com/gotd/td/telegram/message/unpack"
	"github.com/gotd/td/telegram/peers"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"go.uber.org/zap"

	"github.com/BeastBots/TgBotStatus/internal/config"
)

var (
	ErrNotAuthorized = errors.New("session is not authorized")
)

// TelegramOptions is the settings for NewTelegram.
type TelegramOptions struct {
	APIID       int
	APIHash     string
	SessionFile string
	Logger      *zap.Logger
}

// Telegram is the MTProto implementation of Transport, on a pre-authorized
// user session.
type Telegram struct {
	client *telegram.Client
	api    *tg.Client
	sender *message.Sender
	peers  *peers.Manager
	logger *zap.Logger
}

// NewTelegram makes a Telegram transport. The connection is not established
// until Run is called.
func NewTelegram(opts TelegramOptions) *Telegram {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := telegram.NewClient(opts.APIID, opts.APIHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: opts.SessionFile},
		Logger:         logger.Named("telegram"),
	})

	api := client.API()

	return &Telegram{
		client: client,
		api:    api,
		sender: message.NewSender(api),
		peers:  peers.Options{Logger: logger.Named("peers")}.Build(api),
		logger: logger,
	}
}

// Run connects to Telegram, verifies the session is authorized, and runs fn.
// The connection lives until fn returns.
func (t *Telegram) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.client.Run(ctx, func(ctx context.Context) error {
		s, err := t.client.Auth().Status(ctx)
		if err != nil {
			return err
		}
		if !s.Authorized {
			return ErrNotAuthorized
		}

		return fn(ctx)
	})
}

func (t *Telegram) resolvePeer(ctx context.Context, peer string) (peers.Peer, error) {
	return t.peers.ResolveDomain(ctx, strings.TrimPrefix(peer, "@"))
}

// SendProbe implements Transport.
func (t *Telegram) SendProbe(ctx context.Context, peer, text string) (SentMessage, error) {
	p, err := t.resolvePeer(ctx, peer)
	if err != nil {
		return SentMessage{}, err
	}

	msg, err := unpack.Message(t.sender.To(p.InputPeer()).Text(ctx, text))
	if err != nil {
		return SentMessage{}, err
	}

	return SentMessage{
		ID:   msg.ID,
		Time: time.Unix(int64(msg.Date), 0),
	}, nil
}

// LatestHistoryEntry implements Transport.
func (t *Telegram) LatestHistoryEntry(ctx context.Context, peer string) (HistoryEntry, error) {
	p, err := t.resolvePeer(ctx, peer)
	if err != nil {
		return HistoryEntry{}, err
	}

	res, err := t.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  p.InputPeer(),
		Limit: 1,
	})
	if err != nil {
		return HistoryEntry{}, err
	}

	modified, ok := res.AsModified()
	if !ok || len(modified.GetMessages()) == 0 {
		return HistoryEntry{}, errors.New("empty message history")
	}

	entry := HistoryEntry{}
	if username, ok := p.Username(); ok {
		entry.Username = username
	}

	switch m := modified.GetMessages()[0].(type) {
	case *tg.Message:
		entry.ID = m.ID
		entry.Time = time.Unix(int64(m.Date), 0)
	case *tg.MessageService:
		entry.ID = m.ID
		entry.Time = time.Unix(int64(m.Date), 0)
	default:
		entry.ID = m.GetID()
	}

	return entry, nil
}

// EditMessage implements Transport.
func (t *Telegram) EditMessage(ctx context.Context, dest config.Destination, text string, opts EditOptions) error {
	p, err := t.peers.ResolveTDLibID(ctx, constant.TDLibPeerID(dest.ChatID))
	if err != nil {
		return err
	}

	var b entity.Builder
	if err := styling.Perform(&b, html.String(nil, text)); err != nil {
		return err
	}
	plain, entities := b.Complete()

	req := &tg.MessagesEditMessageRequest{
		Peer:      p.InputPeer(),
		ID:        dest.MessageID,
		NoWebpage: true,
	}
	req.SetMessage(plain)
	if len(entities) > 0 {
		req.SetEntities(entities)
	}
	if opts.MediaURL != "" {
		req.SetMedia(&tg.InputMediaPhotoExternal{URL: opts.MediaURL})
	}
	if markup := buildMarkup(opts.Buttons); markup != nil {
		req.SetReplyMarkup(markup)
	}

	if _, err := t.api.MessagesEditMessage(ctx, req); err != nil {
		if wait, ok := tgerr.AsFloodWait(err); ok {
			return RateLimitError{RetryAfter: wait}
		}
		if tgerr.Is(err, "MESSAGE_NOT_MODIFIED") {
			return ErrNotModified
		}
		return err
	}

	return nil
}

// MarkRead implements Transport.
func (t *Telegram) MarkRead(ctx context.Context, peer string) error {
	p, err := t.resolvePeer(ctx, peer)
	if err != nil {
		return err
	}

	_, err = t.api.MessagesReadHistory(ctx, &tg.MessagesReadHistoryRequest{
		Peer: p.InputPeer(),
	})
	return err
}

// buildMarkup converts configured button rows into an inline keyboard.
func buildMarkup(rows [][]config.Button) tg.ReplyMarkupClass {
	if len(rows) == 0 {
		return nil
	}

	markup := &tg.ReplyInlineMarkup{}
	for _, row := range rows {
		r := tg.KeyboardButtonRow{}
		for _, btn := range row {
			r.Buttons = append(r.Buttons, &tg.KeyboardButtonURL{
				Text: btn.Label,
				URL:  btn.URL,
			})
		}
		markup.Rows = append(markup.Rows, r)
	}

	return markup
}
