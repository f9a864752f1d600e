// Package publish pushes rendered report snapshots to every configured
// destination, pacing writes to stay under the transport's rate limits.
package publish

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BeastBots/TgBotStatus/internal/config"
	"github.com/BeastBots/TgBotStatus/internal/textutil"
	"github.com/BeastBots/TgBotStatus/internal/transport"
)

// DefaultWriteInterval is the minimum delay before each destination write.
const DefaultWriteInterval = 1500 * time.Millisecond

// backoffFactor scales the wait the server asked for on a rate limit signal.
const backoffFactor = 1.2

// Publisher fans a document out to a set of destinations, one at a time.
type Publisher struct {
	Transport    transport.Transport
	Destinations []config.Destination
	Logger       *zap.Logger

	// MediaURL and Buttons are attached to every edit when set.
	MediaURL string
	Buttons  [][]config.Button

	// MaxRetries caps retries per destination on rate limit signals.
	// Zero means retry until the write goes through; the cap exists for
	// tests and operational safety.
	MaxRetries int

	limiter *rate.Limiter
}

// New makes a Publisher over the given destinations.
func New(t transport.Transport, dests []config.Destination, logger *zap.Logger) *Publisher {
	p := &Publisher{
		Transport:    t,
		Destinations: dests,
		Logger:       logger,
	}
	p.SetWriteInterval(DefaultWriteInterval)
	return p
}

// SetWriteInterval changes the pacing between writes.
// Intended for tests; the production interval is DefaultWriteInterval.
func (p *Publisher) SetWriteInterval(d time.Duration) {
	p.limiter = rate.NewLimiter(rate.Every(d), 1)

	// drain the initial token so the delay applies before the first write too
	p.limiter.Allow()
}

// Publish sends the document to every destination in order.
//
// A destination that keeps failing is logged and skipped; it never blocks the
// other destinations beyond its own retry waits. With no destinations
// configured this is a no-op.
func (p *Publisher) Publish(ctx context.Context, text string) {
	if len(p.Destinations) == 0 {
		p.Logger.Warn("no destinations configured, dropping report")
		return
	}

	for _, dest := range p.Destinations {
		p.Logger.Info("updating destination",
			zap.String("name", dest.Name),
			zap.Int64("chat_id", dest.ChatID),
			zap.Int("message_id", dest.MessageID),
			zap.String("size", textutil.ReadableSize(int64(len(text)))))

		if err := p.publishOne(ctx, dest, text); err != nil {
			p.Logger.Error("failed to update destination",
				zap.String("name", dest.Name),
				zap.Error(err))
		}
	}
}

// publishOne writes to a single destination, honoring the write interval
// before every attempt and backing off on rate limit signals.
func (p *Publisher) publishOne(ctx context.Context, dest config.Destination, text string) error {
	opts := transport.EditOptions{
		MediaURL: p.MediaURL,
		Buttons:  p.Buttons,
	}

	for retries := 0; ; retries++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}

		err := p.Transport.EditMessage(ctx, dest, text, opts)

		var rateLimit transport.RateLimitError
		switch {
		case err == nil:
			return nil

		case errors.Is(err, transport.ErrNotModified):
			p.Logger.Debug("destination already up to date", zap.String("name", dest.Name))
			return nil

		case errors.As(err, &rateLimit):
			if p.MaxRetries > 0 && retries >= p.MaxRetries {
				return err
			}

			wait := time.Duration(float64(rateLimit.RetryAfter) * backoffFactor)
			p.Logger.Warn("rate limited",
				zap.String("name", dest.Name),
				zap.Duration("wait", wait))

			if err := sleep(ctx, wait); err != nil {
				return err
			}

		default:
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
