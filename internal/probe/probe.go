// Package probe checks whether a fleet member is alive by messaging it and
// inspecting the conversation history.
package probe

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BeastBots/TgBotStatus/internal/config"
	"github.com/BeastBots/TgBotStatus/internal/status"
	"github.com/BeastBots/TgBotStatus/internal/transport"
)

// ProbeMessage is the payload sent to every member.
const ProbeMessage = "/start"

// DefaultSettleDelay is how long to wait after sending the probe before
// reading history, giving the remote time to reply.
const DefaultSettleDelay = 5 * time.Second

// Prober performs one round-trip liveness check per member.
type Prober struct {
	Transport transport.Transport
	Logger    *zap.Logger

	// SettleDelay overrides DefaultSettleDelay when positive.
	SettleDelay time.Duration
}

// New makes a Prober on the given transport.
func New(t transport.Transport, logger *zap.Logger) *Prober {
	return &Prober{
		Transport: t,
		Logger:    logger,
	}
}

func (p *Prober) settleDelay() time.Duration {
	if p.SettleDelay > 0 {
		return p.SettleDelay
	}
	return DefaultSettleDelay
}

// Check probes one member and returns its classification.
//
// A member is alive when the latest history entry after the settle delay is
// not the probe message itself. Transport failures classify the member as
// dead; they are logged and never propagated, so one broken member cannot
// abort the cycle.
func (p *Prober) Check(ctx context.Context, m config.Member) status.ProbeResult {
	result := status.ProbeResult{
		MemberID: m.ID,
		Username: m.Username,
		Status:   status.StatusDead,
	}

	p.Logger.Info("checking bot",
		zap.String("bot", m.Username),
		zap.String("group", m.GroupLabel()))

	sent, err := p.Transport.SendProbe(ctx, m.Username, ProbeMessage)
	if err != nil {
		p.Logger.Error("failed to send probe", zap.String("bot", m.Username), zap.Error(err))
		return result
	}

	sleep(ctx, p.settleDelay())

	entry, err := p.Transport.LatestHistoryEntry(ctx, m.Username)
	if err != nil {
		p.Logger.Error("failed to read history", zap.String("bot", m.Username), zap.Error(err))
		return result
	}

	if entry.Username != "" {
		result.Username = entry.Username
	}

	if entry.ID != sent.ID {
		latency := entry.Time.Sub(sent.Time).Truncate(time.Second)
		if latency < 0 {
			latency = 0
		}
		result.Status = status.StatusAlive
		result.Latency = latency
	}

	if err := p.Transport.MarkRead(ctx, m.Username); err != nil {
		p.Logger.Warn("failed to mark as read", zap.String("bot", m.Username), zap.Error(err))
	}

	p.Logger.Info("bot checked",
		zap.String("bot", m.Username),
		zap.Stringer("status", result.Status))

	return result
}

// sleep waits for d without busy-looping, returning early if ctx is done.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
