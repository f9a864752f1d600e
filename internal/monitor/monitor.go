// Package monitor drives one full probe-aggregate-report cycle.
package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BeastBots/TgBotStatus/internal/config"
	"github.com/BeastBots/TgBotStatus/internal/probe"
	"github.com/BeastBots/TgBotStatus/internal/publish"
	"github.com/BeastBots/TgBotStatus/internal/report"
	"github.com/BeastBots/TgBotStatus/internal/status"
	"github.com/BeastBots/TgBotStatus/internal/textutil"
)

// Monitor runs check cycles over a fixed configuration.
//
// A cycle has three strictly sequential phases: announce the check, probe
// each member publishing progress after each one, then publish the final
// grouped report. The aggregator lives for exactly one cycle.
type Monitor struct {
	Config    config.Config
	Prober    *probe.Prober
	Formatter *report.Formatter
	Publisher *publish.Publisher
	Logger    *zap.Logger

	// Now is the clock for elapsed time display.
	// It is a variable for testing purpose.
	Now func() time.Time
}

// New makes a Monitor from its collaborators.
func New(conf config.Config, p *probe.Prober, f *report.Formatter, pub *publish.Publisher, logger *zap.Logger) *Monitor {
	return &Monitor{
		Config:    conf,
		Prober:    p,
		Formatter: f,
		Publisher: pub,
		Logger:    logger,
		Now:       time.Now,
	}
}

// RunCycle performs one complete check cycle.
func (m *Monitor) RunCycle(ctx context.Context) {
	stime := m.Now()
	agg := status.NewAggregator(m.Config)

	m.Logger.Info("starting bot status checks",
		zap.Int("bots", agg.Total()),
		zap.Strings("groups", m.Config.Groups))

	m.Publisher.Publish(ctx, m.Formatter.Initial(agg.Total()))

	for _, member := range m.Config.Members {
		agg.Record(m.Prober.Check(ctx, member))

		m.Publisher.Publish(ctx, m.Formatter.Progress(
			agg.Checked(),
			agg.Total(),
			m.Now().Sub(stime),
		))
	}

	m.Publisher.Publish(ctx, m.Formatter.Final(agg))

	m.Logger.Info("status check completed",
		zap.Int("available", agg.Available()),
		zap.Int("total", agg.Total()),
		zap.String("elapsed", textutil.ReadableDuration(m.Now().Sub(stime))))
}
