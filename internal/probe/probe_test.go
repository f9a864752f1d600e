package probe_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/BeastBots/TgBotStatus/internal/config"
	"github.com/BeastBots/TgBotStatus/internal/probe"
	"github.com/BeastBots/TgBotStatus/internal/status"
	"github.com/BeastBots/TgBotStatus/internal/testutil"
	"github.com/BeastBots/TgBotStatus/internal/transport"
)

var baseTime = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func newProber(t *testutil.DummyTransport) *probe.Prober {
	p := probe.New(t, zap.NewNop())
	p.SettleDelay = time.Millisecond
	return p
}

func TestProber_Check_alive(t *testing.T) {
	tr := &testutil.DummyTransport{
		Now: func() time.Time { return baseTime },
		Histories: map[string]transport.HistoryEntry{
			"@alivebot": {ID: 1000, Time: baseTime.Add(2 * time.Second), Username: "alivebot"},
		},
	}

	r := newProber(tr).Check(context.Background(), config.Member{ID: "a", Username: "@alivebot"})

	if r.Status != status.StatusAlive {
		t.Errorf("expected ALIVE but got %s", r.Status)
	}
	if r.Latency != 2*time.Second {
		t.Errorf("expected 2s latency but got %s", r.Latency)
	}
	if r.Username != "alivebot" {
		t.Errorf("expected observed username but got %q", r.Username)
	}

	if len(tr.Sent) != 1 || tr.Sent[0].Text != probe.ProbeMessage {
		t.Errorf("unexpected sent messages: %#v", tr.Sent)
	}
	if len(tr.Reads) != 1 || tr.Reads[0] != "@alivebot" {
		t.Errorf("expected conversation marked read but got %#v", tr.Reads)
	}
}

func TestProber_Check_dead(t *testing.T) {
	// no scripted history: the latest entry is the probe itself
	tr := &testutil.DummyTransport{Now: func() time.Time { return baseTime }}

	r := newProber(tr).Check(context.Background(), config.Member{ID: "d", Username: "@deadbot"})

	if r.Status != status.StatusDead {
		t.Errorf("expected DEAD but got %s", r.Status)
	}
	if r.Latency != 0 {
		t.Errorf("expected no latency but got %s", r.Latency)
	}
	if len(tr.Reads) != 1 {
		t.Errorf("dead classification should still mark the conversation read")
	}
}

func TestProber_Check_transportErrors(t *testing.T) {
	tests := []struct {
		Name      string
		Transport *testutil.DummyTransport
	}{
		{
			"send_fails",
			&testutil.DummyTransport{
				SendErrors: map[string]error{"@badbot": errors.New("peer not found")},
			},
		},
		{
			"history_fails",
			&testutil.DummyTransport{
				HistoryErrors: map[string]error{"@badbot": errors.New("connection reset")},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.Name, func(t *testing.T) {
			r := newProber(tt.Transport).Check(context.Background(), config.Member{ID: "b", Username: "@badbot"})

			if r.Status != status.StatusDead {
				t.Errorf("expected DEAD but got %s", r.Status)
			}
			if len(tt.Transport.Reads) != 0 {
				t.Errorf("failed probe should not mark the conversation read: %#v", tt.Transport.Reads)
			}
		})
	}
}

func TestProber_Check_markReadFailureKeepsStatus(t *testing.T) {
	tr := &testutil.DummyTransport{
		Now: func() time.Time { return baseTime },
		Histories: map[string]transport.HistoryEntry{
			"@alivebot": {ID: 1000, Time: baseTime.Add(time.Second)},
		},
		MarkReadErrors: map[string]error{"@alivebot": errors.New("read failed")},
	}

	r := newProber(tr).Check(context.Background(), config.Member{ID: "a", Username: "@alivebot"})

	if r.Status != status.StatusAlive {
		t.Errorf("mark-read failure must not change classification, got %s", r.Status)
	}
}

func TestProber_Check_negativeLatencyFloorsToZero(t *testing.T) {
	tr := &testutil.DummyTransport{
		Now: func() time.Time { return baseTime },
		Histories: map[string]transport.HistoryEntry{
			"@skewbot": {ID: 1000, Time: baseTime.Add(-3 * time.Second)},
		},
	}

	r := newProber(tr).Check(context.Background(), config.Member{ID: "s", Username: "@skewbot"})

	if r.Status != status.StatusAlive {
		t.Errorf("expected ALIVE but got %s", r.Status)
	}
	if r.Latency != 0 {
		t.Errorf("expected latency floored to 0 but got %s", r.Latency)
	}
}
