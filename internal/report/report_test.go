package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/BeastBots/TgBotStatus/internal/config"
	"github.com/BeastBots/TgBotStatus/internal/report"
	"github.com/BeastBots/TgBotStatus/internal/status"
)

var baseTime = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func newFormatter() *report.Formatter {
	f := report.New("Test Header", "Test Footer", time.UTC)
	f.Now = func() time.Time { return baseTime }
	return f
}

func TestFormatter_Initial(t *testing.T) {
	want := strings.Join([]string{
		"<blockquote><b>Test Header</b></blockquote>",
		"",
		"• <b>Available Bots:</b> <i>Checking...</i>",
		"",
		"• <code>Updating Gateways...</code>",
		"",
		"<b>Status Update Stats:</b>",
		"<b>Bots Verified:</b> 0 out of 4",
		"<b>Time Elapsed:</b> 0s",
	}, "\n")

	if diff := cmp.Diff(want, newFormatter().Initial(4)); diff != "" {
		t.Errorf("unexpected initial snapshot:\n%s", diff)
	}
}

func TestFormatter_Progress(t *testing.T) {
	got := newFormatter().Progress(2, 4, 90*time.Second)

	want := strings.Join([]string{
		"<blockquote><b>Test Header</b></blockquote>",
		"",
		"• <b>Available Bots:</b> <i>Checking...</i>",
		"",
		"<b>Status Update Stats:</b>",
		"<b>Bots Checked:</b> 2 out of 4",
		"<b>Progress:</b> [⬤⬤○○] 50.00%",
		"<b>Time Elapsed:</b> 1m30s",
	}, "\n")

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected progress snapshot:\n%s", diff)
	}
}

func TestFormatter_Final(t *testing.T) {
	conf := config.Config{
		Members: []config.Member{
			{ID: "m1", Username: "@m1bot", Group: "MIRROR", CustomName: "Mirror One"},
			{ID: "l1", Username: "@l1bot", Group: "LEECH"},
		},
		Groups: []string{"MIRROR", "LEECH"},
	}

	agg := status.NewAggregator(conf)
	agg.Record(status.ProbeResult{MemberID: "m1", Status: status.StatusAlive, Latency: 2 * time.Second, Username: "@m1bot"})
	agg.Record(status.ProbeResult{MemberID: "l1", Status: status.StatusDead, Username: "@l1bot"})

	want := strings.Join([]string{
		"<blockquote><b>Test Header</b></blockquote>",
		"",
		"• <b>Available Bots:</b> 1",
		"",
		"<blockquote><b>MIRROR</b></blockquote>",
		"• <b>Mirror One</b> is <code>Alive 🔥</code> (2s)",
		"",
		"<blockquote><b>LEECH</b></blockquote>",
		"• <b>@l1bot</b> is <code>DED 💀</code>",
		"",
		"<blockquote>• All DC: 4 Powered, Premium Bots",
		"• All Bots Have 4GB Leech Support",
		"• No Limits ~ Mirror Leech Unlimited",
		"• No Shorteners ~ No Ads",
		"• Premium Google Drive | Index Links</blockquote>",
		"",
		"<i>Test Footer</i>",
		"<i>Last Refreshed: 01-Apr-2024 12:00:00 PM UTC</i>",
	}, "\n")

	if diff := cmp.Diff(want, newFormatter().Final(agg)); diff != "" {
		t.Errorf("unexpected final report:\n%s", diff)
	}
}

func TestFormatter_Final_escapesUntrustedText(t *testing.T) {
	conf := config.Config{
		Members: []config.Member{
			{ID: "x", Username: "@xbot", Group: "R&D <Bots>", CustomName: "<script>alert(1)</script>"},
		},
		Groups: []string{"R&D <Bots>"},
	}

	agg := status.NewAggregator(conf)
	agg.Record(status.ProbeResult{MemberID: "x", Status: status.StatusDead})

	got := newFormatter().Final(agg)

	if !strings.Contains(got, "<blockquote><b>R&amp;D &lt;Bots&gt;</b></blockquote>") {
		t.Errorf("group label is not escaped:\n%s", got)
	}
	if !strings.Contains(got, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Errorf("member name is not escaped:\n%s", got)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw markup leaked into the report:\n%s", got)
	}
}

func TestFormatter_Final_displayNameResolution(t *testing.T) {
	conf := config.Config{
		Members: []config.Member{
			{ID: "custom", Username: "@custombot", Group: "G", CustomName: "Custom"},
			{ID: "observed", Username: "@observedbot", Group: "G"},
			{ID: "fallback", Username: "@fallbackbot", Group: "G"},
		},
		Groups: []string{"G"},
	}

	agg := status.NewAggregator(conf)
	agg.Record(status.ProbeResult{MemberID: "custom", Status: status.StatusAlive, Username: "@custombot"})
	agg.Record(status.ProbeResult{MemberID: "observed", Status: status.StatusAlive, Username: "observed_bot"})
	agg.Record(status.ProbeResult{MemberID: "fallback", Status: status.StatusDead})

	got := newFormatter().Final(agg)

	for _, name := range []string{"<b>Custom</b>", "<b>observed_bot</b>", "<b>fallback</b>"} {
		if !strings.Contains(got, name) {
			t.Errorf("expected %s in report:\n%s", name, got)
		}
	}
}

func TestFormatter_Final_latencyOnlyWhenAlive(t *testing.T) {
	conf := config.Config{
		Members: []config.Member{
			{ID: "a", Username: "@a", Group: "G"},
			{ID: "b", Username: "@b", Group: "G"},
		},
		Groups: []string{"G"},
	}

	agg := status.NewAggregator(conf)
	agg.Record(status.ProbeResult{MemberID: "a", Status: status.StatusAlive, Username: "@a"})
	agg.Record(status.ProbeResult{MemberID: "b", Status: status.StatusDead, Latency: 3 * time.Second, Username: "@b"})

	got := newFormatter().Final(agg)

	// alive without latency and dead with a (stale) latency both omit it
	if strings.Contains(got, "(0ms)") || strings.Contains(got, "(3s)") {
		t.Errorf("unexpected latency in report:\n%s", got)
	}
}
