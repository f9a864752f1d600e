// Package report renders status snapshots as Telegram-flavored HTML,
// restricted to the <b>, <i>, <code> and <blockquote> tags.
package report

import (
	_ "embed"
	"html"
	"strings"
	"text/template"
	"time"

	"github.com/BeastBots/TgBotStatus/internal/status"
	"github.com/BeastBots/TgBotStatus/internal/textutil"
)

//go:embed templates/initial.txt
var initialTemplateStr string

//go:embed templates/progress.txt
var progressTemplateStr string

//go:embed templates/final.txt
var finalTemplateStr string

var (
	initialTemplate  = template.Must(template.New("initial.txt").Parse(initialTemplateStr))
	progressTemplate = template.Must(template.New("progress.txt").Parse(progressTemplateStr))
	finalTemplate    = template.Must(template.New("final.txt").Parse(finalTemplateStr))
)

var statusLabels = map[status.Status]string{
	status.StatusAlive:   "Alive 🔥",
	status.StatusDead:    "DED 💀",
	status.StatusUnknown: "Unknown",
}

var footerInfo = strings.Join([]string{
	"• All DC: 4 Powered, Premium Bots",
	"• All Bots Have 4GB Leech Support",
	"• No Limits ~ Mirror Leech Unlimited",
	"• No Shorteners ~ No Ads",
	"• Premium Google Drive | Index Links",
}, "\n")

// Formatter renders the three snapshot kinds of one check cycle.
//
// Header and Footer are operator-owned markup and pass through unescaped;
// everything sourced from the fleet configuration or from remote peers is
// HTML-escaped before interpolation.
type Formatter struct {
	Header   string
	Footer   string
	Location *time.Location

	// Now is the clock for the final report timestamp.
	// It is a variable for testing purpose.
	Now func() time.Time
}

// New makes a Formatter. loc may be nil for UTC.
func New(header, footer string, loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{
		Header:   header,
		Footer:   footer,
		Location: loc,
		Now:      time.Now,
	}
}

type memberLine struct {
	Name    string
	Status  string
	Latency string
}

type groupSection struct {
	Name    string
	Members []memberLine
}

// Initial renders the "checking" snapshot published before the first probe.
func (f *Formatter) Initial(total int) string {
	return render(initialTemplate, map[string]interface{}{
		"Header": f.Header,
		"Total":  total,
	})
}

// Progress renders the snapshot published after each probe.
func (f *Formatter) Progress(checked, total int, elapsed time.Duration) string {
	return render(progressTemplate, map[string]interface{}{
		"Header":  f.Header,
		"Checked": checked,
		"Total":   total,
		"Bar":     textutil.ProgressBar(checked, total),
		"Elapsed": textutil.ReadableDuration(elapsed),
	})
}

// Final renders the complete grouped report.
func (f *Formatter) Final(agg *status.Aggregator) string {
	var groups []groupSection
	for _, g := range agg.Grouped() {
		section := groupSection{Name: html.EscapeString(g.Name)}
		for _, r := range g.Results {
			section.Members = append(section.Members, f.memberLine(agg, r))
		}
		groups = append(groups, section)
	}

	return render(finalTemplate, map[string]interface{}{
		"Header":     f.Header,
		"Available":  agg.Available(),
		"Groups":     groups,
		"FooterInfo": footerInfo,
		"Footer":     f.Footer,
		"Refreshed":  f.Now().In(f.Location).Format("02-Jan-2006 03:04:05 PM MST"),
	})
}

func (f *Formatter) memberLine(agg *status.Aggregator, r status.ProbeResult) memberLine {
	line := memberLine{
		Name:   html.EscapeString(displayName(agg, r)),
		Status: statusLabels[r.Status],
	}

	if r.Status == status.StatusAlive && r.Latency > 0 {
		line.Latency = textutil.ReadableDuration(r.Latency)
	}

	return line
}

// displayName resolves what to call a member in the report:
// configured custom name, then observed username, then the raw id.
func displayName(agg *status.Aggregator, r status.ProbeResult) string {
	if m, ok := agg.Member(r.MemberID); ok && m.CustomName != "" {
		return m.CustomName
	}
	if r.Username != "" {
		return r.Username
	}
	return r.MemberID
}

func render(tmpl *template.Template, data interface{}) string {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		// the templates are embedded and the data is internal, so this
		// cannot fail at runtime
		panic(err)
	}
	return b.String()
}
