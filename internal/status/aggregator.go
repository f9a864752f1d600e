package status

import (
	"sort"
	"time"

	"github.com/BeastBots/TgBotStatus/internal/config"
)

// ProbeResult is the outcome of probing one fleet member.
type ProbeResult struct {
	MemberID string

	Status Status

	// Latency is the observed response time, floored to whole seconds.
	// Only meaningful when Status is StatusAlive.
	Latency time.Duration

	// Username is the remote username observed during the probe, used for
	// display when no custom name is configured.
	Username string
}

// Group is one report section: a group label with its member results in
// configuration order.
type Group struct {
	Name    string
	Results []ProbeResult
}

// Aggregator collects the latest probe result of every fleet member during
// one cycle. It is created at cycle start and discarded at cycle end, and is
// only ever touched from the single probing sequence.
type Aggregator struct {
	members []config.Member
	groups  []string

	results map[string]ProbeResult
	alive   int
}

// NewAggregator makes an empty Aggregator for the given configuration.
func NewAggregator(conf config.Config) *Aggregator {
	return &Aggregator{
		members: conf.Members,
		groups:  conf.Groups,
		results: make(map[string]ProbeResult, len(conf.Members)),
	}
}

// Record stores the result of one member, overwriting any previous result.
//
// The running alive counter is incremented exactly once per member transition
// to StatusAlive.
func (a *Aggregator) Record(r ProbeResult) {
	prev, ok := a.results[r.MemberID]
	if r.Status == StatusAlive && (!ok || prev.Status != StatusAlive) {
		a.alive++
	}

	a.results[r.MemberID] = r
}

// Total returns the number of configured members.
func (a *Aggregator) Total() int {
	return len(a.members)
}

// Checked returns the number of members with a recorded result.
func (a *Aggregator) Checked() int {
	return len(a.results)
}

// Alive returns the running count of members that transitioned to alive.
func (a *Aggregator) Alive() int {
	return a.alive
}

// Available recomputes the number of alive members from the recorded results.
// The final report uses this instead of trusting the running counter.
func (a *Aggregator) Available() int {
	n := 0
	for _, r := range a.results {
		if r.Status == StatusAlive {
			n++
		}
	}
	return n
}

// Member returns the configuration entry of a recorded member.
func (a *Aggregator) Member(id string) (config.Member, bool) {
	for _, m := range a.members {
		if m.ID == id {
			return m, true
		}
	}
	return config.Member{}, false
}

// Grouped buckets the recorded results by group label and returns the groups
// in display order.
//
// Groups appear in the configuration's first-seen order; members within a
// group keep configuration order regardless of probing order. Labels that are
// absent from the configured order are merged into a single trailing fallback
// section named after the default group, ordered by label and then by
// configuration position.
func (a *Aggregator) Grouped() []Group {
	known := make(map[string]bool, len(a.groups))
	for _, name := range a.groups {
		known[name] = true
	}

	type leftover struct {
		label  string
		result ProbeResult
	}

	buckets := make(map[string][]ProbeResult)
	var leftovers []leftover

	for i := range a.members {
		m := a.members[i]
		r, ok := a.results[m.ID]
		if !ok {
			continue
		}

		g := m.GroupLabel()
		if known[g] {
			buckets[g] = append(buckets[g], r)
		} else {
			leftovers = append(leftovers, leftover{label: g, result: r})
		}
	}

	var groups []Group
	for _, name := range a.groups {
		if rs, ok := buckets[name]; ok {
			groups = append(groups, Group{Name: name, Results: rs})
		}
	}

	// Labels not in the configured order can only appear if the
	// configuration changed between startup and probing. Merge them into
	// one deterministic section after the known groups.
	if len(leftovers) > 0 {
		sort.SliceStable(leftovers, func(i, j int) bool {
			return leftovers[i].label < leftovers[j].label
		})

		rs := make([]ProbeResult, len(leftovers))
		for i, l := range leftovers {
			rs[i] = l.result
		}
		groups = append(groups, Group{Name: config.DefaultGroup, Results: rs})
	}

	return groups
}
