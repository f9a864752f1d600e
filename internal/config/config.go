// Package config loads the fleet and destination configuration of
// TgBotStatus from config.json and from environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/BeastBots/TgBotStatus/internal/statuserr"
)

var (
	ErrInvalidConfig = errors.New("invalid config.json")
)

// Member is one fleet member to probe.
//
// Members keep the order they appear in config.json; that order decides both
// probing order and the position of the member inside its report group.
type Member struct {
	ID         string
	Username   string `json:"bot_uname"`
	Group      string `json:"group"`
	Host       string `json:"host"`
	CustomName string `json:"custom_name"`
}

// DefaultGroup is the group label of members without an explicit group.
const DefaultGroup = "OTHER"

// GroupLabel returns the member's group, or DefaultGroup when unset.
func (m Member) GroupLabel() string {
	if m.Group == "" {
		return DefaultGroup
	}
	return m.Group
}

// Destination is one report output: a channel message that gets edited in
// place with every new snapshot.
type Destination struct {
	Name      string
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

// Config is the decoded and validated config.json.
type Config struct {
	Members      []Member
	Destinations []Destination

	// Groups is the display order of report groups: every group label in
	// first-seen order over Members.
	Groups []string
}

// Load reads and validates config.json from path.
//
// Malformed member and channel entries are skipped with a warning rather than
// failing the load; a missing file or invalid JSON is a fatal error. When no
// valid member survives validation, the load fails with a statuserr.List
// carrying every problem found.
func Load(path string, logger *zap.Logger) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, statuserr.New(ErrInvalidConfig, err, "failed to open %s", path)
	}
	defer f.Close()

	return loadConfig(f, logger)
}

func loadConfig(r io.Reader, logger *zap.Logger) (Config, error) {
	var conf Config

	problems := &statuserr.ListBuilder{What: ErrInvalidConfig}

	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return Config{}, statuserr.New(ErrInvalidConfig, err, "")
	}

	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return Config{}, statuserr.New(ErrInvalidConfig, err, "")
		}

		switch key {
		case "bots":
			conf.Members, err = decodeMembers(dec, problems, logger)
		case "channels":
			conf.Destinations, err = decodeDestinations(dec, problems, logger)
		default:
			var skip json.RawMessage
			err = dec.Decode(&skip)
		}
		if err != nil {
			return Config{}, statuserr.New(ErrInvalidConfig, err, "failed to decode %q", key)
		}
	}

	if len(conf.Members) == 0 {
		problems.Pushf("no valid bots configured")
		return Config{}, problems.Build()
	}

	conf.Groups = groupOrder(conf.Members)

	return conf, nil
}

// decodeMembers decodes the `bots` object preserving key order.
// Invalid entries are dropped, recording the problem for the caller.
func decodeMembers(dec *json.Decoder, problems *statuserr.ListBuilder, logger *zap.Logger) ([]Member, error) {
	var members []Member

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	for dec.More() {
		id, err := readKey(dec)
		if err != nil {
			return nil, err
		}

		var m Member
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("bot %q: %w", id, err)
		}
		m.ID = id

		if m.ID == "" || m.Username == "" {
			problems.Pushf("bot %q: missing id or bot_uname", id)
			logger.Warn("skipping invalid bot entry",
				zap.String("id", id),
				zap.String("bot_uname", m.Username))
			continue
		}

		members = append(members, m)
	}

	return members, expectDelim(dec, '}')
}

// decodeDestinations decodes the `channels` object preserving key order.
// Invalid entries are dropped, recording the problem for the caller.
func decodeDestinations(dec *json.Decoder, problems *statuserr.ListBuilder, logger *zap.Logger) ([]Destination, error) {
	var dests []Destination

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, err
		}

		var d Destination
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("channel %q: %w", name, err)
		}
		d.Name = name

		if d.ChatID == 0 || d.MessageID == 0 {
			problems.Pushf("channel %q: missing chat_id or message_id", name)
			logger.Warn("skipping invalid channel entry",
				zap.String("name", name),
				zap.Int64("chat_id", d.ChatID),
				zap.Int("message_id", d.MessageID))
			continue
		}

		dests = append(dests, d)
	}

	return dests, expectDelim(dec, '}')
}

// groupOrder collects every group label in first-seen order over members.
func groupOrder(members []Member) []string {
	var order []string
	seen := make(map[string]bool)

	for _, m := range members {
		g := m.GroupLabel()
		if !seen[g] {
			seen[g] = true
			order = append(order, g)
		}
	}

	return order
}

func expectDelim(dec *json.Decoder, d json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != d {
		return fmt.Errorf("expected %q but found %v", d, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key but found %v", tok)
	}
	return key, nil
}
