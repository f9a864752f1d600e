// Package testutil provides helpers for package tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/BeastBots/TgBotStatus/internal/config"
	"github.com/BeastBots/TgBotStatus/internal/transport"
)

// SentCall is one recorded SendProbe call.
type SentCall struct {
	Peer string
	Text string
	Msg  transport.SentMessage
}

// EditCall is one recorded EditMessage call.
type EditCall struct {
	Dest config.Destination
	Text string
	Opts transport.EditOptions
}

// DummyTransport is a scriptable in-memory Transport for tests.
//
// By default every probe looks dead: LatestHistoryEntry echoes the last sent
// message, as a remote that never replied would. Set Histories to script a
// reply, or the error maps to script failures.
type DummyTransport struct {
	sync.Mutex

	// Now is the clock used for sent message timestamps.
	Now func() time.Time

	// Histories scripts the latest history entry per peer.
	Histories map[string]transport.HistoryEntry

	SendErrors     map[string]error
	HistoryErrors  map[string]error
	MarkReadErrors map[string]error

	// EditErrors is popped one error per EditMessage call, keyed by the
	// destination name. A nil element means success.
	EditErrors map[string][]error

	Sent  []SentCall
	Edits []EditCall
	Reads []string

	nextID int
}

func (t *DummyTransport) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *DummyTransport) SendProbe(ctx context.Context, peer, text string) (transport.SentMessage, error) {
	t.Lock()
	defer t.Unlock()

	if err := t.SendErrors[peer]; err != nil {
		return transport.SentMessage{}, err
	}

	t.nextID++
	msg := transport.SentMessage{ID: t.nextID, Time: t.now()}
	t.Sent = append(t.Sent, SentCall{Peer: peer, Text: text, Msg: msg})

	return msg, nil
}

func (t *DummyTransport) LatestHistoryEntry(ctx context.Context, peer string) (transport.HistoryEntry, error) {
	t.Lock()
	defer t.Unlock()

	if err := t.HistoryErrors[peer]; err != nil {
		return transport.HistoryEntry{}, err
	}

	if entry, ok := t.Histories[peer]; ok {
		return entry, nil
	}

	for i := len(t.Sent) - 1; i >= 0; i-- {
		if t.Sent[i].Peer == peer {
			return transport.HistoryEntry{
				ID:   t.Sent[i].Msg.ID,
				Time: t.Sent[i].Msg.Time,
			}, nil
		}
	}

	return transport.HistoryEntry{}, nil
}

func (t *DummyTransport) EditMessage(ctx context.Context, dest config.Destination, text string, opts transport.EditOptions) error {
	t.Lock()
	defer t.Unlock()

	t.Edits = append(t.Edits, EditCall{Dest: dest, Text: text, Opts: opts})

	if errs := t.EditErrors[dest.Name]; len(errs) > 0 {
		err := errs[0]
		t.EditErrors[dest.Name] = errs[1:]
		return err
	}

	return nil
}

func (t *DummyTransport) MarkRead(ctx context.Context, peer string) error {
	t.Lock()
	defer t.Unlock()

	t.Reads = append(t.Reads, peer)
	return t.MarkReadErrors[peer]
}

// EditTexts returns the text of every recorded edit, in order.
func (t *DummyTransport) EditTexts() []string {
	t.Lock()
	defer t.Unlock()

	texts := make([]string, len(t.Edits))
	for i, e := range t.Edits {
		texts[i] = e.Text
	}
	return texts
}
