// Package transport defines the messaging capability that the probe loop and
// the publisher consume, plus its Telegram implementation.
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BeastBots/TgBotStatus/internal/config"
)

// ErrNotModified reports that an edit changed nothing. It is not a failure;
// the message already holds the requested content.
var ErrNotModified = errors.New("message content unchanged")

// RateLimitError reports that the server asked to slow down, carrying the
// wait it requires before retrying.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// SentMessage identifies a message sent by SendProbe.
type SentMessage struct {
	ID   int
	Time time.Time
}

// HistoryEntry is the most recent message of a conversation.
type HistoryEntry struct {
	ID       int
	Time     time.Time
	Username string
}

// EditOptions is the optional extras for EditMessage.
type EditOptions struct {
	// MediaURL, when set, replaces the message media with an external photo
	// using the text as its caption.
	MediaURL string

	// Buttons, when set, attaches an inline keyboard to the message.
	Buttons [][]config.Button
}

// Transport is a messaging client capable of probing peers and editing
// report messages. The one real implementation speaks Telegram MTProto; tests
// use an in-memory double.
type Transport interface {
	// SendProbe sends a probe message to the named peer.
	SendProbe(ctx context.Context, peer, text string) (SentMessage, error)

	// LatestHistoryEntry returns the single most recent message in the
	// conversation with the named peer.
	LatestHistoryEntry(ctx context.Context, peer string) (HistoryEntry, error)

	// EditMessage replaces the content of the destination message with text.
	// It returns ErrNotModified when the content is already current, and
	// RateLimitError when the server requires a wait before retrying.
	EditMessage(ctx context.Context, dest config.Destination, text string, opts EditOptions) error

	// MarkRead marks the conversation with the named peer as read.
	MarkRead(ctx context.Context, peer string) error
}
