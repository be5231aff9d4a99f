// Package notify delivers short text notifications to farmers.
//
// A Notifier never returns an error: delivery is best effort and callers
// only log the outcome. The bool reports success, the string carries the
// provider message id on success or a human readable reason on failure.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// NotConfigured is returned by notifiers that have no backing channel.
const NotConfigured = "SMS service not configured"

type Notifier interface {
	Send(ctx context.Context, recipient, message string) (bool, string)
}

// Channel names, also used as the metrics label.
const (
	ChannelSMS  = "sms"
	ChannelMQTT = "mqtt"
	ChannelLog  = "log"
)

// LogNotifier records messages in the log and reports them undelivered.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notify").Str("channel", ChannelLog).Logger()}
}

func (n *LogNotifier) Send(_ context.Context, recipient, message string) (bool, string) {
	n.log.Info().Str("recipient", recipient).Int("length", len(message)).Msg("notification not sent, no channel configured")
	return false, NotConfigured
}

// Observed wraps a Notifier and reports every outcome to observe.
type Observed struct {
	next    Notifier
	channel string
	observe func(channel string, ok bool)
}

func Observe(next Notifier, channel string, observe func(channel string, ok bool)) *Observed {
	return &Observed{next: next, channel: channel, observe: observe}
}

func (o *Observed) Send(ctx context.Context, recipient, message string) (bool, string) {
	ok, info := o.next.Send(ctx, recipient, message)
	if o.observe != nil {
		o.observe(o.channel, ok)
	}
	return ok, info
}
