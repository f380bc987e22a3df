package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes messages to the log instead of sending them. Used when
// no SMTP relay is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, address, subject, body string) error {
	n.log.Info().
		Str("address", address).
		Str("subject", subject).
		Str("body", body).
		Msg("notification")
	return nil
}
