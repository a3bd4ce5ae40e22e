package notify

import "context"

// Notifier delivers a finished run's summary somewhere outside the terminal.
type Notifier interface {
	Send(ctx context.Context, title, text string) error
}
