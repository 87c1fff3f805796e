// Package notify delivers fire-and-forget desktop notifications after
// successful mutations. Delivery failures are reported to the caller only so
// they can be logged; they never affect the outcome of the mutation itself.
package notify

import "github.com/gen2brain/beeep"

// Notifier pushes a short message to whatever sink is configured.
type Notifier interface {
	Notify(title, message string) error
}

// Desktop sends OS-level desktop notifications.
type Desktop struct{}

func NewDesktop() *Desktop {
	return &Desktop{}
}

func (*Desktop) Notify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Noop discards every notification. Used when notifications are disabled
// and in tests.
type Noop struct{}

func (Noop) Notify(title, message string) error { return nil }
