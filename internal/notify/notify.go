package notify

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Event is one lifecycle notification headed for a client, an admin, or a
// delivery person. The transport (email, WhatsApp, push) lives behind the
// Dispatcher and is not this service's problem.
type Event struct {
	RecipientID   uint   `json:"recipient_id"`
	RecipientKind string `json:"recipient_kind"` // client | admin | delivery | guest
	Title         string `json:"title"`
	Message       string `json:"message"`
	EventType     string `json:"event_type"` // order_created, order_status, payment_update, ...
	OrderID       uint   `json:"order_id,omitempty"`
}

// Dispatcher delivers events best-effort. Implementations may drop, queue,
// or fan out; callers never rely on the result.
type Dispatcher interface {
	Notify(Event) error
}

// LogDispatcher is the default dispatcher: it writes the event to the
// structured log. The real transport service tails these in dev.
type LogDispatcher struct {
	Log *logrus.Logger
}

func (d *LogDispatcher) Notify(e Event) error {
	d.Log.WithFields(logrus.Fields{
		"recipient_id":   e.RecipientID,
		"recipient_kind": e.RecipientKind,
		"event_type":     e.EventType,
		"order_id":       e.OrderID,
	}).Info(e.Title)
	return nil
}

var (
	mu      sync.RWMutex
	current Dispatcher = &LogDispatcher{Log: logrus.StandardLogger()}
)

// Use swaps the active dispatcher. Called once at startup, and by tests.
func Use(d Dispatcher) {
	mu.Lock()
	current = d
	mu.Unlock()
}

// Dispatch sends events through the active dispatcher after the business
// transaction has committed. Failures are logged and swallowed: a missed
// notification must never look like a failed order.
func Dispatch(events ...Event) {
	mu.RLock()
	d := current
	mu.RUnlock()

	for _, e := range events {
		if err := d.Notify(e); err != nil {
			logrus.WithFields(logrus.Fields{
				"event_type": e.EventType,
				"order_id":   e.OrderID,
			}).WithError(err).Warn("notification dispatch failed")
		}
	}
}
