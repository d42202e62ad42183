package memory

import (
	"context"
	"sync"

	"papercall/contexts/event-review/proposal-service/ports"
)

// Notifier records notifications instead of delivering them. Fail, when set,
// is returned on every Notify call to exercise the fire-and-forget paths.
type Notifier struct {
	mu   sync.Mutex
	sent []ports.Notification

	Fail error
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Notify(_ context.Context, notification ports.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Fail != nil {
		return n.Fail
	}
	n.sent = append(n.sent, notification)
	return nil
}

func (n *Notifier) Sent() []ports.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	items := make([]ports.Notification, len(n.sent))
	copy(items, n.sent)
	return items
}
