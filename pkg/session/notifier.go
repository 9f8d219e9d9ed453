package session

import (
	"sync"
	"time"

	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/types"
)

// Notifier shows one notification at a time. Each one hides itself after
// the TTL unless a newer notification replaced it first.
type Notifier struct {
	mu       sync.Mutex
	seq      uint64
	timer    *time.Timer
	ttl      time.Duration
	dispatch func(Event)
}

// NewNotifier creates a notifier that sends its events to dispatch
func NewNotifier(ttl time.Duration, dispatch func(Event)) *Notifier {
	if ttl <= 0 {
		ttl = constants.NotificationTTL
	}
	return &Notifier{ttl: ttl, dispatch: dispatch}
}

// Notify shows message, replacing whatever is visible
func (n *Notifier) Notify(kind types.NotificationKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.seq++
	seq := n.seq
	if n.timer != nil {
		n.timer.Stop()
	}
	n.dispatch(Notified{Kind: kind, Message: message, Seq: seq})
	n.timer = time.AfterFunc(n.ttl, func() {
		n.dispatch(NotificationExpired{Seq: seq})
	})
}

// Stop cancels the pending expiry
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
