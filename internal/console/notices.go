package console

import (
	"sync"

	"github.com/smazurov/ptzdeck/internal/events"
	"github.com/smazurov/ptzdeck/internal/metrics"
)

const maxNotices = 20

// Notice is an operator facing message.
type Notice struct {
	ID        uint64 `json:"id"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Blocking  bool   `json:"blocking"`
	Timestamp string `json:"timestamp"`
}

// Notices keeps recent notices. The latest blocking notice stays until it
// is dismissed.
type Notices struct {
	bus *events.Bus

	mu       sync.RWMutex
	nextID   uint64
	recent   []Notice
	blocking *Notice
}

// NewNotices creates an empty notice list.
func NewNotices(bus *events.Bus) *Notices {
	return &Notices{bus: bus}
}

// Notify records and publishes a notice.
func (n *Notices) Notify(level, message string, blocking bool) {
	n.mu.Lock()
	n.nextID++
	notice := Notice{
		ID:        n.nextID,
		Level:     level,
		Message:   message,
		Blocking:  blocking,
		Timestamp: events.Now(),
	}
	n.recent = append(n.recent, notice)
	if len(n.recent) > maxNotices {
		n.recent = n.recent[len(n.recent)-maxNotices:]
	}
	if blocking {
		b := notice
		n.blocking = &b
	}
	n.mu.Unlock()

	metrics.Notice(level)
	n.bus.Publish(events.NoticeEvent{
		ID:        notice.ID,
		Level:     notice.Level,
		Message:   notice.Message,
		Blocking:  notice.Blocking,
		Timestamp: notice.Timestamp,
	})
}

// Blocking returns the notice awaiting acknowledgement.
func (n *Notices) Blocking() (Notice, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.blocking == nil {
		return Notice{}, false
	}
	return *n.blocking, true
}

// Dismiss acknowledges the blocking notice with id. It reports whether it matched.
func (n *Notices) Dismiss(id uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.blocking == nil || n.blocking.ID != id {
		return false
	}
	n.blocking = nil
	return true
}

// Recent returns the last notices, oldest first.
func (n *Notices) Recent() []Notice {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]Notice(nil), n.recent...)
}
