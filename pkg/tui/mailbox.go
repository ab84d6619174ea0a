package tui

import (
	"context"
	"sync"

	"github.com/labworks/seriesdesk/pkg/seriesview"
)

// mailbox hands controller snapshots to the bubbletea loop. It keeps only the
// newest snapshot by Version, so put never blocks the fetch goroutines.
type mailbox struct {
	mu     sync.Mutex
	latest seriesview.ViewState
	full   bool
	signal chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

func (b *mailbox) put(s seriesview.ViewState) {
	b.mu.Lock()
	if !b.full || s.Version > b.latest.Version {
		b.latest = s
		b.full = true
	}
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// take blocks until a snapshot is waiting or ctx is done.
func (b *mailbox) take(ctx context.Context) (seriesview.ViewState, bool) {
	for {
		select {
		case <-b.signal:
		case <-ctx.Done():
			return seriesview.ViewState{}, false
		}
		if s, ok := b.poll(); ok {
			return s, true
		}
	}
}

func (b *mailbox) poll() (seriesview.ViewState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.full {
		return seriesview.ViewState{}, false
	}
	b.full = false
	return b.latest, true
}
