package seriesview

import (
	"sync"
)

// History receives navigation pushes: the current page after each good
// response, and the detail route when an item is selected.
type History interface {
	Push(path string, state interface{})
}

// ScrollLock suppresses scrolling of the surrounding view. Acquire is called
// when a fetch cycle starts and the returned func when it settles or a newer
// cycle replaces it, whichever comes first.
type ScrollLock interface {
	Acquire() (release func())
}

type Entry struct {
	Path  string
	State interface{}
}

// PathHistory is an in-memory navigation stack.
type PathHistory struct {
	mu      sync.Mutex
	entries []Entry
}

func NewPathHistory() *PathHistory {
	return &PathHistory{}
}

func (h *PathHistory) Push(path string, state interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, Entry{Path: path, State: state})
}

// Back pops the newest entry and returns the one beneath it.
func (h *PathHistory) Back() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) < 2 {
		return Entry{}, false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.entries[len(h.entries)-1], true
}

func (h *PathHistory) Current() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h *PathHistory) Entries() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// CountingLock is a ScrollLock that stays held while any hold is
// outstanding. Each Acquire is a separate hold.
type CountingLock struct {
	mu    sync.Mutex
	holds int
}

func (l *CountingLock) Acquire() func() {
	l.mu.Lock()
	l.holds++
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.holds--
			l.mu.Unlock()
		})
	}
}

func (l *CountingLock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holds > 0
}

type noopHistory struct{}

func (noopHistory) Push(string, interface{}) {}

type noopLock struct{}

func (noopLock) Acquire() func() { return func() {} }
