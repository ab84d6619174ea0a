// Package seriesview drives the paginated series list: it turns page and
// search changes into list fetches and keeps the loading, error and item state
// the render layer shows.
package seriesview

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/labworks/seriesdesk/pkg/series"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// Fetcher retrieves one page of the series list.
type Fetcher interface {
	List(ctx context.Context, q series.ListQuery) (*series.ListResponse, error)
}

type Options struct {
	History    History
	ScrollLock ScrollLock
	// SearchText seeds the search box before Mount.
	SearchText string
	// OnChange is called with a fresh snapshot after every state change. It
	// runs outside the controller's lock and may call back into it.
	OnChange func(ViewState)
}

type Controller struct {
	fetcher  Fetcher
	history  History
	lock     ScrollLock
	onChange func(ViewState)

	mu    sync.Mutex
	state ViewState
	// seq numbers fetch cycles; only the completion of the newest one is
	// allowed to touch state.
	seq uint64
	// release drops the scroll lock hold of the newest cycle. Starting a new
	// cycle calls it; superseded fetches hold nothing.
	release func()
	wg      sync.WaitGroup
}

func New(fetcher Fetcher, opts Options) *Controller {
	c := &Controller{
		fetcher:  fetcher,
		history:  opts.History,
		lock:     opts.ScrollLock,
		onChange: opts.OnChange,
	}
	c.state.SearchText = opts.SearchText
	if c.history == nil {
		c.history = noopHistory{}
	}
	if c.lock == nil {
		c.lock = noopLock{}
	}
	return c
}

// ParsePage turns the page route parameter into a page index and offset. A
// parameter that isn't a non-negative integer yields the NoOffset sentinel.
func ParsePage(param string) (page, offset int) {
	p, err := strconv.Atoi(param)
	if err != nil || p < 0 {
		return 0, series.NoOffset
	}
	return p, series.OffsetForPage(p)
}

// Mount initializes the view from the page route parameter and starts the
// first fetch.
func (c *Controller) Mount(ctx context.Context, pageParam string) {
	page, offset := ParsePage(pageParam)

	c.mu.Lock()
	c.state.CurrentPage = page
	c.state.CurrentOffset = offset
	c.startCycleLocked(ctx)
}

// ChangePage moves to the selected page. Selecting the current page does
// nothing. It reports whether a fetch was started.
func (c *Controller) ChangePage(ctx context.Context, selected int) bool {
	if selected < 0 {
		return false
	}

	c.mu.Lock()
	if selected == c.state.CurrentPage {
		c.mu.Unlock()
		return false
	}
	prev := c.state.Query()
	c.state.CurrentPage = selected
	c.state.CurrentOffset = series.OffsetForPage(selected)
	return c.applyLocked(ctx, prev)
}

// ChangeSearch replaces the search text and resets to the first page. Every
// call that changes the effective query starts a fetch; there is no debounce.
// It reports whether a fetch was started.
func (c *Controller) ChangeSearch(ctx context.Context, text string) bool {
	c.mu.Lock()
	prev := c.state.Query()
	c.state.CurrentPage = 0
	c.state.CurrentOffset = 0
	c.state.SearchText = text
	return c.applyLocked(ctx, prev)
}

// Select navigates to the item's detail route, carrying the item along.
func (c *Controller) Select(item series.Item) {
	c.history.Push(fmt.Sprintf("/series/%d", item.ID), item)
}

func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Wait blocks until every fetch started so far has settled.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// applyLocked starts a fetch if the query moved away from prev. The page and
// offset always move together, so an unchanged query means unchanged state.
// It releases c.mu in every case.
func (c *Controller) applyLocked(ctx context.Context, prev series.ListQuery) bool {
	if c.state.Query() == prev {
		c.mu.Unlock()
		return false
	}
	c.startCycleLocked(ctx)
	return true
}

// startCycleLocked moves into Loading and fires the fetch for the current
// query. It releases c.mu.
func (c *Controller) startCycleLocked(ctx context.Context) {
	c.seq++
	seq := c.seq
	q := c.state.Query()

	c.state.Phase = PhaseLoading
	c.state.IsLoading = true
	c.state.Version++
	snapshot := c.state

	if c.release != nil {
		c.release()
	}
	var once sync.Once
	held := c.lock.Acquire()
	release := func() { once.Do(held) }
	c.release = release

	c.wg.Add(1)
	c.mu.Unlock()

	c.notify(snapshot)

	log := logger.FromContext(ctx).Data(logger.Data{
		"cycle_id": uuid.NewString(),
		"seq":      seq,
		"offset":   q.Offset,
		"search":   q.SearchText,
	})
	ctx = log.WithContext(ctx)

	go func() {
		defer c.wg.Done()
		defer release()

		resp, err := c.fetcher.List(ctx, q)
		if err == nil && resp == nil {
			err = errors.New("series list returned no response")
		}
		c.settle(ctx, seq, q, resp, err)
	}()
}

func (c *Controller) settle(ctx context.Context, seq uint64, q series.ListQuery, resp *series.ListResponse, err error) {
	log := logger.FromContext(ctx)

	c.mu.Lock()
	if seq != c.seq {
		latest := c.seq
		c.mu.Unlock()
		log.Debug("dropping stale series response", logger.Data{"latest_seq": latest})
		return
	}

	c.state.IsLoading = false
	c.state.Version++

	if err != nil {
		c.state.Phase = PhaseError
		c.state.HasError = true
		snapshot := c.state
		c.mu.Unlock()

		log.Err(err).Warn("series list fetch failed")
		c.notify(snapshot)
		return
	}

	c.state.Response = resp
	c.state.PageCount = series.PageCount(resp.Total, resp.Limit)

	if q.Offset > resp.Total {
		c.state.Phase = PhaseError
		c.state.HasError = true
		snapshot := c.state
		c.mu.Unlock()

		log.Warn("series offset past the end of the results", logger.Data{"total": resp.Total})
		c.notify(snapshot)
		return
	}

	items := make([]series.Item, len(resp.Results))
	copy(items, resp.Results)
	c.state.Items = items
	c.state.Phase = PhaseSuccess
	c.state.HasError = false
	page := c.state.CurrentPage
	snapshot := c.state
	c.mu.Unlock()

	c.history.Push(fmt.Sprintf("/series/page/%d", page), nil)
	c.notify(snapshot)
}

func (c *Controller) notify(s ViewState) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
