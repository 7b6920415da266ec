package weather

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultFetchTimeout bounds a single lookup when none is configured.
const DefaultFetchTimeout = 15 * time.Second

// ErrEmptyLocation is carried by the request returned for an empty location.
var ErrEmptyLocation = errors.New("empty location")

// Listener is notified after every cache state change.
type Listener func(State)

// Cache maps raw location strings to their last successful lookup.
//
// Overlapping fetches for the same key share one lookup; once it completes
// the next Fetch performs a new one. Entries never expire and a failed
// lookup leaves the previous entry in place. Lookups are not cancelled when
// their callers lose interest.
type Cache struct {
	lookup  Lookup
	timeout time.Duration
	group   singleflight.Group

	mu       sync.RWMutex
	entries  map[string]Entry
	inflight map[string]int
	pending  int
	err      string

	listeners map[int]Listener
	nextSub   int
}

// NewCache creates a Cache backed by lookup.
func NewCache(lookup Lookup, timeout time.Duration) *Cache {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Cache{
		lookup:    lookup,
		timeout:   timeout,
		entries:   make(map[string]Entry),
		inflight:  make(map[string]int),
		listeners: make(map[int]Listener),
	}
}

// Request is the pending result of a Fetch.
type Request struct {
	Location string

	done  chan struct{}
	entry Entry
	err   error
}

// Done is closed once the request resolves.
func (r *Request) Done() <-chan struct{} { return r.done }

// Wait blocks until the request resolves or ctx ends. Ending ctx does not
// cancel the lookup.
func (r *Request) Wait(ctx context.Context) (Entry, error) {
	select {
	case <-r.done:
		return r.entry, r.err
	case <-ctx.Done():
		return Entry{}, ctx.Err()
	}
}

// Fetch starts an asynchronous lookup for location and returns at once.
// An empty location is a no-op: the returned request is already resolved
// with ErrEmptyLocation and the cache state is untouched.
func (c *Cache) Fetch(location string) *Request {
	req := &Request{Location: location, done: make(chan struct{})}
	if location == "" {
		req.err = ErrEmptyLocation
		close(req.done)
		return req
	}

	c.update(func() {
		c.pending++
		c.inflight[location]++
		c.err = ""
	})

	ch := c.group.DoChan(location, func() (interface{}, error) {
		return c.run(location)
	})

	go func() {
		res := <-ch

		c.update(func() {
			c.pending--
			if c.inflight[location]--; c.inflight[location] <= 0 {
				delete(c.inflight, location)
			}
		})

		if res.Err != nil {
			req.err = res.Err
		} else {
			req.entry = res.Val.(Entry)
		}
		close(req.done)
	}()

	return req
}

func (c *Cache) run(location string) (Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	entry, err := c.lookup(ctx, location)
	if err != nil {
		log.Printf("WARN: weather: fetch failed for %q: %v", location, err)
		c.update(func() { c.err = err.Error() })
		return Entry{}, err
	}

	entry.Location = location
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = time.Now().UTC()
	}
	c.update(func() {
		c.entries[location] = entry
		c.err = ""
	})
	return entry, nil
}

// Get returns the cached entry for location.
func (c *Cache) Get(location string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[location]
	return e, ok
}

// Status reports what a card for location should show.
func (c *Cache) Status(location string) Status {
	if location == "" {
		return StatusNone
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.entries[location]; ok {
		return StatusReady
	}
	if c.inflight[location] > 0 {
		return StatusLoading
	}
	return StatusUnavailable
}

// IsLoading reports whether any lookup is in flight.
func (c *Cache) IsLoading() bool {
	return c.State().IsLoading
}

// State returns the cache-wide loading flag and last error message.
func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stateLocked()
}

// Subscribe registers fn and returns a function that removes it.
func (c *Cache) Subscribe(fn Listener) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.listeners[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Cache) update(fn func()) {
	c.mu.Lock()
	fn()
	st := c.stateLocked()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(st)
	}
}

func (c *Cache) stateLocked() State {
	return State{IsLoading: c.pending > 0, Error: c.err}
}
