// Package dashboard keeps the current task view in sync with the stores and
// requests weather for tasks as they enter the view.
package dashboard

import (
	"sync"

	"github.com/i474232898/taskmaster/internal/query"
	"github.com/i474232898/taskmaster/internal/session"
	"github.com/i474232898/taskmaster/internal/tasks"
	"github.com/i474232898/taskmaster/internal/weather"
)

const (
	hintFiltered = "Try adjusting your filters"
	hintEmpty    = "Add a new task to get started"
)

// TaskSource is the part of the task store the dashboard reads.
type TaskSource interface {
	Snapshot() []tasks.Task
	Subscribe(fn tasks.Listener) (cancel func())
}

// SessionSource is the part of the session store the dashboard reads.
type SessionSource interface {
	Username() string
	Subscribe(fn session.Listener) (cancel func())
}

// WeatherSource is the part of the weather cache the dashboard uses.
type WeatherSource interface {
	Fetch(location string) *weather.Request
	Get(location string) (weather.Entry, bool)
	Status(location string) weather.Status
}

// Card is one task as the UI shows it.
type Card struct {
	Task          tasks.Task     `json:"task"`
	Weather       *weather.Entry `json:"weather,omitempty"`
	WeatherStatus weather.Status `json:"weatherStatus"`
}

// View is the rendered task list.
type View struct {
	Tasks         []Card       `json:"tasks"`
	Filter        query.Filter `json:"filter"`
	FiltersActive bool         `json:"filtersActive"`
	EmptyHint     string       `json:"emptyHint,omitempty"`
}

// Dashboard tracks which tasks are visible under the active filter. A task
// entering the view, or changing location while visible, triggers a weather
// fetch for its location. Tasks that stay visible do not.
type Dashboard struct {
	tasks   TaskSource
	session SessionSource
	weather WeatherSource

	mu      sync.Mutex
	filter  query.Filter
	visible []tasks.Task
	mounted map[string]string // task id -> location at mount time

	cancels []func()
}

// New creates a Dashboard subscribed to the task and session stores and
// computes the initial view.
func New(t TaskSource, s SessionSource, w WeatherSource) *Dashboard {
	d := &Dashboard{
		tasks:   t,
		session: s,
		weather: w,
		mounted: make(map[string]string),
	}
	d.cancels = append(d.cancels,
		t.Subscribe(func([]tasks.Task) { d.refresh() }),
		s.Subscribe(func(session.State) { d.refresh() }),
	)
	d.refresh()
	return d
}

// Close unsubscribes from the stores.
func (d *Dashboard) Close() {
	for _, cancel := range d.cancels {
		cancel()
	}
	d.cancels = nil
}

// Filter returns the active filter.
func (d *Dashboard) Filter() query.Filter {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filter
}

// SetFilter replaces the active filter and returns the resulting view.
func (d *Dashboard) SetFilter(f query.Filter) View {
	d.mu.Lock()
	d.filter = f
	d.mu.Unlock()

	d.refresh()
	return d.View()
}

// View returns the current cards with their weather status.
func (d *Dashboard) View() View {
	d.mu.Lock()
	visible := d.visible
	f := d.filter
	d.mu.Unlock()

	v := View{
		Tasks:         make([]Card, 0, len(visible)),
		Filter:        f,
		FiltersActive: f.Active(),
	}
	for _, t := range visible {
		card := Card{Task: t, WeatherStatus: d.weather.Status(t.Location)}
		if t.Location != "" {
			if e, ok := d.weather.Get(t.Location); ok {
				card.Weather = &e
			}
		}
		v.Tasks = append(v.Tasks, card)
	}

	if len(v.Tasks) == 0 {
		v.EmptyHint = hintEmpty
		if v.FiltersActive {
			v.EmptyHint = hintFiltered
		}
	}
	return v
}

// VisibleLocations returns the distinct non-empty locations in view, in
// view order.
func (d *Dashboard) VisibleLocations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	for _, t := range d.visible {
		if t.Location == "" || seen[t.Location] {
			continue
		}
		seen[t.Location] = true
		out = append(out, t.Location)
	}
	return out
}

// RefreshWeather requests weather for every visible location.
func (d *Dashboard) RefreshWeather() []*weather.Request {
	locations := d.VisibleLocations()
	reqs := make([]*weather.Request, 0, len(locations))
	for _, loc := range locations {
		reqs = append(reqs, d.weather.Fetch(loc))
	}
	return reqs
}

// refresh recomputes the view and fetches weather for newly mounted tasks.
func (d *Dashboard) refresh() {
	d.mu.Lock()
	visible := query.Visible(d.tasks.Snapshot(), d.session.Username(), d.filter)

	mounted := make(map[string]string, len(visible))
	var toFetch []string
	for _, t := range visible {
		prev, wasMounted := d.mounted[t.ID]
		if (!wasMounted || prev != t.Location) && t.Location != "" {
			toFetch = append(toFetch, t.Location)
		}
		mounted[t.ID] = t.Location
	}
	d.visible = visible
	d.mounted = mounted
	d.mu.Unlock()

	for _, loc := range toFetch {
		d.weather.Fetch(loc)
	}
}
