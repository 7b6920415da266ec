package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/taskmaster/internal/dashboard"
	"github.com/i474232898/taskmaster/internal/session"
	"github.com/i474232898/taskmaster/internal/store"
	"github.com/i474232898/taskmaster/internal/tasks"
	"github.com/i474232898/taskmaster/internal/weather"
)

func newTestApp(t *testing.T, lookup weather.Lookup) (*fiber.App, Deps) {
	t.Helper()

	if lookup == nil {
		lookup = func(ctx context.Context, location string) (weather.Entry, error) {
			if location == "Atlantis" {
				return weather.Entry{}, errors.New("Weather data not available")
			}
			return weather.Entry{Temperature: 21, Description: "Sunny"}, nil
		}
	}

	kv := store.NewMemoryStore()
	d := Deps{
		Tasks:   tasks.NewStore(kv),
		Session: session.NewStore(kv),
		Weather: weather.NewCache(lookup, time.Second),
	}
	d.Auth = session.NewAuthenticator(d.Session, 0)
	d.Dashboard = dashboard.New(d.Tasks, d.Session, d.Weather)
	t.Cleanup(d.Dashboard.Close)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, d)
	return app, d
}

func do(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, raw
}

func expectStatus(t *testing.T, resp *http.Response, raw []byte, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d: %s", want, resp.StatusCode, raw)
	}
}

func TestLoginFlow(t *testing.T) {
	app, d := newTestApp(t, nil)

	resp, raw := do(t, app, http.MethodPost, "/api/v1/session/login", `{"email":"a@b.com","password":"short"}`)
	expectStatus(t, resp, raw, http.StatusUnauthorized)
	if !strings.Contains(string(raw), "Invalid email or password") {
		t.Fatalf("expected auth message, got %s", raw)
	}

	resp, raw = do(t, app, http.MethodPost, "/api/v1/session/login", `{"email":"","password":"longenough"}`)
	expectStatus(t, resp, raw, http.StatusBadRequest)

	resp, raw = do(t, app, http.MethodPost, "/api/v1/session/login", `{"email":"a@b.com","password":"longenough"}`)
	expectStatus(t, resp, raw, http.StatusOK)
	if d.Session.Username() != "a" {
		t.Fatalf("expected session for a, got %q", d.Session.Username())
	}

	resp, raw = do(t, app, http.MethodGet, "/api/v1/session", "")
	expectStatus(t, resp, raw, http.StatusOK)
	var st session.State
	if err := json.Unmarshal(raw, &st); err != nil || !st.IsAuthenticated {
		t.Fatalf("unexpected session state %s (%v)", raw, err)
	}

	resp, raw = do(t, app, http.MethodPost, "/api/v1/session/logout", "")
	expectStatus(t, resp, raw, http.StatusOK)
	if d.Session.Username() != "" {
		t.Fatal("expected logout to clear the session")
	}
}

func TestTaskLifecycle(t *testing.T) {
	app, d := newTestApp(t, nil)
	d.Session.LoginSuccess(session.User{Username: "alice", Email: "alice@example.com"})

	resp, raw := do(t, app, http.MethodPost, "/api/v1/tasks", `{"title":"   "}`)
	expectStatus(t, resp, raw, http.StatusBadRequest)

	resp, raw = do(t, app, http.MethodPost, "/api/v1/tasks", `{"title":"Buy milk","priority":"low"}`)
	expectStatus(t, resp, raw, http.StatusCreated)
	resp, raw = do(t, app, http.MethodPost, "/api/v1/tasks", `{"title":"File taxes","priority":"high","location":"Paris"}`)
	expectStatus(t, resp, raw, http.StatusCreated)

	var taxes tasks.Task
	if err := json.Unmarshal(raw, &taxes); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if taxes.UserID != "alice" || taxes.ID == "" {
		t.Fatalf("unexpected task %+v", taxes)
	}

	resp, raw = do(t, app, http.MethodGet, "/api/v1/tasks", "")
	expectStatus(t, resp, raw, http.StatusOK)
	var view dashboard.View
	if err := json.Unmarshal(raw, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if len(view.Tasks) != 2 || view.Tasks[0].Task.Title != "File taxes" || view.Tasks[1].Task.Title != "Buy milk" {
		t.Fatalf("unexpected view %s", raw)
	}

	resp, raw = do(t, app, http.MethodPost, "/api/v1/tasks/"+taxes.ID+"/toggle", "")
	expectStatus(t, resp, raw, http.StatusOK)

	resp, raw = do(t, app, http.MethodGet, "/api/v1/tasks?status=completed", "")
	expectStatus(t, resp, raw, http.StatusOK)
	view = dashboard.View{}
	json.Unmarshal(raw, &view)
	if len(view.Tasks) != 1 || !view.Tasks[0].Task.Completed {
		t.Fatalf("unexpected completed view %s", raw)
	}

	resp, raw = do(t, app, http.MethodPatch, "/api/v1/tasks/"+taxes.ID+"/priority", `{"priority":"urgent"}`)
	expectStatus(t, resp, raw, http.StatusBadRequest)
	resp, raw = do(t, app, http.MethodPatch, "/api/v1/tasks/"+taxes.ID+"/priority", `{"priority":"medium"}`)
	expectStatus(t, resp, raw, http.StatusOK)
	if got, _ := d.Tasks.Get(taxes.ID); got.Priority != tasks.PriorityMedium {
		t.Fatalf("expected medium priority, got %s", got.Priority)
	}

	resp, raw = do(t, app, http.MethodDelete, "/api/v1/tasks/"+taxes.ID, "")
	expectStatus(t, resp, raw, http.StatusNoContent)
	resp, raw = do(t, app, http.MethodDelete, "/api/v1/tasks/"+taxes.ID, "")
	expectStatus(t, resp, raw, http.StatusNotFound)
	resp, raw = do(t, app, http.MethodPost, "/api/v1/tasks/missing/toggle", "")
	expectStatus(t, resp, raw, http.StatusNotFound)
}

func TestTaskFilterValidation(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp, raw := do(t, app, http.MethodGet, "/api/v1/tasks?priority=urgent", "")
	expectStatus(t, resp, raw, http.StatusBadRequest)

	resp, raw = do(t, app, http.MethodGet, "/api/v1/tasks", "")
	expectStatus(t, resp, raw, http.StatusOK)
	if !strings.Contains(string(raw), "Add a new task to get started") {
		t.Fatalf("expected empty hint, got %s", raw)
	}
}

func TestSetAll(t *testing.T) {
	app, d := newTestApp(t, nil)

	body := `[{"id":"1","title":"a","priority":"low","userId":"alice","createdAt":"2024-05-01T12:00:00Z"},
		{"id":"2","title":"b","priority":"high","userId":"alice","createdAt":"2024-05-01T12:00:00Z"}]`
	resp, raw := do(t, app, http.MethodPut, "/api/v1/tasks", body)
	expectStatus(t, resp, raw, http.StatusOK)
	if n := len(d.Tasks.Snapshot()); n != 2 {
		t.Fatalf("expected 2 tasks, got %d", n)
	}

	resp, raw = do(t, app, http.MethodPut, "/api/v1/tasks", `[{"id":"1","title":"a","priority":"low"},{"id":"1","title":"b","priority":"low"}]`)
	expectStatus(t, resp, raw, http.StatusConflict)

	resp, raw = do(t, app, http.MethodPut, "/api/v1/tasks", `[{"id":"1","title":"a","priority":"urgent"}]`)
	expectStatus(t, resp, raw, http.StatusBadRequest)
}

func TestWeatherRoutes(t *testing.T) {
	app, _ := newTestApp(t, nil)

	resp, raw := do(t, app, http.MethodGet, "/api/v1/weather?location=Paris", "")
	expectStatus(t, resp, raw, http.StatusNotFound)

	resp, raw = do(t, app, http.MethodGet, "/api/v1/weather", "")
	expectStatus(t, resp, raw, http.StatusBadRequest)

	resp, raw = do(t, app, http.MethodPost, "/api/v1/weather/fetch?wait=true", `{"location":"Paris"}`)
	expectStatus(t, resp, raw, http.StatusOK)
	var entry weather.Entry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Location != "Paris" || entry.Temperature != 21 {
		t.Fatalf("unexpected entry %s (%v)", raw, err)
	}

	resp, raw = do(t, app, http.MethodGet, "/api/v1/weather?location=Paris", "")
	expectStatus(t, resp, raw, http.StatusOK)
	if !strings.Contains(string(raw), `"status":"ready"`) {
		t.Fatalf("expected ready status, got %s", raw)
	}

	resp, raw = do(t, app, http.MethodPost, "/api/v1/weather/fetch?wait=true", `{"location":"Atlantis"}`)
	expectStatus(t, resp, raw, http.StatusBadGateway)

	resp, raw = do(t, app, http.MethodGet, "/api/v1/weather/state", "")
	expectStatus(t, resp, raw, http.StatusOK)
	var st weather.State
	json.Unmarshal(raw, &st)
	if st.Error != "Weather data not available" || st.IsLoading {
		t.Fatalf("unexpected state %s", raw)
	}

	resp, raw = do(t, app, http.MethodPost, "/api/v1/weather/fetch", `{"location":""}`)
	expectStatus(t, resp, raw, http.StatusBadRequest)
}

func TestFetchIsAsynchronous(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	app, _ := newTestApp(t, func(ctx context.Context, location string) (weather.Entry, error) {
		select {
		case <-gate:
		case <-ctx.Done():
		}
		return weather.Entry{}, ctx.Err()
	})

	resp, raw := do(t, app, http.MethodPost, "/api/v1/weather/fetch", `{"location":"Paris"}`)
	expectStatus(t, resp, raw, http.StatusAccepted)
	if !strings.Contains(string(raw), `"status":"loading"`) {
		t.Fatalf("expected loading status, got %s", raw)
	}
}
