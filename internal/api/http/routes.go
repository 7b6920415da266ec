package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/taskmaster/internal/dashboard"
	"github.com/i474232898/taskmaster/internal/query"
	"github.com/i474232898/taskmaster/internal/session"
	"github.com/i474232898/taskmaster/internal/tasks"
	"github.com/i474232898/taskmaster/internal/validation"
	"github.com/i474232898/taskmaster/internal/weather"
)

// Deps are the stores the routes operate on.
type Deps struct {
	Tasks     *tasks.Store
	Session   *session.Store
	Auth      *session.Authenticator
	Weather   *weather.Cache
	Dashboard *dashboard.Dashboard
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	v1 := app.Group("/api/v1")

	registerSessionRoutes(v1, d)
	registerTaskRoutes(v1, d)
	registerWeatherRoutes(v1, d)
}

func registerSessionRoutes(r fiber.Router, d Deps) {
	r.Get("/session", func(c *fiber.Ctx) error {
		return c.JSON(d.Session.Snapshot())
	})

	authenticate := func(run func(*fiber.Ctx, session.Credentials) (session.User, error)) fiber.Handler {
		return func(c *fiber.Ctx) error {
			var creds session.Credentials
			if err := c.BodyParser(&creds); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
			}

			user, err := run(c, creds)
			switch {
			case err == nil:
				return c.JSON(fiber.Map{"user": user})
			case validation.IsValidation(err):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			case errors.Is(err, session.ErrInvalidCredentials):
				return fiber.NewError(fiber.StatusUnauthorized, d.Session.Snapshot().Error)
			default:
				return err
			}
		}
	}

	r.Post("/session/login", authenticate(func(c *fiber.Ctx, creds session.Credentials) (session.User, error) {
		return d.Auth.Login(c.UserContext(), creds)
	}))
	r.Post("/session/signup", authenticate(func(c *fiber.Ctx, creds session.Credentials) (session.User, error) {
		return d.Auth.Signup(c.UserContext(), creds)
	}))

	r.Post("/session/logout", func(c *fiber.Ctx) error {
		d.Session.Logout()
		return c.JSON(d.Session.Snapshot())
	})
}

func registerTaskRoutes(r fiber.Router, d Deps) {
	r.Get("/tasks", func(c *fiber.Ctx) error {
		f, err := query.ParseFilter(c.Query("search"), c.Query("priority"), c.Query("status"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(d.Dashboard.SetFilter(f))
	})

	r.Post("/tasks", func(c *fiber.Ctx) error {
		var draft tasks.Draft
		if err := c.BodyParser(&draft); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		task, err := draft.Task(d.Session.Username())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		task, err = d.Tasks.Add(task)
		if err != nil {
			return taskError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(task)
	})

	r.Put("/tasks", func(c *fiber.Ctx) error {
		var all []tasks.Task
		if err := c.BodyParser(&all); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		for _, t := range all {
			if err := validateStored(t); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		if err := d.Tasks.SetAll(all); err != nil {
			return taskError(err)
		}
		return c.JSON(fiber.Map{"count": len(all)})
	})

	r.Delete("/tasks/:id", func(c *fiber.Ctx) error {
		if !d.Tasks.Remove(c.Params("id")) {
			return fiber.NewError(fiber.StatusNotFound, "task not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/tasks/:id/toggle", func(c *fiber.Ctx) error {
		task, ok := d.Tasks.ToggleCompletion(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "task not found")
		}
		return c.JSON(task)
	})

	r.Patch("/tasks/:id/priority", func(c *fiber.Ctx) error {
		var body struct {
			Priority string `json:"priority"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		p, err := tasks.ParsePriority(body.Priority)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		task, ok, err := d.Tasks.UpdatePriority(c.Params("id"), p)
		if err != nil {
			return taskError(err)
		}
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "task not found")
		}
		return c.JSON(task)
	})
}

func registerWeatherRoutes(r fiber.Router, d Deps) {
	r.Get("/weather", func(c *fiber.Ctx) error {
		location := c.Query("location")
		if location == "" {
			return fiber.NewError(fiber.StatusBadRequest, "location query parameter is required")
		}

		entry, ok := d.Weather.Get(location)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
		}
		return c.JSON(fiber.Map{
			"status":  d.Weather.Status(location),
			"weather": entry,
		})
	})

	r.Get("/weather/state", func(c *fiber.Ctx) error {
		return c.JSON(d.Weather.State())
	})

	r.Post("/weather/fetch", func(c *fiber.Ctx) error {
		var req fetchRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validation.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		pending := d.Weather.Fetch(req.Location)
		if !c.QueryBool("wait") {
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
				"location": req.Location,
				"status":   d.Weather.Status(req.Location),
			})
		}

		entry, err := pending.Wait(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.JSON(entry)
	})
}

// fetchRequest keeps the location verbatim; it is the cache key.
type fetchRequest struct {
	Location string `json:"location" validate:"required"`
}

// storedTask validates bulk-loaded tasks, which skip the draft path.
type storedTask struct {
	ID       string `json:"id" validate:"required"`
	Title    string `json:"title" validate:"notblank"`
	Priority string `json:"priority" validate:"oneof=low medium high"`
}

func validateStored(t tasks.Task) error {
	return validation.Struct(storedTask{ID: t.ID, Title: t.Title, Priority: string(t.Priority)})
}

func taskError(err error) error {
	switch {
	case validation.IsValidation(err), errors.Is(err, tasks.ErrInvalidPriority):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, tasks.ErrDuplicateID):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
