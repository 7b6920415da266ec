package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/taskmaster/internal/api/http"
	"github.com/i474232898/taskmaster/internal/config"
	"github.com/i474232898/taskmaster/internal/dashboard"
	"github.com/i474232898/taskmaster/internal/scheduler"
	"github.com/i474232898/taskmaster/internal/session"
	"github.com/i474232898/taskmaster/internal/tasks"
	"github.com/i474232898/taskmaster/internal/weather"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.AppConfig) error {
	kv, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	taskStore := tasks.NewStore(kv)
	sessionStore := session.NewStore(kv)
	cache := weather.NewCache(newAggregator(cfg).Lookup, cfg.WeatherFetchTimeout)

	dash := dashboard.New(taskStore, sessionStore, cache)
	defer dash.Close()

	// Optional periodic refresh of visible locations.
	sched := scheduler.New(dash, cfg.WeatherRefreshInterval)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "taskmaster",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "taskmaster",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Tasks:     taskStore,
		Session:   sessionStore,
		Auth:      session.NewAuthenticator(sessionStore, cfg.LoginDelay),
		Weather:   cache,
		Dashboard: dash,
	})

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	return nil
}
