package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i474232898/taskmaster/internal/config"
	"github.com/i474232898/taskmaster/internal/weather"
)

func weatherCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weather [location]",
		Short: "Look up current weather for a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			cache := weather.NewCache(newAggregator(cfg).Lookup, cfg.WeatherFetchTimeout)
			entry, err := cache.Fetch(args[0]).Wait(context.Background())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %.1f°C, %s\n", entry.Location, entry.Temperature, entry.Description)
			return nil
		},
	}
}
