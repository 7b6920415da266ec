package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/taskmaster/internal/config"
	"github.com/i474232898/taskmaster/internal/query"
	"github.com/i474232898/taskmaster/internal/session"
	"github.com/i474232898/taskmaster/internal/tasks"
)

func tasksCmd() *cobra.Command {
	var (
		search, priority, status, user string
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Print the stored task list for a user",
		Long: `Print the persisted tasks the dashboard would show, highest priority
first. Defaults to the user of the stored session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			f, err := query.ParseFilter(search, priority, status)
			if err != nil {
				return err
			}

			kv, err := openStorage(cfg)
			if err != nil {
				return err
			}
			defer kv.Close()

			var users query.UserSource = session.NewStore(kv)
			if user != "" {
				users = fixedUser(user)
			}
			if users.Username() == "" {
				return fmt.Errorf("no stored session; pass --user")
			}

			engine := query.NewEngine(tasks.NewStore(kv), users)
			printTasks(cmd.OutOrStdout(), engine.Visible(f), f)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive title/description search")
	cmd.Flags().StringVarP(&priority, "priority", "p", "all", "Priority filter (all, low, medium, high)")
	cmd.Flags().StringVar(&status, "status", "all", "Status filter (all, active, completed)")
	cmd.Flags().StringVarP(&user, "user", "u", "", "Username whose tasks to show")

	return cmd
}

type fixedUser string

func (u fixedUser) Username() string { return string(u) }

func printTasks(w io.Writer, visible []tasks.Task, f query.Filter) {
	if len(visible) == 0 {
		fmt.Fprintln(w, "No tasks found")
		if f.Active() {
			fmt.Fprintln(w, "Try adjusting your filters")
		}
		return
	}

	for _, t := range visible {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %-6s %s", mark, t.Priority, t.Title)
		if t.Location != "" {
			line += fmt.Sprintf(" (%s)", t.Location)
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}
