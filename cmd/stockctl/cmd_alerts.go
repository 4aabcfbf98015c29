package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"stock-service/internal/app"
	"stock-service/internal/jobs"
	"stock-service/internal/models"
	"stock-service/internal/repository"
)

// stockctl alerts [--all] [--product P0001] [--priority high]
func (c *cli) alertsCmd() *cobra.Command {
	var all bool
	var productID, priority string
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List alerts, unresolved only unless --all is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := repository.AlertFilter{ProductID: productID}
			if priority != "" {
				filter.Priority = models.AlertPriority(priority)
				if !filter.Priority.Valid() {
					return fmt.Errorf("unknown priority %q", priority)
				}
			}
			if !all {
				unresolved := false
				filter.Resolved = &unresolved
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				alerts, err := a.AlertEngine.ListAlerts(ctx, filter)
				if err != nil {
					return err
				}
				if alerts == nil {
					alerts = []models.Alert{}
				}
				return printJSON(cmd.OutOrStdout(), alerts)
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include resolved alerts")
	cmd.Flags().StringVar(&productID, "product", "", "restrict to one product")
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium, high or critical")
	return cmd
}

// stockctl resolve-alert <alertId>
func (c *cli) resolveAlertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve-alert <alertId>",
		Short: "Resolve an alert on behalf of --user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := c.requireUser()
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				alert, err := a.AlertEngine.Resolve(ctx, args[0], user)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), alert)
			})
		},
	}
}

// stockctl sweep
func (c *cli) sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Reconcile stock alerts with current stock once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				job := jobs.NewAlertSweepJob(a.Inventory, 0, a.Logger)
				return printJSON(cmd.OutOrStdout(), job.RunOnce(ctx))
			})
		},
	}
}
