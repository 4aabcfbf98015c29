package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stock-service/internal/app"
	"stock-service/internal/config"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(bootApp).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// booter opens the service container. Tests swap it for an in-memory one.
type booter func(ctx context.Context) (*app.App, error)

// bootApp loads config from the environment and opens the database
func bootApp(ctx context.Context) (*app.App, error) {
	cfg := config.Load()
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.WarnLevel)
	return app.New(ctx, cfg, logger)
}

type cli struct {
	boot booter
	user string
}

func newRootCmd(boot booter) *cobra.Command {
	c := &cli{boot: boot}

	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Operate the stock ledger from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.user, "user", os.Getenv("STOCKCTL_USER"), "user recorded as performer or resolver")

	// Database
	root.AddCommand(c.migrateCmd())

	// Stock movements
	root.AddCommand(c.saleCmd())
	root.AddCommand(c.purchaseCmd())
	root.AddCommand(c.adjustCmd())
	root.AddCommand(c.returnCmd())
	root.AddCommand(c.totalsCmd())

	// Alerts
	root.AddCommand(c.alertsCmd())
	root.AddCommand(c.resolveAlertCmd())
	root.AddCommand(c.sweepCmd())

	// Suppliers
	root.AddCommand(c.rateSupplierCmd())

	// Reports
	root.AddCommand(c.reportCmd())

	return root
}

// withApp boots the container for the duration of fn
func (c *cli) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := c.boot(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func (c *cli) requireUser() (string, error) {
	user := strings.TrimSpace(c.user)
	if user == "" {
		return "", fmt.Errorf("--user is required")
	}
	return user, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseDay accepts RFC 3339 or YYYY-MM-DD; a plain date used as an upper
// bound covers the whole day.
func parseDay(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: use RFC 3339 or YYYY-MM-DD", raw)
	}
	if endOfDay {
		day = day.Add(24*time.Hour - time.Nanosecond)
	}
	return &day, nil
}
