package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"landing/internal/app"
	"landing/internal/config"
	"landing/internal/logging"
)

// openApp loads the configuration named by --config and wires the app.
func openApp(ctx context.Context, c *cli.Command, opts ...app.Option) (*app.App, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := logging.New(c.Bool("debug"))
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening app: %w", err)
	}
	return a, nil
}

// withApp runs fn on a freshly opened app and closes it afterwards.
func withApp(ctx context.Context, c *cli.Command, fn func(*app.App) error) error {
	a, err := openApp(ctx, c)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close storage: %v\n", err)
		}
		_ = a.Logger().Sync()
	}()
	return fn(a)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// requireArg returns the n-th positional argument or a usage error.
func requireArg(c *cli.Command, n int, name string) (string, error) {
	if c.Args().Len() <= n {
		return "", fmt.Errorf("missing argument: %s", name)
	}
	return c.Args().Get(n), nil
}
