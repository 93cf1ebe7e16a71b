// Package commands implements the mensa-api command line.
package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/Keksclan/goMensaSquirrel/config"
	"github.com/spf13/cobra"
)

// CLI represents the command line interface of mensa-api.
type CLI struct {
	rootCmd    *cobra.Command
	configPath string
}

// New creates the command tree.
func New() *CLI {
	rootCmd := &cobra.Command{
		Use:           "mensa-api",
		Short:         "Serve Studierendenwerk meal plans over HTTP and gRPC",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c := &CLI{rootCmd: rootCmd}
	rootCmd.PersistentFlags().StringVar(&c.configPath, "config", "",
		"config file (default $"+config.EnvPath+" or "+config.DefaultPath+")")

	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newFetchCmd())
	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// loadConfig reads the selected config file and builds the logger it
// describes, writing to w.
func (c *CLI) loadConfig(w io.Writer) (config.Config, *slog.Logger, error) {
	path := config.Path(c.configPath)
	cfg, found, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	log := newLogger(cfg.Log, w)
	if found {
		log.Info("read config", "path", path)
	} else {
		log.Info("config does not exist, using defaults", "path", path)
	}
	return cfg, log, nil
}

func newLogger(cfg config.Log, w io.Writer) *slog.Logger {
	var level slog.Level
	// Validate already rejected unknown levels.
	_ = level.UnmarshalText([]byte(cfg.Level))
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
