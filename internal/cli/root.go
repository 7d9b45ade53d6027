// Package cli implements the pokedex command line.
package cli

import (
	"fmt"

	"github.com/Sternrassler/pokedex-client/internal/config"
	"github.com/Sternrassler/pokedex-client/pkg/client"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/spf13/cobra"
)

// app carries state shared by the subcommands.
type app struct {
	envFile     string
	baseURL     string
	logLevel    string
	logPretty   bool
	concurrency int

	cfg    config.Config
	client *client.Client
}

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pokedex",
		Short: "Look up Pokémon by name, id, type or ability",
		Long: "pokedex queries the public PokeAPI and prints the results. " +
			"Run 'pokedex serve' for the browser UI and JSON API.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.envFile, "env-file", ".env", "Environment file loaded before reading POKEDEX_* variables")
	pf.StringVar(&a.baseURL, "base-url", "", "Upstream API base URL (or POKEDEX_BASE_URL)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (or LOG_LEVEL)")
	pf.BoolVar(&a.logPretty, "log-pretty", false, "Human-readable log output (or LOG_PRETTY)")
	pf.IntVar(&a.concurrency, "concurrency", 0, "Parallel detail fetches for list searches (or POKEDEX_MAX_CONCURRENCY)")

	root.AddCommand(
		newSearchCmd(a),
		newRandomCmd(a),
		newCatalogCmd(a),
		newServeCmd(a),
	)

	return root
}

// setup loads configuration, applies flag overrides, configures logging
// and builds the upstream client.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	if a.logLevel != "" {
		cfg.LogLevel = logging.LogLevel(a.logLevel)
	}
	if flags.Changed("log-pretty") {
		cfg.LogPretty = a.logPretty
	}
	if a.concurrency != 0 {
		cfg.MaxConcurrency = a.concurrency
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lc := cfg.Logging()
	lc.Output = cmd.ErrOrStderr()
	logging.Setup(lc)

	c, err := client.New(client.Config{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.HTTPTimeout,
	})
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	a.cfg = cfg
	a.client = c
	return nil
}
