package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/briangreenhill/indicators/internal/bcb"
	"github.com/briangreenhill/indicators/internal/cache"
	"github.com/briangreenhill/indicators/internal/catalog"
	"github.com/briangreenhill/indicators/internal/config"
	"github.com/briangreenhill/indicators/internal/indicator"
	"github.com/briangreenhill/indicators/internal/upstream"
	"github.com/briangreenhill/indicators/internal/worldbank"
)

const version = "0.1.0"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "indicators",
	Short: "Serve live statistical indicators",
	Long: `Serve a fixed catalog of demographic, economic and climate indicators,
blending a growth model with the World Bank and Banco Central (SGS) APIs.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, listCmd, getCmd, versionCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "indicators v%s\n", version)
	},
}

// app is everything a command needs, built from the environment.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	catalog  *catalog.Registry
	resolver *indicator.Resolver
}

func newApp(logOut io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat, logOut)
	if err != nil {
		return nil, err
	}

	reg, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	hc := upstream.NewHTTPClient(cfg.Upstream.Timeout)
	wb := worldbank.New(
		worldbank.WithHTTPClient(hc),
		worldbank.WithBaseURL(cfg.WorldBank.BaseURL),
		worldbank.WithPerPage(cfg.WorldBank.PerPage),
	)
	sgs := bcb.New(
		bcb.WithHTTPClient(hc),
		bcb.WithBaseURL(cfg.BCB.BaseURL),
	)

	opts := []indicator.Option{
		indicator.WithLogger(logger),
		indicator.WithFetchTimeout(cfg.Upstream.Timeout),
	}
	if cfg.Upstream.Coalesce {
		opts = append(opts, indicator.WithCoalescing())
	}
	res := indicator.NewResolver(cache.NewMemory(), wb, sgs, opts...)

	return &app{cfg: cfg, log: logger, catalog: reg, resolver: res}, nil
}

func newLogger(level, format string, out io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
