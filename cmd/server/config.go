package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mcoot/peoplebingo/internal/api"
)

const envPrefix = "BINGO"

// Config holds the server settings, from flags or BINGO_* environment variables
type Config struct {
	bind            string
	port            int
	promptsFile     string
	publicURL       string
	allowedOrigins  []string
	logLevel        string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	cleanupInterval time.Duration
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	if c.cleanupInterval <= 0 {
		return fmt.Errorf("invalid hub cleanup interval: %s", c.cleanupInterval)
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.logLevel)); err != nil {
		return level, fmt.Errorf("invalid log level %q", c.logLevel)
	}
	return level, nil
}

func (c *Config) serverConfig() api.ServerConfig {
	return api.ServerConfig{
		Bind:            c.bind,
		Port:            c.port,
		ReadTimeout:     c.readTimeout,
		WriteTimeout:    c.writeTimeout,
		ShutdownTimeout: c.shutdownTimeout,
	}
}

func newCmd(cfg *Config, run func(cmd *cobra.Command, cfg *Config) error) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Environment values that failed to parse, keyed by flag name. A flag
	// given on the command line replaces the bad value, so it is only an
	// error if the flag was not set.
	envErrs := make(map[string]error)

	cmd := &cobra.Command{
		Use:   "bingo-server",
		Short: "Serves People Bingo sessions over HTTP, SSE and WebSocket.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var errs []error
			cmd.Flags().VisitAll(func(f *pflag.Flag) {
				if err, ok := envErrs[f.Name]; ok && !f.Changed {
					errs = append(errs, err)
				}
			})
			if err := errors.Join(errs...); err != nil {
				return err
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	defaults := api.DefaultServerConfig()
	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", defaults.Bind, "address to bind to (env: BINGO_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", defaults.Port, "port to listen on (env: BINGO_PORT)")
	fs.StringVar(&cfg.promptsFile, "prompts-file", "", "file of prompts, one per line, replacing the built-in grid (env: BINGO_PROMPTS_FILE)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "base URL encoded into join QR codes (env: BINGO_PUBLIC_URL)")
	fs.StringSliceVar(&cfg.allowedOrigins, "allowed-origins", []string{"*"}, "CORS origins allowed to call the API (env: BINGO_ALLOWED_ORIGINS)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "minimum log level: debug, info, warn or error (env: BINGO_LOG_LEVEL)")
	fs.DurationVar(&cfg.readTimeout, "read-timeout", defaults.ReadTimeout, "HTTP read timeout (env: BINGO_READ_TIMEOUT)")
	fs.DurationVar(&cfg.writeTimeout, "write-timeout", defaults.WriteTimeout, "HTTP write timeout for non-streaming responses (env: BINGO_WRITE_TIMEOUT)")
	fs.DurationVar(&cfg.shutdownTimeout, "shutdown-timeout", defaults.ShutdownTimeout, "time allowed for graceful shutdown (env: BINGO_SHUTDOWN_TIMEOUT)")
	fs.DurationVar(&cfg.cleanupInterval, "hub-cleanup-interval", 5*time.Minute, "how often idle event hubs are swept (env: BINGO_HUB_CLEANUP_INTERVAL)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			if err := fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				envErrs[f.Name] = fmt.Errorf("invalid %s_%s: %w",
					envPrefix, strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")), err)
			}
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
