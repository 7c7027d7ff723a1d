package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/config"
	"github.com/papercomputeco/relay/pkg/credential"
	"github.com/papercomputeco/relay/pkg/logger"
	"github.com/papercomputeco/relay/pkg/upstream"
	"github.com/papercomputeco/relay/relay"
)

const serveLongDesc string = `Run the relay server.

Settings come from built-in defaults, then the optional TOML file given
with --config, then RELAY_* environment variables, then flags. A .env
file in the working directory is loaded first.

The upstream API key is read from OPENAI_API_KEY (or the variable named
by RELAY_API_KEY_ENV) on every request, so the server starts without it
and reports it missing per request.

Examples:
  relay serve
  relay serve --listen :3000 --model gpt-5-mini
  relay serve --config /etc/relay.toml --debug`

const serveShortDesc string = "Run the relay server"

const shutdownTimeout = 10 * time.Second

type serveCommander struct {
	configPath      string
	listenAddr      string
	route           string
	upstreamURL     string
	model           string
	maxOutputTokens int
	upstreamTimeout time.Duration
	debug           bool
}

func NewServeCmd() *cobra.Command {
	cmd, _ := newServeCmd()
	return cmd
}

func newServeCmd() (*cobra.Command, *serveCommander) {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	defaults := config.Default()
	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to a TOML config file")
	cmd.Flags().StringVarP(&cmder.listenAddr, "listen", "l", defaults.ListenAddr, "Address to listen on")
	cmd.Flags().StringVar(&cmder.route, "route", defaults.Route, "Path the completion endpoint is mounted on")
	cmd.Flags().StringVar(&cmder.upstreamURL, "upstream", defaults.UpstreamURL, "Upstream Responses API endpoint")
	cmd.Flags().StringVar(&cmder.model, "model", defaults.Model, "Model requested upstream")
	cmd.Flags().IntVar(&cmder.maxOutputTokens, "max-output-tokens", defaults.MaxOutputTokens, "Output token cap sent upstream")
	cmd.Flags().DurationVar(&cmder.upstreamTimeout, "upstream-timeout", defaults.UpstreamTimeout, "Deadline for a single upstream call (0 disables)")
	cmd.Flags().BoolVarP(&cmder.debug, "debug", "d", false, "Enable debug logging")

	return cmd, cmder
}

// resolveConfig loads the layered config and applies explicitly set flags on top.
func (c *serveCommander) resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.ListenAddr = c.listenAddr
	}
	if flags.Changed("route") {
		cfg.Route = c.route
	}
	if flags.Changed("upstream") {
		cfg.UpstreamURL = c.upstreamURL
	}
	if flags.Changed("model") {
		cfg.Model = c.model
	}
	if flags.Changed("max-output-tokens") {
		cfg.MaxOutputTokens = c.maxOutputTokens
	}
	if flags.Changed("upstream-timeout") {
		cfg.UpstreamTimeout = c.upstreamTimeout
	}
	if flags.Changed("debug") {
		cfg.Debug = c.debug
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := c.resolveConfig(cmd)
	if err != nil {
		return fmt.Errorf("could not resolve config: %w", err)
	}

	log := logger.NewLogger(cfg.Debug)
	defer log.Sync()

	log.Info("relay starting",
		zap.String("listen", cfg.ListenAddr),
		zap.String("upstream", cfg.UpstreamURL),
		zap.String("model", cfg.Model),
		zap.String("api_key_env", cfg.APIKeyEnv),
		zap.Bool("debug", cfg.Debug),
	)

	r, err := relay.New(relay.Config{
		ListenAddr: cfg.ListenAddr,
		Route:      cfg.Route,
		BodyLimit:  cfg.BodyLimit,
		Upstream: upstream.Config{
			URL:             cfg.UpstreamURL,
			Model:           cfg.Model,
			MaxOutputTokens: cfg.MaxOutputTokens,
			Timeout:         cfg.UpstreamTimeout,
		},
	}, credential.NewEnvSource(cfg.APIKeyEnv), nil, log)
	if err != nil {
		return fmt.Errorf("could not create relay: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- r.Run()
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("relay server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down relay")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := r.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("could not shut down relay: %w", err)
	}
	return nil
}
