// Package relay provides an HTTP relay that lets a browser client hold a
// conversation with the OpenAI Responses API without ever seeing the API key.
package relay

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/credential"
	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/upstream"
)

// Relay forwards completion requests to the upstream Responses API.
// It is stateless: callers resend their full history on every request and
// append the returned assistant turn to it themselves.
type Relay struct {
	config     Config
	credential credential.Source
	upstream   *upstream.Client
	logger     *zap.Logger
	server     *fiber.App
}

// New creates a new Relay. The credential source is consulted on every
// request. A nil httpClient uses a plain http.Client; upstream calls are
// bounded by config.Upstream.Timeout.
func New(config Config, creds credential.Source, httpClient *http.Client, logger *zap.Logger) (*Relay, error) {
	if creds == nil {
		return nil, errors.New("credential source is required")
	}
	if config.Route == "" {
		return nil, errors.New("route is required")
	}
	if config.BodyLimit <= 0 {
		config.BodyLimit = DefaultBodyLimit
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	r := &Relay{
		config:     config,
		credential: creds,
		upstream:   upstream.NewClient(config.Upstream, httpClient, logger),
		logger:     logger,
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		BodyLimit:             config.BodyLimit,
		ErrorHandler:          r.handleError,
	})

	app.Use(r.requestLogger)

	// All methods land on the handler, which answers 405 itself
	app.All(config.Route, r.handleCompletion)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	r.server = app
	return r, nil
}

// Run starts the relay server on the configured listening address
func (r *Relay) Run() error {
	r.logger.Info("starting relay server",
		zap.String("listen", r.config.ListenAddr),
		zap.String("route", r.config.Route),
		zap.String("upstream", r.config.Upstream.URL),
		zap.Bool("credential_configured", credential.Configured(r.credential)),
	)

	return r.server.Listen(r.config.ListenAddr)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (r *Relay) Shutdown(ctx context.Context) error {
	return r.server.ShutdownWithContext(ctx)
}

// HTTPHandler exposes the relay's routes as a net/http handler, for mounting
// in an existing http.Server or a serverless function.
func (r *Relay) HTTPHandler() http.HandlerFunc {
	return adaptor.FiberApp(r.server)
}

// handleError renders errors that escape a handler, including fiber's own
// (unknown routes, oversized bodies), in the relay's error shape.
func (r *Relay) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if code >= fiber.StatusInternalServerError {
		r.logger.Error("request failed",
			zap.String("request_id", requestID(c)),
			zap.Error(err),
		)
	}

	return c.Status(code).JSON(llm.NewAPIError(errorMessage(err)))
}

func errorMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "Unknown server error"
	}
	return err.Error()
}
