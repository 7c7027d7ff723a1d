package pingcmder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/relay/pkg/config"
	"github.com/papercomputeco/relay/pkg/llm"
)

const pingLongDesc string = `Check whether a running relay has an upstream API key configured.

Sends GET <route>?ping=1 to the relay, which answers without calling
the upstream API. Exits non-zero when the relay is unreachable or has
no key configured.

Examples:
  relay ping http://localhost:8080
  relay ping --route /api/chat https://chat.example.com`

const pingShortDesc string = "Probe a running relay for credential status"

// ErrNotConfigured is returned when the relay reports no API key.
var ErrNotConfigured = errors.New("relay has no upstream API key configured")

type pingCommander struct {
	route   string
	timeout time.Duration
}

func NewPingCmd() *cobra.Command {
	cmder := &pingCommander{}

	cmd := &cobra.Command{
		Use:   "ping <relay-url>",
		Short: pingShortDesc,
		Long:  pingLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&cmder.route, "route", config.Default().Route, "Path the completion endpoint is mounted on")
	cmd.Flags().DurationVar(&cmder.timeout, "timeout", 10*time.Second, "Request timeout")

	return cmd
}

func (c *pingCommander) run(ctx context.Context, cmd *cobra.Command, serverURL string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target, err := c.pingURL(serverURL)
	if err != nil {
		return err
	}

	status, err := c.probe(ctx, target)
	if err != nil {
		return err
	}

	if !status.OK {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: API key missing\n", target)
		return ErrNotConfigured
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: API key configured\n", target)
	return nil
}

func (c *pingCommander) pingURL(serverURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid relay URL %q: %w", serverURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid relay URL %q: scheme and host are required", serverURL)
	}

	u.Path += "/" + strings.TrimLeft(c.route, "/")
	u.RawQuery = url.Values{"ping": {"1"}}.Encode()
	return u.String(), nil
}

func (c *pingCommander) probe(ctx context.Context, target string) (*llm.PingResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("relay returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result llm.PingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("could not decode response: %w", err)
	}

	return &result, nil
}
