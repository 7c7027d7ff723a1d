package main

import (
	"os"

	"github.com/spf13/cobra"

	pingcmder "github.com/papercomputeco/relay/cmd/relay/ping"
	servecmder "github.com/papercomputeco/relay/cmd/relay/serve"
)

const relayLongDesc string = `relay lets a browser chat client talk to the OpenAI Responses API
without holding the API key. It injects the client's system instruction,
forwards the conversation and returns the assistant turn to append to
the client's history.`

func newRelayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "relay",
		Short:         "Chat completion relay for browser clients",
		Long:          relayLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(pingcmder.NewPingCmd())

	return cmd
}

func main() {
	if err := newRelayCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
