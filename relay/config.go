package relay

import "github.com/papercomputeco/relay/pkg/upstream"

// DefaultBodyLimit bounds inbound request bodies. Conversations may embed
// base64 files, so this is well above fiber's default.
const DefaultBodyLimit = 32 << 20

// Config is the relay server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string

	// Route the completion handler is mounted on (e.g., "/api/openai")
	Route string

	// BodyLimit is the maximum inbound body size in bytes. Zero uses DefaultBodyLimit.
	BodyLimit int

	// Upstream Responses API settings
	Upstream upstream.Config
}
