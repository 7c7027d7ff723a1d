// Package credential supplies the bearer token used to authenticate to the
// upstream API. Sources are consulted on every request so that a missing key
// surfaces as a per-request failure rather than a startup failure.
package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultEnvVar is the environment variable holding the upstream API key.
const DefaultEnvVar = "OPENAI_API_KEY"

// ErrMissing is returned when no credential is configured.
var ErrMissing = errors.New("credential is not configured")

// Source resolves the upstream API key.
type Source interface {
	// Lookup returns the API key, or an error wrapping ErrMissing.
	Lookup() (string, error)
}

// EnvSource reads the key from an environment variable at lookup time.
type EnvSource struct {
	Var string
}

// NewEnvSource returns an EnvSource reading name, or DefaultEnvVar when name
// is empty.
func NewEnvSource(name string) EnvSource {
	if name == "" {
		name = DefaultEnvVar
	}
	return EnvSource{Var: name}
}

func (s EnvSource) Lookup() (string, error) {
	key := strings.TrimSpace(os.Getenv(s.Var))
	if key == "" {
		return "", fmt.Errorf("%w: %s is missing from the server environment", ErrMissing, s.Var)
	}
	return key, nil
}

// Static is a fixed key, mostly useful in tests. An empty Static is treated
// as missing.
type Static string

func (s Static) Lookup() (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", fmt.Errorf("%w: no static API key set", ErrMissing)
	}
	return string(s), nil
}

// Configured reports whether src currently resolves to a key.
func Configured(src Source) bool {
	_, err := src.Lookup()
	return err == nil
}
