package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/config"
)

var _ = Describe("Load", func() {
	var tmpDir string

	setenv := func(key, value string) {
		prev, had := os.LookupEnv(key)
		Expect(os.Setenv(key, value)).To(Succeed())
		DeferCleanup(func() {
			if had {
				os.Setenv(key, prev)
			} else {
				os.Unsetenv(key)
			}
		})
	}

	writeFile := func(contents string) string {
		path := filepath.Join(tmpDir, "relay.toml")
		Expect(os.WriteFile(path, []byte(contents), 0o600)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "relay-config-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)

		for _, key := range []string{
			"RELAY_LISTEN_ADDR", "RELAY_ROUTE", "RELAY_UPSTREAM_URL", "RELAY_MODEL",
			"RELAY_MAX_OUTPUT_TOKENS", "RELAY_UPSTREAM_TIMEOUT", "RELAY_API_KEY_ENV", "RELAY_DEBUG",
			"RELAY_BODY_LIMIT",
		} {
			if prev, had := os.LookupEnv(key); had {
				os.Unsetenv(key)
				DeferCleanup(os.Setenv, key, prev)
			}
		}
	})

	It("returns the defaults when nothing is configured", func() {
		cfg, err := config.Load("")

		Expect(err).NotTo(HaveOccurred())
		Expect(*cfg).To(Equal(config.Default()))
		Expect(cfg.UpstreamURL).To(Equal("https://api.openai.com/v1/responses"))
		Expect(cfg.Model).To(Equal("gpt-5"))
		Expect(cfg.MaxOutputTokens).To(Equal(4000))
		Expect(cfg.APIKeyEnv).To(Equal("OPENAI_API_KEY"))
		Expect(cfg.BodyLimit).To(BeZero())
	})

	It("reads values from a TOML file", func() {
		path := writeFile(`
listen_addr = ":9090"
model = "gpt-5-mini"
max_output_tokens = 1024
upstream_timeout = "30s"
debug = true
`)

		cfg, err := config.Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.ListenAddr).To(Equal(":9090"))
		Expect(cfg.Model).To(Equal("gpt-5-mini"))
		Expect(cfg.MaxOutputTokens).To(Equal(1024))
		Expect(cfg.UpstreamTimeout).To(Equal(30 * time.Second))
		Expect(cfg.Debug).To(BeTrue())
		Expect(cfg.Route).To(Equal("/api/openai"))
	})

	It("lets the environment override the file", func() {
		path := writeFile(`model = "from-file"`)
		setenv("RELAY_MODEL", "from-env")
		setenv("RELAY_MAX_OUTPUT_TOKENS", "256")
		setenv("RELAY_API_KEY_ENV", "TEAM_OPENAI_KEY")
		setenv("RELAY_BODY_LIMIT", "1048576")

		cfg, err := config.Load(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Model).To(Equal("from-env"))
		Expect(cfg.MaxOutputTokens).To(Equal(256))
		Expect(cfg.APIKeyEnv).To(Equal("TEAM_OPENAI_KEY"))
		Expect(cfg.BodyLimit).To(Equal(1 << 20))
	})

	It("fails on a missing file", func() {
		_, err := config.Load(filepath.Join(tmpDir, "absent.toml"))

		Expect(err).To(MatchError(ContainSubstring("could not load config file")))
	})

	It("rejects invalid settings", func() {
		setenv("RELAY_ROUTE", "api/openai")

		_, err := config.Load("")

		Expect(err).To(MatchError(ContainSubstring("invalid config")))
	})
})
