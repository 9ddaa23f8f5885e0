package config

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
)

const defaultConfigYAML = `# sourcebundle configuration
#
# Acquisition budgets (max files, per-file bytes, aggregate bytes) are fixed
# policy and intentionally not configurable here.

logging:
  # debug | info | warn | error
  level: info
  # text | json
  format: text

daemon:
  host: 0.0.0.0
  port: 8474
  # Bounds one acquisition triggered over HTTP.
  request_timeout_seconds: 120
  # In-memory acquisition history entries served by the API.
  history_size: 100

metrics:
  # Expose Prometheus metrics on /metrics when serving.
  enabled: false

events:
  # Publish acquisition.completed / acquisition.failed to NATS JetStream.
  enabled: false
  url: nats://localhost:4222
  subject_prefix: sourcebundle.acquisition

eventstore:
  # SQLite path for acquisition attempt history (metadata only, never bundle
  # content). ":memory:" keeps history for the process lifetime; empty
  # disables history.
  path: sourcebundle-events.db
`

// Init writes a commented default configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).
			Build()
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigYAML), 0o644); err != nil {
		return errors.ConfigError("could not write configuration file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return nil
}
