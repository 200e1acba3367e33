package bot

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/akhromov/domobot/core/config"
	coredatabase "github.com/akhromov/domobot/core/database"
	"github.com/akhromov/domobot/internal/domopult"
)

// Config aggregates the core runtime configuration with the bot's own
// sections: the credential database and the domopult upstream.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Domopult domopult.Config     `yaml:"domopult"`
}

// CoreConfig exposes the embedded core configuration for the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads the YAML file, applies environment overrides and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bot: failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("bot: failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("bot: failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if cfg.Domopult.BaseURL == "" {
		return nil, fmt.Errorf("bot: domopult.base_url is required")
	}
	return &cfg, nil
}
