package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyMode selects how task queries are scoped. Production applies the
// per-role policies; development-bypass disables the isolation guarantee
// and must never be the implicit default.
const (
	PolicyModeProduction        = "production"
	PolicyModeDevelopmentBypass = "development-bypass"
)

// Config holds the application's configuration.
type Config struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Routing struct {
		SchedulingFanoutLimit int `yaml:"scheduling_fanout_limit"`
		OutreachFanoutLimit   int `yaml:"outreach_fanout_limit"`
	} `yaml:"routing"`
	Classifier struct {
		// ExtraVerbs extends the built-in action-verb vocabulary per
		// category. Both classifier call sites read the same merged table.
		ExtraVerbs map[string][]string `yaml:"extra_verbs"`
	} `yaml:"classifier"`
	AssistedClassifier struct {
		Enabled        bool   `yaml:"enabled"`
		URL            string `yaml:"url"`
		TimeoutSeconds int64  `yaml:"timeout_seconds"`
	} `yaml:"assisted_classifier"`
	AccessPolicy struct {
		Mode string `yaml:"mode"`
	} `yaml:"access_policy"`
	Encryption struct {
		// MasterKeyBase64 is the base64-encoded 32-byte AES-256 key used
		// to encrypt task raw context at rest. Falls back to the
		// MASTER_KEY environment variable when empty.
		MasterKeyBase64 string `yaml:"master_key_base64"`
	} `yaml:"encryption"`
	Telegram struct {
		Enabled  bool   `yaml:"enabled"`
		BotToken string `yaml:"bot_token"`
		// NotifyChatID receives task-created notifications when set.
		NotifyChatID int64 `yaml:"notify_chat_id"`
	} `yaml:"telegram"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Routing.SchedulingFanoutLimit == 0 {
		c.Routing.SchedulingFanoutLimit = 4
	}
	if c.Routing.OutreachFanoutLimit == 0 {
		c.Routing.OutreachFanoutLimit = 5
	}
	if c.AssistedClassifier.TimeoutSeconds == 0 {
		c.AssistedClassifier.TimeoutSeconds = 3
	}
	if c.AccessPolicy.Mode == "" {
		c.AccessPolicy.Mode = PolicyModeProduction
	}
}

func (c *Config) validate() error {
	switch c.AccessPolicy.Mode {
	case PolicyModeProduction, PolicyModeDevelopmentBypass:
	default:
		return fmt.Errorf("invalid access_policy.mode %q: must be %q or %q",
			c.AccessPolicy.Mode, PolicyModeProduction, PolicyModeDevelopmentBypass)
	}
	if c.AssistedClassifier.Enabled && c.AssistedClassifier.URL == "" {
		return fmt.Errorf("assisted_classifier.url is required when assisted_classifier.enabled is true")
	}
	return nil
}
