package notify

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines notification dispatch configuration. An empty GatewayURL
// disables dispatch entirely.
type Config struct {
	GatewayURL  string `yaml:"gateway_url"`
	Template    string `yaml:"template"`
	MaxInFlight int    `yaml:"max_in_flight"`
	SendTimeout string `yaml:"send_timeout"`
}

// LoadConfig loads notification config from yaml (NOTIFY_CONFIG path) with
// env-var fallbacks.
func LoadConfig() (Config, error) {
	cfg := Config{
		GatewayURL:  os.Getenv("ALERT_GATEWAY_URL"),
		Template:    os.Getenv("ALERT_NOTIFY_TEMPLATE"),
		MaxInFlight: getenvIntDefault("ALERT_NOTIFY_MAX_IN_FLIGHT", 4),
		SendTimeout: getenvDefault("ALERT_NOTIFY_TIMEOUT", "5s"),
	}
	if path := os.Getenv("NOTIFY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 4
	}
	return cfg, nil
}

// SendTimeoutDuration parses the configured timeout, defaulting to 5s.
func (c Config) SendTimeoutDuration() time.Duration {
	parsed, err := time.ParseDuration(c.SendTimeout)
	if err != nil || parsed <= 0 {
		return 5 * time.Second
	}
	return parsed
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
