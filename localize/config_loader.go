package localize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads the configuration from a YAML file. The motion
// probabilities are always validated; robot identity and topics are
// only required when a broker is configured, so offline replay works
// with a motion-only config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if _, err := config.Motion.values(); err != nil {
		return nil, fmt.Errorf("invalid motion configuration: %w", err)
	}

	if config.MQTT.Broker != "" {
		if config.Robot.ID == "" {
			return nil, fmt.Errorf("robot.id is required")
		}
		if config.Robot.MapTopic == "" {
			return nil, fmt.Errorf("robot.mapTopic is required for %s", config.Robot.ID)
		}
		if config.Robot.CommandTopic == "" {
			return nil, fmt.Errorf("robot.commandTopic is required for %s", config.Robot.ID)
		}
		if config.Robot.ScanTopic == "" {
			return nil, fmt.Errorf("robot.scanTopic is required for %s", config.Robot.ID)
		}
	}

	return &config, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
