// Package config provides configuration loading for the engine service.
package config

import (
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	defaultEntityTopic       = "automation.entity.events"
	defaultExecutionTopic    = "automation.rule.executions"
	defaultScheduledSchedule = "* * * * *"
	defaultSweepSchedule     = "0 * * * *"
)

// EngineConfig is the structure of the engine.yaml file.
type EngineConfig struct {
	// Tenants to warm engines for at startup. Tenants seen on the event
	// stream are added lazily either way.
	Tenants []string `yaml:"tenants"`

	EntityTopic    string `yaml:"entity_topic"`
	ExecutionTopic string `yaml:"execution_topic"`

	// Cron expressions for the two background jobs.
	ScheduledActionsSchedule string `yaml:"scheduled_actions_schedule"`
	TimeElapsedSchedule      string `yaml:"time_elapsed_schedule"`

	// Optional redis URL for the pending-notification store. Empty means
	// notification actions log instead of queueing.
	NotificationsURL string `yaml:"notifications_url"`
}

// LoadEngineConfig loads engine configuration from a YAML file.
func LoadEngineConfig(filepath string) (EngineConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("failed to read config file %s: %w", filepath, err)
	}

	var config EngineConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return EngineConfig{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return EngineConfig{}, err
	}

	return config, nil
}

// LoadEngineConfigOrDefault attempts to load engine config from file,
// falling back to defaults if the file doesn't exist.
func LoadEngineConfigOrDefault(filepath string) EngineConfig {
	config, err := LoadEngineConfig(filepath)
	if err != nil {
		config = EngineConfig{}
		config.applyDefaults()
	}

	return config
}

func (c *EngineConfig) applyDefaults() {
	if c.EntityTopic == "" {
		c.EntityTopic = defaultEntityTopic
	}

	if c.ExecutionTopic == "" {
		c.ExecutionTopic = defaultExecutionTopic
	}

	if c.ScheduledActionsSchedule == "" {
		c.ScheduledActionsSchedule = defaultScheduledSchedule
	}

	if c.TimeElapsedSchedule == "" {
		c.TimeElapsedSchedule = defaultSweepSchedule
	}
}

// Validate checks topic names and cron expressions.
func (c EngineConfig) Validate() error {
	if c.EntityTopic == "" {
		return fmt.Errorf("entity_topic is required")
	}

	if c.ExecutionTopic == "" {
		return fmt.Errorf("execution_topic is required")
	}

	if _, err := cron.ParseStandard(c.ScheduledActionsSchedule); err != nil {
		return fmt.Errorf("invalid scheduled_actions_schedule %q: %w", c.ScheduledActionsSchedule, err)
	}

	if _, err := cron.ParseStandard(c.TimeElapsedSchedule); err != nil {
		return fmt.Errorf("invalid time_elapsed_schedule %q: %w", c.TimeElapsedSchedule, err)
	}

	for i, tenant := range c.Tenants {
		if tenant == "" {
			return fmt.Errorf("tenants[%d]: tenant id must not be empty", i)
		}
	}

	return nil
}
