// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package datahub

import (
	"os"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gopkg.in/yaml.v3"
)

// Config holds the application settings that affect the hub and its
// consumers. It is usually read from a YAML file:
//
//	logging: <root>=WARNING;datahub=DEBUG
//	debounce: 300ms
//	screens:
//	  fullcalendar-subscription:
//	    debounce: 1s
//	    ignore: [mateAdded, mateRemoved]
type Config struct {
	// Logging is a loggo configuration string.
	Logging string `yaml:"logging,omitempty"`

	// Debounce is the default quiet period before a screen reloads.
	Debounce time.Duration `yaml:"debounce,omitempty"`

	// Screens holds per subscription id overrides.
	Screens map[string]ScreenConfig `yaml:"screens,omitempty"`
}

// ScreenConfig overrides the defaults for a single screen.
type ScreenConfig struct {
	// Debounce replaces Config.Debounce when positive.
	Debounce time.Duration `yaml:"debounce,omitempty"`

	// Ignore lists events the screen does not react to, whatever its
	// own reaction would be.
	Ignore []Event `yaml:"ignore,omitempty"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Logging:  "<root>=WARNING",
		Debounce: DefaultDebounce,
	}
}

// ParseConfig reads YAML configuration on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Annotate(err, "parsing config")
	}
	if err := config.Validate(); err != nil {
		return Config{}, errors.Trace(err)
	}
	return config, nil
}

// ReadConfig parses the configuration file at path.
func ReadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Annotatef(err, "reading config %q", path)
	}
	config, err := ParseConfig(data)
	if err != nil {
		return Config{}, errors.Annotatef(err, "config %q", path)
	}
	return config, nil
}

// Validate checks the configuration for values that make no sense.
func (c Config) Validate() error {
	if c.Debounce < 0 {
		return errors.NotValidf("negative debounce %v", c.Debounce)
	}
	if c.Logging != "" {
		if _, err := loggo.ParseConfigString(c.Logging); err != nil {
			return errors.NewNotValid(err, "logging config")
		}
	}
	for id, screen := range c.Screens {
		if screen.Debounce < 0 {
			return errors.NotValidf("negative debounce %v for screen %q", screen.Debounce, id)
		}
		for _, event := range screen.Ignore {
			if err := event.Validate(); err != nil {
				return errors.Annotatef(err, "screen %q", id)
			}
		}
	}
	return nil
}

// DebounceFor returns the quiet period for the screen with the given
// subscription id.
func (c Config) DebounceFor(id string) time.Duration {
	if screen, ok := c.Screens[id]; ok && screen.Debounce > 0 {
		return screen.Debounce
	}
	return c.Debounce
}

// ScreenFor returns the settings of the screen with the given subscription
// id, with the default debounce filled in.
func (c Config) ScreenFor(id string) ScreenConfig {
	screen := c.Screens[id]
	return ScreenConfig{
		Debounce: c.DebounceFor(id),
		Ignore:   append([]Event(nil), screen.Ignore...),
	}
}

// Ignores reports whether the screen is configured to ignore the event.
func (c ScreenConfig) Ignores(event Event) bool {
	for _, ignored := range c.Ignore {
		if ignored == event {
			return true
		}
	}
	return false
}

// ConfigureLogging applies the logging configuration to the loggo loggers.
func (c Config) ConfigureLogging() error {
	if c.Logging == "" {
		return nil
	}
	return errors.Trace(loggo.ConfigureLoggers(c.Logging))
}
