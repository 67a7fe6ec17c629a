package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config file looked up in the working directory
// when no --config flag is given.
const DefaultConfigFile = "copybot.yaml"

// Load reads a YAML config file, expands environment variables, and
// unmarshals over the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	expanded := ExpandEnv(string(data))

	settings := Default()
	if err := yaml.Unmarshal([]byte(expanded), settings); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	return settings, nil
}

// Resolve produces the effective settings: the config file at path (or the
// default file if present, or pure defaults), overlaid with the environment,
// then validated. Every service entrypoint resolves settings before doing
// any work and exits on error.
func Resolve(path string) (*Settings, error) {
	var settings *Settings
	switch {
	case path != "":
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		settings = loaded
	default:
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			loaded, err := Load(DefaultConfigFile)
			if err != nil {
				return nil, err
			}
			settings = loaded
		} else {
			settings = Default()
		}
	}

	settings.ApplyEnv()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}
