package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the workspace root when no file is given.
const DefaultFileName = "toolloop.yaml"

// LoadFile decodes the YAML file at path over s. Keys not present in the
// file keep their current values; unknown keys are an error.
func LoadFile(path string, s *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Load builds settings from defaults, the config file and the environment.
// An explicit file must exist; otherwise DefaultFileName in workDir is
// used when present. The .env file is the caller's concern (LoadDotEnv).
func Load(workDir, file string) (Settings, error) {
	s := Defaults()

	switch {
	case file != "":
		if err := LoadFile(file, &s); err != nil {
			return Settings{}, err
		}
	default:
		candidate := filepath.Join(workDir, DefaultFileName)
		if _, err := os.Stat(candidate); err == nil {
			if err := LoadFile(candidate, &s); err != nil {
				return Settings{}, err
			}
		}
	}

	if err := s.ApplyEnv(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
