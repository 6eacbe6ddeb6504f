package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DotEnvSearchDepth is how many parent directories LoadDotEnv climbs.
const DotEnvSearchDepth = 5

// FindDotEnv returns the nearest .env file in dir or up to
// DotEnvSearchDepth of its parents, or "" if there is none.
func FindDotEnv(dir string) string {
	dir = filepath.Clean(dir)
	for i := 0; i <= DotEnvSearchDepth; i++ {
		candidate := filepath.Join(dir, ".env")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// LoadDotEnv loads the nearest .env file into the process environment.
// Variables already set are not overridden. Returns the file used.
func LoadDotEnv(dir string) (string, error) {
	path := FindDotEnv(dir)
	if path == "" {
		return "", nil
	}
	if err := godotenv.Load(path); err != nil {
		return "", fmt.Errorf("failed to load %s: %w", path, err)
	}
	return path, nil
}
