package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/socialcrawl/crawlctl/internal/logger"
)

// DotEnvPaths returns the .env candidates: the working directory first, then the executable's directory
func DotEnvPaths() []string {
	paths := []string{".env"}

	execPath, err := os.Executable()
	if err != nil {
		logger.Debug("Could not determine executable path: %v", err)
		return paths
	}

	appEnv := filepath.Join(filepath.Dir(execPath), ".env")
	if abs, err := filepath.Abs(".env"); err != nil || abs != appEnv {
		paths = append(paths, appEnv)
	}
	return paths
}

// LoadDotEnv loads every existing file in paths into the process environment.
// Variables already set are never overwritten, so the first file wins.
func LoadDotEnv(paths ...string) []string {
	var loaded []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			logger.Warn("Failed to load %s: %v", path, err)
			continue
		}
		logger.Debug("Loaded environment from %s", path)
		loaded = append(loaded, path)
	}
	return loaded
}
