// Package config resolves settings from .env files and the environment.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/csheth/docreader/internal/logging"
)

type Config struct {
	APIURL   string
	Token    string
	CacheDir string
	LogFile  string
	Debug    bool

	// readerd
	Addr       string
	OutlineTTL time.Duration
}

// LoadDotEnv loads the given .env files (".env" when none are named) without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Load reads the environment. Call LoadDotEnv first to pick up a .env file.
func Load(program string) Config {
	return Config{
		APIURL:     strings.TrimRight(getenv("DOCREADER_API_URL", "http://localhost:3001/api"), "/"),
		Token:      getenv("DOCREADER_TOKEN", ""),
		CacheDir:   getenv("DOCREADER_CACHE_DIR", ""),
		LogFile:    getenv("DOCREADER_LOG_FILE", logging.DefaultFile(program)),
		Debug:      getenvBool("DOCREADER_DEBUG", false),
		Addr:       getenv("READERD_ADDR", ":8790"),
		OutlineTTL: time.Duration(getenvInt("READERD_OUTLINE_TTL_SECONDS", 600)) * time.Second,
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
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

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
