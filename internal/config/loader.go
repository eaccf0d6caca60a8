package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// sections lists the top-level keys environment variables may populate.
var sections = map[string]bool{
	"server":     true,
	"gcp":        true,
	"speech":     true,
	"mongodb":    true,
	"embeddings": true,
	"corpus":     true,
	"feedback":   true,
	"prediction": true,
	"logging":    true,
	"telemetry":  true,
}

// seededDefaults are values whose zero value is a valid setting: false for
// the telemetry switches, 0 for the confidence threshold.
var seededDefaults = map[string]any{
	"telemetry.insecure":          true,
	"telemetry.metrics_enabled":   true,
	"telemetry.prometheus":        true,
	"speech.confidence_threshold": DefaultConfidenceThreshold,
}

// Load loads configuration, then validates it.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (MONGODB_URI, GCP_PROJECT_ID, SERVER_HTTP_PORT, ...)
//  2. Variables from a .env file in the working directory
//  3. YAML config file at configPath, when non-empty
//  4. Hardcoded defaults
//
// Environment variables map to keys by splitting on the first underscore:
//
//	MONGODB_DB_NAME        -> mongodb.db_name
//	GCP_PROJECT_ID         -> gcp.project_id
//	SERVER_ALLOWED_ORIGIN  -> server.allowed_origin
func Load(configPath string) (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")

	// Seeded before any provider loads so an explicit false or 0 survives.
	for key, val := range seededDefaults {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("failed to seed default %s: %w", key, err)
		}
	}

	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envKey maps SECTION_FIELD_NAME to section.field_name. Variables outside
// the known sections are dropped.
func envKey(s string) string {
	lower := strings.ToLower(s)
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) != 2 || !sections[parts[0]] {
		return ""
	}
	return parts[0] + "." + parts[1]
}

// readConfigFile opens the file once and validates it through the open
// descriptor.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := validateConfigFileProperties(info); err != nil {
		return nil, fmt.Errorf("config file validation failed: %w", err)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// validateConfigFileProperties checks file permissions and size. The file
// may hold the MongoDB URI, so it must not be group or world writable.
func validateConfigFileProperties(info os.FileInfo) error {
	if info.IsDir() {
		return fmt.Errorf("config path is a directory")
	}

	if runtime.GOOS != "windows" {
		if perm := info.Mode().Perm(); perm&0o022 != 0 {
			return fmt.Errorf("insecure config file permissions: %v (must not be group or world writable)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}
