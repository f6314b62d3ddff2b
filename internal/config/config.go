// Package config provides application configuration management with support for
// environment variables, command-line flags, .env files, and a site.yaml document
// describing the published site.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Output    OutputConfig
	Analytics AnalyticsConfig
	Search    SearchConfig
	Images    ImagesConfig
	Preview   PreviewConfig
	Site      SiteConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds catalog data configuration.
type DataConfig struct {
	// Dir contains games.json and guides.json.
	Dir string
}

// OutputConfig holds site output configuration.
type OutputConfig struct {
	// Dir is where rendered pages, the sitemap, and robots.txt are written.
	Dir string
}

// AnalyticsConfig holds engagement counter storage configuration.
type AnalyticsConfig struct {
	// Path is the Badger database directory (default: {data}/analytics).
	Path string
}

// SearchConfig holds search index configuration.
type SearchConfig struct {
	// Path is the directory holding the Bleve index (default: {output}/.search).
	Path string
}

// ImagesConfig holds thumbnail processing configuration.
type ImagesConfig struct {
	// SourceDir contains original game artwork (default: {data}/images).
	SourceDir string
	// ThumbWidth is the card thumbnail width in pixels.
	ThumbWidth int
}

// PreviewConfig holds local preview server configuration.
type PreviewConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SiteConfig describes the published site. Loaded from site.yaml so editors can
// tune copy and structure without touching the binary.
type SiteConfig struct {
	Name        string   `yaml:"name"`
	BaseURL     string   `yaml:"base_url"`
	Description string   `yaml:"description"`
	PageSize    int      `yaml:"page_size"`
	Email       string   `yaml:"email"`
	StaticPages []string `yaml:"static_pages"`
}

// Defaults applied when site.yaml is absent or partially filled.
const (
	defaultSiteName        = "Blue Room Games Hub"
	defaultSiteURL         = "https://www.blueroomgameshub.com"
	defaultSiteDescription = "Discover immersive escape room games and detailed walkthroughs curated by the Blue Room Games Hub team."
	defaultPageSize        = 24
)

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
//
// Site metadata is read separately from site.yaml in the data directory.
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataDir := flag.String("data-dir", "", "Directory containing games.json and guides.json")
	outputDir := flag.String("output-dir", "", "Directory for the rendered site")
	analyticsPath := flag.String("analytics-path", "", "Badger database path for engagement counters")
	searchPath := flag.String("search-path", "", "Bleve index path")
	imagesDir := flag.String("images-dir", "", "Directory containing original game artwork")
	thumbWidth := flag.String("thumb-width", "", "Card thumbnail width in pixels (default: 440)")

	previewPort := flag.String("port", "", "Preview server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "Preview HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "Preview HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "Preview HTTP idle timeout (default: 60s)")

	envFile := flag.String("env-file", ".env", "Path to .env file")
	siteFile := flag.String("site-config", "", "Path to site.yaml (default: {data}/site.yaml)")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			Dir: getConfigValue(*dataDir, "DATA_DIR", "assets/data"),
		},
		Output: OutputConfig{
			Dir: getConfigValue(*outputDir, "OUTPUT_DIR", "public"),
		},
		Analytics: AnalyticsConfig{
			Path: getConfigValue(*analyticsPath, "ANALYTICS_PATH", ""),
		},
		Search: SearchConfig{
			Path: getConfigValue(*searchPath, "SEARCH_PATH", ""),
		},
		Images: ImagesConfig{
			SourceDir:  getConfigValue(*imagesDir, "IMAGES_DIR", ""),
			ThumbWidth: getIntConfigValue(*thumbWidth, "THUMB_WIDTH", 440),
		},
		Preview: PreviewConfig{
			Port: getConfigValue(*previewPort, "PREVIEW_PORT", "8080"),
		},
	}

	// Parse preview server timeouts.
	var err error
	if cfg.Preview.ReadTimeout, err = parseDurationValue(*readTimeout, "PREVIEW_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Preview.WriteTimeout, err = parseDurationValue(*writeTimeout, "PREVIEW_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Preview.IdleTimeout, err = parseDurationValue(*idleTimeout, "PREVIEW_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	sitePath := *siteFile
	if sitePath == "" {
		sitePath = filepath.Join(cfg.Data.Dir, "site.yaml")
	}
	site, err := LoadSiteConfig(sitePath)
	if err != nil {
		return nil, fmt.Errorf("load site config: %w", err)
	}
	cfg.Site = *site

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadSiteConfig reads site metadata from a YAML file.
// A missing file is not an error; defaults are returned instead.
func LoadSiteConfig(path string) (*SiteConfig, error) {
	site := &SiteConfig{}

	data, err := os.ReadFile(path) //#nosec G304 -- Config file path from user input is expected
	if err == nil {
		if err := yaml.Unmarshal(data, site); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if site.Name == "" {
		site.Name = defaultSiteName
	}
	if site.BaseURL == "" {
		site.BaseURL = defaultSiteURL
	}
	site.BaseURL = strings.TrimRight(site.BaseURL, "/")
	if site.Description == "" {
		site.Description = defaultSiteDescription
	}
	if site.PageSize <= 0 {
		site.PageSize = defaultPageSize
	}
	if len(site.StaticPages) == 0 {
		site.StaticPages = []string{"about", "privacy-policy"}
	}

	return site, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.Dir == "" {
		return errors.New("data dir cannot be empty after expansion")
	}
	if c.Output.Dir == "" {
		return errors.New("output dir cannot be empty after expansion")
	}
	if c.Site.PageSize <= 0 {
		return fmt.Errorf("invalid page size: %d", c.Site.PageSize)
	}

	return nil
}

// expandPaths expands ~ and makes all configured paths absolute, filling in
// derived defaults for paths that were left empty.
func (c *Config) expandPaths() error {
	var err error
	if c.Data.Dir, err = expandPath(c.Data.Dir, ""); err != nil {
		return fmt.Errorf("invalid data dir: %w", err)
	}
	if c.Output.Dir, err = expandPath(c.Output.Dir, ""); err != nil {
		return fmt.Errorf("invalid output dir: %w", err)
	}
	if c.Analytics.Path, err = expandPath(c.Analytics.Path, filepath.Join(c.Data.Dir, "analytics")); err != nil {
		return fmt.Errorf("invalid analytics path: %w", err)
	}
	if c.Search.Path, err = expandPath(c.Search.Path, filepath.Join(c.Output.Dir, ".search")); err != nil {
		return fmt.Errorf("invalid search path: %w", err)
	}
	if c.Images.SourceDir, err = expandPath(c.Images.SourceDir, filepath.Join(c.Data.Dir, "images")); err != nil {
		return fmt.Errorf("invalid images dir: %w", err)
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		path = defaultPath
	}
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(strings.ReplaceAll(envKey, "_", " ")), strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
