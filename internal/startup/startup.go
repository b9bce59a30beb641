package startup

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"time"

	"media-preview/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	MediaDir        string
	CacheDir        string
	DatabaseDir     string
	Port            string
	MetricsPort     string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	StatsInterval   time.Duration
	LogHealthChecks bool
	MetricsEnabled  bool

	// Derived paths
	DatabasePath string
	PreviewDir   string

	// Feature flags based on directory availability
	PreviewCacheEnabled bool

	// Values exposes every loaded key, including the preview_* settings.
	Values *Values
}

// LoaderOptions points LoadConfig at explicit files.
type LoaderOptions struct {
	ConfigFile string
	EnvFile    string
}

// newViper layers config.yml, .env and the process environment, in that
// order of increasing precedence.
func newViper(opts LoaderOptions) (*viper.Viper, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		if opts.EnvFile != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/media-preview")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetDefault("MEDIA_DIR", "/media")
	v.SetDefault("CACHE_DIR", "/cache")
	v.SetDefault("DATABASE_DIR", "/database")
	v.SetDefault("PORT", "8080")
	v.SetDefault("METRICS_PORT", "9090")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("LOG_HEALTH_CHECKS", true)
	v.SetDefault("STATS_INTERVAL", "1m")
	v.SetDefault("REDIS_DB", 0)
	v.AutomaticEnv()

	return v, nil
}

// LoadValues reads the same sources as LoadConfig without logging or touching
// any directory. Command line tools use it.
func LoadValues(opts LoaderOptions) (*Values, error) {
	v, err := newViper(opts)
	if err != nil {
		return nil, err
	}
	return NewValues(v), nil
}

// LoadConfig loads and validates configuration from config.yml, .env and
// environment variables
func LoadConfig(opts LoaderOptions) (*Config, error) {
	printBanner()
	logSystemInfo()

	section("CONFIGURATION")

	v, err := newViper(opts)
	if err != nil {
		return nil, err
	}
	if used := v.ConfigFileUsed(); used != "" {
		logging.Info("  Config file:         %s", used)
	}
	values := NewValues(v)

	mediaDir := values.String("MEDIA_DIR", "/media")
	cacheDir := values.String("CACHE_DIR", "/cache")
	databaseDir := values.String("DATABASE_DIR", "/database")
	port := values.String("PORT", "8080")
	metricsPort := values.String("METRICS_PORT", "9090")
	redisAddr := values.String("REDIS_ADDR", "")
	statsIntervalStr := values.String("STATS_INTERVAL", "1m")
	logHealthChecks := values.Bool("LOG_HEALTH_CHECKS", true)
	metricsEnabled := values.Bool("METRICS_ENABLED", true)

	logging.Info("  MEDIA_DIR:           %s", mediaDir)
	logging.Info("  CACHE_DIR:           %s", cacheDir)
	logging.Info("  DATABASE_DIR:        %s", databaseDir)
	logging.Info("  PORT:                %s", port)
	logging.Info("  METRICS_PORT:        %s", metricsPort)
	logging.Info("  METRICS_ENABLED:     %v", metricsEnabled)
	logging.Info("  REDIS_ADDR:          %s", orNone(redisAddr))
	logging.Info("  STATS_INTERVAL:      %s", statsIntervalStr)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
	logging.Info("  MEMORY_LIMIT:        %s", orNone(values.String("MEMORY_LIMIT", "")))
	logging.Info("  enable_previews:     %v", values.Bool("enable_previews", true))

	statsInterval, err := time.ParseDuration(statsIntervalStr)
	if err != nil || statsInterval <= 0 {
		logging.Warn("  Invalid STATS_INTERVAL, using default: 1m")
		statsInterval = time.Minute
	}

	section("DIRECTORY SETUP")

	for _, dir := range []struct {
		name string
		path *string
	}{
		{"media", &mediaDir},
		{"cache", &cacheDir},
		{"database", &databaseDir},
	} {
		abs, err := filepath.Abs(*dir.path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s directory path: %w", dir.name, err)
		}
		*dir.path = abs
		logging.Info("  %-9s %s", dir.name+":", abs)
	}

	// Previews can still be served from a read-only media directory
	if err := ensureDirectory(mediaDir); err != nil {
		logging.Warn("  Media directory issue: %v", err)
	} else {
		logMediaContents(mediaDir)
	}

	config := &Config{
		MediaDir:        mediaDir,
		CacheDir:        cacheDir,
		DatabaseDir:     databaseDir,
		Port:            port,
		MetricsPort:     metricsPort,
		RedisAddr:       redisAddr,
		RedisPassword:   values.String("REDIS_PASSWORD", ""),
		RedisDB:         values.Int("REDIS_DB", 0),
		StatsInterval:   statsInterval,
		LogHealthChecks: logHealthChecks,
		MetricsEnabled:  metricsEnabled,
		DatabasePath:    filepath.Join(databaseDir, "media-preview.db"),
		PreviewDir:      filepath.Join(cacheDir, "previews"),
		Values:          values,
	}

	if err := ensureWritable(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not usable (required for database): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	// Previews are rendered into a temporary directory when the cache is not writable
	if err := ensureWritable(config.PreviewDir); err != nil {
		logging.Warn("  Preview cache disabled: %v", err)
	} else {
		config.PreviewCacheEnabled = true
		logging.Debug("  [OK] Preview cache ready: %s", config.PreviewDir)
	}

	// Summary
	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Database:      ENABLED (required)")
	logging.Info("    Preview cache: %s", enabledString(config.PreviewCacheEnabled))
	logging.Info("    Metrics:       %s", enabledString(config.MetricsEnabled))

	return config, nil
}
