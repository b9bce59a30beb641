package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-preview/internal/database"
	"media-preview/internal/filesystem"
	"media-preview/internal/handlers"
	"media-preview/internal/logging"
	"media-preview/internal/media"
	"media-preview/internal/memory"
	"media-preview/internal/metrics"
	"media-preview/internal/middleware"
	"media-preview/internal/plugins"
	"media-preview/internal/preview"
	"media-preview/internal/providers"
	"media-preview/internal/semaphore"
	"media-preview/internal/startup"
	"media-preview/internal/warmup"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

func main() {
	startTime := time.Now()
	ctx := context.Background()

	config, err := startup.LoadConfig(startup.LoaderOptions{
		ConfigFile: os.Getenv("CONFIG_FILE"),
		EnvFile:    os.Getenv("ENV_FILE"),
	})
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	values := config.Values

	memResult := memory.Configure(values.Int64("MEMORY_LIMIT", 0), values.Float64("MEMORY_RATIO", memory.DefaultRatio))
	memMonitor := memory.NewMonitor(memResult.GoMemLimit, memory.DefaultWatermarks(), 5*time.Second)
	memMonitor.Start()

	filesystem.SetVolumes(map[string]string{
		"media":    config.MediaDir,
		"cache":    config.CacheDir,
		"database": config.DatabaseDir,
	})

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)

	if err := media.InitVips(); err != nil {
		logging.Warn("libvips unavailable, vector and document previews disabled: %v", err)
	}
	defer media.ShutdownVips()

	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))
	seedMediaMount(ctx, db, config.MediaDir)

	// Plugins
	host := plugins.NewHost(nil)
	var extensions []plugins.Plugin
	if values.Bool("preview_sidecar_plugin", false) {
		extensions = append(extensions, plugins.NewSidecar(values.String("preview_sidecar_pattern", "")))
	}

	// Previews
	core := preview.NewCoreBootstrapper(values, media.NewProbe(), providers.Catalogue())
	manager := preview.NewManager(values, core, preview.NewExternalLoader(host, host.Services()))

	limiter, backend, redisClient := newLimiter(ctx, config)
	if redisClient != nil {
		defer redisClient.Close()
	}

	cacheDir := config.PreviewDir
	if !config.PreviewCacheEnabled {
		cacheDir, err = os.MkdirTemp("", "media-preview-")
		if err != nil {
			startup.LogFatal("Failed to create temporary preview directory: %v", err)
		}
		defer os.RemoveAll(cacheDir)
	}
	generator := media.NewGenerator(cacheDir, manager, values, limiter)
	generator.SetPressure(memMonitor)
	manager.SetDelegate(generator)

	if err := host.Boot(extensions...); err != nil {
		logging.Warn("Some plugins failed to register: %v", err)
	}

	report := manager.Bootstrap()
	startup.LogPreviewInit(report.Registered, report.Skipped, backend)

	collector := metrics.NewCollector(&statsProvider{
		manager:   manager,
		generator: generator,
		db:        db,
	}, config.StatsInterval)
	collector.Start()

	warmCfg := warmup.DefaultConfig()
	warmCfg.Workers = values.Int("preview_warmup_workers", warmCfg.Workers)
	warmer := warmup.New(manager, warmCfg)

	// HTTP
	h := handlers.New(manager, db, config.MediaDir)
	h.SetWarmer(warmer)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	router := mux.NewRouter()
	router.Use(middleware.Logger(loggingConfig), middleware.Metrics(middleware.DefaultMetricsConfig()))
	h.Register(router)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Previews of large documents can take a while to render.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsRouter := http.NewServeMux()
		metricsRouter.Handle("/metrics", h.MetricsHandler())
		metricsSrv = &http.Server{
			Addr:              ":" + config.MetricsPort,
			Handler:           metricsRouter,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	done := make(chan struct{})
	go handleShutdown(srv, metricsSrv, collector, warmer, memMonitor, done)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-done
}

// newLimiter shares generation slots through Redis when REDIS_ADDR is set and
// keeps them in memory otherwise.
func newLimiter(ctx context.Context, config *startup.Config) (semaphore.Limiter, string, redis.UniversalClient) {
	if config.RedisAddr == "" {
		return semaphore.NewLocal(), "local", nil
	}

	client, err := semaphore.NewRedisClient(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB)
	if err != nil {
		logging.Warn("Redis at %s unreachable, falling back to in-process limits: %v", config.RedisAddr, err)
		return semaphore.NewLocal(), "local (redis unavailable)", nil
	}
	return semaphore.NewRedis(client, semaphore.DefaultRedisConfig()), "redis " + config.RedisAddr, client
}

// seedMediaMount registers the media directory as a mount on first start so
// that previews can be toggled for it.
func seedMediaMount(ctx context.Context, db *database.Database, mediaDir string) {
	mounts, err := db.ListMounts(ctx)
	if err != nil {
		logging.Warn("Failed to list mounts: %v", err)
		return
	}
	if len(mounts) > 0 {
		return
	}
	if err := db.UpsertMount(ctx, "media", mediaDir, true); err != nil {
		logging.Warn("Failed to register media directory as mount: %v", err)
		return
	}
	logging.Info("Registered %s as mount \"media\"", mediaDir)
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, warmer *warmup.Warmer, memMonitor *memory.Monitor, done chan<- struct{}) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Stopping preview warmup")
	warmer.Stop()
	startup.LogShutdownStepComplete("Preview warmup stopped")

	memMonitor.Stop()

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
