package startup

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"media-preview/internal/logging"

	"github.com/gorilla/mux"
)

const rule = "------------------------------------------------------------"

func section(title string) {
	logging.Info("")
	logging.Info(rule)
	logging.Info("%s", title)
	logging.Info(rule)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func printBanner() {
	fmt.Println(rule + `
    __  ___         ___          ____                  _
   /  |/  /__  ____/ (_)___ _   / __ \________  _   __(_)__ _      __
  / /|_/ / _ \/ __  / / __ '/  / /_/ / ___/ _ \| | / / / _ \ | /| / /
 / /  / /  __/ /_/ / / /_/ /  / ____/ /  /  __/| |/ / /  __/ |/ |/ /
/_/  /_/\___/\__,_/_/\__,_/  /_/   /_/   \___/ |___/_/\___/|__/|__/
` + rule)
	logging.Info("  Version:    %s (%s, built %s)", Version, Commit, BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
}

func logSystemInfo() {
	section("SYSTEM INFORMATION")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs:            %d (GOMAXPROCS %d)", runtime.NumCPU(), runtime.GOMAXPROCS(0))
	if limit := debug.SetMemoryLimit(-1); limit < 1<<62 {
		logging.Info("  GOMEMLIMIT:      %d MiB", limit>>20)
	}
	if hostname, err := os.Hostname(); err == nil {
		logging.Debug("  Hostname:        %s", hostname)
	}
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	section("DATABASE INITIALIZATION")
	logging.Info("  [OK] Database initialized in %v", duration)
}

// LogPreviewInit logs which built-in providers were registered or skipped
func LogPreviewInit(registered []string, skipped map[string]string, semaphoreBackend string) {
	section("PREVIEW PROVIDERS")
	logging.Info("  Concurrency backend: %s", semaphoreBackend)
	logging.Info("  Registered (%d):", len(registered))
	for _, id := range registered {
		logging.Info("    [OK] %s", id)
	}

	if len(skipped) == 0 {
		return
	}

	ids := make([]string, 0, len(skipped))
	for id := range skipped {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	logging.Debug("  Skipped (%d):", len(skipped))
	for _, id := range ids {
		logging.Debug("    %s: %s", id, skipped[id])
	}
}

// GetRoutes lists the method, path template and name of every route on
// router. Routes without a method restriction are reported with method "*".
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return err
		}
		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		for _, method := range methods {
			routes = append(routes, RouteInfo{Method: method, Path: path, Name: route.GetName()})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs the registered routes, grouped by path prefix, at debug
// level.
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	section("HTTP SERVER SETUP")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			group := getRouteGroup(route.Path)
			if group == "" {
				group = "root"
			}
			groups[group] = append(groups[group], route)
		}
		names := make([]string, 0, len(groups))
		for name := range groups {
			names = append(names, name)
		}
		sort.Strings(names)

		logging.Debug("  Registered routes (%d total):", len(routes))
		for _, name := range names {
			logging.Debug("  [%s]", name)
			for _, route := range groups[name] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
		}
	}

	if logHealthChecks {
		logging.Info("  Health check logging: ON")
	} else {
		logging.Info("  Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup returns the first path segment, or the first two below /api.
func getRouteGroup(path string) string {
	first, rest, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if first == "api" && rest != "" {
		sub, _, _ := strings.Cut(rest, "/")
		return "api/" + sub
	}
	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs the listening addresses.
func LogServerStarted(config ServerConfig) {
	section("SERVER STARTED")
	logging.Info("  Startup time:  %v", config.StartupDuration)
	logging.Info("  Preview API:   http://0.0.0.0:%s/api/preview/{path}", config.Port)
	logging.Info("  Providers:     http://0.0.0.0:%s/api/providers", config.Port)
	if config.MetricsEnabled {
		logging.Info("  Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("  Metrics:       DISABLED")
	}
	logging.Info(rule)
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	section(fmt.Sprintf("SHUTDOWN INITIATED (received %s)", signal))
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}
