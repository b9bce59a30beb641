package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"media-preview/internal/logging"
)

// DefaultRatio is the share of the container limit given to the Go heap.
const DefaultRatio = 0.75

// Result describes how the soft limit was set.
type Result struct {
	// Source is "GOMEMLIMIT", "memory_limit" or "none".
	Source         string
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// Configured reports whether a soft limit is in effect.
func (r Result) Configured() bool {
	return r.GoMemLimit > 0
}

// Configure applies ratio*containerLimit as the runtime soft memory limit.
// It does nothing when GOMEMLIMIT is set or containerLimit is not positive.
func Configure(containerLimit int64, ratio float64) Result {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		result := Result{Source: "GOMEMLIMIT"}
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", env)
		return result
	}

	if containerLimit <= 0 {
		logging.Debug("No memory limit configured, GOMEMLIMIT left unset")
		return Result{Source: "none"}
	}

	if ratio <= 0 || ratio > 1 {
		logging.Warn("Memory ratio %.2f out of range (0.0-1.0), using %.2f", ratio, DefaultRatio)
		ratio = DefaultRatio
	}

	limit := int64(float64(containerLimit) * ratio)
	debug.SetMemoryLimit(limit)

	logging.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s)", FormatBytes(limit), ratio*100, FormatBytes(containerLimit))
	return Result{
		Source:         "memory_limit",
		ContainerLimit: containerLimit,
		GoMemLimit:     limit,
		Ratio:          ratio,
	}
}

// FormatBytes renders b in binary units, e.g. "1.5 GiB".
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
