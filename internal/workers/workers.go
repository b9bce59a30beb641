package workers

import (
	"os"
	"runtime"
	"strconv"
)

// OverrideEnv names the environment variable that replaces the computed count.
const OverrideEnv = "PREVIEW_WORKERS"

// Count returns the number of concurrent preview generations for a given
// workload. It respects container CPU limits via GOMAXPROCS.
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound work such as decoding large rasters
//   - 2.0 for work that mostly waits on converter processes
//
// The limit parameter caps the count. Use 0 for no limit.
//
// Can be overridden with the PREVIEW_WORKERS environment variable.
func Count(multiplier float64, limit int) int {
	// Check for manual override first
	if override := os.Getenv(OverrideEnv); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	// GOMAXPROCS is automatically set to container CPU limit in Go 1.19+
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns the count for CPU-bound work (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns the count for work bound by external processes (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}
