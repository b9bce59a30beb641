// Package memory keeps preview rendering inside the process memory budget.
//
// Decoding a large image or document can allocate far more than the encoded
// file size, and several renders may run at once. When the service runs in a
// container it is OOM-killed if the Go heap and the memory held by libvips,
// ffmpeg and LibreOffice together exceed the cgroup limit.
//
// # Soft limit
//
// [Configure] sets the runtime soft limit (GOMEMLIMIT) from a container limit
// and a ratio, leaving the rest for native and child-process memory:
//
//	result := memory.Configure(values.Int64("memory_limit", 0), values.Float64("memory_ratio", memory.DefaultRatio))
//
// An explicit GOMEMLIMIT in the environment always wins.
//
// # Backpressure
//
// A [Monitor] samples the heap and flips into a paused state above the
// critical watermark. The preview generator asks [Monitor.Paused] before
// starting a render and refuses with a retryable error while paused. The
// monitor resumes below the high watermark so that it does not flap.
package memory
