package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, result := range []string{"hit", "miss"} {
		PreviewMimeSupportLookups.WithLabelValues(result)
	}

	// --- Gate slots per concurrency kind ---
	for _, kind := range []string{"all", "new"} {
		PreviewGateSlotsInUse.WithLabelValues(kind)
		PreviewGateWaitDuration.WithLabelValues(kind)
		for _, reason := range []string{"no_limit", "canceled", "limiter_error"} {
			PreviewGateRejections.WithLabelValues(kind, reason)
		}
	}

	for _, result := range []string{"generated", "skipped", "failed"} {
		PreviewWarmupFiles.WithLabelValues(result)
	}

	for _, state := range []string{"enabled", "disabled"} {
		MountsTotal.WithLabelValues(state)
	}

	// --- DB query operations ---
	for _, op := range []string{"initialize_schema", "upsert_mount", "list_mounts",
		"mount_for_path", "set_previews_enabled"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
