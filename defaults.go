package sluice

import "runtime"

const (
	// queueCapacityPerWorker sizes the intake queue when no explicit capacity
	// is configured: workers * queueCapacityPerWorker.
	queueCapacityPerWorker = 4

	// defaultResultsBuffer is the results channel buffer size.
	defaultResultsBuffer = 1024

	// defaultReorderWindow bounds the ordered collector's buffer when no
	// explicit window is configured.
	defaultReorderWindow = 1024
)

// defaultConfig centralizes default values for config.
// These defaults are the base that New applies options on top of.
func defaultConfig() config {
	return config{
		Workers:       0, // resolved to GOMAXPROCS at construction
		QueueCapacity: 0, // resolved to workers * queueCapacityPerWorker
		ResultsBuffer: defaultResultsBuffer,
		RetryAttempts: 1, // single attempt, no retries
		RateBurst:     1,
	}
}

// defaultWorkerCount is the resident worker count when none is configured.
func defaultWorkerCount() int {
	return runtime.GOMAXPROCS(0)
}
