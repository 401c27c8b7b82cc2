package settings

import "time"

// Timing defaults for the source folder watcher.
const (
	MinPollInterval     = 100 * time.Millisecond // Hard floor for file stat polling
	DefaultDebounce     = 500 * time.Millisecond // File change coalescence period
	DefaultPollInterval = time.Second            // Standard folder monitoring frequency
)
