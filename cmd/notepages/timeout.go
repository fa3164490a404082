package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/alnah/go-notepages/internal/config"
)

// ErrInvalidTimeout marks an unusable --timeout value.
var ErrInvalidTimeout = errors.New("invalid timeout")

// parseTimeout resolves the per attempt timeout: flag, then config.
// Zero means the library default.
func parseTimeout(flagValue string, cfg *config.Config) (time.Duration, error) {
	if flagValue == "" {
		return cfg.Pipeline.TimeoutDuration()
	}

	d, err := time.ParseDuration(flagValue)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, flagValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q (must be positive)", ErrInvalidTimeout, flagValue)
	}
	return d, nil
}
