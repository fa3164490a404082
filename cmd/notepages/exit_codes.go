package main

import (
	"errors"
	"os"

	notepages "github.com/alnah/go-notepages"
	"github.com/alnah/go-notepages/internal/config"
	"github.com/alnah/go-notepages/internal/export"
	"github.com/alnah/go-notepages/internal/yamlutil"
)

// Exit codes for the notepages CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // All notes rendered
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, notepages.ErrBrowserConnect) ||
		errors.Is(err, notepages.ErrPageCreate) ||
		errors.Is(err, notepages.ErrPageLoad) ||
		errors.Is(err, notepages.ErrScreenshot) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadNote) ||
		errors.Is(err, ErrReadImage) ||
		errors.Is(err, ErrReadFont) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, yamlutil.ErrInputTooLarge) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrPresetNotFound) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, export.ErrUnknownFormat) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrEmptyNote) ||
		errors.Is(err, ErrNoWatermark) ||
		errors.Is(err, notepages.ErrInvalidDensity) ||
		errors.Is(err, notepages.ErrInvalidOpacity) ||
		errors.Is(err, notepages.ErrInvalidWatermarkColor) ||
		errors.Is(err, notepages.ErrInvalidFontSize) ||
		errors.Is(err, notepages.ErrInvalidSurface) ||
		errors.Is(err, notepages.ErrInvalidWatermarkMode) ||
		errors.Is(err, notepages.ErrInvalidBatchSize) ||
		errors.Is(err, notepages.ErrInvalidRetryPolicy) ||
		errors.Is(err, notepages.ErrInvalidAssetPath) ||
		errors.Is(err, notepages.ErrInvalidFont) ||
		errors.Is(err, notepages.ErrLayoutNotFound) ||
		errors.Is(err, notepages.ErrStyleNotFound) {
		return ExitUsage
	}

	return ExitGeneral
}
