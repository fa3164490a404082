// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-notepages/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	// Detect CI environment
	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	// Suggest ROD_NO_SANDBOX for container/CI environments
	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	// Suggest ROD_BROWSER_BIN if not set
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the per-page timeout.
func ForTimeout() string {
	return format("for slow machines or heavy fonts, raise --timeout or lower --batch")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-notepages/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/go-notepages/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForPresetNotFound lists the presets the config defines.
func ForPresetNotFound(available []string) string {
	if len(available) == 0 {
		return format("add a presets section to the config")
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForLayoutNotFound returns hints for missing layouts or styles under a
// custom asset directory.
func ForLayoutNotFound(basePath string) string {
	if basePath == "" {
		return ""
	}
	return format("expected layouts/*.html and styles/*.css under " + basePath)
}

// ForMissingGlyphs suggests a font covering the watermark or caption text.
func ForMissingGlyphs() string {
	return format("set watermark.fontFile (or --font) to a TTF/OTF with CJK glyphs, e.g. Noto Sans SC")
}

// ForWatermarkImage returns hints for watermark image load errors.
func ForWatermarkImage() string {
	return format("supported formats: PNG, JPEG; use a file path, data URI or URL (set fetch.referer if the host requires it)")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
