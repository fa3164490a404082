package assets

import (
	"embed"
	"fmt"
)

//go:embed layouts/*.html
var layouts embed.FS

//go:embed styles/*.css
var styles embed.FS

// EmbeddedLoader loads assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadLayout loads an embedded layout by name.
func (e *EmbeddedLoader) LoadLayout(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := layouts.ReadFile("layouts/" + name + ".html")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrLayoutNotFound, name)
	}
	return string(content), nil
}

// LoadStyle loads an embedded style by name.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return string(content), nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
