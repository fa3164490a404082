package notepages

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestNewAssetLoader - Custom directories with embedded fallback
// ---------------------------------------------------------------------------

func TestNewAssetLoader_Embedded(t *testing.T) {
	t.Parallel()

	loader, err := NewAssetLoader("")
	if err != nil {
		t.Fatalf("NewAssetLoader() error = %v", err)
	}

	for _, name := range []string{LayoutDocument, LayoutCard, LayoutPreview} {
		html, err := loader.LoadLayout(name)
		if err != nil {
			t.Errorf("LoadLayout(%q) error = %v", name, err)
			continue
		}
		if !strings.Contains(html, "{{.Overlay}}") {
			t.Errorf("LoadLayout(%q) has no overlay slot", name)
		}
	}
}

func TestNewAssetLoader_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewAssetLoader("/nonexistent/notepages"); !errors.Is(err, ErrInvalidAssetPath) {
		t.Errorf("NewAssetLoader(missing) error = %v, want ErrInvalidAssetPath", err)
	}

	loader, err := NewAssetLoader("")
	if err != nil {
		t.Fatalf("NewAssetLoader() error = %v", err)
	}
	if _, err := loader.LoadLayout("poster"); !errors.Is(err, ErrLayoutNotFound) {
		t.Errorf("LoadLayout(unknown) error = %v, want ErrLayoutNotFound", err)
	}
	if _, err := loader.LoadStyle("poster"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(unknown) error = %v, want ErrStyleNotFound", err)
	}
	if _, err := loader.LoadLayout("../secret"); !errors.Is(err, ErrLayoutNotFound) {
		t.Errorf("LoadLayout(traversal) error = %v, want ErrLayoutNotFound", err)
	}
}

func TestWithAssetPath_OverridesStyle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "styles"), 0o750); err != nil {
		t.Fatal(err)
	}
	css := ".content { color: #123456; }"
	if err := os.WriteFile(filepath.Join(dir, "styles", "document.css"), []byte(css), 0o600); err != nil {
		t.Fatal(err)
	}

	proc := newTestProcessor(t, &mockRasterizer{}, WithAssetPath(dir))

	images := proc.RenderPages(t.Context(), []string{"text"}, nil)
	if !strings.Contains(string(images[0].Data), "#123456") {
		t.Error("custom style not applied")
	}
}

type stubAssetLoader struct{}

func (stubAssetLoader) LoadLayout(name string) (string, error) {
	return `<html><body data-layout="` + name + `">{{.Body}}{{.Overlay}}</body></html>`, nil
}

func (stubAssetLoader) LoadStyle(name string) (string, error) {
	return "", nil
}

func TestWithAssetLoader(t *testing.T) {
	t.Parallel()

	proc := newTestProcessor(t, &mockRasterizer{}, WithAssetLoader(stubAssetLoader{}), WithSurface(SurfaceCard))

	images := proc.RenderPages(t.Context(), []string{"text"}, nil)
	html := string(images[0].Data)
	if !strings.Contains(html, `data-layout="card"`) || !strings.Contains(html, "text") {
		t.Errorf("custom layout not used: %q", html[:min(len(html), 120)])
	}
}
