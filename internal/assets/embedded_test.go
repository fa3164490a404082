package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestEmbeddedLoader_BuiltinAssets(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	for _, name := range []string{LayoutDocument, LayoutCard, LayoutPreview} {
		t.Run("layout "+name, func(t *testing.T) {
			t.Parallel()

			got, err := loader.LoadLayout(name)
			if err != nil {
				t.Fatalf("LoadLayout(%q) error = %v", name, err)
			}
			for _, field := range []string{"{{.Style}}", "{{.Overlay}}", "{{.Width}}", "{{.Height}}"} {
				if !strings.Contains(got, field) {
					t.Errorf("layout %q missing %s", name, field)
				}
			}
		})
	}

	for _, name := range []string{LayoutDocument, LayoutCard} {
		t.Run("style "+name, func(t *testing.T) {
			t.Parallel()

			got, err := loader.LoadStyle(name)
			if err != nil {
				t.Fatalf("LoadStyle(%q) error = %v", name, err)
			}
			if !strings.Contains(got, ".watermark-layer") {
				t.Errorf("style %q has no watermark layer rule", name)
			}
			if !strings.Contains(got, "text-align: justify") {
				t.Errorf("style %q does not justify content", name)
			}
		})
	}
}

func TestEmbeddedLoader_CardLayoutHeaderFooter(t *testing.T) {
	t.Parallel()

	got, err := LoadLayout(LayoutCard)
	if err != nil {
		t.Fatalf("LoadLayout() error = %v", err)
	}
	if !strings.Contains(got, "{{.PageNumber}}") || !strings.Contains(got, "{{.TotalPages}}") {
		t.Error("card layout must show page number and total")
	}
}

func TestEmbeddedLoader_NotFound(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	if _, err := loader.LoadLayout("nonexistent"); !errors.Is(err, ErrLayoutNotFound) {
		t.Errorf("LoadLayout() error = %v, want ErrLayoutNotFound", err)
	}
	if _, err := LoadStyle("nonexistent"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle() error = %v, want ErrStyleNotFound", err)
	}
	if _, err := loader.LoadStyle("../styles"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadStyle() error = %v, want ErrInvalidAssetName", err)
	}
}
