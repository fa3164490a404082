package assets

// AssetLoader loads page layouts and styles by name.
type AssetLoader interface {
	// LoadLayout loads an HTML layout by name (without .html extension).
	// Returns ErrLayoutNotFound if the layout doesn't exist.
	LoadLayout(name string) (string, error)

	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)
}

// Built-in asset names. Each surface uses the layout and the style of the
// same name; the preview layout reuses the document style.
const (
	LayoutDocument = "document"
	LayoutCard     = "card"
	LayoutPreview  = "preview"
)

// defaultLoader serves the package-level helpers.
var defaultLoader = NewEmbeddedLoader()

// LoadLayout loads a built-in layout.
func LoadLayout(name string) (string, error) {
	return defaultLoader.LoadLayout(name)
}

// LoadStyle loads a built-in style.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}
