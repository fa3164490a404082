package notepages

import (
	"errors"
	"fmt"

	"github.com/alnah/go-notepages/internal/assets"
)

// Layout and style names shipped with the library.
const (
	LayoutDocument = assets.LayoutDocument
	LayoutCard     = assets.LayoutCard
	LayoutPreview  = assets.LayoutPreview
)

// AssetLoader loads page layouts and their styles by name.
// Implementations may read from disk, embedded files or a remote store.
//
// NewAssetLoader covers the filesystem case with fallback to the embedded
// defaults.
type AssetLoader interface {
	// LoadLayout returns the HTML template for a surface layout.
	// Returns ErrLayoutNotFound if the layout doesn't exist.
	LoadLayout(name string) (string, error)

	// LoadStyle returns the stylesheet paired with a layout.
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)
}

// NewAssetLoader creates an AssetLoader rooted at basePath, which may hold
// layouts/{name}.html and styles/{name}.css. Missing files fall back to the
// embedded assets. An empty basePath uses only the embedded assets.
//
// Returns ErrInvalidAssetPath if basePath is set but is not a readable
// directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &assetLoaderAdapter{resolver: resolver}, nil
}

// assetLoaderAdapter maps internal asset errors to public ones.
type assetLoaderAdapter struct {
	resolver *assets.AssetResolver
}

func (a *assetLoaderAdapter) LoadLayout(name string) (string, error) {
	content, err := a.resolver.LoadLayout(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

func (a *assetLoaderAdapter) LoadStyle(name string) (string, error) {
	content, err := a.resolver.LoadStyle(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

// convertAssetError maps internal asset errors to public errors.
func convertAssetError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, assets.ErrLayoutNotFound):
		return fmt.Errorf("%w: %v", ErrLayoutNotFound, err)
	case errors.Is(err, assets.ErrStyleNotFound):
		return fmt.Errorf("%w: %v", ErrStyleNotFound, err)
	case errors.Is(err, assets.ErrInvalidBasePath), errors.Is(err, assets.ErrPathTraversal):
		return fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	case errors.Is(err, assets.ErrInvalidAssetName):
		// An unusable name cannot exist on disk
		return fmt.Errorf("%w: %v", ErrLayoutNotFound, err)
	default:
		return err
	}
}

// internalAssetLoader adapts a public AssetLoader to the renderer.
type internalAssetLoader struct {
	pub AssetLoader
}

func (a internalAssetLoader) LoadLayout(name string) (string, error) {
	return a.pub.LoadLayout(name)
}

func (a internalAssetLoader) LoadStyle(name string) (string, error) {
	return a.pub.LoadStyle(name)
}
