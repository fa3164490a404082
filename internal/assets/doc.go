// Package assets provides the HTML layouts and CSS styles used to build page
// surfaces. Assets can be loaded from embedded files or a custom directory.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in layouts)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the renderer. It tries the custom
// FilesystemLoader first and falls back to EmbeddedLoader when the asset is
// not found, so a directory can override a single layout or style.
//
// # Directory Structure
//
//	{basePath}/
//	├── layouts/
//	│   └── {name}.html          # html/template page layout (document, card, preview)
//	└── styles/
//	    └── {name}.css           # stylesheet injected into the layout
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
