// Package render turns page text into a fixed-size HTML surface ready for
// rasterization.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"

	"github.com/alnah/go-notepages/internal/assets"
)

// Size is a surface's logical dimensions in CSS pixels.
type Size struct {
	Width  int
	Height int
}

// Built-in surface sizes.
var (
	DocumentSize = Size{Width: 794, Height: 1123} // A4 at 96 dpi
	CardSize     = Size{Width: 390, Height: 520}
)

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Sentinel errors.
var (
	ErrLayout           = errors.New("render: cannot prepare layout")
	ErrExecute          = errors.New("render: cannot execute layout")
	ErrInvalidPageIndex = errors.New("render: page index out of range")
	ErrInvalidSize      = errors.New("render: surface size must be positive")
)

// Surface is one page laid out as a complete HTML document.
type Surface struct {
	HTML      string
	Size      Size
	PageIndex int
}

// layoutData is the value passed to page layouts.
type layoutData struct {
	Style      template.CSS
	Width      int
	Height     int
	Body       template.HTML
	Overlay    template.HTML
	PageNumber int
	TotalPages int
}

// Renderer lays pages out with one layout. A Renderer is safe for
// concurrent use once created.
type Renderer struct {
	size    Size
	page    *template.Template
	preview *template.Template
	style   template.CSS
}

// New parses the named layout, the preview layout and the layout's style
// from loader. A nil loader uses the embedded assets.
func New(loader assets.AssetLoader, layout string, size Size) (*Renderer, error) {
	if !size.Valid() {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, size.Width, size.Height)
	}
	if loader == nil {
		loader = assets.NewEmbeddedLoader()
	}

	page, err := parseLayout(loader, layout)
	if err != nil {
		return nil, err
	}
	preview, err := parseLayout(loader, assets.LayoutPreview)
	if err != nil {
		return nil, err
	}

	css, err := loader.LoadStyle(layout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLayout, err)
	}

	return &Renderer{
		size:    size,
		page:    page,
		preview: preview,
		style:   template.CSS(css), // #nosec G203 -- stylesheet comes from trusted assets
	}, nil
}

func parseLayout(loader assets.AssetLoader, name string) (*template.Template, error) {
	src, err := loader.LoadLayout(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLayout, err)
	}
	tmpl, err := template.New(name).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayout, name, err)
	}
	return tmpl, nil
}

// Size returns the surface size this renderer lays pages out on.
func (r *Renderer) Size() Size {
	return r.size
}

// RenderPage lays out one page. pageIndex is 0-based.
func (r *Renderer) RenderPage(pageText string, pageIndex, totalPages int) (Surface, error) {
	return r.RenderPageWithOverlay(pageText, pageIndex, totalPages, "")
}

// RenderPageWithOverlay lays out one page with a watermark layer placed above
// the content. overlay must already be safe HTML.
func (r *Renderer) RenderPageWithOverlay(pageText string, pageIndex, totalPages int, overlay template.HTML) (Surface, error) {
	if pageIndex < 0 || totalPages <= 0 || pageIndex >= totalPages {
		return Surface{}, fmt.Errorf("%w: %d of %d", ErrInvalidPageIndex, pageIndex, totalPages)
	}

	html, err := r.execute(r.page, layoutData{
		Body:       template.HTML(FormatText(pageText)), // #nosec G203 -- escaped by FormatText
		Overlay:    overlay,
		PageNumber: pageIndex + 1,
		TotalPages: totalPages,
	})
	if err != nil {
		return Surface{}, err
	}
	return Surface{HTML: html, Size: r.size, PageIndex: pageIndex}, nil
}

// RenderPreview lays out an empty surface carrying only the overlay, used to
// preview watermark settings.
func (r *Renderer) RenderPreview(overlay template.HTML) (Surface, error) {
	html, err := r.execute(r.preview, layoutData{Overlay: overlay})
	if err != nil {
		return Surface{}, err
	}
	return Surface{HTML: html, Size: r.size}, nil
}

func (r *Renderer) execute(tmpl *template.Template, data layoutData) (string, error) {
	data.Style = r.style
	data.Width = r.size.Width
	data.Height = r.size.Height

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExecute, err)
	}
	return buf.String(), nil
}
