// Package export writes rendered pages to disk as numbered PNG files, a
// ZIP archive or a single PDF.
package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/alnah/go-notepages/internal/fileutil"
)

// Format selects how pages are written.
type Format string

// Supported formats.
const (
	FormatPNG Format = "png"
	FormatZIP Format = "zip"
	FormatPDF Format = "pdf"
)

// ManifestName is the page list written next to PNG files and inside ZIP
// archives.
const ManifestName = "pages.txt"

// Sentinel errors.
var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrNoPages       = errors.New("no pages to export")
	ErrEmptyBaseName = errors.New("base name cannot be empty")
	ErrPDFBuild      = errors.New("failed to build PDF")
)

// Page is one rasterized page.
type Page struct {
	Data        []byte
	Placeholder bool
}

// ParseFormat converts a config or flag value to a Format. Empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPNG, nil
	case FormatPNG, FormatZIP, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (use png, zip or pdf)", ErrUnknownFormat, s)
	}
}

// PageName returns the file name of page i (0-based) out of total.
// Numbers are zero padded so names sort in page order.
func PageName(base string, i, total int) string {
	width := len(fmt.Sprint(total))
	if width < 2 {
		width = 2
	}
	return fmt.Sprintf("%s-%0*d.png", base, width, i+1)
}

// Write stores pages under dir using base as the file stem and returns the
// paths it created. The directory is created when missing.
func Write(dir, base string, format Format, pages []Page) ([]string, error) {
	if base == "" {
		return nil, ErrEmptyBaseName
	}
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	switch format {
	case FormatPNG, "":
		return writePNGs(dir, base, pages)
	case FormatZIP:
		path := filepath.Join(dir, base+".zip")
		return []string{path}, writeZIP(path, base, pages)
	case FormatPDF:
		path := filepath.Join(dir, base+".pdf")
		return []string{path}, writePDF(path, pages)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writePNGs(dir, base string, pages []Page) ([]string, error) {
	paths := make([]string, 0, len(pages)+1)
	for i, p := range pages {
		path := filepath.Join(dir, PageName(base, i, len(pages)))
		if err := fileutil.WriteFileAtomic(path, p.Data, 0o644); err != nil {
			return paths, fmt.Errorf("writing page %d: %w", i+1, err)
		}
		paths = append(paths, path)
	}

	manifest := filepath.Join(dir, base+"-"+ManifestName)
	if err := fileutil.WriteFileAtomic(manifest, Manifest(base, pages), 0o644); err != nil {
		return paths, fmt.Errorf("writing manifest: %w", err)
	}
	return append(paths, manifest), nil
}

// Manifest lists one page per line: file name, then "ok" or "placeholder".
func Manifest(base string, pages []Page) []byte {
	var b bytes.Buffer
	for i, p := range pages {
		status := "ok"
		if p.Placeholder {
			status = "placeholder"
		}
		fmt.Fprintf(&b, "%s\t%s\n", PageName(base, i, len(pages)), status)
	}
	return b.Bytes()
}

func writeZIP(path, base string, pages []Page) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := time.Now()

	add := func(name string, data []byte, method uint16) error {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method, Modified: modified})
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	for i, p := range pages {
		// PNG data is already compressed.
		if err := add(PageName(base, i, len(pages)), p.Data, zip.Store); err != nil {
			return fmt.Errorf("adding page %d: %w", i+1, err)
		}
	}
	if err := add(ManifestName, Manifest(base, pages), zip.Deflate); err != nil {
		return fmt.Errorf("adding manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing archive: %w", err)
	}

	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}

var disableConfigDir sync.Once

func writePDF(path string, pages []Page) error {
	disableConfigDir.Do(api.DisableConfigDir)

	tmpDir, err := os.MkdirTemp("", "notepages-pdf-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPDFBuild, err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	images := make([]string, 0, len(pages))
	for i, p := range pages {
		img, _, err := fileutil.WriteTempFile(tmpDir, p.Data, "png")
		if err != nil {
			return fmt.Errorf("%w: page %d: %v", ErrPDFBuild, i+1, err)
		}
		images = append(images, img)
	}

	// ImportImagesFile appends to an existing file, so build into a fresh path.
	out := filepath.Join(tmpDir, "pages.pdf")
	imp := pdfcpu.DefaultImportConfig()
	imp.Scale = 1
	if err := api.ImportImagesFile(images, out, imp, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("%w: %v", ErrPDFBuild, err)
	}

	data, err := os.ReadFile(out) // #nosec G304 -- path inside our temp dir
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPDFBuild, err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}
