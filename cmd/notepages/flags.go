package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// Sentinels mark watermark flags left at their defaults, since zero is a
// valid opacity and rotation.
const (
	unsetOpacity  = -1
	unsetRotation = -999.0
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// surfaceFlags select the canvas and the assets it is drawn with.
type surfaceFlags struct {
	surface      string
	charsPerPage int
	pixelRatio   float64
	assetPath    string
	fontFile     string
}

// pipelineFlags tune rasterization.
type pipelineFlags struct {
	batch    int
	attempts int
	timeout  string
	caption  string
}

// watermarkFlags override the active preset.
type watermarkFlags struct {
	mode     string
	preset   string
	text     string
	color    string
	family   string
	image    string
	opacity  int
	size     float64
	rotation float64
	density  int
	disabled bool
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common    commonFlags
	output    string
	format    string
	name      string
	workers   int
	surface   surfaceFlags
	pipeline  pipelineFlags
	watermark watermarkFlags
}

// previewFlags holds all flags for the preview command.
type previewFlags struct {
	common    commonFlags
	output    string
	surface   surfaceFlags
	watermark watermarkFlags
}

// stampFlags holds all flags for the stamp command.
type stampFlags struct {
	common    commonFlags
	output    string
	fontFile  string
	watermark watermarkFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-page details")
}

// addSurfaceFlags adds surface flags to a FlagSet.
func addSurfaceFlags(fs *flag.FlagSet, f *surfaceFlags) {
	fs.StringVarP(&f.surface, "surface", "s", "", "page surface: document, card")
	fs.IntVar(&f.charsPerPage, "chars", 0, "characters per page (0 = surface default)")
	fs.Float64Var(&f.pixelRatio, "pixel-ratio", 0, "device scale factor (default: 2)")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.StringVar(&f.fontFile, "font", "", "TTF/OTF font for stamping and placeholders")
}

// addPipelineFlags adds rasterization flags to a FlagSet.
func addPipelineFlags(fs *flag.FlagSet, f *pipelineFlags) {
	fs.IntVarP(&f.batch, "batch", "b", 0, "pages rasterized at once (default: 2)")
	fs.IntVar(&f.attempts, "attempts", 0, "attempts per page (default: 3)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per attempt timeout (e.g., 30s, 1m)")
	fs.StringVar(&f.caption, "placeholder-caption", "", "caption on placeholder images")
}

// addWatermarkFlags adds watermark flags to a FlagSet.
func addWatermarkFlags(fs *flag.FlagSet, f *watermarkFlags) {
	fs.StringVar(&f.mode, "wm-mode", "", "watermark mode: overlay, stamp, none")
	fs.StringVar(&f.preset, "preset", "", "watermark preset name")
	fs.StringVar(&f.text, "wm-text", "", "watermark text")
	fs.StringVar(&f.color, "wm-color", "", "watermark color (hex)")
	fs.StringVar(&f.family, "wm-font", "", "watermark CSS font family")
	fs.StringVar(&f.image, "wm-image", "", "watermark image path, URL or data URI")
	fs.IntVar(&f.opacity, "wm-opacity", unsetOpacity, "watermark opacity in percent (0-100)")
	fs.Float64Var(&f.size, "wm-size", 0, "watermark font size in pixels")
	fs.Float64Var(&f.rotation, "wm-rotation", unsetRotation, "watermark rotation in degrees")
	fs.IntVar(&f.density, "wm-density", 0, "watermark density (1-5)")
	fs.BoolVar(&f.disabled, "no-watermark", false, "disable watermark")
}

func newFlagSet(name string, usage func(io.Writer), stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newFlagSet("render", printRenderUsage, stderr)

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVarP(&f.format, "format", "f", "", "output format: png, zip, pdf")
	fs.StringVarP(&f.name, "name", "n", "", "output base name when reading stdin")
	fs.IntVarP(&f.workers, "workers", "w", 0, "notes processed in parallel (0 = auto)")

	addCommonFlags(fs, &f.common)
	addSurfaceFlags(fs, &f.surface)
	addPipelineFlags(fs, &f.pipeline)
	addWatermarkFlags(fs, &f.watermark)

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError("render", err)
	}
	return f, fs.Args(), nil
}

// parsePreviewFlags parses preview command flags.
func parsePreviewFlags(args []string, stderr io.Writer) (*previewFlags, []string, error) {
	f := &previewFlags{}
	fs := newFlagSet("preview", printPreviewUsage, stderr)

	fs.StringVarP(&f.output, "output", "o", "", "output HTML file (default: stdout)")

	addCommonFlags(fs, &f.common)
	addSurfaceFlags(fs, &f.surface)
	addWatermarkFlags(fs, &f.watermark)

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError("preview", err)
	}
	return f, fs.Args(), nil
}

// parseStampFlags parses stamp command flags and returns the image paths.
func parseStampFlags(args []string, stderr io.Writer) (*stampFlags, []string, error) {
	f := &stampFlags{}
	fs := newFlagSet("stamp", printStampUsage, stderr)

	fs.StringVarP(&f.output, "output", "o", "", "output directory (default: next to input)")
	fs.StringVar(&f.fontFile, "font", "", "TTF/OTF font for the watermark text")

	addCommonFlags(fs, &f.common)
	addWatermarkFlags(fs, &f.watermark)

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError("stamp", err)
	}
	return f, fs.Args(), nil
}
