package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	notepages "github.com/alnah/go-notepages"
)

// ErrUsage marks invalid command-line input.
var ErrUsage = errors.New("invalid usage")

// usageError wraps a flag parse error with ErrUsage. flag.ErrHelp is passed
// through so -h exits cleanly after the flag set printed its usage.
func usageError(cmd string, err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v (run 'notepages help %s')", ErrUsage, err, cmd)
}

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: notepages <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Split notes into pages and render each page to an image")
	fmt.Fprintln(w, "  preview    Write an HTML preview of the watermark on an empty page")
	fmt.Fprintln(w, "  stamp      Draw the watermark onto existing images")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'notepages help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show per-page details")
}

func printWatermarkUsage(w io.Writer) {
	fmt.Fprintln(w, "Watermark:")
	fmt.Fprintln(w, "      --preset <name>       Preset from the config (default: active preset)")
	fmt.Fprintln(w, "      --wm-mode <s>         overlay, stamp, none")
	fmt.Fprintln(w, "      --wm-text <s>         Watermark text")
	fmt.Fprintln(w, "      --wm-color <hex>      Text color, e.g. #ff4d6d")
	fmt.Fprintln(w, "      --wm-font <s>         CSS font family")
	fmt.Fprintln(w, "      --wm-image <src>      Image mark: path, URL or data URI")
	fmt.Fprintln(w, "      --wm-opacity <n>      Opacity in percent (0-100)")
	fmt.Fprintln(w, "      --wm-size <f>         Font size in pixels")
	fmt.Fprintln(w, "      --wm-rotation <f>     Rotation in degrees")
	fmt.Fprintln(w, "      --wm-density <n>      Tiles per row, 1 (sparse) to 5 (dense)")
	fmt.Fprintln(w, "      --no-watermark        Disable watermark")
}

func printSurfaceUsage(w io.Writer) {
	fmt.Fprintln(w, "Surface:")
	fmt.Fprintln(w, "  -s, --surface <s>         document (794x1123) or card (390x520)")
	fmt.Fprintln(w, "      --chars <n>           Characters per page (0 = surface default)")
	fmt.Fprintln(w, "      --pixel-ratio <f>     Device scale factor (default: 2)")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom layouts/ and styles/ directory")
	fmt.Fprintln(w, "      --font <path>         TTF/OTF for stamping and placeholders")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: notepages render <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Split notes into pages and render every page to a PNG.")
	fmt.Fprintln(w, "Write "+notepages.PageBreakMarker+" in a note to force a page break.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Note file (.yaml, .yml, .json, .txt, .md), directory, or - for stdin")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "  -f, --format <s>          png, zip, pdf")
	fmt.Fprintln(w, "  -n, --name <s>            Output base name when reading stdin")
	fmt.Fprintln(w, "  -w, --workers <n>         Notes processed in parallel (0 = auto)")
	printCommonUsage(w)
	fmt.Fprintln(w)
	printSurfaceUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Pipeline:")
	fmt.Fprintln(w, "  -b, --batch <n>           Pages rasterized at once (default: 2)")
	fmt.Fprintln(w, "      --attempts <n>        Attempts per page (default: 3)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per attempt timeout (e.g., 30s)")
	fmt.Fprintln(w, "      --placeholder-caption <s>")
	fmt.Fprintln(w, "                            Caption on placeholder images")
	fmt.Fprintln(w)
	printWatermarkUsage(w)
}

// printPreviewUsage prints usage for the preview command.
func printPreviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: notepages preview [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Write a standalone HTML page showing the watermark on an empty surface,")
	fmt.Fprintln(w, "tiled exactly as rendered pages are.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <file>       HTML file (default: stdout)")
	printCommonUsage(w)
	fmt.Fprintln(w)
	printSurfaceUsage(w)
	fmt.Fprintln(w)
	printWatermarkUsage(w)
}

// printStampUsage prints usage for the stamp command.
func printStampUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: notepages stamp <image>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Draw the watermark onto existing PNG or JPEG images.")
	fmt.Fprintln(w, "Results are written as <name>-stamped.png.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: next to input)")
	fmt.Fprintln(w, "      --font <path>         TTF/OTF for the watermark text")
	printCommonUsage(w)
	fmt.Fprintln(w)
	printWatermarkUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "preview":
		printPreviewUsage(env.Stdout)
	case "stamp":
		printStampUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: notepages version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: notepages help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
