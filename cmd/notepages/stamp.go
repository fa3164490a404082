package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	notepages "github.com/alnah/go-notepages"
	"github.com/alnah/go-notepages/internal/fileutil"
	"github.com/alnah/go-notepages/internal/hints"
)

// ErrReadImage indicates an input image could not be read.
var ErrReadImage = errors.New("failed to read image")

// stampedSuffix is appended to the stem of stamped images.
const stampedSuffix = "-stamped"

// runStamp implements the stamp command: the watermark is drawn onto each
// given image with the same grid rendered pages use.
func runStamp(ctx context.Context, args []string, env *Environment) error {
	flags, images, err := parseStampFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return fmt.Errorf("%w (run 'notepages help stamp')", ErrNoInput)
	}
	for _, path := range images {
		if !fileutil.IsImage(path) {
			return fmt.Errorf("%w: %s (use .png, .jpg or .jpeg)", ErrInvalidExtension, path)
		}
	}
	logger := newLogger(env.Stderr, flags.common)

	cfg, err := resolveConfig(env, flags.common.config)
	if err != nil {
		return err
	}
	spec, err := buildWatermarkSpec(cfg, flags.watermark)
	if err != nil {
		return err
	}
	if spec == nil {
		return fmt.Errorf("%w: enable watermark in the config or pass --wm-text", ErrNoWatermark)
	}

	fontFile := flags.fontFile
	if fontFile == "" {
		fontFile = cfg.Watermark.FontFile
	}
	warnMissingFont(logger, fontFile, spec)

	watermarkOpts, err := watermarkOptions(cfg, flags.watermark)
	if err != nil {
		return err
	}
	fontOpts, err := surfaceOptions(cfg, surfaceFlags{fontFile: flags.fontFile})
	if err != nil {
		return err
	}
	proc, err := notepages.NewProcessor(processorOptions(env, logger, fontOpts, watermarkOpts)...)
	if err != nil {
		return err
	}
	defer func() { _ = proc.Close() }()

	for _, path := range images {
		out, err := stampFile(ctx, proc, path, flags.output, spec)
		if err != nil {
			return err
		}
		if !flags.common.quiet {
			fmt.Fprintf(env.Stdout, "Created %s\n", out)
		}
	}
	return nil
}

func stampFile(ctx context.Context, proc *notepages.Processor, path, outputDir string, spec *notepages.WatermarkSpec) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided image
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadImage, err)
	}

	stamped, err := proc.StampImage(ctx, data, spec)
	if err != nil {
		if spec.ImageSource != "" {
			return "", fmt.Errorf("%s: %w%s", path, err, hints.ForWatermarkImage())
		}
		return "", fmt.Errorf("%s: %w", path, err)
	}

	if outputDir == "" {
		outputDir = filepath.Dir(path)
	}
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return "", fmt.Errorf("%w: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory())
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(outputDir, base+stampedSuffix+".png")
	if err := fileutil.WriteFileAtomic(out, stamped, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return out, nil
}
