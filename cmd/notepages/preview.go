package main

import (
	"context"
	"fmt"
	"io"

	notepages "github.com/alnah/go-notepages"
	"github.com/alnah/go-notepages/internal/fileutil"
	"github.com/alnah/go-notepages/internal/hints"
)

// runPreview implements the preview command. The preview is plain HTML, so
// no browser is started.
func runPreview(_ context.Context, args []string, env *Environment) error {
	flags, _, err := parsePreviewFlags(args, env.Stderr)
	if err != nil {
		return err
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

	surfaceOpts, err := surfaceOptions(cfg, flags.surface)
	if err != nil {
		return err
	}
	proc, err := notepages.NewProcessor(processorOptions(env, logger, surfaceOpts)...)
	if err != nil {
		return withAssetHint(err, flags.surface.assetPath)
	}
	defer func() { _ = proc.Close() }()

	html, err := proc.Preview(spec)
	if err != nil {
		return withAssetHint(err, flags.surface.assetPath)
	}

	if flags.output == "" || flags.output == "-" {
		_, err := io.WriteString(env.Stdout, html)
		return err
	}
	if err := fileutil.WriteFileAtomic(flags.output, []byte(html), 0o644); err != nil {
		return fmt.Errorf("%w: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory())
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", flags.output)
	}
	return nil
}

// withAssetHint appends the asset layout hint to missing layout errors.
func withAssetHint(err error, assetPath string) error {
	if isAssetError(err) {
		return fmt.Errorf("%w%s", err, hints.ForLayoutNotFound(assetPath))
	}
	return err
}
