package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	notepages "github.com/alnah/go-notepages"
	"github.com/alnah/go-notepages/internal/config"
	"github.com/alnah/go-notepages/internal/export"
	"github.com/alnah/go-notepages/internal/hints"
)

// Sentinel errors for the render command.
var (
	ErrWriteOutput        = errors.New("failed to write output")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrNotesFailed        = errors.New("some notes failed")
)

// Pool abstracts processor pool operations for testability.
type Pool interface {
	Acquire() (*notepages.Processor, error)
	Release(*notepages.Processor)
	Size() int
}

// Compile-time interface implementation check.
var _ Pool = (*notepages.ProcessorPool)(nil)

// NoteResult holds the outcome of a single note.
type NoteResult struct {
	InputPath    string
	Title        string
	Paths        []string
	Pages        int
	Placeholders int
	Err          error
	Duration     time.Duration
}

// renderParams is what every note in a batch shares.
type renderParams struct {
	format export.Format
	env    *Environment
	logger *slog.Logger
}

// runRender implements the render command.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	logger := newLogger(env.Stderr, flags.common)

	cfg, err := resolveConfig(env, flags.common.config)
	if err != nil {
		return err
	}

	formatName := flags.format
	if formatName == "" {
		formatName = cfg.Output.Format
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	spec, err := buildWatermarkSpec(cfg, flags.watermark)
	if err != nil {
		return err
	}
	surfaceOpts, err := surfaceOptions(cfg, flags.surface)
	if err != nil {
		return err
	}
	pipelineOpts, err := pipelineOptions(cfg, flags.pipeline)
	if err != nil {
		return err
	}
	watermarkOpts, err := watermarkOptions(cfg, flags.watermark)
	if err != nil {
		return err
	}
	if spec == nil {
		watermarkOpts = append(watermarkOpts, notepages.WithWatermarkMode(notepages.WatermarkNone))
	} else {
		watermarkOpts = append(watermarkOpts, notepages.WithWatermarkSource(notepages.StaticWatermarkSource{Spec: spec}))
	}
	opts := processorOptions(env, logger, surfaceOpts, pipelineOpts, watermarkOpts)
	if stampsText(cfg, flags.watermark) {
		fontFile := flags.surface.fontFile
		if fontFile == "" {
			fontFile = cfg.Watermark.FontFile
		}
		warnMissingFont(logger, fontFile, spec)
	}

	if len(positional) == 0 {
		return fmt.Errorf("%w (run 'notepages help render')", ErrNoInput)
	}
	outputDir := flags.output
	if outputDir == "" {
		outputDir = cfg.Output.Dir
	}
	jobs, err := discoverNotes(positional[0], outputDir, flags.name)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("%w: no notes found in %s", ErrNoInput, positional[0])
	}

	workers := flags.workers
	if workers == 0 {
		workers = cfg.Pipeline.Workers
	}
	if err := validateWorkers(workers); err != nil {
		return err
	}

	pool := notepages.NewProcessorPool(notepages.ResolvePoolSize(workers), opts...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing processors", "error", err)
		}
	}()
	logger.Debug("rendering notes", "notes", len(jobs), "workers", pool.Size(), "format", format)

	params := &renderParams{format: format, env: env, logger: logger}
	results := renderBatch(ctx, pool, jobs, params)
	return summarize(results, flags.common, env)
}

// stampsText reports whether the watermark will be drawn by the pixel
// stamper rather than the browser.
func stampsText(cfg *config.Config, f watermarkFlags) bool {
	mode := f.mode
	if mode == "" {
		mode = cfg.Watermark.Mode
	}
	return strings.EqualFold(mode, "stamp")
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > notepages.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, notepages.MaxPoolSize)
	}
	return nil
}

// renderBatch processes notes concurrently, one processor per worker.
func renderBatch(ctx context.Context, pool Pool, jobs []NoteJob, params *renderParams) []NoteResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(jobs))
	results := make([]NoteResult, len(jobs))
	queue := make(chan int, len(jobs))
	for i := range jobs {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			proc, err := pool.Acquire()
			if err != nil {
				for idx := range queue {
					results[idx] = NoteResult{InputPath: jobs[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(proc)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = NoteResult{InputPath: jobs[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = renderNote(ctx, proc, jobs[idx], params)
			}
		}()
	}

	wg.Wait()
	return results
}

// renderNote turns one note into page images and writes them out.
// A note whose every page is a placeholder because the browser is
// unavailable fails instead of writing placeholder-only output.
func renderNote(ctx context.Context, proc *notepages.Processor, job NoteJob, params *renderParams) NoteResult {
	start := time.Now()
	result := NoteResult{InputPath: job.InputPath}
	done := func(err error) NoteResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	note, err := readNote(job.InputPath, params.env.Stdin)
	if err != nil {
		return done(err)
	}
	result.Title = note.Title

	res, err := proc.ProcessContent(ctx, note.Content, nil)
	if err != nil {
		return done(err)
	}
	result.Pages = len(res.Pages)
	result.Placeholders = res.Placeholders()

	if result.Pages > 0 && result.Placeholders == result.Pages {
		if cause := res.Images[0].Err; isBrowserFailure(cause) {
			return done(fmt.Errorf("%w%s", cause, hints.ForBrowserConnect()))
		}
	}
	if result.Placeholders > 0 {
		for _, img := range res.Images {
			if img.Placeholder {
				params.logger.Warn("page replaced by placeholder",
					"note", job.InputPath, "page", img.Index+1, "error", img.Err)
			}
		}
		if errors.Is(res.Images[firstPlaceholder(res.Images)].Err, context.DeadlineExceeded) {
			params.logger.Info("rasterization timed out" + hints.ForTimeout())
		}
	}

	pages := make([]export.Page, len(res.Images))
	for i, img := range res.Images {
		pages[i] = export.Page{Data: img.Data, Placeholder: img.Placeholder}
	}
	paths, err := export.Write(job.OutputDir, job.BaseName, params.format, pages)
	if err != nil {
		return done(fmt.Errorf("%w: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory()))
	}
	result.Paths = paths
	return done(nil)
}

func isBrowserFailure(err error) bool {
	return errors.Is(err, notepages.ErrBrowserConnect) || errors.Is(err, notepages.ErrPageCreate)
}

func firstPlaceholder(images []notepages.RenderedImage) int {
	for i, img := range images {
		if img.Placeholder {
			return i
		}
	}
	return 0
}

// summarize prints per-note results and returns an error when any note
// failed. The first failure is wrapped so the exit code reflects its kind.
// A single failed note is reported by the caller only.
func summarize(results []NoteResult, common commonFlags, env *Environment) error {
	var failed int
	var first error

	for _, r := range results {
		if r.Err != nil {
			failed++
			if first == nil {
				first = r.Err
			}
			if len(results) > 1 {
				fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			}
			continue
		}
		if common.quiet {
			continue
		}

		out := r.InputPath
		if len(r.Paths) > 0 {
			out = r.Paths[0]
		}
		if common.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d pages, %d placeholders, %v)\n",
				r.InputPath, out, r.Pages, r.Placeholders, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s (%d pages)\n", out, r.Pages)
		}
	}

	if !common.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}

	if failed == 0 {
		return nil
	}
	if len(results) == 1 {
		return first
	}
	return fmt.Errorf("%w: %d of %d: %w", ErrNotesFailed, failed, len(results), first)
}
