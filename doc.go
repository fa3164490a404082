// Package notepages splits note content into fixed-size pages and renders
// every page as a watermarked image using headless Chrome.
//
// # Quick Start
//
// Create a processor, process the text, and close when done:
//
//	proc, err := notepages.NewProcessor()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer proc.Close()
//
//	result, err := proc.ProcessContent(ctx, text, notepages.DefaultWatermarkSpec())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, img := range result.Images {
//	    fmt.Println(img.Index, len(img.Data), img.Placeholder)
//	}
//
// result.Pages and result.Images are index-aligned and always have the same
// length. A page that cannot be rasterized gets a placeholder image instead
// of failing the run.
//
// # Pipeline
//
//  1. Pagination: manual PageBreakMarker boundaries, then paragraphs packed
//     into pages of at most CharsPerPage runes, long paragraphs cut after
//     sentence punctuation
//  2. Layout: each page becomes a fixed-size HTML surface with escaped text,
//     ### and #### headings, #tags and **bold**
//  3. Watermark: rotated tiles on a density-controlled grid, either laid into
//     the surface or stamped onto the image afterwards
//  4. Rasterization: concurrent batches with retries and placeholder fallback
//
// # Configuration
//
//	proc, err := notepages.NewProcessor(
//	    notepages.WithSurface(notepages.SurfaceCard),
//	    notepages.WithBatchSize(4),
//	    notepages.WithRetryPolicy(notepages.RetryPolicy{MaxAttempts: 5, Delay: time.Second, Backoff: 2}),
//	    notepages.WithWatermarkMode(notepages.WatermarkStamp),
//	    notepages.WithLogger(slog.Default()),
//	)
//
// # Parallel Processing
//
// For several documents, use ProcessorPool. Each Processor owns a browser:
//
//	pool := notepages.NewProcessorPool(notepages.ResolvePoolSize(0))
//	defer pool.Close()
//
//	proc, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(proc)
//
// # Browser
//
// Chrome is launched on first use. Set ROD_BROWSER_BIN to use an installed
// browser; the sandbox is disabled in that case and when CI=true.
package notepages
