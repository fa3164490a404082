package notepages

import (
	"context"
	"errors"
	"fmt"
	"html/template"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-notepages/internal/watermark"
)

// watermarkPlan says how a run applies its watermark.
type watermarkPlan struct {
	spec    *WatermarkSpec
	overlay template.HTML // laid into each surface
	stamp   bool          // drawn onto the images afterwards
}

// RenderPages rasterizes pages in order and returns one image per page.
// Batches of pages run concurrently, one batch at a time. Pages that still
// fail after the retry policy, or that are reached after ctx is done, get a
// placeholder image.
func (p *Processor) RenderPages(ctx context.Context, pages []string, spec *WatermarkSpec) []RenderedImage {
	images := make([]RenderedImage, len(pages))
	if len(pages) == 0 {
		return images
	}

	plan := p.planWatermark(spec)

	for start := 0; start < len(pages); start += p.cfg.batchSize {
		end := min(start+p.cfg.batchSize, len(pages))
		p.renderBatch(ctx, pages, images, start, end, plan)
	}

	if plan.stamp {
		p.stampAll(ctx, images, plan.spec)
	}
	return images
}

// planWatermark validates and copies spec and picks overlay or stamping.
// Image marks are always stamped; in overlay mode their text still goes
// into the overlay and only the image part is stamped.
func (p *Processor) planWatermark(spec *WatermarkSpec) watermarkPlan {
	if p.cfg.mode == WatermarkNone || spec.empty() {
		return watermarkPlan{}
	}
	if err := spec.Validate(); err != nil {
		p.logger.Warn("ignoring invalid watermark", "error", err)
		return watermarkPlan{}
	}
	cp := *spec

	if p.cfg.mode == WatermarkStamp {
		return watermarkPlan{spec: &cp, stamp: true}
	}

	overlay, err := p.overlayFor(&cp)
	if err != nil {
		p.logger.Warn("stamping watermark instead of overlay", "error", err)
		return watermarkPlan{spec: &cp, stamp: true}
	}
	plan := watermarkPlan{spec: &cp, overlay: overlay}
	if cp.ImageSource != "" {
		mark := cp
		mark.Text = ""
		plan.spec, plan.stamp = &mark, true
	}
	return plan
}

// overlayFor builds the overlay tiles for the processor's surface.
func (p *Processor) overlayFor(spec *WatermarkSpec) (template.HTML, error) {
	if spec.empty() || spec.Text == "" {
		return "", nil
	}
	w, h := p.cfg.surface.Dimensions()
	grid := watermark.ComputeGrid(float64(w), float64(h), spec.Density)
	return watermark.OverlayHTML(grid, spec.toInternal())
}

// renderBatch rasterizes images[start:end] concurrently. If a worker fails
// outright, the pages it left unfinished are redone one by one.
func (p *Processor) renderBatch(ctx context.Context, pages []string, images []RenderedImage, start, end int, plan watermarkPlan) {
	done := make([]bool, end-start)

	var g errgroup.Group
	for i := start; i < end; i++ {
		g.Go(func() error {
			img, err := p.renderSafe(ctx, pages, i, plan)
			if err != nil {
				return err
			}
			images[i] = img
			done[i-start] = true
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		p.logger.Debug("batch rendered", "first", start, "last", end-1)
		return
	}

	p.logger.Warn("batch failed, rendering sequentially", "first", start, "last", end-1, "error", err)
	for i := start; i < end; i++ {
		if done[i-start] {
			continue
		}
		img, err := p.renderSafe(ctx, pages, i, plan)
		if err != nil {
			img = p.placeholderFor(i, err)
		}
		images[i] = img
	}
}

// renderSafe wraps renderOne, turning a panic into ErrBatch.
func (p *Processor) renderSafe(ctx context.Context, pages []string, i int, plan watermarkPlan) (img RenderedImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: page %d: %v", ErrBatch, i, r)
		}
	}()
	return p.renderOne(ctx, pages, i, plan), nil
}

// renderOne renders and rasterizes page i, retrying per the policy. It
// always returns an image; failures yield a placeholder.
func (p *Processor) renderOne(ctx context.Context, pages []string, i int, plan watermarkPlan) RenderedImage {
	surface, err := p.renderer.RenderPageWithOverlay(pages[i], i, len(pages), plan.overlay)
	if err != nil {
		return p.placeholderFor(i, fmt.Errorf("%w: page %d: %v", ErrRender, i, err))
	}

	var data []byte
	err = p.cfg.retry.Do(ctx, func(ctx context.Context, attempt int) error {
		attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.timeout)
		defer cancel()

		out, err := p.rasterizer.Rasterize(attemptCtx, surface.HTML, surface.Size.Width, surface.Size.Height)
		if err == nil {
			err = checkRaster(out)
		}
		if err != nil {
			p.logger.Debug("rasterize attempt failed", "page", i, "attempt", attempt, "error", err)
			return err
		}
		data = out
		return nil
	})
	if err != nil {
		switch {
		case errorsIsCtx(err):
			p.logger.Debug("page skipped", "page", i, "error", err)
		case isBrowserError(err):
			p.logger.Error("browser unavailable", "page", i, "error", err)
		default:
			p.logger.Warn("page rasterization failed", "page", i, "attempts", p.cfg.retry.MaxAttempts, "error", err)
		}
		return p.placeholderFor(i, err)
	}

	w, h := surface.Size.Width, surface.Size.Height
	return RenderedImage{Index: i, Data: data, Width: w, Height: h}
}

// placeholderFor returns the placeholder image for page i carrying cause.
func (p *Processor) placeholderFor(i int, cause error) RenderedImage {
	w, h := p.cfg.surface.Dimensions()
	img := RenderedImage{Index: i, Width: w, Height: h, Placeholder: true, Err: cause}

	data, err := p.placeholder()
	if err != nil {
		p.logger.Error("placeholder unavailable, using blank page", "page", i, "error", err)
		if data, err = p.blank(); err != nil {
			p.logger.Error("blank placeholder unavailable", "page", i, "error", err)
			return img
		}
	}
	img.Data = data
	return img
}

// stampAll draws spec onto every rasterized image, batchSize at a time.
// An image whose stamping fails is kept unstamped.
func (p *Processor) stampAll(ctx context.Context, images []RenderedImage, spec *WatermarkSpec) {
	var g errgroup.Group
	g.SetLimit(p.cfg.batchSize)

	for i := range images {
		if images[i].Placeholder {
			continue
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Warn("keeping unstamped image", "page", i, "error", fmt.Errorf("%w: %v", ErrStamp, r))
				}
			}()

			out, err := p.stamper.Stamp(ctx, images[i].Data, spec)
			if errors.Is(err, watermark.ErrSource) {
				p.logger.Warn("skipping image watermark", "page", i, "error", fmt.Errorf("%w: %v", ErrWatermarkSource, err))
				return nil
			}
			if err != nil {
				p.logger.Warn("keeping unstamped image", "page", i, "error", fmt.Errorf("%w: %v", ErrStamp, err))
				return nil
			}
			images[i].Data = out
			return nil
		})
	}
	_ = g.Wait()
}
