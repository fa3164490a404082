package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	notepages "github.com/alnah/go-notepages"
	"github.com/alnah/go-notepages/internal/config"
	"github.com/alnah/go-notepages/internal/hints"
)

// Sentinel errors for settings resolution.
var (
	ErrReadFont    = errors.New("failed to read font file")
	ErrNoWatermark = errors.New("no watermark configured")
)

// resolveConfig loads --config when given, otherwise uses env.Config.
func resolveConfig(env *Environment, nameOrPath string) (*config.Config, error) {
	if nameOrPath == "" {
		if env.Config != nil {
			return env.Config, nil
		}
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(nameOrPath)
	if errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(config.SearchPaths(nameOrPath)))
	}
	return cfg, err
}

// buildWatermarkSpec resolves the active preset and applies flag overrides.
// Returns nil when watermarking is disabled.
func buildWatermarkSpec(cfg *config.Config, f watermarkFlags) (*notepages.WatermarkSpec, error) {
	if f.disabled || strings.EqualFold(f.mode, "none") {
		return nil, nil
	}
	if !cfg.Watermark.Enabled && f.preset == "" && f.text == "" && f.image == "" {
		return nil, nil
	}

	spec := notepages.DefaultWatermarkSpec()
	name := f.preset
	if name == "" {
		name = cfg.Watermark.Preset
	}
	if name != "" {
		p, err := cfg.FindPreset(name)
		if err != nil {
			return nil, fmt.Errorf("%w%s", err, hints.ForPresetNotFound(cfg.PresetNames()))
		}
		spec = specFromPreset(p)
	}

	if f.text != "" {
		spec.Text = f.text
	}
	if f.color != "" {
		spec.FontColor = f.color
	}
	if f.family != "" {
		spec.FontFamily = f.family
	}
	if f.image != "" {
		spec.ImageSource = f.image
	}
	if f.opacity != unsetOpacity {
		spec.Opacity = float64(f.opacity) / 100
	}
	if f.size > 0 {
		spec.FontSize = f.size
	}
	if f.rotation != unsetRotation {
		spec.RotationDegrees = f.rotation
	}
	if f.density > 0 {
		spec.Density = f.density
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

func specFromPreset(p *config.Preset) *notepages.WatermarkSpec {
	return &notepages.WatermarkSpec{
		Text:            p.Text,
		Opacity:         p.OpacityFraction(),
		FontSize:        p.Size,
		FontColor:       p.Color,
		RotationDegrees: p.Rotation,
		Density:         p.Density,
		FontFamily:      p.Font,
		ImageSource:     p.Image,
	}
}

// surfaceOptions derives layout and asset options shared by every command.
func surfaceOptions(cfg *config.Config, f surfaceFlags) ([]notepages.Option, error) {
	name := f.surface
	if name == "" {
		name = cfg.Surface.Name
	}
	surface, err := notepages.ParseSurface(name)
	if err != nil {
		return nil, err
	}
	opts := []notepages.Option{notepages.WithSurface(surface)}

	chars := f.charsPerPage
	if chars == 0 {
		chars = cfg.Surface.CharsPerPage
	}
	if chars < 0 {
		return nil, fmt.Errorf("%w: --chars must not be negative, got %d", ErrUsage, chars)
	}
	opts = append(opts, notepages.WithCharsPerPage(chars))

	ratio := f.pixelRatio
	if ratio == 0 {
		ratio = cfg.Surface.PixelRatio
	}
	opts = append(opts, notepages.WithPixelRatio(ratio))

	assetPath := f.assetPath
	if assetPath == "" {
		assetPath = cfg.Assets.BasePath
	}
	if assetPath != "" {
		opts = append(opts, notepages.WithAssetPath(assetPath))
	}

	fontFile := f.fontFile
	if fontFile == "" {
		fontFile = cfg.Watermark.FontFile
	}
	if fontFile != "" {
		opt, err := fontOption(fontFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

func fontOption(path string) (notepages.Option, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-selected font
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFont, err)
	}
	return notepages.WithFontData(data), nil
}

// watermarkOptions sets the mode and the remote fetch behavior for image
// marks.
func watermarkOptions(cfg *config.Config, f watermarkFlags) ([]notepages.Option, error) {
	modeName := f.mode
	if modeName == "" {
		modeName = cfg.Watermark.Mode
	}
	mode, err := notepages.ParseWatermarkMode(modeName)
	if err != nil {
		return nil, err
	}
	opts := []notepages.Option{notepages.WithWatermarkMode(mode)}

	if cfg.Fetch.Referer != "" {
		opts = append(opts, notepages.WithSourceHeader("Referer", cfg.Fetch.Referer))
	}
	if cfg.Fetch.UserAgent != "" {
		opts = append(opts, notepages.WithSourceHeader("User-Agent", cfg.Fetch.UserAgent))
	}
	for k, v := range cfg.Fetch.Headers {
		opts = append(opts, notepages.WithSourceHeader(k, v))
	}

	interval, err := cfg.Fetch.IntervalDuration()
	if err != nil {
		return nil, err
	}
	if interval > 0 {
		opts = append(opts, notepages.WithSourceRateLimit(interval, cfg.Fetch.Burst))
	}
	return opts, nil
}

// pipelineOptions sets batching, retries, timeout and placeholder caption.
func pipelineOptions(cfg *config.Config, f pipelineFlags) ([]notepages.Option, error) {
	var opts []notepages.Option

	batch := f.batch
	if batch == 0 {
		batch = cfg.Pipeline.BatchSize
	}
	if batch != 0 {
		opts = append(opts, notepages.WithBatchSize(batch))
	}

	policy := notepages.DefaultRetryPolicy()
	if cfg.Pipeline.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.Pipeline.MaxAttempts
	}
	if f.attempts != 0 {
		policy.MaxAttempts = f.attempts
	}
	if cfg.Pipeline.RetryDelay != "" {
		delay, err := cfg.Pipeline.RetryDelayDuration()
		if err != nil {
			return nil, err
		}
		policy.Delay = delay
	}
	if cfg.Pipeline.Backoff >= 1 {
		policy.Backoff = cfg.Pipeline.Backoff
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	opts = append(opts, notepages.WithRetryPolicy(policy))

	timeout, err := parseTimeout(f.timeout, cfg)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, notepages.WithTimeout(timeout))
	}

	caption := f.caption
	if caption == "" {
		caption = cfg.Pipeline.PlaceholderCaption
	}
	return append(opts, notepages.WithPlaceholderCaption(caption)), nil
}

// processorOptions assembles everything a processor needs, followed by the
// environment's extra options.
func processorOptions(env *Environment, logger *slog.Logger, groups ...[]notepages.Option) []notepages.Option {
	opts := []notepages.Option{notepages.WithLogger(logger)}
	for _, g := range groups {
		opts = append(opts, g...)
	}
	return append(opts, env.Options...)
}

// isAssetError reports errors caused by a custom asset directory.
func isAssetError(err error) bool {
	return errors.Is(err, notepages.ErrLayoutNotFound) ||
		errors.Is(err, notepages.ErrStyleNotFound) ||
		errors.Is(err, notepages.ErrInvalidAssetPath)
}

// warnMissingFont logs a hint when stamped text likely needs glyphs the
// built-in Go fonts lack.
func warnMissingFont(logger *slog.Logger, fontFile string, spec *notepages.WatermarkSpec) {
	if fontFile != "" || spec == nil || isASCII(spec.Text) {
		return
	}
	logger.Warn("stamped watermark text has non-ASCII characters and no font is set" + hints.ForMissingGlyphs())
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
