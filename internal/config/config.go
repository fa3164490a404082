// Package config loads CLI settings: pipeline tuning, surface, watermark
// presets, output and remote fetch options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-notepages/internal/fileutil"
	"github.com/alnah/go-notepages/internal/yamlutil"
)

// AppName names the user config directory.
const AppName = "go-notepages"

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrPresetNotFound  = errors.New("watermark preset not found")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPresetNameLength     = 50
	MaxWatermarkTextLength  = 50
	MaxFontFamilyLength     = 100
	MaxWatermarkColorLength = 7 // "#rrggbb"
	MaxCaptionLength        = 200
	MaxURLLength            = 2048
	MaxHeaderValueLength    = 1024
	MaxPresets              = 50
)

// Config holds all CLI configuration.
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Surface   SurfaceConfig   `yaml:"surface"`
	Watermark WatermarkConfig `yaml:"watermark"`
	Presets   []Preset        `yaml:"presets"`
	Output    OutputConfig    `yaml:"output"`
	Assets    AssetsConfig    `yaml:"assets"`
	Fetch     FetchConfig     `yaml:"fetch"`
}

// PipelineConfig tunes batching, retries and timeouts.
type PipelineConfig struct {
	BatchSize          int     `yaml:"batchSize"`          // pages rasterized at once (default: 2)
	MaxAttempts        int     `yaml:"maxAttempts"`        // attempts per page (default: 3)
	RetryDelay         string  `yaml:"retryDelay"`         // e.g. "200ms"
	Backoff            float64 `yaml:"backoff"`            // delay multiplier, >= 1
	Timeout            string  `yaml:"timeout"`            // per attempt, e.g. "30s"
	Workers            int     `yaml:"workers"`            // parallel notes; 0 = auto
	PlaceholderCaption string  `yaml:"placeholderCaption"` // empty = built-in caption
}

// SurfaceConfig selects the page canvas.
type SurfaceConfig struct {
	Name         string  `yaml:"name"`         // "document" or "card"
	CharsPerPage int     `yaml:"charsPerPage"` // 0 = surface default
	PixelRatio   float64 `yaml:"pixelRatio"`   // device scale factor (default: 2)
}

// WatermarkConfig picks the active preset and how it is applied.
type WatermarkConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Mode     string `yaml:"mode"`     // "overlay", "stamp" or "none"
	Preset   string `yaml:"preset"`   // name of the active preset
	FontFile string `yaml:"fontFile"` // TTF/OTF for stamping and placeholders
}

// Preset is a saved watermark. Opacity is a percentage, as the settings
// screen stores it.
type Preset struct {
	Name       string  `yaml:"name"`
	Text       string  `yaml:"text"`
	Font       string  `yaml:"font"`
	Color      string  `yaml:"color"`
	Opacity    int     `yaml:"opacity"` // 0 to 100
	Size       float64 `yaml:"size"`
	Density    int     `yaml:"density"` // 1 to 5
	Rotation   float64 `yaml:"rotation"`
	Image      string  `yaml:"image"` // optional image mark
}

// OutputConfig defines where and how results are written.
type OutputConfig struct {
	Dir    string `yaml:"dir"`    // empty = next to the input
	Format string `yaml:"format"` // "png", "zip" or "pdf"
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets
}

// FetchConfig applies to remote watermark images.
type FetchConfig struct {
	Referer   string            `yaml:"referer"`
	UserAgent string            `yaml:"userAgent"`
	Headers   map[string]string `yaml:"headers"`
	Interval  string            `yaml:"interval"` // minimum gap between fetches, e.g. "500ms"
	Burst     int               `yaml:"burst"`
}

// Built-in preset names.
const (
	DefaultPresetName = "默认水印"
	SimplePresetName  = "简约水印"
)

// defaultRotation applies to presets that do not set one.
const defaultRotation = -30

// DefaultConfig returns the built-in configuration: document surface,
// overlay watermark with the default preset.
func DefaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			BatchSize:   2,
			MaxAttempts: 3,
			RetryDelay:  "200ms",
			Backoff:     1,
			Timeout:     "30s",
		},
		Surface: SurfaceConfig{Name: "document", PixelRatio: 2},
		Watermark: WatermarkConfig{
			Enabled: true,
			Mode:    "overlay",
			Preset:  DefaultPresetName,
		},
		Presets: DefaultPresets(),
		Output:  OutputConfig{Format: "png"},
		Fetch:   FetchConfig{Interval: "500ms", Burst: 2},
	}
}

// DefaultPresets returns the presets every installation starts with.
func DefaultPresets() []Preset {
	return []Preset{
		{
			Name:     DefaultPresetName,
			Text:     "小红书内容助手",
			Font:     "sans-serif",
			Color:    "#ff4d6d",
			Opacity:  30,
			Size:     18,
			Density:  3,
			Rotation: defaultRotation,
		},
		{
			Name:     SimplePresetName,
			Text:     "版权所有",
			Font:     "serif",
			Color:    "#000000",
			Opacity:  20,
			Size:     14,
			Density:  2,
			Rotation: defaultRotation,
		},
	}
}

// OpacityFraction converts the percentage to [0,1].
func (p Preset) OpacityFraction() float64 {
	return float64(p.Opacity) / 100
}

// FindPreset returns the preset with the given name.
func (c *Config) FindPreset(name string) (*Preset, error) {
	for i := range c.Presets {
		if c.Presets[i].Name == name {
			return &c.Presets[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
}

// PresetNames lists preset names in file order.
func (c *Config) PresetNames() []string {
	names := make([]string, len(c.Presets))
	for i, p := range c.Presets {
		names[i] = p.Name
	}
	return names
}

// RetryDelayDuration parses pipeline.retryDelay; empty means zero.
func (p PipelineConfig) RetryDelayDuration() (time.Duration, error) {
	return parseDuration("pipeline.retryDelay", p.RetryDelay)
}

// TimeoutDuration parses pipeline.timeout; empty means zero (use default).
func (p PipelineConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("pipeline.timeout", p.Timeout)
}

// IntervalDuration parses fetch.interval; empty means zero (no limit).
func (f FetchConfig) IntervalDuration() (time.Duration, error) {
	return parseDuration("fetch.interval", f.Interval)
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %s: %q is not a non-negative duration", ErrInvalidValue, field, s)
	}
	return d, nil
}

// Validate checks field ranges and lengths.
// Called automatically by LoadConfig, but available for callers who build a
// Config by hand.
func (c *Config) Validate() error {
	if err := c.Pipeline.validate(); err != nil {
		return err
	}

	switch strings.ToLower(c.Surface.Name) {
	case "", "document", "card":
	default:
		return fmt.Errorf("%w: surface.name %q (must be document or card)", ErrInvalidValue, c.Surface.Name)
	}
	if c.Surface.CharsPerPage < 0 {
		return fmt.Errorf("%w: surface.charsPerPage must not be negative, got %d", ErrInvalidValue, c.Surface.CharsPerPage)
	}
	if c.Surface.PixelRatio < 0 || c.Surface.PixelRatio > 4 {
		return fmt.Errorf("%w: surface.pixelRatio must be between 0 and 4, got %.2f", ErrInvalidValue, c.Surface.PixelRatio)
	}

	switch strings.ToLower(c.Watermark.Mode) {
	case "", "overlay", "stamp", "none":
	default:
		return fmt.Errorf("%w: watermark.mode %q (must be overlay, stamp or none)", ErrInvalidValue, c.Watermark.Mode)
	}

	if len(c.Presets) > MaxPresets {
		return fmt.Errorf("%w: %d presets (max %d)", ErrInvalidValue, len(c.Presets), MaxPresets)
	}
	seen := make(map[string]bool, len(c.Presets))
	for i, p := range c.Presets {
		field := fmt.Sprintf("presets[%d]", i)
		if err := p.validate(field); err != nil {
			return err
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: %s.name %q is used twice", ErrInvalidValue, field, p.Name)
		}
		seen[p.Name] = true
	}
	if c.Watermark.Enabled && c.Watermark.Preset != "" && !seen[c.Watermark.Preset] {
		return fmt.Errorf("%w: watermark.preset %q", ErrPresetNotFound, c.Watermark.Preset)
	}

	switch strings.ToLower(c.Output.Format) {
	case "", "png", "zip", "pdf":
	default:
		return fmt.Errorf("%w: output.format %q (must be png, zip or pdf)", ErrInvalidValue, c.Output.Format)
	}

	return c.Fetch.validate()
}

func (p PipelineConfig) validate() error {
	if p.BatchSize < 0 {
		return fmt.Errorf("%w: pipeline.batchSize must not be negative, got %d", ErrInvalidValue, p.BatchSize)
	}
	if p.MaxAttempts < 0 {
		return fmt.Errorf("%w: pipeline.maxAttempts must not be negative, got %d", ErrInvalidValue, p.MaxAttempts)
	}
	if p.Backoff != 0 && p.Backoff < 1 {
		return fmt.Errorf("%w: pipeline.backoff must be at least 1, got %.2f", ErrInvalidValue, p.Backoff)
	}
	if p.Workers < 0 {
		return fmt.Errorf("%w: pipeline.workers must not be negative, got %d", ErrInvalidValue, p.Workers)
	}
	if _, err := p.RetryDelayDuration(); err != nil {
		return err
	}
	if _, err := p.TimeoutDuration(); err != nil {
		return err
	}
	return validateFieldLength("pipeline.placeholderCaption", p.PlaceholderCaption, MaxCaptionLength)
}

func (p Preset) validate(field string) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: %s.name is required", ErrInvalidValue, field)
	}
	if err := validateFieldLength(field+".name", p.Name, MaxPresetNameLength); err != nil {
		return err
	}
	if err := validateFieldLength(field+".text", p.Text, MaxWatermarkTextLength); err != nil {
		return err
	}
	if err := validateFieldLength(field+".font", p.Font, MaxFontFamilyLength); err != nil {
		return err
	}
	if err := validateFieldLength(field+".color", p.Color, MaxWatermarkColorLength); err != nil {
		return err
	}
	if err := validateFieldLength(field+".image", p.Image, MaxURLLength); err != nil {
		return err
	}
	if p.Opacity < 0 || p.Opacity > 100 {
		return fmt.Errorf("%w: %s.opacity must be between 0 and 100, got %d", ErrInvalidValue, field, p.Opacity)
	}
	if p.Density < 1 || p.Density > 5 {
		return fmt.Errorf("%w: %s.density must be between 1 and 5, got %d", ErrInvalidValue, field, p.Density)
	}
	if p.Text != "" && p.Size <= 0 {
		return fmt.Errorf("%w: %s.size must be positive, got %.2f", ErrInvalidValue, field, p.Size)
	}
	return nil
}

func (f FetchConfig) validate() error {
	if err := validateFieldLength("fetch.referer", f.Referer, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("fetch.userAgent", f.UserAgent, MaxHeaderValueLength); err != nil {
		return err
	}
	for k, v := range f.Headers {
		if err := validateFieldLength("fetch.headers."+k, v, MaxHeaderValueLength); err != nil {
			return err
		}
	}
	if f.Burst < 0 {
		return fmt.Errorf("%w: fetch.burst must not be negative, got %d", ErrInvalidValue, f.Burst)
	}
	_, err := f.IntervalDuration()
	return err
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values; a presets
// list in the file replaces the built-in presets.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Presets = nil
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if cfg.Presets == nil {
		cfg.Presets = DefaultPresets()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists where a config name is looked up, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file among SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
