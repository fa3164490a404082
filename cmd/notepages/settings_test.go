package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	notepages "github.com/alnah/go-notepages"
	"github.com/alnah/go-notepages/internal/config"
)

func defaultWatermarkFlags() watermarkFlags {
	return watermarkFlags{opacity: unsetOpacity, rotation: unsetRotation}
}

// ---------------------------------------------------------------------------
// TestBuildWatermarkSpec - preset resolution and overrides
// ---------------------------------------------------------------------------

func TestBuildWatermarkSpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		flags  func(*watermarkFlags)
		want   *notepages.WatermarkSpec
	}{
		{
			name: "active default preset",
			want: &notepages.WatermarkSpec{
				Text: "小红书内容助手", Opacity: 0.3, FontSize: 18, FontColor: "#ff4d6d",
				RotationDegrees: -30, Density: 3, FontFamily: "sans-serif",
			},
		},
		{
			name:  "preset flag selects simple preset",
			flags: func(f *watermarkFlags) { f.preset = config.SimplePresetName },
			want: &notepages.WatermarkSpec{
				Text: "版权所有", Opacity: 0.2, FontSize: 14, FontColor: "#000000",
				RotationDegrees: -30, Density: 2, FontFamily: "serif",
			},
		},
		{
			name: "overrides applied including zeros",
			flags: func(f *watermarkFlags) {
				f.text = "DRAFT"
				f.color = "#123"
				f.opacity = 0
				f.rotation = 0
				f.density = 5
				f.size = 30
				f.family = "monospace"
			},
			want: &notepages.WatermarkSpec{
				Text: "DRAFT", Opacity: 0, FontSize: 30, FontColor: "#123",
				RotationDegrees: 0, Density: 5, FontFamily: "monospace",
			},
		},
		{
			name:  "no-watermark disables",
			flags: func(f *watermarkFlags) { f.disabled = true },
		},
		{
			name:  "mode none disables",
			flags: func(f *watermarkFlags) { f.mode = "None" },
		},
		{
			name:   "disabled in config",
			mutate: func(c *config.Config) { c.Watermark.Enabled = false },
		},
		{
			name:   "disabled in config but text flag given",
			mutate: func(c *config.Config) { c.Watermark.Enabled = false },
			flags:  func(f *watermarkFlags) { f.text = "ON" },
			want: &notepages.WatermarkSpec{
				Text: "ON", Opacity: 0.3, FontSize: 18, FontColor: "#ff4d6d",
				RotationDegrees: -30, Density: 3, FontFamily: "sans-serif",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			f := defaultWatermarkFlags()
			if tt.flags != nil {
				tt.flags(&f)
			}

			got, err := buildWatermarkSpec(cfg, f)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("spec mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildWatermarkSpec_Errors(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()

	f := defaultWatermarkFlags()
	f.preset = "missing"
	_, err := buildWatermarkSpec(cfg, f)
	if !errors.Is(err, config.ErrPresetNotFound) {
		t.Errorf("missing preset error = %v, want ErrPresetNotFound", err)
	}
	if !strings.Contains(err.Error(), config.DefaultPresetName) {
		t.Errorf("error %q should list available presets", err)
	}

	f = defaultWatermarkFlags()
	f.density = 9
	if _, err := buildWatermarkSpec(cfg, f); !errors.Is(err, notepages.ErrInvalidDensity) {
		t.Errorf("density error = %v, want ErrInvalidDensity", err)
	}

	f = defaultWatermarkFlags()
	f.color = "red"
	if _, err := buildWatermarkSpec(cfg, f); !errors.Is(err, notepages.ErrInvalidWatermarkColor) {
		t.Errorf("color error = %v, want ErrInvalidWatermarkColor", err)
	}
}

// ---------------------------------------------------------------------------
// TestOptions - config and flag merging
// ---------------------------------------------------------------------------

func TestSurfaceOptions_Errors(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()

	if _, err := surfaceOptions(cfg, surfaceFlags{surface: "poster"}); !errors.Is(err, notepages.ErrInvalidSurface) {
		t.Errorf("surface error = %v, want ErrInvalidSurface", err)
	}
	if _, err := surfaceOptions(cfg, surfaceFlags{charsPerPage: -5}); !errors.Is(err, ErrUsage) {
		t.Errorf("chars error = %v, want ErrUsage", err)
	}
	if _, err := surfaceOptions(cfg, surfaceFlags{fontFile: "/nonexistent/font.ttf"}); !errors.Is(err, ErrReadFont) {
		t.Errorf("font error = %v, want ErrReadFont", err)
	}
}

func TestSurfaceOptions_AppliesSurface(t *testing.T) {
	t.Parallel()

	opts, err := surfaceOptions(config.DefaultConfig(), surfaceFlags{surface: "card"})
	if err != nil {
		t.Fatalf("surfaceOptions() error = %v", err)
	}
	proc, err := notepages.NewProcessor(append(opts, notepages.WithRasterizer(fakeRasterizer{}))...)
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}
	defer proc.Close()

	if proc.Surface() != notepages.SurfaceCard {
		t.Errorf("Surface() = %v, want card", proc.Surface())
	}
}

func TestPipelineOptions_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		flags   pipelineFlags
		mutate  func(*config.Config)
		wantErr error
	}{
		{"negative attempts", pipelineFlags{attempts: -1}, nil, notepages.ErrInvalidRetryPolicy},
		{"bad timeout flag", pipelineFlags{timeout: "soon"}, nil, ErrInvalidTimeout},
		{"zero timeout flag", pipelineFlags{timeout: "0s"}, nil, ErrInvalidTimeout},
		{"bad config delay", pipelineFlags{}, func(c *config.Config) { c.Pipeline.RetryDelay = "x" }, config.ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			if _, err := pipelineOptions(cfg, tt.flags); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseTimeout(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()

	d, err := parseTimeout("", cfg)
	if err != nil || d != 30*time.Second {
		t.Errorf("config timeout = %v, %v; want 30s", d, err)
	}
	d, err = parseTimeout("2m", cfg)
	if err != nil || d != 2*time.Minute {
		t.Errorf("flag timeout = %v, %v; want 2m", d, err)
	}
}

func TestWatermarkOptions_InvalidMode(t *testing.T) {
	t.Parallel()

	f := defaultWatermarkFlags()
	f.mode = "emboss"
	if _, err := watermarkOptions(config.DefaultConfig(), f); !errors.Is(err, notepages.ErrInvalidWatermarkMode) {
		t.Errorf("error = %v, want ErrInvalidWatermarkMode", err)
	}
}

func TestResolveConfig(t *testing.T) {
	t.Parallel()

	env := &Environment{Config: config.DefaultConfig()}
	cfg, err := resolveConfig(env, "")
	if err != nil || cfg != env.Config {
		t.Errorf("resolveConfig(\"\") = %p, %v; want env config", cfg, err)
	}

	_, err = resolveConfig(env, "/nonexistent/notepages.yaml")
	if !errors.Is(err, config.ErrConfigNotFound) {
		t.Fatalf("error = %v, want ErrConfigNotFound", err)
	}
	if !strings.Contains(err.Error(), "hint:") {
		t.Errorf("error %q should carry a hint", err)
	}
}

func TestWarnMissingFont(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	logger := newLogger(&buf, commonFlags{})

	warnMissingFont(logger, "", &notepages.WatermarkSpec{Text: "DRAFT"})
	if buf.Len() != 0 {
		t.Errorf("ASCII text should not warn, got %q", buf.String())
	}
	warnMissingFont(logger, "/fonts/noto.ttf", &notepages.WatermarkSpec{Text: "版权所有"})
	if buf.Len() != 0 {
		t.Errorf("font set should not warn, got %q", buf.String())
	}
	warnMissingFont(logger, "", &notepages.WatermarkSpec{Text: "版权所有"})
	if !strings.Contains(buf.String(), "fontFile") {
		t.Errorf("expected font hint, got %q", buf.String())
	}
}

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	var quiet, verbose strings.Builder
	newLogger(&quiet, commonFlags{quiet: true}).Warn("hidden")
	newLogger(&verbose, commonFlags{verbose: true}).Debug("shown")

	if quiet.Len() != 0 {
		t.Errorf("quiet logger wrote %q", quiet.String())
	}
	if !strings.Contains(verbose.String(), "shown") {
		t.Errorf("verbose logger dropped debug record: %q", verbose.String())
	}
}

func TestIsASCII(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"DRAFT 2024", true},
		{"版权所有", false},
		{"café", false},
	}

	for _, tt := range tests {
		if got := isASCII(tt.in); got != tt.want {
			t.Errorf("isASCII(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
