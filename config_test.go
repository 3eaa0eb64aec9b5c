package masker

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/masker/internal/blend"
)

func TestParseConfigKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("brush_radius: 16\nblend_mode: multiply\ndebounce: 250ms\n"))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	want := DefaultConfig()
	want.BrushRadius = 16
	want.BlendMode = "multiply"
	want.Debounce = 250 * time.Millisecond
	if cfg != want {
		t.Errorf("config = %+v, want %+v", cfg, want)
	}
}

func TestParseConfigInvalidYAML(t *testing.T) {
	if _, err := ParseConfig([]byte("brush_radius: [")); err == nil {
		t.Error("ParseConfig accepted malformed YAML")
	}
}

func TestConfigMarshal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InvertMask = true
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "invert_mask: true") {
		t.Errorf("marshaled config missing invert_mask:\n%s", data)
	}
	got, err := ParseConfig(data)
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Errorf("reparsed = %+v, want %+v", got, cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "masker.yaml")
	if err := os.WriteFile(path, []byte("opacity: 0.75\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Opacity != 0.75 {
		t.Errorf("Opacity = %v, want 0.75", cfg.Opacity)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want ErrNotExist", err)
	}
}

func TestConfigOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BrushRadius = 7
	cfg.BrushColor = "#f00"
	cfg.Opacity = 0.5
	cfg.BlendMode = "Color-Burn"

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	e, _ := newTestEditor(t, opts...)

	b := e.Brush()
	if b.Radius != 7 {
		t.Errorf("Radius = %d, want 7", b.Radius)
	}
	if want := (color.NRGBA{R: 0xFF, A: 0xFF}); b.Color != want {
		t.Errorf("Color = %v, want %v", b.Color, want)
	}
	if b.Opacity != 0.5 {
		t.Errorf("Opacity = %v, want 0.5", b.Opacity)
	}
	if b.Mode != blend.ColorBurn {
		t.Errorf("Mode = %v, want %v", b.Mode, blend.ColorBurn)
	}
}

func TestConfigOptionsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BrushColor = "red"
	cfg.BlendMode = "sparkle"

	_, err := cfg.Options()
	if err == nil {
		t.Fatal("Options accepted invalid color and blend mode")
	}
	if !errors.Is(err, ErrInvalidColor) {
		t.Errorf("error %v does not wrap ErrInvalidColor", err)
	}
	if !strings.Contains(err.Error(), "sparkle") {
		t.Errorf("error %q does not name the blend mode", err)
	}
}
