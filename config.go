package masker

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/masker/interact"
	"github.com/gogpu/masker/internal/blend"
	"github.com/gogpu/masker/viewport"
)

// Config is the file form of the Editor options.
//
// Example:
//
//	brush_radius: 16
//	brush_color: "#ff0000"
//	opacity: 0.5
//	blend_mode: multiply
//	max_scale: 6
//	debounce: 250ms
type Config struct {
	BrushRadius   int           `yaml:"brush_radius"`
	BrushColor    string        `yaml:"brush_color"`
	Opacity       float64       `yaml:"opacity"`
	BlendMode     string        `yaml:"blend_mode"`
	InvertMask    bool          `yaml:"invert_mask,omitempty"`
	MinScale      float64       `yaml:"min_scale"`
	MaxScale      float64       `yaml:"max_scale"`
	InitialScale  float64       `yaml:"initial_scale"`
	WheelZoom     bool          `yaml:"wheel_zoom"`
	PanConstraint bool          `yaml:"pan_constraint"`
	InitialMask   string        `yaml:"initial_mask,omitempty"`
	Debounce      time.Duration `yaml:"debounce"`
	HistoryLimit  int           `yaml:"history_limit"`
	UndoableClear bool          `yaml:"undoable_clear,omitempty"`
	MaxWidth      int           `yaml:"max_width,omitempty"`
	MaxHeight     int           `yaml:"max_height,omitempty"`
}

// DefaultConfig returns the configuration matching New with no options.
func DefaultConfig() Config {
	return Config{
		BrushRadius:   interact.DefaultRadius,
		BrushColor:    "#ffffff",
		Opacity:       interact.DefaultOpacity,
		BlendMode:     blend.Normal.String(),
		MinScale:      viewport.DefaultMinScale,
		MaxScale:      viewport.DefaultMaxScale,
		InitialScale:  1,
		WheelZoom:     true,
		PanConstraint: true,
		Debounce:      DefaultDebounce,
		HistoryLimit:  DefaultHistoryLimit,
	}
}

// ParseConfig decodes YAML. Keys missing from data keep their defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("masker: parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads and decodes a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("masker: read config: %w", err)
	}
	return ParseConfig(data)
}

// Marshal encodes the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("masker: encode config: %w", err)
	}
	return data, nil
}

// Options converts the configuration to Editor options. Numeric values out
// of range are clamped by the Editor; malformed colors and unknown blend
// modes are reported as errors.
func (c Config) Options() ([]Option, error) {
	var errs []error

	brushColor, err := ParseHex(c.BrushColor)
	if err != nil {
		errs = append(errs, err)
	}
	mode, err := blend.ParseMode(c.BlendMode)
	if err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("masker: config: %w", err)
	}

	opts := []Option{
		WithBrushRadius(c.BrushRadius),
		WithBrushColor(brushColor),
		WithOpacity(c.Opacity),
		WithBlendMode(mode),
		WithInvertMask(c.InvertMask),
		WithScaleBounds(c.MinScale, c.MaxScale),
		WithInitialScale(c.InitialScale),
		WithWheelZoom(c.WheelZoom),
		WithPanConstraint(c.PanConstraint),
		WithDebounce(c.Debounce),
		WithHistoryLimit(c.HistoryLimit),
		WithMaxSize(c.MaxWidth, c.MaxHeight),
	}
	if c.InitialMask != "" {
		opts = append(opts, WithInitialMask(c.InitialMask))
	}
	if c.UndoableClear {
		opts = append(opts, WithUndoableClear())
	}
	return opts, nil
}
