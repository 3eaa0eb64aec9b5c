package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gogpu/gpucontext"
	"gopkg.in/yaml.v3"
)

// Script is a recorded interaction session.
type Script struct {
	// Image overrides the --image flag when set.
	Image     string    `yaml:"image,omitempty"`
	Container Container `yaml:"container"`
	Events    []Event   `yaml:"events"`
}

// Container is the on-screen box of the surface in client coordinates. A
// zero size uses the image size.
type Container struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Event is one scripted step. Type selects which fields are used:
//
//	down, up       X, Y, Button
//	move           X, Y
//	leave, blur
//	wheel          X, Y, DY
//	press, release Key
//	pan            X, Y (image units)
//	color          Value (hex)
//	radius         Radius
//	wait           Wait
//	undo, redo, clear, zoom_in, zoom_out, reset_zoom
//
// Mods applies to pointer, wheel and key events.
type Event struct {
	Type   string        `yaml:"type"`
	X      float64       `yaml:"x,omitempty"`
	Y      float64       `yaml:"y,omitempty"`
	DY     float64       `yaml:"dy,omitempty"`
	Button string        `yaml:"button,omitempty"`
	Key    string        `yaml:"key,omitempty"`
	Mods   []string      `yaml:"mods,omitempty"`
	Value  string        `yaml:"value,omitempty"`
	Radius int           `yaml:"radius,omitempty"`
	Wait   time.Duration `yaml:"wait,omitempty"`
}

// LoadScript reads a YAML script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes and validates a YAML script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, ev := range s.Events {
		if err := ev.validate(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
	}
	return &s, nil
}

func (ev Event) validate() error {
	switch ev.Type {
	case "down", "up":
		if _, _, err := parseButton(ev.Button); err != nil {
			return err
		}
	case "press", "release":
		if _, err := parseKey(ev.Key); err != nil {
			return err
		}
	case "move", "leave", "blur", "wheel", "pan", "color", "radius", "wait",
		"undo", "redo", "clear", "zoom_in", "zoom_out", "reset_zoom":
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	if _, err := parseMods(ev.Mods); err != nil {
		return err
	}
	return nil
}

func parseButton(s string) (gpucontext.Button, gpucontext.Buttons, error) {
	switch strings.ToLower(s) {
	case "", "left":
		return gpucontext.ButtonLeft, gpucontext.ButtonsLeft, nil
	case "right":
		return gpucontext.ButtonRight, gpucontext.ButtonsRight, nil
	case "middle":
		return gpucontext.ButtonMiddle, gpucontext.ButtonsMiddle, nil
	default:
		return gpucontext.ButtonNone, gpucontext.ButtonsNone, fmt.Errorf("unknown button %q", s)
	}
}

var keyNames = map[string]gpucontext.Key{
	"space": gpucontext.KeySpace,
	"z":     gpucontext.KeyZ,
	"y":     gpucontext.KeyY,
	"ctrl":  gpucontext.KeyLeftControl,
	"super": gpucontext.KeyLeftSuper,
	"shift": gpucontext.KeyLeftShift,
}

func parseKey(s string) (gpucontext.Key, error) {
	if k, ok := keyNames[strings.ToLower(s)]; ok {
		return k, nil
	}
	return gpucontext.KeyUnknown, fmt.Errorf("unknown key %q", s)
}

func parseMods(names []string) (gpucontext.Modifiers, error) {
	var m gpucontext.Modifiers
	for _, n := range names {
		switch strings.ToLower(n) {
		case "shift":
			m |= gpucontext.ModShift
		case "ctrl", "control":
			m |= gpucontext.ModControl
		case "alt":
			m |= gpucontext.ModAlt
		case "super", "cmd", "meta":
			m |= gpucontext.ModSuper
		default:
			return 0, fmt.Errorf("unknown modifier %q", n)
		}
	}
	return m, nil
}
