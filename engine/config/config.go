// Package config loads the YAML configuration of the instancing demo.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/pristine-go/common"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the top-level demo configuration.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Window    WindowConfig    `yaml:"window"`
	Renderer  RendererConfig  `yaml:"renderer"`
	Instances InstancesConfig `yaml:"instances"`
}

// WindowConfig configures the demo window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// RendererConfig configures the renderer.
type RendererConfig struct {
	VSync      bool       `yaml:"vsync"`
	MSAA       uint32     `yaml:"msaa"`
	Software   bool       `yaml:"software"`
	Debug      bool       `yaml:"debug"`
	ClearColor [4]float64 `yaml:"clear_color"`
}

// InstancesConfig configures the instanced quads.
type InstancesConfig struct {
	Count int `yaml:"count"`
	// Preallocate reserves room for this many records up front.
	Preallocate int     `yaml:"preallocate"`
	Size        float32 `yaml:"size"`
	Workers     int     `yaml:"workers"`
	// Texture is an optional image path. Without it the quads are white.
	Texture string `yaml:"texture"`
}

// Default returns the configuration used for every field a file leaves unset.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		LogLevel: "info",
		Window: WindowConfig{
			Title:  "pristine instances",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			VSync:      true,
			MSAA:       uint32(renderer.MSAA4x),
			ClearColor: [4]float64{0, 0, 0, 1},
		},
		Instances: InstancesConfig{
			Count:   1000,
			Size:    16,
			Workers: 4,
		},
	}
}

// Load reads the configuration at path over the defaults. An empty path returns the defaults. Unknown keys are
// rejected.
//
// Parameters:
//   - path: the YAML file to read, or ""
//
// Returns:
//   - Config: the validated configuration
//   - error: a read or parse error, or an error wrapping ErrInvalidConfig
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the validated configuration
//   - error: a parse error, or an error wrapping ErrInvalidConfig
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: failed to parse: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks every field against its allowed range.
//
// Returns:
//   - error: an error wrapping ErrInvalidConfig naming the first bad field
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: log_level %q: %v", ErrInvalidConfig, c.LogLevel, err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d must be positive", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	switch renderer.MSAASampleCount(c.Renderer.MSAA) {
	case renderer.MSAAOff, renderer.MSAA4x, renderer.MSAA8x, renderer.MSAA16x:
	default:
		return fmt.Errorf("%w: msaa %d must be one of 1, 4, 8, 16", ErrInvalidConfig, c.Renderer.MSAA)
	}
	for i, v := range c.Renderer.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: clear_color[%d] = %g is outside [0, 1]", ErrInvalidConfig, i, v)
		}
	}
	if c.Instances.Count < 0 || c.Instances.Preallocate < 0 {
		return fmt.Errorf("%w: instance counts must not be negative", ErrInvalidConfig)
	}
	if c.Instances.Size <= 0 {
		return fmt.Errorf("%w: instance size %g must be positive", ErrInvalidConfig, c.Instances.Size)
	}
	if c.Instances.Workers < 1 {
		return fmt.Errorf("%w: workers %d must be at least 1", ErrInvalidConfig, c.Instances.Workers)
	}
	return nil
}

// Level parses LogLevel.
//
// Returns:
//   - slog.Level: the level
//   - error: an error for names slog does not know
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.LogLevel))
	return l, err
}

// RendererOptions translates the renderer section into builder options.
//
// Returns:
//   - []renderer.RendererBuilderOption: the options
func (c Config) RendererOptions() []renderer.RendererBuilderOption {
	mode := renderer.PresentModeUncapped
	if c.Renderer.VSync {
		mode = renderer.PresentModeVSync
	}
	cc := c.Renderer.ClearColor
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithMSAA(renderer.MSAASampleCount(c.Renderer.MSAA)),
		renderer.WithForceSoftwareRenderer(c.Renderer.Software),
		renderer.WithDebug(c.Renderer.Debug),
		renderer.WithClearColor(common.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}),
	}
}
