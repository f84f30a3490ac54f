/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config represents application configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Sampler  SamplerConfig  `mapstructure:"sampler" yaml:"sampler"`
	Render   RenderConfig   `mapstructure:"render" yaml:"render"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
	MQTT     MQTTConfig     `mapstructure:"mqtt" yaml:"mqtt"`
	InfluxDB InfluxDBConfig `mapstructure:"influxdb" yaml:"influxdb"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
	File  string `mapstructure:"file" yaml:"file"`   // empty = stdout
}

// SamplerConfig controls both telemetry samplers.
type SamplerConfig struct {
	FastInterval time.Duration `mapstructure:"fast_interval" yaml:"fast_interval"`
	SlowInterval time.Duration `mapstructure:"slow_interval" yaml:"slow_interval"`
	Interfaces   []string      `mapstructure:"interfaces" yaml:"interfaces"` // Preference order
	DiskPath     string        `mapstructure:"disk_path" yaml:"disk_path"`
}

// RenderConfig controls the render loop and the screensaver.
type RenderConfig struct {
	FPS           int           `mapstructure:"fps" yaml:"fps"`                       // Idle mode target frame rate
	StatsInterval time.Duration `mapstructure:"stats_interval" yaml:"stats_interval"` // Minimum delay between stats frames
	Sprites       int           `mapstructure:"sprites" yaml:"sprites"`
	SpriteWidth   int           `mapstructure:"sprite_width" yaml:"sprite_width"`
	SpriteHeight  int           `mapstructure:"sprite_height" yaml:"sprite_height"`
	SpriteSpeed   float64       `mapstructure:"sprite_speed" yaml:"sprite_speed"`
}

// DisplayConfig describes the output panel.
type DisplayConfig struct {
	Driver   string `mapstructure:"driver" yaml:"driver"` // terminal or console
	Width    int    `mapstructure:"width" yaml:"width"`
	Height   int    `mapstructure:"height" yaml:"height"`
	Rotation int    `mapstructure:"rotation" yaml:"rotation"` // 0..3, quarter turns
}

// MQTTConfig describes the presence event source. An empty Server disables it.
type MQTTConfig struct {
	Server     string        `mapstructure:"server" yaml:"server"`
	Topic      string        `mapstructure:"topic" yaml:"topic"`
	ClientID   string        `mapstructure:"client_id" yaml:"client_id"`
	EchoSuffix string        `mapstructure:"echo_suffix" yaml:"echo_suffix"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// InfluxDBConfig describes the threshold provider. It is enabled only when all four
// connection fields are set.
type InfluxDBConfig struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Org     string        `mapstructure:"org" yaml:"org"`
	Bucket  string        `mapstructure:"bucket" yaml:"bucket"`
	Token   string        `mapstructure:"token" yaml:"-"`
	Window  time.Duration `mapstructure:"window" yaml:"window"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ServerConfig describes the optional status server. An empty Addr disables it.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Default configuration values.
const (
	DefaultLogLevel      = "info"
	DefaultFastInterval  = 2 * time.Second
	DefaultSlowInterval  = time.Hour
	DefaultDiskPath      = "/"
	DefaultFPS           = 30
	DefaultStatsInterval = 500 * time.Millisecond
	DefaultSprites       = 1
	DefaultSpriteWidth   = 60
	DefaultSpriteHeight  = 76
	DefaultSpriteSpeed   = 1.0
	DefaultDriver        = DriverTerminal
	DefaultWidth         = 240
	DefaultHeight        = 240
	DefaultRotation      = 1
	DefaultEchoSuffix    = "stats_display"
	DefaultMQTTTimeout   = 10 * time.Second
	DefaultInfluxWindow  = time.Hour
	DefaultInfluxTimeout = 10 * time.Second
)

// Display drivers.
const (
	DriverTerminal = "terminal"
	DriverConsole  = "console"
)

// DefaultInterfaces is the interface preference order: wired before wireless.
var DefaultInterfaces = []string{"eth0", "wlan0"}

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: DefaultLogLevel},
		Sampler: SamplerConfig{
			FastInterval: DefaultFastInterval,
			SlowInterval: DefaultSlowInterval,
			Interfaces:   append([]string(nil), DefaultInterfaces...),
			DiskPath:     DefaultDiskPath,
		},
		Render: RenderConfig{
			FPS:           DefaultFPS,
			StatsInterval: DefaultStatsInterval,
			Sprites:       DefaultSprites,
			SpriteWidth:   DefaultSpriteWidth,
			SpriteHeight:  DefaultSpriteHeight,
			SpriteSpeed:   DefaultSpriteSpeed,
		},
		Display: DisplayConfig{
			Driver:   DefaultDriver,
			Width:    DefaultWidth,
			Height:   DefaultHeight,
			Rotation: DefaultRotation,
		},
		MQTT: MQTTConfig{
			EchoSuffix: DefaultEchoSuffix,
			Timeout:    DefaultMQTTTimeout,
		},
		InfluxDB: InfluxDBConfig{
			Window:  DefaultInfluxWindow,
			Timeout: DefaultInfluxTimeout,
		},
	}
}

// CanvasSize returns the drawable size after applying the rotation.
// Quarter turns (1 and 3) swap width and height.
func (d DisplayConfig) CanvasSize() (width, height int) {
	if d.Rotation%2 == 1 {
		return d.Height, d.Width
	}
	return d.Width, d.Height
}

// Enabled reports whether the MQTT event source is configured.
func (m MQTTConfig) Enabled() bool {
	return strings.TrimSpace(m.Server) != ""
}

// Enabled reports whether every InfluxDB connection field is set.
func (i InfluxDBConfig) Enabled() bool {
	return i.URL != "" && i.Org != "" && i.Bucket != "" && i.Token != ""
}

// ParseCommaSeparated parses a comma-separated string into a slice of trimmed strings.
func ParseCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Sampler.FastInterval < 100*time.Millisecond {
		return errors.New("fast sampling interval must be at least 100ms")
	}

	if c.Sampler.SlowInterval < c.Sampler.FastInterval {
		return errors.New("slow sampling interval must not be shorter than the fast interval")
	}

	if len(c.Sampler.Interfaces) == 0 {
		return errors.New("at least one preferred network interface is required")
	}

	if c.Sampler.DiskPath == "" {
		return errors.New("disk path cannot be empty")
	}

	if c.Render.FPS < 1 || c.Render.FPS > 120 {
		return fmt.Errorf("invalid fps: %d (must be between 1 and 120)", c.Render.FPS)
	}

	if c.Render.StatsInterval < 100*time.Millisecond {
		return errors.New("stats interval must be at least 100ms")
	}

	if c.Render.Sprites < 0 {
		return errors.New("sprite count cannot be negative")
	}

	if c.Render.SpriteWidth < 1 || c.Render.SpriteHeight < 1 {
		return errors.New("sprite size must be at least 1x1")
	}

	if c.Display.Width < 1 || c.Display.Height < 1 {
		return errors.New("display size must be at least 1x1")
	}

	if c.Display.Rotation < 0 || c.Display.Rotation > 3 {
		return fmt.Errorf("invalid rotation: %d (must be 0, 1, 2 or 3)", c.Display.Rotation)
	}

	switch c.Display.Driver {
	case DriverTerminal, DriverConsole:
	default:
		return fmt.Errorf("invalid display driver: %s (must be terminal or console)", c.Display.Driver)
	}

	if c.MQTT.Enabled() && strings.TrimSpace(c.MQTT.Topic) == "" {
		return errors.New("mqtt topic is required when an mqtt server is set")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	return nil
}

// String returns a human-readable representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Fast=%v, Slow=%v, Interfaces=%v, FPS=%d, Display=%s %dx%d rot %d, MQTT=%t, InfluxDB=%t}",
		c.Sampler.FastInterval, c.Sampler.SlowInterval, c.Sampler.Interfaces, c.Render.FPS,
		c.Display.Driver, c.Display.Width, c.Display.Height, c.Display.Rotation,
		c.MQTT.Enabled(), c.InfluxDB.Enabled())
}
