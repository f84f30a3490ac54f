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

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every automatically bound environment variable.
const EnvPrefix = "STATPANEL"

// legacyEnv keeps the deployment variable names of the container image working.
var legacyEnv = map[string][]string{
	"mqtt.server":      {"MQTT_SERVER"},
	"mqtt.topic":       {"MOTION_TOPIC"},
	"display.rotation": {"LCD_ROTATION"},
	"influxdb.url":     {"INFLUXDB_URL"},
	"influxdb.org":     {"INFLUXDB_ORG"},
	"influxdb.bucket":  {"INFLUXDB_BUCKET"},
	"influxdb.token":   {"INFLUXDB_TOKEN"},
}

// FlagKeys maps command-line flag names to configuration keys.
var FlagKeys = map[string]string{
	"log-level":      "log.level",
	"log-file":       "log.file",
	"fast-interval":  "sampler.fast_interval",
	"slow-interval":  "sampler.slow_interval",
	"interfaces":     "sampler.interfaces",
	"disk-path":      "sampler.disk_path",
	"fps":            "render.fps",
	"stats-interval": "render.stats_interval",
	"sprites":        "render.sprites",
	"display":        "display.driver",
	"width":          "display.width",
	"height":         "display.height",
	"rotation":       "display.rotation",
	"mqtt-server":    "mqtt.server",
	"mqtt-topic":     "mqtt.topic",
	"listen":         "server.addr",
}

// Load builds the configuration from defaults, an optional YAML file, environment
// variables and command-line flags, in increasing order of precedence.
// An empty configFile searches ./statpanel.yaml and /etc/statpanel/statpanel.yaml.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		args := append([]string{key}, names...)
		args = append(args, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("statpanel")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/statpanel/")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)

	v.SetDefault("sampler.fast_interval", d.Sampler.FastInterval)
	v.SetDefault("sampler.slow_interval", d.Sampler.SlowInterval)
	v.SetDefault("sampler.interfaces", d.Sampler.Interfaces)
	v.SetDefault("sampler.disk_path", d.Sampler.DiskPath)

	v.SetDefault("render.fps", d.Render.FPS)
	v.SetDefault("render.stats_interval", d.Render.StatsInterval)
	v.SetDefault("render.sprites", d.Render.Sprites)
	v.SetDefault("render.sprite_width", d.Render.SpriteWidth)
	v.SetDefault("render.sprite_height", d.Render.SpriteHeight)
	v.SetDefault("render.sprite_speed", d.Render.SpriteSpeed)

	v.SetDefault("display.driver", d.Display.Driver)
	v.SetDefault("display.width", d.Display.Width)
	v.SetDefault("display.height", d.Display.Height)
	v.SetDefault("display.rotation", d.Display.Rotation)

	v.SetDefault("mqtt.server", "")
	v.SetDefault("mqtt.topic", "")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.echo_suffix", d.MQTT.EchoSuffix)
	v.SetDefault("mqtt.timeout", d.MQTT.Timeout)

	v.SetDefault("influxdb.url", "")
	v.SetDefault("influxdb.org", "")
	v.SetDefault("influxdb.bucket", "")
	v.SetDefault("influxdb.token", "")
	v.SetDefault("influxdb.window", d.InfluxDB.Window)
	v.SetDefault("influxdb.timeout", d.InfluxDB.Timeout)

	v.SetDefault("server.addr", "")
}
