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

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/phuonguno98/statpanel/internal/collector"
	"github.com/phuonguno98/statpanel/internal/config"
	"github.com/phuonguno98/statpanel/internal/display"
	"github.com/phuonguno98/statpanel/internal/events"
	"github.com/phuonguno98/statpanel/internal/mode"
	"github.com/phuonguno98/statpanel/internal/render"
	"github.com/phuonguno98/statpanel/internal/server"
	"github.com/phuonguno98/statpanel/internal/shutdown"
	"github.com/phuonguno98/statpanel/internal/store"
	"github.com/phuonguno98/statpanel/internal/thresholds"
	"github.com/phuonguno98/statpanel/pkg/version"
	"github.com/spf13/cobra"
)

const healthCheckTimeout = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the status panel",
	Long: `Start sampling host telemetry and drive the status panel until
SIGINT or SIGTERM is received.

Examples:
  # Full-screen terminal panel with defaults
  statpanel run

  # Plain console output, screensaver driven by a presence sensor
  statpanel run --display console --mqtt-server broker.lan --mqtt-topic hall/motion

  # Expose /metrics and the JSON API
  statpanel run --listen :9120`,
	RunE: runPanel,
}

func init() {
	rootCmd.AddCommand(runCmd)

	addPanelFlags(runCmd)
}

// addPanelFlags registers every flag that config.FlagKeys binds.
func addPanelFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	f.Duration("fast-interval", config.DefaultFastInterval,
		"Fast sampling interval (load, clock, temperature, memory, disk, network, processes)")
	f.Duration("slow-interval", config.DefaultSlowInterval,
		"Slow sampling interval (host identity and thresholds)")
	f.StringSlice("interfaces", config.DefaultInterfaces,
		"Network interface preference order")
	f.String("disk-path", config.DefaultDiskPath,
		"Path whose filesystem is reported as disk usage")

	f.Int("fps", config.DefaultFPS,
		"Screensaver target frame rate")
	f.Duration("stats-interval", config.DefaultStatsInterval,
		"Minimum delay between stats frames")
	f.Int("sprites", config.DefaultSprites,
		"Number of screensaver sprites")

	f.String("display", config.DefaultDriver,
		"Display driver (terminal, console)")
	f.Int("width", config.DefaultWidth, "Panel width in pixels")
	f.Int("height", config.DefaultHeight, "Panel height in pixels")
	f.Int("rotation", config.DefaultRotation, "Panel rotation in quarter turns (0-3)")

	f.String("mqtt-server", "", "MQTT broker address (empty = no presence events)")
	f.String("mqtt-topic", "", "MQTT topic carrying presence payloads")

	f.String("listen", "", "Status server address (empty = disabled)")
}

// loadConfig merges the config file, environment and flags of cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(configFile, cmd.Flags())
}

// runPanel is the main panel entry point.
func runPanel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The terminal sink owns stdout
	logOut := os.Stdout
	if cfg.Display.Driver == config.DriverTerminal {
		logOut = os.Stderr
	}
	logger := InitLogger(cfg.Log.Level, cfg.Log.File, logOut)

	logger.Info("Starting statpanel",
		"version", version.Info(),
		"os", runtime.GOOS,
		"arch", runtime.GOARCH,
	)
	logger.Info("Configuration loaded", "config", cfg.String())

	coord := shutdown.New(logger)

	// Signals are absorbed until cleanup has returned, so a repeated signal
	// during shutdown cannot kill the process mid-cleanup.
	sigCtx, stopSignals := context.WithCancel(context.Background())
	defer stopSignals()
	coord.Watch(sigCtx, os.Interrupt, syscall.SIGTERM)
	defer coord.Cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-coord.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	sink, err := openSink(cfg, coord)
	if err != nil {
		return err
	}
	coord.OnCleanup("display clear", sink.Clear)
	coord.OnCleanup("display release", sink.Release)

	st := store.New()
	controller := mode.NewController(nil, logger)

	width, height := cfg.Display.CanvasSize()
	renderer := render.New(render.Options{
		Width:         width,
		Height:        height,
		FPS:           cfg.Render.FPS,
		StatsInterval: cfg.Render.StatsInterval,
		Sprites:       cfg.Render.Sprites,
		SpriteWidth:   cfg.Render.SpriteWidth,
		SpriteHeight:  cfg.Render.SpriteHeight,
		SpriteSpeed:   cfg.Render.SpriteSpeed,
	}, st, controller, sink, logger)
	renderer.ShowSplash()

	provider := newProvider(ctx, cfg, coord, logger)

	manager := collector.NewManager(cfg, st, provider, logger)
	if err := manager.Prime(ctx); err != nil {
		logger.Info("Startup interrupted", "reason", coord.Reason())
		return nil
	}

	if cfg.MQTT.Enabled() {
		client := events.NewClient(cfg.MQTT, hostname(st, logger), controller, logger)
		controller.SetEchoer(client)
		client.Start(ctx)
		coord.OnCleanup("mqtt disconnect", func() error {
			client.Stop()
			return nil
		})
	} else {
		logger.Info("MQTT not configured, presence events disabled")
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := manager.Start(ctx); err != nil {
			logger.Error("Sampler manager stopped with error", "error", err)
		}
	}()

	if cfg.Server.Addr != "" {
		srv := server.NewServer(st, controller, renderer, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
				logger.Error("Status server stopped with error", "error", err)
			}
		}()
	}

	logger.Info("statpanel is running", "display", cfg.Display.Driver, "width", width, "height", height)

	// The render loop owns the display until shutdown is requested
	renderer.Run(coord.Done())

	logger.Info("Shutting down...", "reason", coord.Reason())
	cancel()
	wg.Wait()

	coord.Cleanup()
	stopSignals()
	logger.Info("Shutdown complete")

	return nil
}

// openSink creates the configured display sink. A keyboard interrupt on the
// terminal requests shutdown like a signal does.
func openSink(cfg *config.Config, coord *shutdown.Coordinator) (display.Sink, error) {
	switch cfg.Display.Driver {
	case config.DriverConsole:
		_, noColor := os.LookupEnv("NO_COLOR")
		return display.NewConsole(os.Stdout, !noColor), nil
	default:
		t, err := display.NewTerminal(func() {
			coord.Request("keyboard interrupt")
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open display: %w", err)
		}
		return t, nil
	}
}

// newProvider returns the InfluxDB threshold provider when it is configured,
// and a provider without thresholds otherwise.
func newProvider(ctx context.Context, cfg *config.Config, coord *shutdown.Coordinator, logger *slog.Logger) thresholds.Provider {
	if !cfg.InfluxDB.Enabled() {
		logger.Info("InfluxDB not configured, metrics are shown without thresholds")
		return thresholds.Nop{}
	}

	influx := thresholds.NewInflux(cfg.InfluxDB, logger)
	coord.OnCleanup("influxdb close", func() error {
		influx.Close()
		return nil
	})

	healthCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := influx.Health(healthCtx); err != nil {
		logger.Warn("InfluxDB health check failed", "url", cfg.InfluxDB.URL, "error", err)
	} else {
		logger.Info("InfluxDB is healthy", "url", cfg.InfluxDB.URL)
	}

	return influx
}

// hostname prefers the name the slow sampler published.
func hostname(st *store.Store, logger *slog.Logger) string {
	if host, ok := st.Host(); ok && host.Hostname != "" {
		return host.Hostname
	}
	name, err := os.Hostname()
	if err != nil {
		logger.Warn("Failed to resolve hostname", "error", err)
		return "localhost"
	}
	return name
}
