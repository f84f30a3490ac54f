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

package thresholds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/phuonguno98/statpanel/internal/config"
	"github.com/phuonguno98/statpanel/pkg/metrics"
)

// errNoRecord is returned when a query matched nothing.
var errNoRecord = errors.New("no record")

// fluxQuerier runs a Flux query and returns the value of its first record.
type fluxQuerier interface {
	FirstValue(ctx context.Context, query string) (float64, error)
}

// Influx reads bounds from an InfluxDB 2 bucket.
type Influx struct {
	client  influxdb2.Client
	querier fluxQuerier
	bucket  string
	window  time.Duration
	timeout time.Duration
	logger  *slog.Logger
}

// NewInflux creates a provider from the InfluxDB configuration.
func NewInflux(cfg config.InfluxDBConfig, logger *slog.Logger) *Influx {
	if logger == nil {
		logger = slog.Default()
	}

	opts := influxdb2.DefaultOptions()
	if cfg.Timeout > 0 {
		opts.SetHTTPRequestTimeout(uint(cfg.Timeout.Seconds()))
	}
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, opts)

	return &Influx{
		client:  client,
		querier: queryAPI{api: client.QueryAPI(cfg.Org)},
		bucket:  cfg.Bucket,
		window:  cfg.Window,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Health logs the server health. It only reports; a failing check does not
// disable the provider.
func (p *Influx) Health(ctx context.Context) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	health, err := p.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("influxdb health check: %w", err)
	}

	message := ""
	if health.Message != nil {
		message = *health.Message
	}
	p.logger.Info("InfluxDB connection status", "status", health.Status, "message", message)
	return nil
}

// Lookup queries the warn, crit and max bounds of every source.
func (p *Influx) Lookup(ctx context.Context, hostname string) metrics.Thresholds {
	out := make(metrics.Thresholds, len(Sources))

	for _, src := range Sources {
		var b metrics.Bounds
		b.Warn = p.value(ctx, hostname, src, FieldWarn)
		b.Crit = p.value(ctx, hostname, src, FieldCrit)
		b.Max = p.value(ctx, hostname, src, FieldMax)
		if b.Warn != nil || b.Crit != nil || b.Max != nil {
			out[src.Metric] = b
		}
	}

	return out
}

// Close releases the HTTP client.
func (p *Influx) Close() {
	p.client.Close()
}

func (p *Influx) value(ctx context.Context, hostname string, src Source, field string) *float64 {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	v, err := p.querier.FirstValue(ctx, BuildQuery(p.bucket, p.window, hostname, src, field))
	if err != nil {
		if !errors.Is(err, errNoRecord) {
			p.logger.Warn("Threshold query failed",
				"metric", src.Metric,
				"field", field,
				"error", err,
			)
		}
		return nil
	}
	return metrics.Float(v)
}

func (p *Influx) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

// BuildQuery returns the Flux query for one bound of one metric. The host name
// is matched as a regular expression with its metacharacters escaped.
func BuildQuery(bucket string, window time.Duration, hostname string, src Source, field string) string {
	if window <= 0 {
		window = config.DefaultInfluxWindow
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "from(bucket: %s)\n", strconv.Quote(bucket))
	fmt.Fprintf(&sb, "  |> range(start: -%s)\n", window)
	fmt.Fprintf(&sb, "  |> filter(fn: (r) => r[\"_measurement\"] == %s)\n", strconv.Quote(src.Measurement))
	fmt.Fprintf(&sb, "  |> filter(fn: (r) => r[\"_field\"] == %s)\n", strconv.Quote(field))
	fmt.Fprintf(&sb, "  |> filter(fn: (r) => r[\"hostname\"] =~ /%s/)\n", escapeRegex(hostname))
	fmt.Fprintf(&sb, "  |> filter(fn: (r) => r[\"metric\"] == %s)\n", strconv.Quote(src.Path))
	sb.WriteString("  |> last()")
	return sb.String()
}

// escapeRegex quotes a literal for a Flux regex literal, which is delimited by slashes.
func escapeRegex(s string) string {
	return strings.ReplaceAll(regexp.QuoteMeta(s), "/", `\/`)
}

// queryAPI adapts the client's query API to fluxQuerier.
type queryAPI struct {
	api api.QueryAPI
}

func (q queryAPI) FirstValue(ctx context.Context, query string) (float64, error) {
	result, err := q.api.Query(ctx, query)
	if err != nil {
		return 0, err
	}
	defer result.Close()

	if result.Next() {
		return toFloat(result.Record().Value())
	}
	if err := result.Err(); err != nil {
		return 0, err
	}
	return 0, errNoRecord
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("non-numeric value %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}
