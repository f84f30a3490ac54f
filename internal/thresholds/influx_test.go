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
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phuonguno98/statpanel/pkg/metrics"
)

// fakeQuerier answers queries by matching measurement and field.
type fakeQuerier struct {
	values map[string]float64 // key: measurement/field
	errs   map[string]error
	seen   []string
}

func (f *fakeQuerier) FirstValue(_ context.Context, query string) (float64, error) {
	f.seen = append(f.seen, query)
	for key, err := range f.errs {
		if matches(query, key) {
			return 0, err
		}
	}
	for key, v := range f.values {
		if matches(query, key) {
			return v, nil
		}
	}
	return 0, errNoRecord
}

func matches(query, key string) bool {
	measurement, field, _ := strings.Cut(key, "/")
	return strings.Contains(query, `r["_measurement"] == "`+measurement+`"`) &&
		strings.Contains(query, `r["_field"] == "`+field+`"`)
}

func newTestInflux(q fluxQuerier) *Influx {
	return &Influx{
		querier: q,
		bucket:  "telegraf",
		window:  time.Hour,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestBuildQuery(t *testing.T) {
	src := Source{Metric: metrics.MetricMem, Measurement: "mem", Path: "USED"}
	q := BuildQuery("telegraf", time.Hour, "pi.local", src, FieldWarn)

	assert.Contains(t, q, `from(bucket: "telegraf")`)
	assert.Contains(t, q, `range(start: -1h0m0s)`)
	assert.Contains(t, q, `r["_measurement"] == "mem"`)
	assert.Contains(t, q, `r["_field"] == "warn"`)
	assert.Contains(t, q, `r["hostname"] =~ /pi\.local/`)
	assert.Contains(t, q, `r["metric"] == "USED"`)
}

func TestBuildQuery_EscapesHostname(t *testing.T) {
	q := BuildQuery("b", 0, "a/b+c", Sources[0], FieldCrit)
	assert.Contains(t, q, `=~ /a\/b\+c/`)
	assert.Contains(t, q, "range(start: -1h0m0s)", "zero window falls back to the default")
}

func TestInflux_Lookup(t *testing.T) {
	q := &fakeQuerier{
		values: map[string]float64{
			"mem/warn":  6e9,
			"mem/crit":  10e9,
			"load/warn": 2,
			"load/max":  4,
		},
		errs: map[string]error{
			"load/crit": errors.New("timeout"),
		},
	}

	got := newTestInflux(q).Lookup(context.Background(), "pi")

	mem := got.Get(metrics.MetricMem)
	require.True(t, mem.Complete())
	assert.Equal(t, 6e9, *mem.Warn)
	assert.Equal(t, 10e9, *mem.Crit)
	assert.Nil(t, mem.Max)

	load := got.Get(metrics.MetricLoad)
	assert.False(t, load.Complete(), "a failed crit lookup leaves the bound absent")
	require.NotNil(t, load.Warn)
	require.NotNil(t, load.Max)
	assert.Equal(t, 4.0, *load.Max)

	_, hasDisk := got[metrics.MetricDisk]
	assert.False(t, hasDisk, "metrics without any bound are omitted")

	assert.Len(t, q.seen, len(Sources)*3)
}

func TestNop(t *testing.T) {
	got := Nop{}.Lookup(context.Background(), "pi")
	assert.Empty(t, got)
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in      interface{}
		want    float64
		wantErr bool
	}{
		{1.5, 1.5, false},
		{int64(3), 3, false},
		{uint64(7), 7, false},
		{"2.5", 2.5, false},
		{"high", 0, true},
		{true, 0, true},
	}
	for _, tt := range tests {
		got, err := toFloat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "%v", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
