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

package collector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phuonguno98/statpanel/internal/config"
	"github.com/phuonguno98/statpanel/internal/devices"
	"github.com/phuonguno98/statpanel/internal/store"
	"github.com/phuonguno98/statpanel/pkg/metrics"
)

var errUnavailable = errors.New("unavailable")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFetcher returns a fetcher with fixed readings. netTotal is read on
// every counter call so tests can advance it.
func fakeFetcher(netTotal *atomic.Uint64) SystemStatFetcher {
	return SystemStatFetcher{
		LoadAvg: func() (*load.AvgStat, error) {
			return &load.AvgStat{Load1: 0.46, Load5: 0.3, Load15: 0.2}, nil
		},
		CPUInfo: func() ([]cpu.InfoStat, error) {
			return []cpu.InfoStat{{Mhz: 1800}}, nil
		},
		Temperatures: func() ([]host.TemperatureStat, error) {
			return []host.TemperatureStat{{SensorKey: "cpu_thermal", Temperature: 48.3}}, nil
		},
		VirtualMemory: func() (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Total: 16e9, Available: 8e9}, nil
		},
		DiskUsage: func(path string) (*disk.UsageStat, error) {
			return &disk.UsageStat{Path: path, Total: 64e9, Used: 12e9}, nil
		},
		NetIOCounters: func(bool) ([]net.IOCountersStat, error) {
			v := netTotal.Load()
			return []net.IOCountersStat{{Name: "all", BytesSent: v / 2, BytesRecv: v - v/2}}, nil
		},
		ProcessPids: func() ([]int32, error) {
			return []int32{1, 2, 3}, nil
		},
		ReadFile: func(name string) ([]byte, error) {
			switch {
			case strings.HasSuffix(name, "scaling_cur_freq"):
				return []byte("1500000\n"), nil
			case strings.HasSuffix(name, "cpuinfo_max_freq"):
				return []byte("1800000\n"), nil
			}
			return nil, errUnavailable
		},
		Hostname: func() (string, error) { return "pi", nil },
		SelectInterface: func([]string) (devices.Selection, bool, error) {
			return devices.Selection{Name: "eth0", IPAddress: "192.168.1.10", SpeedMbps: 1000}, true, nil
		},
	}
}

func failingFetcher() SystemStatFetcher {
	return SystemStatFetcher{
		LoadAvg:       func() (*load.AvgStat, error) { return nil, errUnavailable },
		CPUInfo:       func() ([]cpu.InfoStat, error) { return nil, errUnavailable },
		Temperatures:  func() ([]host.TemperatureStat, error) { return nil, errUnavailable },
		VirtualMemory: func() (*mem.VirtualMemoryStat, error) { return nil, errUnavailable },
		DiskUsage:     func(string) (*disk.UsageStat, error) { return nil, errUnavailable },
		NetIOCounters: func(bool) ([]net.IOCountersStat, error) { return nil, errUnavailable },
		ProcessPids:   func() ([]int32, error) { return nil, errUnavailable },
		ReadFile:      func(string) ([]byte, error) { return nil, errUnavailable },
		Hostname:      func() (string, error) { return "", errUnavailable },
		SelectInterface: func([]string) (devices.Selection, bool, error) {
			return devices.Selection{}, false, errUnavailable
		},
	}
}

type staticProvider struct {
	t     metrics.Thresholds
	calls atomic.Int32
	host  atomic.Value
}

func (p *staticProvider) Lookup(_ context.Context, hostname string) metrics.Thresholds {
	p.calls.Add(1)
	p.host.Store(hostname)
	return p.t.Clone()
}

func TestFastSampler_Sample(t *testing.T) {
	var total atomic.Uint64
	total.Store(1000)

	f := NewFastSampler("/", discardLogger())
	f.SetFetcher(fakeFetcher(&total))

	s := f.Sample()
	assert.Equal(t, 0.5, s.CPULoad)
	assert.Equal(t, 1500.0, s.CPUClockMHz)
	assert.Equal(t, 48.3, s.CPUTempC)
	assert.Equal(t, uint64(8e9), s.MemUsedBytes)
	assert.Equal(t, uint64(16e9), s.MemTotalBytes)
	assert.Equal(t, uint64(12e9), s.DiskUsedBytes)
	assert.Equal(t, uint64(64e9), s.DiskTotalBytes)
	assert.Equal(t, uint32(3), s.ProcessCount)
	assert.Equal(t, uint64(0), s.NetDeltaBytes, "first pass only sets the baseline")
	assert.Zero(t, s.Interval)
}

func TestFastSampler_NetDelta(t *testing.T) {
	var total atomic.Uint64
	f := NewFastSampler("/", discardLogger())
	f.SetFetcher(fakeFetcher(&total))

	steps := []struct {
		counter uint64
		want    uint64
	}{
		{5000, 0},
		{5000, 0},
		{7500, 2500},
		{10000, 2500},
		{300, 0}, // counter reset
		{800, 500},
	}

	for i, step := range steps {
		total.Store(step.counter)
		got := f.Sample().NetDeltaBytes
		assert.Equal(t, step.want, got, "step %d", i)
	}
}

func TestFastSampler_FailedCounterKeepsBaseline(t *testing.T) {
	var total atomic.Uint64
	fetcher := fakeFetcher(&total)
	healthy := fetcher.NetIOCounters
	var broken atomic.Bool
	fetcher.NetIOCounters = func(pernic bool) ([]net.IOCountersStat, error) {
		if broken.Load() {
			return nil, errUnavailable
		}
		return healthy(pernic)
	}

	f := NewFastSampler("/", discardLogger())
	f.SetFetcher(fetcher)

	total.Store(100)
	f.Sample()

	broken.Store(true)
	total.Store(400)
	assert.Equal(t, uint64(0), f.Sample().NetDeltaBytes)

	broken.Store(false)
	total.Store(700)
	assert.Equal(t, uint64(600), f.Sample().NetDeltaBytes)
}

func TestFastSampler_ReadFailuresFallBackToZero(t *testing.T) {
	f := NewFastSampler("/", discardLogger())
	f.SetFetcher(failingFetcher())

	s := f.Sample()
	assert.False(t, s.Timestamp.IsZero())
	assert.Zero(t, s.CPULoad)
	assert.Zero(t, s.CPUClockMHz)
	assert.Zero(t, s.CPUTempC)
	assert.Zero(t, s.MemUsedBytes)
	assert.Zero(t, s.DiskTotalBytes)
	assert.Zero(t, s.NetDeltaBytes)
	assert.Zero(t, s.ProcessCount)
}

func TestFastSampler_Interval(t *testing.T) {
	var total atomic.Uint64
	f := NewFastSampler("/", discardLogger())
	f.SetFetcher(fakeFetcher(&total))

	base := time.Unix(1_700_000_000, 0)
	ticks := []time.Time{base, base.Add(2 * time.Second)}
	i := 0
	f.now = func() time.Time {
		ts := ticks[i]
		i++
		return ts
	}

	assert.Zero(t, f.Sample().Interval)
	assert.Equal(t, 2*time.Second, f.Sample().Interval)
}

func TestReadClock_FallsBackToCPUInfo(t *testing.T) {
	var total atomic.Uint64
	fetcher := fakeFetcher(&total)
	fetcher.ReadFile = func(string) ([]byte, error) { return nil, errUnavailable }

	mhz, err := readClock(fetcher)
	require.NoError(t, err)
	assert.Equal(t, 1800.0, mhz)
}

func TestReadTemp_PartialWarning(t *testing.T) {
	fetcher := SystemStatFetcher{
		Temperatures: func() ([]host.TemperatureStat, error) {
			return []host.TemperatureStat{{Temperature: 51}}, errors.New("some sensors unreadable")
		},
	}
	got, err := readTemp(fetcher)
	require.NoError(t, err)
	assert.Equal(t, 51.0, got)

	fetcher.Temperatures = func() ([]host.TemperatureStat, error) { return nil, nil }
	_, err = readTemp(fetcher)
	assert.Error(t, err)
}

func TestSlowSampler_Sample(t *testing.T) {
	var total atomic.Uint64
	provider := &staticProvider{t: metrics.Thresholds{
		metrics.MetricMem: {Warn: metrics.Float(6e9), Crit: metrics.Float(10e9)},
	}}

	s := NewSlowSampler([]string{"eth0", "wlan0"}, 2*time.Second, provider, discardLogger())
	s.SetFetcher(fakeFetcher(&total))

	info, th := s.Sample(context.Background())
	assert.Equal(t, "pi", info.Hostname)
	assert.Equal(t, "eth0", info.Interface)
	assert.Equal(t, "192.168.1.10", info.IPAddress)
	assert.Equal(t, uint32(1000), info.LinkSpeedMbps)
	assert.Equal(t, 1800.0, info.CPUMaxClockMHz)
	assert.Equal(t, "pi", provider.host.Load())

	assert.True(t, th.Get(metrics.MetricMem).Complete())

	clock := th.Get(metrics.MetricClock)
	require.True(t, clock.Complete())
	assert.InDelta(t, 1440.0, *clock.Warn, 1e-9)
	assert.Equal(t, 1800.0, *clock.Crit)

	// 1000 Mb/s over 2 s is 250 MB.
	netBounds := th.Get(metrics.MetricNet)
	require.True(t, netBounds.Complete())
	assert.InDelta(t, 175e6, *netBounds.Warn, 1)
	assert.InDelta(t, 250e6, *netBounds.Crit, 1)
}

func TestSlowSampler_NoInterfaceLeavesNetUnbounded(t *testing.T) {
	var total atomic.Uint64
	fetcher := fakeFetcher(&total)
	fetcher.SelectInterface = func([]string) (devices.Selection, bool, error) {
		return devices.Selection{}, false, nil
	}

	s := NewSlowSampler([]string{"eth0"}, 2*time.Second, nil, discardLogger())
	s.SetFetcher(fetcher)

	info, th := s.Sample(context.Background())
	assert.Empty(t, info.IPAddress)
	assert.Empty(t, info.Interface)
	assert.False(t, th.Get(metrics.MetricNet).Complete())
	assert.True(t, th.Get(metrics.MetricClock).Complete())
}

func TestSlowSampler_FailuresYieldEmptyValues(t *testing.T) {
	s := NewSlowSampler([]string{"eth0"}, time.Second, nil, discardLogger())
	s.SetFetcher(failingFetcher())

	info, th := s.Sample(context.Background())
	assert.Empty(t, info.Hostname)
	assert.Empty(t, info.IPAddress)
	assert.Zero(t, info.CPUMaxClockMHz)
	assert.Empty(t, th)
}

func newTestManager(t *testing.T, fast time.Duration, total *atomic.Uint64, provider *staticProvider) (*Manager, *store.Store) {
	t.Helper()
	cfg := config.Default()
	cfg.Sampler.FastInterval = fast

	st := store.New()
	m := NewManager(cfg, st, provider, discardLogger())
	m.fast.SetFetcher(fakeFetcher(total))
	m.slow.SetFetcher(fakeFetcher(total))
	return m, st
}

func TestManager_Prime(t *testing.T) {
	var total atomic.Uint64
	provider := &staticProvider{}
	m, st := newTestManager(t, time.Second, &total, provider)

	require.False(t, st.Ready())
	require.NoError(t, m.Prime(context.Background()))
	assert.True(t, st.Ready())
	assert.Equal(t, int32(1), provider.calls.Load())

	snap, th, ok := st.Read()
	require.True(t, ok)
	assert.Equal(t, "pi", snap.Hostname)
	assert.Equal(t, uint64(8e9), snap.MemUsedBytes)
	assert.True(t, th.Get(metrics.MetricClock).Complete())
}

func TestManager_PrimeCancelled(t *testing.T) {
	var total atomic.Uint64
	m, st := newTestManager(t, time.Second, &total, &staticProvider{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Prime(ctx), context.Canceled)
	_, ok := st.Sample()
	assert.False(t, ok, "fast pass must not run after cancellation")
}

// blockingProvider never answers before its context ends.
type blockingProvider struct{}

func (blockingProvider) Lookup(ctx context.Context, _ string) metrics.Thresholds {
	<-ctx.Done()
	return nil
}

func TestManager_PrimeBoundedBySlowPassTimeout(t *testing.T) {
	var total atomic.Uint64
	cfg := config.Default()
	st := store.New()
	m := NewManager(cfg, st, blockingProvider{}, discardLogger())
	m.fast.SetFetcher(fakeFetcher(&total))
	m.slow.SetFetcher(fakeFetcher(&total))
	m.passTimeout = 50 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- m.Prime(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Prime did not honor the slow pass timeout")
	}

	snap, th, ok := st.Read()
	require.True(t, ok)
	assert.Equal(t, "pi", snap.Hostname)
	assert.False(t, th.Get(metrics.MetricMem).Complete())
}

func TestManager_StartRunsFastLoop(t *testing.T) {
	var total atomic.Uint64
	provider := &staticProvider{}
	m, st := newTestManager(t, 20*time.Millisecond, &total, provider)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	// Feed traffic and wait for a non-zero delta to be published.
	deadline := time.After(2 * time.Second)
	for {
		total.Add(1000)
		if s, ok := st.Sample(); ok && s.NetDeltaBytes > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("fast loop did not publish a delta")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}

	assert.True(t, st.Ready())
	assert.Equal(t, int32(1), provider.calls.Load(), "the slow schedule is hourly")
}
