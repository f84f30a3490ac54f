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
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/phuonguno98/statpanel/pkg/metrics"
)

// cpufreq attributes of the first core, in kHz.
const (
	cpuCurFreqPath = "/sys/devices/system/cpu/cpu0/cpufreq/scaling_cur_freq"
	cpuMaxFreqPath = "/sys/devices/system/cpu/cpu0/cpufreq/cpuinfo_max_freq"
)

// readLoad returns the 1-minute load average rounded to one decimal.
func readLoad(f SystemStatFetcher) (float64, error) {
	avg, err := f.LoadAvg()
	if err != nil {
		return 0, fmt.Errorf("failed to get load average: %w", err)
	}
	return metrics.Round(avg.Load1, 1), nil
}

// readClock returns the current clock of the first core in MHz.
// Platforms without cpufreq fall back to the nominal clock reported by cpu.Info.
func readClock(f SystemStatFetcher) (float64, error) {
	if mhz, err := readKHzAsMHz(f, cpuCurFreqPath); err == nil {
		return mhz, nil
	}
	return nominalClock(f)
}

// readMaxClock returns the maximum clock of the first core in MHz.
func readMaxClock(f SystemStatFetcher) (float64, error) {
	if mhz, err := readKHzAsMHz(f, cpuMaxFreqPath); err == nil {
		return mhz, nil
	}
	return nominalClock(f)
}

func nominalClock(f SystemStatFetcher) (float64, error) {
	infos, err := f.CPUInfo()
	if err != nil {
		return 0, fmt.Errorf("failed to get CPU info: %w", err)
	}
	if len(infos) == 0 || infos[0].Mhz <= 0 {
		return 0, errors.New("no CPU clock available")
	}
	return infos[0].Mhz, nil
}

func readKHzAsMHz(f SystemStatFetcher, path string) (float64, error) {
	data, err := f.ReadFile(path)
	if err != nil {
		return 0, err
	}
	khz, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency in %s: %w", path, err)
	}
	if khz <= 0 {
		return 0, fmt.Errorf("invalid frequency in %s: %v", path, khz)
	}
	return khz / 1000, nil
}

// readTemp returns the first sensor reading in Celsius. gopsutil reports
// unreadable sensors as a warning alongside the readable ones, so any
// returned entry is used even when err is set.
func readTemp(f SystemStatFetcher) (float64, error) {
	temps, err := f.Temperatures()
	if len(temps) > 0 {
		return temps[0].Temperature, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read temperature sensors: %w", err)
	}
	return 0, errors.New("no temperature sensor")
}
