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
	"os"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/phuonguno98/statpanel/internal/devices"
)

// SystemStatFetcher groups every system read the samplers perform.
// Tests replace individual fields.
type SystemStatFetcher struct {
	LoadAvg         func() (*load.AvgStat, error)
	CPUInfo         func() ([]cpu.InfoStat, error)
	Temperatures    func() ([]host.TemperatureStat, error)
	VirtualMemory   func() (*mem.VirtualMemoryStat, error)
	DiskUsage       func(path string) (*disk.UsageStat, error)
	NetIOCounters   func(pernic bool) ([]net.IOCountersStat, error)
	ProcessPids     func() ([]int32, error)
	ReadFile        func(name string) ([]byte, error)
	Hostname        func() (string, error)
	SelectInterface func(preference []string) (devices.Selection, bool, error)
}

// DefaultFetcher returns a fetcher backed by gopsutil and the local filesystem.
func DefaultFetcher() SystemStatFetcher {
	return SystemStatFetcher{
		LoadAvg:         load.Avg,
		CPUInfo:         cpu.Info,
		Temperatures:    host.SensorsTemperatures,
		VirtualMemory:   mem.VirtualMemory,
		DiskUsage:       disk.Usage,
		NetIOCounters:   net.IOCounters,
		ProcessPids:     process.Pids,
		ReadFile:        os.ReadFile,
		Hostname:        os.Hostname,
		SelectInterface: devices.SelectInterface,
	}
}
