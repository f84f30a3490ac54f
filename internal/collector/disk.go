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

import "fmt"

// readDisk returns used and total bytes of the filesystem mounted at path.
func readDisk(f SystemStatFetcher, path string) (used, total uint64, err error) {
	usage, err := f.DiskUsage(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get disk usage of %s: %w", path, err)
	}
	return usage.Used, usage.Total, nil
}

// readProcs returns the number of live processes.
func readProcs(f SystemStatFetcher) (uint32, error) {
	pids, err := f.ProcessPids()
	if err != nil {
		return 0, fmt.Errorf("failed to list processes: %w", err)
	}
	return uint32(len(pids)), nil
}
