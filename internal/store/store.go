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

// Package store holds the latest telemetry published by the samplers.
//
// Each half of the snapshot (fast sample, slow host info) and the threshold set
// is replaced wholesale under a mutex, so a reader always observes complete
// values from a single sampling pass. Writers and readers never wait on each
// other beyond the critical section; the last writer wins.
package store

import (
	"sync"

	"github.com/phuonguno98/statpanel/pkg/metrics"
)

// Store is the shared telemetry store.
type Store struct {
	mu         sync.RWMutex
	sample     metrics.Sample
	host       metrics.HostInfo
	thresholds metrics.Thresholds
	hasSample  bool
	hasHost    bool
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// ReplaceSample publishes a new fast-sampler result.
func (s *Store) ReplaceSample(sample metrics.Sample) {
	s.mu.Lock()
	s.sample = sample
	s.hasSample = true
	s.mu.Unlock()
}

// ReplaceHost publishes a new slow-sampler host result.
func (s *Store) ReplaceHost(host metrics.HostInfo) {
	s.mu.Lock()
	s.host = host
	s.hasHost = true
	s.mu.Unlock()
}

// ReplaceThresholds publishes a new threshold set. The store keeps its own copy.
func (s *Store) ReplaceThresholds(t metrics.Thresholds) {
	c := t.Clone()
	s.mu.Lock()
	s.thresholds = c
	s.mu.Unlock()
}

// Read returns the current snapshot and a private copy of the thresholds.
// ok is false until both a sample and host info have been published.
func (s *Store) Read() (snap metrics.Snapshot, thresholds metrics.Thresholds, ok bool) {
	s.mu.RLock()
	sample, host, t := s.sample, s.host, s.thresholds
	ok = s.hasSample && s.hasHost
	s.mu.RUnlock()

	return metrics.NewSnapshot(sample, host), t.Clone(), ok
}

// Sample returns the latest fast-sampler result.
func (s *Store) Sample() (metrics.Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sample, s.hasSample
}

// Host returns the latest slow-sampler result.
func (s *Store) Host() (metrics.HostInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.host, s.hasHost
}

// Ready reports whether both samplers have published at least once.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasSample && s.hasHost
}
