// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/hwcounters/pmubench/events"
	"github.com/hwcounters/pmubench/perf"
	"github.com/hwcounters/pmubench/perfrand"
)

const (
	branchNum = 4096
	sampleNum = 200
	iteratNum = 128
)

// branchKernel runs one sample's worth of work: BRANCH_NUM iterations of a
// branch whose predictability is controlled by threshold (0 = never taken,
// sampleNum = always taken). The taken/not-taken arms do different amounts
// of unpredictable work so the branch can't be optimized away, but their
// cost is otherwise irrelevant — only the branch itself is being measured.
func branchKernel(r *perfrand.Rand, threshold int) {
	for i := 0; i < branchNum; i++ {
		if int(r.Uint32()%sampleNum) < threshold {
			_ = r.Uint32()
			_ = r.Uint32()
			_ = r.Uint32()
			_ = r.Uint32()
		} else {
			_ = r.Uint64()
			_ = r.Uint64()
		}
	}
}

// branchCurveSample is one point of the measured curve.
type branchCurveSample struct {
	threshold int
	cycles    uint64
	misses    uint64
}

// measureBranchCurve runs branchKernel for every threshold in
// [0, sampleNum], iteratNum times each, measuring Cycles and BranchMisses
// with a fresh Session per threshold. It returns one sample per threshold,
// in threshold order.
func measureBranchCurve() ([]branchCurveSample, error) {
	samples := make([]branchCurveSample, 0, sampleNum+1)

	for threshold := 0; threshold <= sampleNum; threshold++ {
		s := perf.NewSession()
		if err := s.AddEvent(events.Cycles); err != nil {
			s.Close()
			return nil, fmt.Errorf("pmudemo: cycles unavailable: %w", err)
		}
		if err := s.AddEvent(events.BranchMisses); err != nil {
			s.Close()
			return nil, fmt.Errorf("pmudemo: branch-misses unavailable: %w", err)
		}
		if err := s.Open(); err != nil {
			s.Close()
			return nil, fmt.Errorf("pmudemo: open failed: %w", err)
		}

		r := perfrand.New()
		if err := s.Start(); err != nil {
			s.Close()
			return nil, err
		}
		for i := 0; i < iteratNum; i++ {
			branchKernel(r, threshold)
		}
		if err := s.Stop(); err != nil {
			s.Close()
			return nil, err
		}

		counts, err := s.Counters()
		s.Close()
		if err != nil {
			return nil, err
		}
		samples = append(samples, branchCurveSample{threshold, counts[0], counts[1]})
	}
	return samples, nil
}

// branchCurveRatio subtracts the linear interpolation of the cycles
// endpoints from the cycles series (removing the baseline cost common to
// every sample), normalizes both series by branchNum*iteratNum, and
// returns the peak of cycles/misses across all samples where misses is
// nonzero.
func branchCurveRatio(samples []branchCurveSample) float64 {
	n := len(samples)
	if n < 2 {
		return 0
	}
	c0 := float64(samples[0].cycles)
	c1 := float64(samples[n-1].cycles)
	denom := float64(branchNum * iteratNum)

	var peak float64
	for i, s := range samples {
		frac := float64(i) / float64(n-1)
		baseline := c0 + (c1-c0)*frac
		adjCycles := (float64(s.cycles) - baseline) / denom
		misses := float64(s.misses) / denom
		if misses == 0 {
			continue
		}
		ratio := adjCycles / misses
		if ratio > peak {
			peak = ratio
		}
	}
	return peak
}
