// Copyright (c) 2025, The Handwriting Decoding Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package gsmooth applies 1D gaussian smoothing along the time axis of a
trial window, independently per channel.

The kernel is acausal: each smoothed sample draws on bins both before and
after it, within the already-extracted window only -- smoothing never
crosses trial boundaries. The kernel is truncated at Truncate sigmas and
window edges are handled by reflection, matching the behavior of the
standard gaussian_filter1d used on the original recordings.
*/
package gsmooth

import (
	"github.com/emer/etable/v2/etensor"
	"github.com/goki/mat32"
)

// Params are the gaussian smoothing parameters.
type Params struct {
	Sigma    float32 `def:"3" desc:"kernel standard deviation, in time bins -- <= 0 disables smoothing"`
	Truncate float32 `def:"4" desc:"kernel truncation radius, in sigmas"`
}

func (sp *Params) Defaults() {
	sp.Sigma = 3
	sp.Truncate = 4
}

// Radius returns the kernel half-width in bins.
func (sp *Params) Radius() int {
	if sp.Sigma <= 0 {
		return 0
	}
	return int(sp.Truncate*sp.Sigma + 0.5)
}

// Kernel returns the normalized gaussian kernel, of length 2*Radius()+1.
func (sp *Params) Kernel() []float32 {
	rad := sp.Radius()
	kern := make([]float32, 2*rad+1)
	var sum float32
	s2 := 2 * sp.Sigma * sp.Sigma
	for ki := -rad; ki <= rad; ki++ {
		v := mat32.Exp(-float32(ki*ki) / s2)
		kern[ki+rad] = v
		sum += v
	}
	for ki := range kern {
		kern[ki] /= sum
	}
	return kern
}

// reflect maps an out-of-range bin index back into [0, n) by reflection
// about the window edges.
func reflect(bin, n int) int {
	for bin < 0 || bin >= n {
		if bin < 0 {
			bin = -bin - 1
		}
		if bin >= n {
			bin = 2*n - bin - 1
		}
	}
	return bin
}

// Smooth returns a smoothed copy of the given window (rows = bins,
// cols = channels), convolving each channel's time course with the
// gaussian kernel. Output shape equals input shape; the source is not
// modified. Sigma <= 0 returns an unsmoothed copy.
func (sp *Params) Smooth(src *etensor.Float32) *etensor.Float32 {
	nb := src.Dim(0)
	nc := src.Dim(1)
	out := etensor.NewFloat32([]int{nb, nc}, nil, []string{"Bin", "Chan"})
	if sp.Sigma <= 0 {
		copy(out.Values, src.Values)
		return out
	}
	rad := sp.Radius()
	kern := sp.Kernel()
	for ci := 0; ci < nc; ci++ {
		for bin := 0; bin < nb; bin++ {
			var sum float32
			for ki := -rad; ki <= rad; ki++ {
				sum += kern[ki+rad] * src.Values[reflect(bin+ki, nb)*nc+ci]
			}
			out.Values[bin*nc+ci] = sum
		}
	}
	return out
}
