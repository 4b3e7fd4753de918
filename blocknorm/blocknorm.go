// Copyright (c) 2025, The Handwriting Decoding Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package blocknorm z-scores neural samples per recording block, using
channel statistics computed from a designated in-block reference window or
supplied externally (precomputed per-block means with session-wide
stddevs).

A channel with zero variance in the reference window carries no
discriminative signal; its z-scores are neutralized to exactly 0 rather
than propagating NaN/Inf into the feature vectors. Neutralization is
counted (ZeroVar) but is not an error.
*/
package blocknorm

import (
	"errors"
	"fmt"

	"github.com/emer/etable/v2/etensor"
	"github.com/emer/etable/v2/minmax"
	"github.com/goki/mat32"
)

// ErrNoReference reports an empty reference window: no bins to compute
// block statistics from.
var ErrNoReference = errors.New("blocknorm: empty reference window")

// Interval is a half-open range of time bins [Start, End).
type Interval struct {
	Start int `desc:"first bin of the interval"`
	End   int `desc:"bin after the last bin of the interval"`
}

// Stats holds per-channel normalization statistics for one block.
type Stats struct {
	Mean     []float32       `desc:"per-channel mean over the reference window"`
	Std      []float32       `desc:"per-channel population stddev over the reference window"`
	ZeroVar  int             `desc:"number of zero-variance channels, neutralized to 0 when applied"`
	RefBins  int             `desc:"number of reference bins the statistics were computed from (0 for supplied moments)"`
	RefRange minmax.AvgMax32 `desc:"average and max over all reference samples, for auditing"`
}

// RefStats computes per-channel mean and population stddev over the given
// reference intervals of the neural series (rows = bins, cols = channels).
// Intervals must lie within the series; an empty union is an error.
func RefStats(neural *etensor.Float32, ref []Interval) (*Stats, error) {
	nb := neural.Dim(0)
	nc := neural.Dim(1)
	st := &Stats{Mean: make([]float32, nc), Std: make([]float32, nc)}
	st.RefRange.Init()
	for _, iv := range ref {
		if iv.Start < 0 || iv.End > nb || iv.Start > iv.End {
			return nil, fmt.Errorf("blocknorm: reference interval [%d, %d) outside series of %d bins", iv.Start, iv.End, nb)
		}
		for bin := iv.Start; bin < iv.End; bin++ {
			for ci := 0; ci < nc; ci++ {
				v := neural.Values[bin*nc+ci]
				st.Mean[ci] += v
				st.RefRange.UpdateVal(v, int32(st.RefBins*nc+ci))
			}
			st.RefBins++
		}
	}
	if st.RefBins == 0 {
		return nil, ErrNoReference
	}
	st.RefRange.CalcAvg()
	n := float32(st.RefBins)
	for ci := range st.Mean {
		st.Mean[ci] /= n
	}
	for _, iv := range ref {
		for bin := iv.Start; bin < iv.End; bin++ {
			for ci := 0; ci < nc; ci++ {
				dv := neural.Values[bin*nc+ci] - st.Mean[ci]
				st.Std[ci] += dv * dv
			}
		}
	}
	for ci := range st.Std {
		st.Std[ci] = mat32.Sqrt(st.Std[ci] / n)
		if st.Std[ci] == 0 {
			st.ZeroVar++
		}
	}
	return st, nil
}

// FromMoments wraps externally supplied statistics: per-block channel
// means and (typically session-wide) channel stddevs.
func FromMoments(mean, std []float32) (*Stats, error) {
	if len(mean) != len(std) {
		return nil, fmt.Errorf("blocknorm: %d means vs %d stddevs", len(mean), len(std))
	}
	st := &Stats{Mean: mean, Std: std}
	for ci := range std {
		if std[ci] == 0 {
			st.ZeroVar++
		}
	}
	return st, nil
}

// zval computes one z-scored value, neutralizing non-finite results to 0.
func (st *Stats) zval(v float32, ci int) float32 {
	sd := st.Std[ci]
	if sd == 0 {
		return 0
	}
	z := (v - st.Mean[ci]) / sd
	if mat32.IsNaN(z) || mat32.IsInf(z, 0) {
		return 0
	}
	return z
}

// ZScore returns a z-scored copy of the given samples (rows = bins,
// cols = channels, matching the statistics' channel count). The source is
// not modified.
func (st *Stats) ZScore(src *etensor.Float32) *etensor.Float32 {
	nb := src.Dim(0)
	nc := src.Dim(1)
	out := etensor.NewFloat32([]int{nb, nc}, nil, []string{"Bin", "Chan"})
	for bin := 0; bin < nb; bin++ {
		for ci := 0; ci < nc; ci++ {
			out.Values[bin*nc+ci] = st.zval(src.Values[bin*nc+ci], ci)
		}
	}
	return out
}

// ZScoreRows z-scores the given rows of src into the same rows of dst,
// leaving other rows of dst untouched. Used to normalize one block's bins
// within a whole-session destination matrix.
func (st *Stats) ZScoreRows(dst, src *etensor.Float32, rows []int) {
	nc := src.Dim(1)
	for _, bin := range rows {
		for ci := 0; ci < nc; ci++ {
			dst.Values[bin*nc+ci] = st.zval(src.Values[bin*nc+ci], ci)
		}
	}
}
