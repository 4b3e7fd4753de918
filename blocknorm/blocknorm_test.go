// Copyright (c) 2025, The Handwriting Decoding Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package blocknorm

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/emer/etable/v2/etensor"
	"github.com/goki/mat32"
)

const difTol = float32(1.0e-5)

func randSeries(nb, nc int, seed int64) *etensor.Float32 {
	rnd := rand.New(rand.NewSource(seed))
	tsr := etensor.NewFloat32([]int{nb, nc}, nil, []string{"Bin", "Chan"})
	for vi := range tsr.Values {
		tsr.Values[vi] = 2 + 0.5*float32(rnd.NormFloat64())
	}
	return tsr
}

func TestRefStatsMoments(t *testing.T) {
	tsr := randSeries(100, 4, 1)
	ref := []Interval{{10, 40}, {60, 90}}
	st, err := RefStats(tsr, ref)
	if err != nil {
		t.Fatal(err)
	}
	if st.RefBins != 60 {
		t.Errorf("ref bins: %d != 60", st.RefBins)
	}
	// z-scored reference window must have mean ~0, stddev ~1 per channel
	zs := st.ZScore(tsr)
	nc := 4
	for ci := 0; ci < nc; ci++ {
		var sum, sumsq float32
		for _, iv := range ref {
			for bin := iv.Start; bin < iv.End; bin++ {
				v := zs.Values[bin*nc+ci]
				sum += v
				sumsq += v * v
			}
		}
		mean := sum / float32(st.RefBins)
		sd := mat32.Sqrt(sumsq/float32(st.RefBins) - mean*mean)
		if mat32.Abs(mean) > difTol {
			t.Errorf("chan %d: z-scored ref mean %v != 0", ci, mean)
		}
		if mat32.Abs(sd-1) > 1.0e-3 {
			t.Errorf("chan %d: z-scored ref stddev %v != 1", ci, sd)
		}
	}
}

func TestZeroVarianceChannel(t *testing.T) {
	tsr := randSeries(50, 3, 2)
	// constant channel 1 across the whole series
	for bin := 0; bin < 50; bin++ {
		tsr.Values[bin*3+1] = 5.0
	}
	st, err := RefStats(tsr, []Interval{{0, 50}})
	if err != nil {
		t.Fatal(err)
	}
	if st.ZeroVar != 1 {
		t.Errorf("zero-variance channels: %d != 1", st.ZeroVar)
	}
	zs := st.ZScore(tsr)
	for bin := 0; bin < 50; bin++ {
		if zs.Values[bin*3+1] != 0 {
			t.Fatalf("bin %d: constant channel z-score %v != exactly 0", bin, zs.Values[bin*3+1])
		}
	}
	// other channels unaffected
	if zs.Values[0*3+0] == 0 && zs.Values[1*3+0] == 0 {
		t.Error("varying channel appears to have been zeroed")
	}
}

func TestFromMoments(t *testing.T) {
	st, err := FromMoments([]float32{1, 2}, []float32{0.5, 0})
	if err != nil {
		t.Fatal(err)
	}
	if st.ZeroVar != 1 {
		t.Errorf("zero-variance channels: %d != 1", st.ZeroVar)
	}
	tsr := etensor.NewFloat32([]int{1, 2}, nil, []string{"Bin", "Chan"})
	tsr.Values[0] = 2 // (2-1)/0.5 = 2
	tsr.Values[1] = 9 // zero stddev -> 0
	zs := st.ZScore(tsr)
	if mat32.Abs(zs.Values[0]-2) > difTol {
		t.Errorf("z-score: %v != 2", zs.Values[0])
	}
	if zs.Values[1] != 0 {
		t.Errorf("zero-stddev channel: %v != 0", zs.Values[1])
	}

	if _, err := FromMoments([]float32{1}, []float32{1, 2}); err == nil {
		t.Error("expected error for mismatched moment lengths")
	}
}

func TestZScoreRows(t *testing.T) {
	src := randSeries(10, 2, 3)
	dst := etensor.NewFloat32([]int{10, 2}, nil, []string{"Bin", "Chan"})
	st, err := RefStats(src, []Interval{{0, 10}})
	if err != nil {
		t.Fatal(err)
	}
	rows := []int{2, 3, 7}
	st.ZScoreRows(dst, src, rows)
	touched := map[int]bool{2: true, 3: true, 7: true}
	for bin := 0; bin < 10; bin++ {
		for ci := 0; ci < 2; ci++ {
			v := dst.Values[bin*2+ci]
			if touched[bin] {
				want := st.zval(src.Values[bin*2+ci], ci)
				if v != want {
					t.Errorf("bin %d chan %d: %v != %v", bin, ci, v, want)
				}
			} else if v != 0 {
				t.Errorf("untouched bin %d chan %d modified: %v", bin, ci, v)
			}
		}
	}
}

func TestRefStatsErrors(t *testing.T) {
	tsr := randSeries(10, 2, 4)
	if _, err := RefStats(tsr, nil); !errors.Is(err, ErrNoReference) {
		t.Errorf("expected ErrNoReference, got: %v", err)
	}
	if _, err := RefStats(tsr, []Interval{{5, 20}}); err == nil {
		t.Error("expected error for interval past end of series")
	}
	if _, err := RefStats(tsr, []Interval{{-1, 5}}); err == nil {
		t.Error("expected error for negative interval start")
	}
}
