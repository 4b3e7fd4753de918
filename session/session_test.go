// Copyright (c) 2025, The Handwriting Decoding Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package session

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/emer/etable/v2/etensor"
)

const difTol = float32(1.0e-5)

func testRecord(t *testing.T) *Record {
	sp := &SynthParams{}
	sp.Defaults()
	sp.Chars = []string{"a", "b", "c"}
	rc := Synth(0, sp, rand.New(rand.NewSource(7)))
	if err := rc.Validate(); err != nil {
		t.Fatalf("synthetic record does not validate: %v", err)
	}
	return rc
}

func TestSynthStructure(t *testing.T) {
	rc := testRecord(t)
	if rc.NumTrials() != 20 {
		t.Errorf("trials: %d != 20", rc.NumTrials())
	}
	if len(rc.Blocks) != 2 {
		t.Errorf("blocks: %d != 2", len(rc.Blocks))
	}
	if rc.NumChannels() != 16 {
		t.Errorf("channels: %d != 16", rc.NumChannels())
	}
	for _, bl := range rc.Blocks {
		trls := rc.BlockTrials(bl)
		if len(trls) != 10 {
			t.Errorf("block %d trials: %d != 10", bl, len(trls))
		}
		for _, ti := range trls {
			if rc.TrialBlock(ti) != bl {
				t.Errorf("trial %d block: %d != %d", ti, rc.TrialBlock(ti), bl)
			}
			if rc.DelayCueBins[ti] >= rc.GoCueBins[ti] {
				t.Errorf("trial %d: delay cue %d not before go cue %d", ti, rc.DelayCueBins[ti], rc.GoCueBins[ti])
			}
		}
	}
}

func TestSynthDeterminism(t *testing.T) {
	sp := &SynthParams{}
	sp.Defaults()
	sp.Chars = []string{"a", "b", "c"}
	ra := Synth(0, sp, rand.New(rand.NewSource(3)))
	rb := Synth(0, sp, rand.New(rand.NewSource(3)))
	for vi := range ra.Neural.Values {
		if ra.Neural.Values[vi] != rb.Neural.Values[vi] {
			t.Fatalf("same seed produced different values at %d", vi)
		}
	}
	for ti := range ra.Prompts {
		if ra.Prompts[ti] != rb.Prompts[ti] {
			t.Fatalf("same seed produced different prompts at trial %d", ti)
		}
	}
}

func TestValidateErrors(t *testing.T) {
	rc := testRecord(t)
	rc.Prompts = rc.Prompts[:len(rc.Prompts)-1]
	if err := rc.Validate(); !errors.Is(err, ErrIntegrity) {
		t.Errorf("expected ErrIntegrity for truncated prompts, got: %v", err)
	}

	rc = testRecord(t)
	rc.GoCueBins[3] = rc.NumBins() + 5
	if err := rc.Validate(); !errors.Is(err, ErrIntegrity) {
		t.Errorf("expected ErrIntegrity for out-of-range cue, got: %v", err)
	}

	rc = testRecord(t)
	rc.BlockByBin[0] = 99
	if err := rc.Validate(); !errors.Is(err, ErrIntegrity) {
		t.Errorf("expected ErrIntegrity for unknown block id, got: %v", err)
	}

	rc = testRecord(t)
	rc.StdAll = make([]float32, 3)
	if err := rc.Validate(); !errors.Is(err, ErrIntegrity) {
		t.Errorf("expected ErrIntegrity for wrong stddev length, got: %v", err)
	}
}

func TestFillBlockStats(t *testing.T) {
	rc := testRecord(t)
	rc.FillBlockStats()
	if err := rc.Validate(); err != nil {
		t.Fatalf("record with filled stats does not validate: %v", err)
	}

	nc := rc.NumChannels()
	for _, bl := range rc.Blocks {
		bins := rc.BlockBins(bl)
		means := rc.BlockMeansRow(bl)
		if means == nil {
			t.Fatalf("no means row for block %d", bl)
		}
		for ci := 0; ci < nc; ci++ {
			var sum float32
			for _, bin := range bins {
				sum += rc.Neural.Values[bin*nc+ci]
			}
			want := sum / float32(len(bins))
			if d := means[ci] - want; d > difTol || d < -difTol {
				t.Errorf("block %d chan %d mean: %v != %v", bl, ci, means[ci], want)
			}
		}
	}
	for ci, sd := range rc.StdAll {
		if sd <= 0 {
			t.Errorf("chan %d session stddev not positive: %v", ci, sd)
		}
	}
}

func TestFillBlockStatsConstantChannel(t *testing.T) {
	rc := testRecord(t)
	nc := rc.NumChannels()
	for bin := 0; bin < rc.NumBins(); bin++ {
		rc.Neural.Values[bin*nc+0] = 5.0
	}
	rc.FillBlockStats()
	if d := rc.BlockMeansRow(rc.Blocks[0])[0] - 5.0; d > difTol || d < -difTol {
		t.Errorf("constant channel mean: %v != 5", rc.BlockMeansRow(rc.Blocks[0])[0])
	}
	if rc.StdAll[0] > difTol {
		t.Errorf("constant channel stddev: %v != 0", rc.StdAll[0])
	}
}

func TestRowView(t *testing.T) {
	rc := &Record{
		ID:           1,
		Neural:       etensor.NewFloat32([]int{3, 2}, nil, []string{"Bin", "Chan"}),
		BlockByBin:   []int{1, 1, 1},
		Blocks:       []int{1},
		GoCueBins:    []int{1},
		DelayCueBins: []int{0},
		Prompts:      []string{"a"},
	}
	for vi := range rc.Neural.Values {
		rc.Neural.Values[vi] = float32(vi)
	}
	if err := rc.Validate(); err != nil {
		t.Fatalf("minimal record does not validate: %v", err)
	}
	rv := rc.Row(1)
	if rv[0] != 2 || rv[1] != 3 {
		t.Errorf("row 1: %v != [2 3]", rv)
	}
}
