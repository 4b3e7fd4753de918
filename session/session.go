// Copyright (c) 2025, The Handwriting Decoding Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package session provides the typed view over one recording session of the
single-letter instructed-delay task: the time-binned neural feature matrix,
the per-bin block assignment, and the per-trial cue bins and character
prompts produced by the external data loader.

A Record is read-only once loaded. Validate must pass before a record is
fed to the pipeline; all downstream code assumes the invariants it checks.
*/
package session

import (
	"errors"
	"fmt"

	"github.com/emer/etable/v2/etensor"
)

// ErrIntegrity reports a structural mismatch in a session record
// (cue / prompt / block array lengths, or cue bins outside the recording).
// It is fatal: the session cannot be processed.
var ErrIntegrity = errors.New("session data integrity error")

// Record is one recording session. Fields mirror the loader's output
// arrays; BlockMeans and StdAll are optional precomputed statistics that
// some datasets ship alongside the raw series.
type Record struct {
	ID           int              `desc:"session index within the dataset, used for provenance"`
	Neural       *etensor.Float32 `desc:"neural activity time series, rows = time bins, cols = channels"`
	BlockByBin   []int            `desc:"block id for each time bin, parallel to Neural rows"`
	Blocks       []int            `desc:"distinct block ids present in the session"`
	GoCueBins    []int            `desc:"go-cue onset bin for each trial, in trial order"`
	DelayCueBins []int            `desc:"delay-cue onset bin for each trial, in trial order"`
	Prompts      []string         `desc:"character cue for each trial, in trial order"`
	BlockMeans   *etensor.Float32 `desc:"optional precomputed per-block channel means, rows parallel to Blocks"`
	StdAll       []float32        `desc:"optional precomputed session-wide channel stddevs"`
}

// NumBins returns the number of time bins in the session.
func (rc *Record) NumBins() int {
	if rc.Neural == nil {
		return 0
	}
	return rc.Neural.Dim(0)
}

// NumChannels returns the number of recorded channels.
func (rc *Record) NumChannels() int {
	if rc.Neural == nil {
		return 0
	}
	return rc.Neural.Dim(1)
}

// NumTrials returns the number of trials in the session.
func (rc *Record) NumTrials() int {
	return len(rc.GoCueBins)
}

// Row returns the channel vector for one time bin, as a slice into the
// underlying values (do not modify).
func (rc *Record) Row(bin int) []float32 {
	nc := rc.NumChannels()
	return rc.Neural.Values[bin*nc : (bin+1)*nc]
}

// Validate checks the structural invariants of the record: parallel trial
// arrays of equal length, cue bins within the recording, a block id for
// every bin, and consistent shapes on any precomputed statistics.
// All failures wrap ErrIntegrity and name the offending element.
func (rc *Record) Validate() error {
	if rc.Neural == nil || rc.Neural.NumDims() != 2 {
		return fmt.Errorf("session %d: neural series must be a 2D bins x channels matrix: %w", rc.ID, ErrIntegrity)
	}
	nb := rc.NumBins()
	nt := rc.NumTrials()
	if len(rc.DelayCueBins) != nt || len(rc.Prompts) != nt {
		return fmt.Errorf("session %d: trial arrays disagree: %d go cues, %d delay cues, %d prompts: %w",
			rc.ID, nt, len(rc.DelayCueBins), len(rc.Prompts), ErrIntegrity)
	}
	if len(rc.BlockByBin) != nb {
		return fmt.Errorf("session %d: %d block ids for %d bins: %w", rc.ID, len(rc.BlockByBin), nb, ErrIntegrity)
	}
	for ti := 0; ti < nt; ti++ {
		if rc.GoCueBins[ti] < 0 || rc.GoCueBins[ti] >= nb {
			return fmt.Errorf("session %d trial %d: go cue bin %d outside [0, %d): %w",
				rc.ID, ti, rc.GoCueBins[ti], nb, ErrIntegrity)
		}
		if rc.DelayCueBins[ti] < 0 || rc.DelayCueBins[ti] >= nb {
			return fmt.Errorf("session %d trial %d: delay cue bin %d outside [0, %d): %w",
				rc.ID, ti, rc.DelayCueBins[ti], nb, ErrIntegrity)
		}
	}
	known := make(map[int]bool, len(rc.Blocks))
	for _, bl := range rc.Blocks {
		known[bl] = true
	}
	for bin, bl := range rc.BlockByBin {
		if !known[bl] {
			return fmt.Errorf("session %d bin %d: block id %d not in block list: %w", rc.ID, bin, bl, ErrIntegrity)
		}
	}
	if rc.BlockMeans != nil {
		if rc.BlockMeans.NumDims() != 2 || rc.BlockMeans.Dim(0) != len(rc.Blocks) || rc.BlockMeans.Dim(1) != rc.NumChannels() {
			return fmt.Errorf("session %d: block means must be %d x %d: %w",
				rc.ID, len(rc.Blocks), rc.NumChannels(), ErrIntegrity)
		}
	}
	if rc.StdAll != nil && len(rc.StdAll) != rc.NumChannels() {
		return fmt.Errorf("session %d: %d session stddevs for %d channels: %w",
			rc.ID, len(rc.StdAll), rc.NumChannels(), ErrIntegrity)
	}
	return nil
}

// BlockIndex returns the index of the given block id within Blocks,
// or -1 if not present.
func (rc *Record) BlockIndex(block int) int {
	for bi, bl := range rc.Blocks {
		if bl == block {
			return bi
		}
	}
	return -1
}

// TrialBlock returns the block id a trial belongs to, per its go-cue bin.
func (rc *Record) TrialBlock(trial int) int {
	return rc.BlockByBin[rc.GoCueBins[trial]]
}

// BlockTrials returns the indexes of the trials whose go cue falls in the
// given block, in trial order.
func (rc *Record) BlockTrials(block int) []int {
	var trls []int
	for ti := range rc.GoCueBins {
		if rc.TrialBlock(ti) == block {
			trls = append(trls, ti)
		}
	}
	return trls
}

// BlockBins returns the indexes of the time bins assigned to the given
// block, in bin order. Blocks are contiguous by id, not necessarily by bin.
func (rc *Record) BlockBins(block int) []int {
	var bins []int
	for bin, bl := range rc.BlockByBin {
		if bl == block {
			bins = append(bins, bin)
		}
	}
	return bins
}

// BlockMeansRow returns the precomputed channel means for the given block
// id, or nil if the record does not carry precomputed statistics.
func (rc *Record) BlockMeansRow(block int) []float32 {
	if rc.BlockMeans == nil {
		return nil
	}
	bi := rc.BlockIndex(block)
	if bi < 0 {
		return nil
	}
	nc := rc.BlockMeans.Dim(1)
	return rc.BlockMeans.Values[bi*nc : (bi+1)*nc]
}
