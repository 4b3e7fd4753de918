// Copyright (c) 2025, The Handwriting Decoding Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package pipeline turns raw recording sessions into normalized, cue-aligned,
labeled trial windows for downstream decoders and visualizers.

Run is the classification extraction: per block, z-score statistics come
from the delay intervals of the shuffle-designated train trials, windows
are reaction-time-excluded training windows, rest trials are dropped, and
the remaining trials are split into train / validation / test with greedy
per-character balancing. CueAligned is the visualization extraction:
per-block precomputed means with session-wide stddevs normalize the whole
session, every trial gets a cue-centered window, and all trials land in a
single set with session and block provenance.

Both extractions process sessions, blocks, and trials strictly in order,
so runs with the same seed reproduce identical output. Recoverable
anomalies (out-of-range windows, zero-variance channels, dropped rest
trials) are logged and counted in Audit; integrity and labeling errors
abort the run naming the offending session, block, and trial.
*/
package pipeline

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/emer/etable/v2/etensor"

	"github.com/tscizzlebg/handwriting-decoding/blocknorm"
	"github.com/tscizzlebg/handwriting-decoding/chartab"
	"github.com/tscizzlebg/handwriting-decoding/gsmooth"
	"github.com/tscizzlebg/handwriting-decoding/session"
	"github.com/tscizzlebg/handwriting-decoding/trialsplit"
	"github.com/tscizzlebg/handwriting-decoding/window"
)

// Params are the pipeline configuration constants.
type Params struct {
	Window    window.Params  `view:"inline" desc:"windowing offsets"`
	Smooth    gsmooth.Params `view:"inline" desc:"temporal smoothing kernel"`
	TrainFrac float32        `def:"0.6" desc:"fraction of each block's trials designated train"`
	RndSeed   int64          `def:"1" desc:"random seed for the per-block train shuffle"`
}

func (pp *Params) Defaults() {
	pp.Window.Defaults()
	pp.Smooth.Defaults()
	pp.TrainFrac = 0.6
	pp.RndSeed = 1
}

// Audit counts the recoverable anomalies of one pipeline run, so that
// every local recovery is distinguishable after the fact.
type Audit struct {
	Trials       int `desc:"trials appended to output sets"`
	WindowSkips  int `desc:"trials skipped because their window fell outside the recording"`
	RestDrops    int `desc:"rest trials dropped"`
	ZeroVarChans int `desc:"zero-variance channel statistics neutralized, summed over blocks"`
	RefBins      int `desc:"total reference bins used for block statistics"`
}

// Pipeline is the trial extraction orchestrator. Construct with New;
// one Pipeline serves one run.
type Pipeline struct {
	Params Params         `desc:"configuration constants"`
	Codec  *chartab.Codec `desc:"character codec; the variant decides whether rest trials are kept"`
	Audit  Audit          `desc:"recoverable-anomaly counts for the last run"`
}

// New returns a pipeline using the given character table variant, with
// default parameters.
func New(variant chartab.Variants) *Pipeline {
	pl := &Pipeline{Codec: chartab.New(variant)}
	pl.Params.Defaults()
	return pl
}

// refIntervals returns the z-score reference intervals for one block:
// the delay interval [delayCue[t], delayCue[t+1]) of every
// shuffle-designated train trial t. The last trial of the block is
// excluded -- it has no following trial to bound its interval. This is a
// deliberate, load-bearing policy of the original recordings' processing,
// not an oversight.
func refIntervals(rec *session.Record, trls []int, train map[int]bool) []blocknorm.Interval {
	var ivs []blocknorm.Interval
	for bi := range trls {
		if !train[bi] || bi+1 >= len(trls) {
			continue
		}
		ivs = append(ivs, blocknorm.Interval{
			Start: rec.DelayCueBins[trls[bi]],
			End:   rec.DelayCueBins[trls[bi+1]],
		})
	}
	return ivs
}

// Run performs the classification extraction over the given sessions,
// returning disjoint train, validation, and test sets. Fatal on integrity
// or labeling errors; window overruns and degenerate statistics are
// logged, counted, and recovered locally.
func (pl *Pipeline) Run(recs []*session.Record) (train, val, test *Set, err error) {
	pl.Audit = Audit{}
	train = NewSet("train")
	val = NewSet("validation")
	test = NewSet("test")
	sets := map[trialsplit.Dests]*Set{
		trialsplit.Train:      train,
		trialsplit.Validation: val,
		trialsplit.Test:       test,
	}

	rnd := rand.New(rand.NewSource(pl.Params.RndSeed))
	splitter := trialsplit.New(pl.Params.TrainFrac)
	span := pl.Params.Window.Span(window.GoTraining)

	for _, rec := range recs {
		if err := rec.Validate(); err != nil {
			return nil, nil, nil, err
		}
		for _, block := range rec.Blocks {
			trls := rec.BlockTrials(block)
			if len(trls) == 0 {
				continue
			}
			trainIdxs := splitter.TrainTrials(len(trls), rnd)

			stats, serr := blocknorm.RefStats(rec.Neural, refIntervals(rec, trls, trainIdxs))
			if serr != nil {
				// a block too small to yield any reference interval has no
				// usable statistics; neutralize it entirely rather than abort
				log.Printf("pipeline: session %d block %d: %v -- block neutralized", rec.ID, block, serr)
				nc := rec.NumChannels()
				stats, _ = blocknorm.FromMoments(make([]float32, nc), make([]float32, nc))
			}
			pl.Audit.ZeroVarChans += stats.ZeroVar
			pl.Audit.RefBins += stats.RefBins

			for bi, ti := range trls {
				win, werr := span.Slice(rec.Neural, rec.GoCueBins[ti])
				if werr != nil {
					log.Printf("pipeline: session %d block %d trial %d: %v -- trial skipped", rec.ID, block, ti, werr)
					pl.Audit.WindowSkips++
					continue
				}
				char := rec.Prompts[ti]
				if char == chartab.Rest {
					pl.Audit.RestDrops++
					continue
				}
				class, cerr := pl.Codec.Class(char)
				if cerr != nil {
					return nil, nil, nil, fmt.Errorf("pipeline: session %d block %d trial %d: %w", rec.ID, block, ti, cerr)
				}
				dest := trialsplit.Train
				if !trainIdxs[bi] {
					dest = splitter.Assign(char)
				}
				sets[dest].Add(Trial{
					Window:  stats.ZScore(win),
					Char:    char,
					Class:   class,
					Session: rec.ID,
					Block:   block,
					Index:   ti,
				})
				pl.Audit.Trials++
			}
		}
	}

	// final pass: smooth every produced window
	train.SmoothAll(&pl.Params.Smooth)
	val.SmoothAll(&pl.Params.Smooth)
	test.SmoothAll(&pl.Params.Smooth)
	return train, val, test, nil
}

// CueAligned performs the visualization extraction over the given
// sessions: whole-session per-block normalization from precomputed
// statistics (computed from the raw series when the record does not carry
// them), cue-centered windows, all trials in one set. Rest trials are
// kept when the codec's variant includes the rest class, dropped
// otherwise. Windows are not smoothed; downstream projection code smooths
// its own components.
func (pl *Pipeline) CueAligned(recs []*session.Record) (*Set, error) {
	pl.Audit = Audit{}
	all := NewSet("all")
	span := pl.Params.Window.Span(window.CueCentered)
	keepRest := pl.Codec.Variant == chartab.WithRest

	for _, rec := range recs {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		rec.FillBlockStats()

		zscored, err := pl.NormalizedSession(rec)
		if err != nil {
			return nil, err
		}

		for ti := range rec.GoCueBins {
			win, werr := span.Slice(zscored, rec.GoCueBins[ti])
			if werr != nil {
				log.Printf("pipeline: session %d trial %d: %v -- trial skipped", rec.ID, ti, werr)
				pl.Audit.WindowSkips++
				continue
			}
			char := rec.Prompts[ti]
			if char == chartab.Rest && !keepRest {
				pl.Audit.RestDrops++
				continue
			}
			class, cerr := pl.Codec.Class(char)
			if cerr != nil {
				return nil, fmt.Errorf("pipeline: session %d trial %d: %w", rec.ID, ti, cerr)
			}
			all.Add(Trial{
				Window:  win,
				Char:    char,
				Class:   class,
				Session: rec.ID,
				Block:   rec.TrialBlock(ti),
				Index:   ti,
			})
			pl.Audit.Trials++
		}
	}
	return all, nil
}

// NormalizedSession z-scores a whole session block by block from its
// per-block means and session-wide stddevs (which must be present on the
// record). Dimensionality-reduction models are fit on this full-session
// matrix.
func (pl *Pipeline) NormalizedSession(rec *session.Record) (*etensor.Float32, error) {
	nb := rec.NumBins()
	nc := rec.NumChannels()
	zscored := etensor.NewFloat32([]int{nb, nc}, nil, []string{"Bin", "Chan"})
	for _, block := range rec.Blocks {
		means := rec.BlockMeansRow(block)
		if means == nil || rec.StdAll == nil {
			return nil, fmt.Errorf("pipeline: session %d block %d: no precomputed statistics: %w",
				rec.ID, block, session.ErrIntegrity)
		}
		stats, err := blocknorm.FromMoments(means, rec.StdAll)
		if err != nil {
			return nil, fmt.Errorf("pipeline: session %d block %d: %w", rec.ID, block, err)
		}
		pl.Audit.ZeroVarChans += stats.ZeroVar
		stats.ZScoreRows(zscored, rec.Neural, rec.BlockBins(block))
	}
	return zscored, nil
}
