// Copyright (c) 2025, The Handwriting Decoding Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package session

import (
	"math/rand"

	"github.com/emer/etable/v2/etensor"
)

// SynthParams parameterize synthetic session generation. Synthetic
// sessions are structurally valid stand-ins for loader output, used by
// tests and example programs in place of real recordings.
type SynthParams struct {
	Blocks      int      `def:"2" desc:"number of blocks in the session"`
	BlockTrials int      `def:"10" desc:"number of trials per block"`
	Channels    int      `def:"16" desc:"number of recorded channels"`
	LeadBins    int      `def:"60" desc:"bins at the start of each block before the first delay cue -- must cover the largest pre-cue window offset"`
	DelayBins   int      `def:"40" desc:"bins between each trial's delay cue and its go cue"`
	ActiveBins  int      `def:"170" desc:"bins between a trial's go cue and the next trial's delay cue -- must cover the largest post-cue window offset"`
	TailBins    int      `def:"170" desc:"bins after the last go cue of each block"`
	Chars       []string `desc:"character cues to draw trial prompts from, uniformly at random"`
	Baseline    float32  `def:"1" desc:"resting firing rate on all channels"`
	Tuned       float32  `def:"2" desc:"additional rate on a character's tuned channels during its go period"`
	NoiseSig    float32  `def:"0.25" desc:"gaussian noise sigma added to every sample"`
}

func (sp *SynthParams) Defaults() {
	sp.Blocks = 2
	sp.BlockTrials = 10
	sp.Channels = 16
	sp.LeadBins = 60
	sp.DelayBins = 40
	sp.ActiveBins = 170
	sp.TailBins = 170
	sp.Baseline = 1
	sp.Tuned = 2
	sp.NoiseSig = 0.25
}

// Synth generates a synthetic session with the given id. Each character
// drives an extra response on the channels congruent to its index, during
// the go period only, so that windows are decodable. Deterministic for a
// given rnd state.
func Synth(id int, sp *SynthParams, rnd *rand.Rand) *Record {
	binsPerBlock := sp.LeadBins + sp.BlockTrials*(sp.DelayBins+sp.ActiveBins) + sp.TailBins
	nb := sp.Blocks * binsPerBlock
	nc := sp.Channels

	rc := &Record{
		ID:         id,
		Neural:     etensor.NewFloat32([]int{nb, nc}, nil, []string{"Bin", "Chan"}),
		BlockByBin: make([]int, nb),
	}

	for bi := 0; bi < sp.Blocks; bi++ {
		block := bi + 1
		rc.Blocks = append(rc.Blocks, block)
		start := bi * binsPerBlock
		for bin := start; bin < start+binsPerBlock; bin++ {
			rc.BlockByBin[bin] = block
		}
		cursor := start + sp.LeadBins
		for ti := 0; ti < sp.BlockTrials; ti++ {
			char := sp.Chars[rnd.Intn(len(sp.Chars))]
			rc.DelayCueBins = append(rc.DelayCueBins, cursor)
			rc.GoCueBins = append(rc.GoCueBins, cursor+sp.DelayBins)
			rc.Prompts = append(rc.Prompts, char)
			cursor += sp.DelayBins + sp.ActiveBins
		}
	}

	// baseline + noise everywhere
	for vi := range rc.Neural.Values {
		rc.Neural.Values[vi] = sp.Baseline + sp.NoiseSig*float32(rnd.NormFloat64())
	}
	// tuned response during each trial's go period
	for ti, char := range rc.Prompts {
		ci := charIndex(sp.Chars, char)
		gc := rc.GoCueBins[ti]
		for bin := gc; bin < gc+sp.ActiveBins && bin < nb; bin++ {
			for ch := 0; ch < nc; ch++ {
				if ch%len(sp.Chars) == ci%len(sp.Chars) {
					rc.Neural.Values[bin*nc+ch] += sp.Tuned
				}
			}
		}
	}
	return rc
}

func charIndex(chars []string, char string) int {
	for ci, ch := range chars {
		if ch == char {
			return ci
		}
	}
	return 0
}
