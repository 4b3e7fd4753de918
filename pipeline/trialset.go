// Copyright (c) 2025, The Handwriting Decoding Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/emer/etable/v2/etensor"

	"github.com/tscizzlebg/handwriting-decoding/gsmooth"
)

// Trial is one labeled, windowed, normalized trial. Immutable once
// produced by the pipeline.
type Trial struct {
	Window  *etensor.Float32 `desc:"normalized (and, after the final pass, smoothed) window, rows = bins, cols = channels"`
	Char    string           `desc:"character cue for the trial"`
	Class   int              `desc:"dense class index of the cue"`
	Session int              `desc:"originating session id"`
	Block   int              `desc:"originating block id"`
	Index   int              `desc:"trial index within the originating session"`
}

// Set is an ordered, append-only sequence of trials with parallel class
// labels. Insertion order is discovery order: session-major, block-major,
// trial-index-minor.
type Set struct {
	Name   string  `desc:"set name (train / validation / test / all)"`
	Trials []Trial `desc:"trials in discovery order"`
}

// NewSet returns an empty named set.
func NewSet(name string) *Set {
	return &Set{Name: name}
}

// Add appends one trial.
func (ts *Set) Add(tr Trial) {
	ts.Trials = append(ts.Trials, tr)
}

// Len returns the number of trials.
func (ts *Set) Len() int {
	return len(ts.Trials)
}

// Classes returns the parallel class-label sequence.
func (ts *Set) Classes() []int {
	cls := make([]int, len(ts.Trials))
	for ti := range ts.Trials {
		cls[ti] = ts.Trials[ti].Class
	}
	return cls
}

// Flatten returns the trials' windows reshaped into a single matrix,
// one row per trial of length bins * channels, for decoders that operate
// on 1D vectors. Nil for an empty set.
func (ts *Set) Flatten() *etensor.Float32 {
	if len(ts.Trials) == 0 {
		return nil
	}
	wlen := len(ts.Trials[0].Window.Values)
	out := etensor.NewFloat32([]int{len(ts.Trials), wlen}, nil, []string{"Trial", "Feat"})
	for ti := range ts.Trials {
		copy(out.Values[ti*wlen:(ti+1)*wlen], ts.Trials[ti].Window.Values)
	}
	return out
}

// SmoothAll replaces every trial's window with its smoothed version.
// Called by the pipeline as the final pass over all collected sets.
func (ts *Set) SmoothAll(sp *gsmooth.Params) {
	for ti := range ts.Trials {
		ts.Trials[ti].Window = sp.Smooth(ts.Trials[ti].Window)
	}
}

// WindowBytes returns the memory held by the set's windows.
func (ts *Set) WindowBytes() int {
	var sz int
	for ti := range ts.Trials {
		sz += 4 * len(ts.Trials[ti].Window.Values)
	}
	return sz
}

// SizeReport returns a human-readable summary of the sets' sizes.
func SizeReport(sets ...*Set) string {
	var b strings.Builder
	var tot int
	for _, ts := range sets {
		sz := ts.WindowBytes()
		tot += sz
		fmt.Fprintf(&b, "%12s:\t Trials: %d \t Mem: %v\n", ts.Name, ts.Len(), (datasize.ByteSize)(sz).HumanReadable())
	}
	fmt.Fprintf(&b, "%12s:\t Mem: %v\n", "total", (datasize.ByteSize)(tot).HumanReadable())
	return b.String()
}
