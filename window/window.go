// Copyright (c) 2025, The Handwriting Decoding Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package window slices fixed-length trial windows out of a session's neural
time series, anchored on a trial's cue bin.

Two named modes cover the two extraction styles: GoTraining skips a short
reaction-time guard band after the go cue and takes a fixed training
window; CueCentered straddles the go cue with a pre-cue baseline and
post-cue activity span. A window that would read outside the recorded
range fails with a RangeError -- downstream code assumes every window has
the same fixed length, so short windows must never be produced silently.
*/
package window

import (
	"fmt"

	"github.com/emer/etable/v2/etensor"
	"github.com/goki/ki/kit"
)

// Modes are the named windowing modes.
type Modes int

//go:generate stringer -type=Modes

var KiT_Modes = kit.Enums.AddEnum(ModesN, kit.NotBitFlag, nil)

func (ev Modes) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Modes) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// GoTraining is the classification-oriented window: skip the
	// reaction-time guard band after the go cue, then take the fixed
	// training window.
	GoTraining Modes = iota

	// CueCentered is the visualization-oriented window: a pre-cue
	// baseline plus post-cue activity straddling the go cue.
	CueCentered

	ModesN
)

// Params are the windowing offsets, in time bins.
type Params struct {
	ReactionBins int `def:"10" desc:"reaction-time guard band after the go cue, excluded from the training window"`
	TrainBins    int `def:"150" desc:"length of the training window"`
	PreCueBins   int `def:"50" desc:"pre-cue baseline span of the cue-centered window"`
	PostCueBins  int `def:"120" desc:"post-cue activity span of the cue-centered window"`
}

func (wp *Params) Defaults() {
	wp.ReactionBins = 10
	wp.TrainBins = 150
	wp.PreCueBins = 50
	wp.PostCueBins = 120
}

// Span is a window extent around a cue bin: the window is
// [cue-Pre, cue+Post). A negative Pre starts the window after the cue.
type Span struct {
	Pre  int `desc:"bins before the cue (negative = window starts after the cue)"`
	Post int `desc:"bins after the cue"`
}

// Span returns the window span for the given mode.
func (wp *Params) Span(mode Modes) Span {
	switch mode {
	case CueCentered:
		return Span{Pre: wp.PreCueBins, Post: wp.PostCueBins}
	default:
		return Span{Pre: -wp.ReactionBins, Post: wp.ReactionBins + wp.TrainBins}
	}
}

// Bins returns the fixed window length in bins.
func (sp Span) Bins() int {
	return sp.Pre + sp.Post
}

// RangeError reports a window that would read outside the recorded range.
// The trial is invalid for windowing; the caller decides whether to skip
// the trial or reject the session.
type RangeError struct {
	Cue   int `desc:"cue bin the window was anchored on"`
	Start int `desc:"requested first bin"`
	End   int `desc:"requested bin after the last"`
	Bins  int `desc:"number of bins in the recording"`
}

func (re *RangeError) Error() string {
	return fmt.Sprintf("window: [%d, %d) around cue %d outside recording of %d bins", re.Start, re.End, re.Cue, re.Bins)
}

// Slice copies the window around the given cue bin out of the neural
// series (rows = bins, cols = channels). Returns a RangeError if any part
// of the window falls outside the series; no clamping or padding.
func (sp Span) Slice(neural *etensor.Float32, cue int) (*etensor.Float32, error) {
	nb := neural.Dim(0)
	nc := neural.Dim(1)
	start := cue - sp.Pre
	end := cue + sp.Post
	if start < 0 || end > nb {
		return nil, &RangeError{Cue: cue, Start: start, End: end, Bins: nb}
	}
	out := etensor.NewFloat32([]int{end - start, nc}, nil, []string{"Bin", "Chan"})
	copy(out.Values, neural.Values[start*nc:end*nc])
	return out, nil
}
