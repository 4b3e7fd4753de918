// Copyright (c) 2025, The Handwriting Decoding Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package handwriting is the repository for the trial extraction and
normalization pipeline of the single-letter instructed-delay handwriting
task. The top level has no functional code -- everything is organized
into the following packages:

* session: the typed view over one recording session -- the time-binned
neural feature matrix, block assignments, cue bins and character prompts
-- plus integrity validation and a synthetic generator for tests and
examples.

* chartab: the fixed character table and the bidirectional mapping
between character cue names and dense class indexes.

* blocknorm: per-block channel z-scoring, with statistics computed from
an in-block reference window or supplied precomputed.

* window: fixed-length cue-anchored trial windowing, in go-training and
cue-centered modes.

* trialsplit: per-block train designation and greedy class-balanced
validation / test assignment.

* gsmooth: gaussian temporal smoothing of extracted windows.

* pipeline: the orchestrator tying the above together into the
classification (Run) and visualization (CueAligned) extractions.

* examples: runnable programs -- examples/classify trains a softmax
decoder on pipeline output, examples/project fits per-session PCA for
trajectory visualization.
*/
package handwriting
