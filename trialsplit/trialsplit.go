// Copyright (c) 2025, The Handwriting Decoding Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package trialsplit partitions the trials of each block into train,
validation, and test sets.

A seeded shuffle designates the train fraction of each block; every
remaining trial goes to validation or test by a greedy per-character
balancing rule: whichever set currently holds fewer trials of that
character receives the trial, ties to validation. The running counters
persist across blocks and sessions within one run, so every character's
validation and test counts stay within one of each other regardless of
how characters are distributed over blocks. A naive random split would
leave rare characters under-represented on one side.
*/
package trialsplit

import (
	"math/rand"

	"github.com/goki/ki/kit"
)

// Dests are the destination sets a trial can be assigned to.
type Dests int

//go:generate stringer -type=Dests

var KiT_Dests = kit.Enums.AddEnum(DestsN, kit.NotBitFlag, nil)

func (ev Dests) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Dests) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	Train Dests = iota
	Validation
	Test

	DestsN
)

// Splitter assigns trials to destination sets. One Splitter serves an
// entire pipeline run; its balancing counters are cumulative.
type Splitter struct {
	TrainFrac  float32        `def:"0.6" desc:"fraction of each block's trials designated train by the shuffle"`
	ValCounts  map[string]int `desc:"running count of validation trials per character"`
	TestCounts map[string]int `desc:"running count of test trials per character"`
}

// New returns a Splitter with the given train fraction.
func New(trainFrac float32) *Splitter {
	return &Splitter{
		TrainFrac:  trainFrac,
		ValCounts:  make(map[string]int),
		TestCounts: make(map[string]int),
	}
}

// TrainTrials shuffles the block's n trial indexes with the given random
// source and returns the set designated train: the first
// int(n * TrainFrac) indexes of the shuffled order.
func (sp *Splitter) TrainTrials(n int, rnd *rand.Rand) map[int]bool {
	ord := make([]int, n)
	for i := range ord {
		ord[i] = i
	}
	rnd.Shuffle(n, func(i, j int) {
		ord[i], ord[j] = ord[j], ord[i]
	})
	nTrain := int(float32(n) * sp.TrainFrac)
	train := make(map[int]bool, nTrain)
	for _, ti := range ord[:nTrain] {
		train[ti] = true
	}
	return train
}

// Assign places one non-train trial of the given character into
// Validation or Test, whichever currently holds fewer trials of that
// character (ties to Validation), and updates the counters.
func (sp *Splitter) Assign(char string) Dests {
	if sp.ValCounts[char] <= sp.TestCounts[char] {
		sp.ValCounts[char]++
		return Validation
	}
	sp.TestCounts[char]++
	return Test
}
