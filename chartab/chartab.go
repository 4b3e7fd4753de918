// Copyright (c) 2025, The Handwriting Decoding Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package chartab provides the fixed character table for the single-letter
instructed-delay task, and the bidirectional mapping between character cue
names and dense class indexes used by decoders.

The table is closed: 26 lowercase letters plus five named punctuation cues,
optionally preceded by the doNothing rest cue. Class indexes are assigned by
fixed enumeration order so that trained models remain label-compatible
across runs -- the mapping never depends on what happens to be in the data.
*/
package chartab

import (
	"fmt"

	"github.com/goki/ki/kit"
)

// Rest is the cue name for rest (do-nothing) trials.
const Rest = "doNothing"

// Letters are the single-letter character cues, in class order.
var Letters = []string{
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
}

// Punctuation are the named punctuation cues, in class order after Letters.
var Punctuation = []string{"greaterThan", "tilde", "questionMark", "apostrophe", "comma"}

// Symbols maps named cues to their display symbols, for reporting.
// Cues not present here display as themselves.
var Symbols = map[string]string{
	Rest:           "rest",
	"greaterThan":  ">",
	"tilde":        "~",
	"questionMark": "?",
	"apostrophe":   "'",
	"comma":        ",",
}

// Variants selects which enumeration of the character table to use.
// The two variants must not be mixed within one pipeline run.
type Variants int

//go:generate stringer -type=Variants

var KiT_Variants = kit.Enums.AddEnum(VariantsN, kit.NotBitFlag, nil)

func (ev Variants) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Variants) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// NoRest enumerates letters then punctuation -- the classification
	// alphabet, where rest trials are dropped before labeling.
	NoRest Variants = iota

	// WithRest enumerates rest first (class 0), then letters, then
	// punctuation -- the visualization alphabet, where rest trials are kept.
	WithRest

	VariantsN
)

// Codec is the bijection between character cue names and class indexes for
// one table variant. Construct with New; the zero value is not usable.
type Codec struct {
	Variant Variants       `desc:"table variant this codec enumerates"`
	Chars   []string       `desc:"cue name for each class index, in enumeration order"`
	Classes map[string]int `desc:"class index for each cue name"`
}

// New returns a codec for the given table variant.
func New(variant Variants) *Codec {
	cd := &Codec{Variant: variant}
	if variant == WithRest {
		cd.Chars = append(cd.Chars, Rest)
	}
	cd.Chars = append(cd.Chars, Letters...)
	cd.Chars = append(cd.Chars, Punctuation...)
	cd.Classes = make(map[string]int, len(cd.Chars))
	for ci, ch := range cd.Chars {
		cd.Classes[ch] = ci
	}
	return cd
}

// NumClasses returns the number of classes in this variant.
func (cd *Codec) NumClasses() int {
	return len(cd.Chars)
}

// Class returns the class index for the given cue name.
// A cue outside the closed table is a fatal dataset mismatch and
// returns an error wrapping ErrUnknownChar.
func (cd *Codec) Class(char string) (int, error) {
	ci, ok := cd.Classes[char]
	if !ok {
		return -1, fmt.Errorf("chartab: character cue %q: %w", char, ErrUnknownChar)
	}
	return ci, nil
}

// Char returns the cue name for the given class index.
func (cd *Codec) Char(class int) (string, error) {
	if class < 0 || class >= len(cd.Chars) {
		return "", fmt.Errorf("chartab: class %d out of range [0, %d): %w", class, len(cd.Chars), ErrUnknownChar)
	}
	return cd.Chars[class], nil
}

// Display returns the display symbol for the given cue name
// (e.g., "greaterThan" renders as ">"). Unmapped cues display as themselves.
func Display(char string) string {
	if sym, ok := Symbols[char]; ok {
		return sym
	}
	return char
}
