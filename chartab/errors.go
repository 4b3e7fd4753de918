// Copyright (c) 2025, The Handwriting Decoding Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chartab

import "errors"

// ErrUnknownChar reports a character cue outside the closed table.
// It indicates a corrupted or mismatched dataset and is fatal to a run.
var ErrUnknownChar = errors.New("unknown character cue")
