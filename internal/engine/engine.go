// Copyright 2025-2026 Oliver Eikemeier. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package engine is the driver: the single linear pass over one function's
// item sequence that wires the Table State, Expression Walker, External
// Reference Tracker and Scope & Branch Engine together and turns the
// result into a sorted warning batch.
package engine

import (
	"fieldscope.dev/fieldscope/internal/branch"
	"fieldscope.dev/fieldscope/internal/config"
	"fieldscope.dev/fieldscope/internal/externalref"
	"fieldscope.dev/fieldscope/internal/itemutil"
	"fieldscope.dev/fieldscope/internal/transfer"
	"fieldscope.dev/fieldscope/ir"
	"fieldscope.dev/fieldscope/level"
	"fieldscope.dev/fieldscope/warn"
)

// Result is the outcome of analyzing one function.
type Result struct {
	Warnings warn.Slice
	GaveUp   bool
	Ended    int
	Wiped    int
}

// Run analyzes one function's line scope. A [itemutil.Malformed] panic
// raised by a malformed ls is recovered and returned as an error; any
// other panic is re-raised.
func Run(ls *ir.LineScope, features config.BitMask[config.Features], behavior config.BitMask[config.Behavior], imprecision level.Imprecision) (res Result, err error) {
	defer func() {
		if v := recover(); v != nil {
			m, ok := v.(itemutil.Malformed)
			if !ok {
				panic(v)
			}

			err = m
		}
	}()

	sink := &res.Warnings

	filtered := &filterSink{
		sink:     sink,
		features: features,
	}

	eng := branch.New(filtered, ls.Params, imprecision)
	tracker := externalref.New(ls)

	ctx := &transfer.Context{
		Branch:      eng,
		ExternalRef: tracker,
		Sink:        filtered,
	}

	for idx := ir.ItemIndex(1); idx < ir.ItemIndex(len(ls.Items)); idx++ {
		if eng.GaveUp() {
			break
		}

		item := &ls.Items[idx]

		for _, closure := range item.Closures {
			tracker.FoldClosure(closure)
		}

		ctx.Item(idx, item)
	}

	res.GaveUp = eng.GaveUp()

	if !res.GaveUp {
		ended, wiped := eng.Tables.EndAll(filtered, eng.Suppress(), tracker.Externally)
		res.Ended, res.Wiped = ended, wiped
	}

	if behavior.Enabled(config.LogGiveUp) && res.GaveUp {
		logGiveUp(ls)
	}

	res.Warnings.SortStable()

	return res, nil
}

// filterSink suppresses whichever of the two warning codes features
// disables before it ever reaches the caller's sink, per the ambient
// "tracking always runs in full, only emission is toggled" rule.
type filterSink struct {
	sink     warn.Sink
	features config.BitMask[config.Features]
}

func (f *filterSink) Emit(w warn.Warning) {
	switch w.Code {
	case warn.UnusedSet:
		if !f.features.Enabled(config.UnusedSet) {
			return
		}

	case warn.UnsetAccess:
		if !f.features.Enabled(config.UnsetAccess) {
			return
		}
	}

	f.sink.Emit(w)
}
