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

// Package externalref tracks which of a function's tracked tables are
// reachable from outside it — its own parameters, and upvalues that a
// nested closure reads, sets or mutates — so that a call to an unrecognized
// function can conservatively invalidate them without wiping them outright.
package externalref

import (
	"fieldscope.dev/fieldscope/internal/tablestate"
	"fieldscope.dev/fieldscope/ir"
)

// Tracker classifies externally reachable names into two tiers: readBoth
// names get both potentially-all markers on a call, writeOnly names get
// only potentially_all_set.
type Tracker struct {
	readBoth  map[string]bool
	writeOnly map[string]bool
}

// New classifies ls's own parameters and upvalues at function entry.
// Parameters and merely-accessed upvalues are the most exposed (some other
// live reference could read or write them behind this function's back);
// upvalues this function only sets or mutates are exposed to being
// overwritten, but this function's own code never observes a stale read
// through that particular channel.
func New(ls *ir.LineScope) *Tracker {
	t := &Tracker{
		readBoth:  make(map[string]bool),
		writeOnly: make(map[string]bool),
	}

	for _, p := range ls.Params {
		t.readBoth[p.Name] = true
	}

	for _, v := range ls.AccessedUpvalues {
		t.readBoth[v.Name] = true
	}

	for _, v := range ls.SetUpvalues {
		t.writeOnly[v.Name] = true
	}

	for _, v := range ls.MutatedUpvalues {
		t.writeOnly[v.Name] = true
	}

	return t
}

// FoldClosure folds a nested function literal's upvalue sets into t,
// before the statement containing the closure is processed: once the
// closure exists, anything it reads, sets or mutates is reachable through
// it from wherever the closure itself escapes to.
func (t *Tracker) FoldClosure(closure *ir.LineScope) {
	for _, v := range closure.AccessedUpvalues {
		t.readBoth[v.Name] = true
	}

	for _, v := range closure.SetUpvalues {
		t.writeOnly[v.Name] = true
	}

	for _, v := range closure.MutatedUpvalues {
		t.writeOnly[v.Name] = true
	}
}

// OnCall applies call-site invalidation: every externally reachable,
// currently tracked table is downgraded without being wiped, since the
// call might reach it through a channel this function never names.
func (t *Tracker) OnCall(tables tablestate.Tables, pos ir.Pos) {
	for name := range t.readBoth {
		if r, ok := tables[name]; ok {
			r.PotentiallyAllAccessed = pos
			r.PotentiallyAllSet = pos
		}
	}

	for name := range t.writeOnly {
		if t.readBoth[name] {
			continue
		}

		if r, ok := tables[name]; ok {
			r.PotentiallyAllSet = pos
		}
	}
}

// Externally reports whether name is currently classified as externally
// reachable, for the driver's function-exit decision in
// [tablestate.Tables.EndAll] between flushing a record and dropping it.
func (t *Tracker) Externally(name string) bool {
	return t.readBoth[name] || t.writeOnly[name]
}
