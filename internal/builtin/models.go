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

package builtin

import (
	"fieldscope.dev/fieldscope/internal/key"
	"fieldscope.dev/fieldscope/internal/tablestate"
	"fieldscope.dev/fieldscope/ir"
	"fieldscope.dev/fieldscope/warn"
)

// Call bundles what a transfer function needs about the recognized call
// site: its own position (used as the node for any marker it installs),
// the table's current name (for warnings and re-set bookkeeping), its
// arguments after the table itself, and whether the table counts as
// loop-external (the Scope & Branch Engine's check, whose rule depends on
// the configured [level.Imprecision]).
type Call struct {
	Pos          ir.Pos
	Name         string
	Args         []ir.Expr
	LoopExternal bool
	Suppress     tablestate.BranchSuppress
}

// Apply runs the transfer function for m against r. It is a no-op for
// models that don't exist (None) or don't touch table state (Pure, Sort,
// Type).
func Apply(sink warn.Sink, r *tablestate.Record, m Model, c Call) {
	switch m {
	case Insert:
		applyInsert(sink, r, c)
	case Remove:
		applyRemove(sink, r, c)
	case Concat:
		applyConcat(r, c)
	case Pairs:
		applyPairs(r, c)
	case Ipairs:
		applyIpairs(r, c)
	case Next:
		r.PotentiallyAllAccessed = c.Pos
	case Sort, Type, Pure, None:
		// No observable effect on table shape.
	}
}

func applyInsert(sink warn.Sink, r *tablestate.Record, c Call) {
	if len(r.MaybeSetKeys) > 0 || hasPos(r.PotentiallyAllSet) || c.LoopExternal {
		r.PotentiallyAllSet = c.Pos
		return
	}

	switch len(c.Args) {
	case 1:
		idx := key.Number(float64(1 + r.NonNilNumericSetCount()))
		value := c.Args[0]
		r.SetKey(sink, c.Name, idx, c.Pos, value.Pos, value.IsNil(), false, c.Suppress)

	case 2:
		idx := key.Of(&c.Args[0], true)
		value := c.Args[1]
		r.SetKey(sink, c.Name, idx, c.Pos, value.Pos, value.IsNil(), false, c.Suppress)
	}
}

func applyRemove(sink warn.Sink, r *tablestate.Record, c Call) {
	var explicit *ir.Expr
	if len(c.Args) > 0 {
		explicit = &c.Args[0]
	}

	if explicit != nil {
		idx := key.Of(explicit, true)
		if idx.IsVariable() {
			r.PotentiallyAllSet = c.Pos
			r.PotentiallyAllAccessed = c.Pos

			return
		}
	}

	if len(r.MaybeSetKeys) > 0 || hasPos(r.PotentiallyAllSet) || c.LoopExternal {
		r.PotentiallyAllSet = c.Pos

		if explicit != nil {
			r.MarkAccessed(key.Of(explicit, true), c.Pos)
		} else {
			r.PotentiallyAllAccessed = c.Pos
		}

		return
	}

	maxKey, found := r.MaxNonNilIntegerKey()
	l := 0
	if found {
		l = maxKey
	}

	var i int

	switch {
	case explicit != nil:
		n, _ := key.Of(explicit, true).IsNumber()
		i = int(n)
	case l == 0:
		i = 1
	default:
		i = l
	}

	r.AccessKey(sink, c.Name, key.Number(float64(i)), c.Pos)

	if i > l || l == 0 {
		return
	}

	for j := i; j < l; j++ {
		from := key.Number(float64(j + 1))
		to := key.Number(float64(j))

		r.EvictAt(sink, to, c.Suppress)

		if entry, ok := r.SetKeys[from]; ok {
			r.InstallSet(to, tablestate.SetEntry{Owner: c.Name, KeyPos: c.Pos, ValuePos: entry.ValuePos, IsNil: entry.IsNil})
		}

		r.MarkAccessed(from, c.Pos)
	}

	r.EvictAt(sink, key.Number(float64(l)), c.Suppress)
	r.InstallSet(key.Number(float64(l)), tablestate.SetEntry{Owner: c.Name, KeyPos: c.Pos, ValuePos: c.Pos, IsNil: true})
}

func applyConcat(r *tablestate.Record, c Call) {
	if hasPos(r.PotentiallyAllSet) || c.LoopExternal {
		r.PotentiallyAllAccessed = c.Pos
		return
	}

	for k, e := range r.SetKeys {
		if e.IsNil {
			continue
		}

		if _, ok := k.IsNumber(); ok {
			r.MarkAccessed(k, c.Pos)
		}
	}
}

func applyPairs(r *tablestate.Record, c Call) {
	if hasPos(r.PotentiallyAllSet) || c.LoopExternal {
		r.PotentiallyAllAccessed = c.Pos
		return
	}

	for k, e := range r.SetKeys {
		if !e.IsNil {
			r.MarkAccessed(k, c.Pos)
		}
	}

	for k, e := range r.MaybeSetKeys {
		if !e.IsNil {
			r.MarkAccessed(k, c.Pos)
		}
	}
}

func applyIpairs(r *tablestate.Record, c Call) {
	if hasPos(r.PotentiallyAllSet) || c.LoopExternal {
		r.PotentiallyAllAccessed = c.Pos
		return
	}

	for k, e := range r.SetKeys {
		if e.IsNil {
			continue
		}

		if _, ok := k.IsNumber(); ok {
			r.MarkAccessed(k, c.Pos)
		}
	}

	for k, e := range r.MaybeSetKeys {
		if e.IsNil {
			continue
		}

		if _, ok := k.IsNumber(); ok {
			r.MarkAccessed(k, c.Pos)
		}
	}
}

func hasPos(p ir.Pos) bool { return p.Line != 0 }
