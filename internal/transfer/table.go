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

package transfer

import (
	"fieldscope.dev/fieldscope/internal/key"
	"fieldscope.dev/fieldscope/internal/tablestate"
	"fieldscope.dev/fieldscope/internal/walker"
	"fieldscope.dev/fieldscope/ir"
)

// initTable populates r from the Table literal e that just created it:
// keyed children normalize their own key, bare positional children take
// the next implicit integer index. A non-final positional child that is a
// multi-value expansion (Dots, or a Call/Invoke whose return count is
// unknown) is truncated to exactly one value by table-construction
// semantics, so it's no different from any other single-value positional
// child. Only the LAST child can genuinely expand to an unknown number of
// slots; when it's a multi-value expansion the positional counter can't
// keep going past it, so the record is marked potentially-all-set instead
// of guessing.
func (c *Context) initTable(name string, r *tablestate.Record, e *ir.Expr) {
	pos := 1

	for i := range e.Pairs {
		p := &e.Pairs[i]
		last := i == len(e.Pairs)-1

		if p.Key != nil {
			walker.Walk(c.hooks(), p.Key)
			c.initPair(name, r, key.Of(p.Key, false), p.Key.Pos, &p.Value)

			continue
		}

		if last && isMultiValue(p.Value.Tag) {
			r.PotentiallyAllSet = e.Pos
			walker.Walk(c.hooks(), &p.Value)

			continue
		}

		c.initPair(name, r, key.Number(float64(pos)), p.Value.Pos, &p.Value)
		pos++
	}
}

func isMultiValue(tag ir.ExprTag) bool {
	return tag == ir.Dots || tag == ir.Call || tag == ir.Invoke
}

func (c *Context) initPair(name string, r *tablestate.Record, k key.Key, keyPos ir.Pos, value *ir.Expr) {
	if !isAliasSource(c.Branch.Tables, value) {
		walker.Walk(c.hooks(), value)
	}
	// Else: value is a bare reference to another tracked table nested as
	// this literal's field value; it stays alive rather than being wiped,
	// matching the Expression Walker's own nested-table-literal exception.

	r.SetKey(c.Sink, name, k, keyPos, value.Pos, value.IsNil(), true, c.Branch.Suppress())
}
