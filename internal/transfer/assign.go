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
	"fieldscope.dev/fieldscope/internal/itemutil"
	"fieldscope.dev/fieldscope/internal/key"
	"fieldscope.dev/fieldscope/internal/tablestate"
	"fieldscope.dev/fieldscope/internal/walker"
	"fieldscope.dev/fieldscope/ir"
)

// assign implements Local and Set items. The language evaluates every rhs
// expression before any assignment takes effect, so every rhs is walked
// for its own effects first; a position that directly feeds an Id target
// with a table-literal or alias-source value is held back from that
// generic walk, since establishing its tracking is special handling in
// its own right, not a plain escape.
func (c *Context) assign(idx ir.ItemIndex, item *ir.Item, isLocal bool) {
	special := make([]bool, len(item.Rhs))

	for i := 0; i < len(item.Lhs) && i < len(item.Rhs); i++ {
		target := &item.Lhs[i]
		if target.Tag != ir.Id || target.Binding == nil {
			continue
		}

		rhs := &item.Rhs[i]
		if rhs.Tag == ir.Table || isAliasSource(c.Branch.Tables, rhs) {
			special[i] = true
		}
	}

	for i := range item.Rhs {
		if special[i] {
			continue
		}

		walker.Walk(c.hooks(), &item.Rhs[i])
	}

	for i := range item.Lhs {
		target := &item.Lhs[i]
		value := rhsAt(item.Rhs, i)
		wasSpecial := i < len(special) && special[i]

		if isLocal {
			c.assignLocal(idx, target, value, wasSpecial)
		} else {
			c.assignSet(idx, target, value, wasSpecial)
		}
	}
}

// rhsAt returns the rhs expression feeding lhs position i, or nil if the
// position has no value of its own (an omitted local initializer). A
// trailing Call or Invoke is reused by every lhs position past the end of
// Rhs, matching the language's multi-return spread rule; any other
// shortfall leaves the remaining positions implicitly nil.
func rhsAt(rhs []ir.Expr, i int) *ir.Expr {
	if i < len(rhs) {
		return &rhs[i]
	}

	if len(rhs) == 0 {
		return nil
	}

	last := &rhs[len(rhs)-1]
	if last.Tag == ir.Call || last.Tag == ir.Invoke {
		return last
	}

	return nil
}

func isAliasSource(tables tablestate.Tables, rhs *ir.Expr) bool {
	if rhs == nil || rhs.Tag != ir.Id || rhs.Binding == nil {
		return false
	}

	_, ok := tables[rhs.Binding.Name]

	return ok
}

func (c *Context) assignLocal(idx ir.ItemIndex, target, value *ir.Expr, special bool) {
	if target.Tag != ir.Id || target.Binding == nil {
		itemutil.InternalError(idx, "local target is not a bound identifier")
	}

	name := target.Binding.Name
	c.Branch.DeclareLocal(name)
	c.initName(name, value, special)
}

func (c *Context) assignSet(idx ir.ItemIndex, target, value *ir.Expr, special bool) {
	switch target.Tag {
	case ir.Id:
		c.assignSetID(target, value, special)

	case ir.Index:
		c.assignSetIndex(idx, target, value)

	default:
		itemutil.InternalError(idx, "assignment target has unexpected tag %v", target.Tag)
	}
}

func (c *Context) assignSetID(target, value *ir.Expr, special bool) {
	if target.Binding == nil {
		// A free global name: never tracked, nothing to end or declare;
		// value (if any) was already walked generically above.
		return
	}

	name := target.Binding.Name
	if _, tracked := c.Branch.Tables[name]; tracked {
		c.Branch.Tables.End(c.Sink, name, c.Branch.Suppress())
	}

	c.initName(name, value, special)
}

// initName gives name fresh tracking when special reports that value
// establishes it (a table literal, or an alias of an already-tracked
// table). Otherwise value (if any) was already walked generically by the
// caller's rhs pass, and there is nothing further to do here.
func (c *Context) initName(name string, value *ir.Expr, special bool) {
	if !special {
		return
	}

	if value.Tag == ir.Table {
		r := tablestate.New(name, value.Pos)
		c.Branch.Tables.Declare(name, r)
		c.initTable(name, r, value)

		return
	}

	c.Branch.Tables.Alias(value.Binding.Name, name)
}

func (c *Context) assignSetIndex(idx ir.ItemIndex, target, value *ir.Expr) {
	if len(target.Children) != 2 {
		itemutil.InternalError(idx, "Index target has %d children, want 2", len(target.Children))
	}

	base, keyExpr := &target.Children[0], &target.Children[1]

	walker.Walk(c.hooks(), keyExpr)

	if base.Tag == ir.Id && base.Binding != nil {
		if r, tracked := c.Branch.Tables[base.Binding.Name]; tracked {
			name := base.Binding.Name
			k := key.Of(keyExpr, false)

			r.SetKey(c.Sink, name, k, target.Pos, valuePos(value, target.Pos), value.IsNil(), false, c.Branch.Suppress())

			return
		}
	}

	// value, if any, was already walked generically in the rhs pass; only
	// base still needs a walk here, since it is a target subexpression
	// rather than a listed rhs.
	walker.Walk(c.hooks(), base)
}

func valuePos(value *ir.Expr, fallback ir.Pos) ir.Pos {
	if value == nil {
		return fallback
	}

	return value.Pos
}
