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

// Package transfer implements the Statement Transfer component: dispatch
// on each item's tag, composing the Expression Walker, the Built-in
// Models and Table State into the effect of one Local, Set, Eval or
// control-flow item.
package transfer

import (
	"fieldscope.dev/fieldscope/internal/branch"
	"fieldscope.dev/fieldscope/internal/externalref"
	"fieldscope.dev/fieldscope/internal/itemutil"
	"fieldscope.dev/fieldscope/internal/walker"
	"fieldscope.dev/fieldscope/ir"
	"fieldscope.dev/fieldscope/warn"
)

// Context bundles the per-function state Statement Transfer needs.
type Context struct {
	Branch      *branch.Engine
	ExternalRef *externalref.Tracker
	Sink        warn.Sink
}

func (c *Context) hooks() walker.Hooks {
	return walker.Hooks{
		Tables:       c.Branch.Tables,
		Sink:         c.Sink,
		Suppress:     c.Branch.Suppress(),
		LoopExternal: c.Branch.LoopExternal,
		OnExternalCall: func(pos ir.Pos) {
			c.ExternalRef.OnCall(c.Branch.Tables, pos)
		},
	}
}

// Item dispatches idx's item by tag.
func (c *Context) Item(idx ir.ItemIndex, item *ir.Item) {
	switch item.Tag {
	case ir.Local:
		c.assign(idx, item, true)
	case ir.Set:
		c.assign(idx, item, false)
	case ir.Eval:
		c.eval(item)
	case ir.Noop:
		c.noop(idx, item)
	case ir.Jump:
		c.Branch.RecordJump(item.To)
	case ir.Cjump:
		// Conditions are walked as a preceding Eval item; Cjump itself
		// carries no expression and needs no Table State effect.
	default:
		itemutil.InternalError(idx, "unknown item tag %v", item.Tag)
	}

	c.Branch.MaybeMerge(idx)
}

func (c *Context) eval(item *ir.Item) {
	for i := range item.Rhs {
		walker.Walk(c.hooks(), &item.Rhs[i])
	}
}

func (c *Context) noop(idx ir.ItemIndex, item *ir.Item) {
	switch item.ControlBlockType {
	case ir.Do:
		if item.ScopeEnd {
			c.Branch.CloseDo()
		} else {
			c.Branch.OpenDo()
		}

	case ir.If:
		if item.ScopeEnd {
			c.Branch.CloseIf(idx)
		} else {
			c.Branch.OpenIf(item.IsElse)
		}

	case ir.While, ir.Fornum, ir.Forin, ir.Repeat:
		if item.ScopeEnd {
			c.Branch.CloseLoop()
		} else {
			c.Branch.OpenLoop()
		}

	case ir.Return:
		c.Branch.MarkReturn()

	case ir.Goto, ir.Label:
		c.Branch.SetGiveUp()

	default:
		itemutil.InternalError(idx, "unknown control block type %v", item.ControlBlockType)
	}
}
