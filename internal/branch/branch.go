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

// Package branch implements the Scope & Branch Engine: the scope stack
// that saves and restores Table State across Do blocks and loops, and the
// merge logic that reconciles if/elseif/else siblings back into one state.
package branch

import (
	"fieldscope.dev/fieldscope/internal/tablestate"
	"fieldscope.dev/fieldscope/ir"
	"fieldscope.dev/fieldscope/level"
	"fieldscope.dev/fieldscope/warn"
)

// Local is one name a scope declared, carrying whatever tracked record it
// shadowed so the name can be restored when the scope closes.
type Local struct {
	Name     string
	Shadowed *tablestate.Record
}

type kind uint8

const (
	kindFunction kind = iota
	kindDo
	kindIf
	kindLoop
)

// frame is one entry on the scope stack.
type frame struct {
	kind              kind
	locals            []Local
	definitelyReturns bool
	saved             tablestate.Tables // snapshot taken at frame entry
	isElse            bool

	// joinTarget is set by RecordJump when this If-branch ends with an
	// explicit jump past its siblings; zero means "falls through".
	joinTarget ir.ItemIndex

	// result is this branch's table map as of its own close, captured
	// before the next sibling branch resets to the chain's baseline.
	result tablestate.Tables
}

// Engine is the scope stack and merge-slot bookkeeping wrapped around the
// driver loop.
type Engine struct {
	Tables tablestate.Tables
	Sink   warn.Sink

	stack        []*frame
	merges       map[ir.ItemIndex]*mergeSlot
	chains       []*mergeSlot
	pendingChain *mergeSlot
	giveUp       bool
	imprecision  level.Imprecision
}

// New creates an Engine seeded with the function's declared parameters,
// which are never tracked as tables themselves but do occupy names in the
// function's root scope for shadowing purposes.
func New(sink warn.Sink, params []*ir.Var, imprecision level.Imprecision) *Engine {
	e := &Engine{
		Tables:      tablestate.Tables{},
		Sink:        sink,
		merges:      make(map[ir.ItemIndex]*mergeSlot),
		imprecision: imprecision,
	}

	root := &frame{kind: kindFunction}
	for _, p := range params {
		root.locals = append(root.locals, Local{Name: p.Name})
	}

	e.stack = []*frame{root}

	return e
}

// GaveUp reports whether a Goto or Label item has set the give-up flag.
func (e *Engine) GaveUp() bool { return e.giveUp }

// SetGiveUp sets the give-up flag. The driver stops dispatching items for
// this function once set; no further flush happens, so nothing already
// tracked is ever reported.
func (e *Engine) SetGiveUp() { e.giveUp = true }

// Suppress is exported so the driver can hand it to Statement Transfer and
// the Built-in Models without depending on this package's frame type.
func (e *Engine) Suppress() tablestate.BranchSuppress { return e.suppress }
