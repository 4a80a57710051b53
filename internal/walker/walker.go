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

// Package walker implements the Expression Walker: the mutually recursive
// traversal that turns an arbitrary expression tree into the primitive
// table-state operations (access, escape, built-in dispatch) the rest of
// the engine is built from.
package walker

import (
	"fieldscope.dev/fieldscope/internal/builtin"
	"fieldscope.dev/fieldscope/internal/key"
	"fieldscope.dev/fieldscope/internal/tablestate"
	"fieldscope.dev/fieldscope/ir"
	"fieldscope.dev/fieldscope/warn"
)

// Hooks supplies everything the walker needs from the surrounding engine.
type Hooks struct {
	Tables   tablestate.Tables
	Sink     warn.Sink
	Suppress tablestate.BranchSuppress

	// LoopExternal reports whether name counts as loop-external, per the
	// Scope & Branch Engine's scope stack and imprecision level.
	LoopExternal func(name string) bool

	// OnExternalCall is invoked once per call/invocation whose callee is
	// not a recognized, side-effect-free standard-library member, letting
	// the External Reference Tracker invalidate this function's
	// parameters and upvalues.
	OnExternalCall func(pos ir.Pos)
}

// Walk recursively processes e for its access, escape and call side
// effects. e may be nil (an omitted expression slot), which is a no-op.
func Walk(h Hooks, e *ir.Expr) {
	if e == nil {
		return
	}

	switch e.Tag {
	case ir.Number, ir.String, ir.Nil, ir.Dots, ir.Function:
		// Literals have no side effects; Function's nested scope is
		// handled by the External Reference Tracker before this
		// statement, not by the walker.

	case ir.Id:
		walkID(h, e)

	case ir.Index:
		walkIndex(h, e)

	case ir.Table:
		walkTable(h, e)

	case ir.Call:
		walkCall(h, e)

	case ir.Invoke:
		walkInvoke(h, e)

	case ir.And, ir.Or:
		if len(e.Children) == 2 {
			Walk(h, &e.Children[0])
			Walk(h, &e.Children[1])
		}
	}
}

// WalkAll walks every expression in es.
func WalkAll(h Hooks, es []ir.Expr) {
	for i := range es {
		Walk(h, &es[i])
	}
}

func walkID(h Hooks, e *ir.Expr) {
	name := trackedName(h, e)
	if name == "" {
		return
	}

	// A bare reference to a tracked table, appearing anywhere a generic
	// walk visits it, hands another reference out; the analyzer can no
	// longer account for every write or read, so the table is wiped.
	h.Tables.Wipe(name)
}

func walkIndex(h Hooks, e *ir.Expr) {
	if len(e.Children) != 2 {
		return
	}

	base, keyExpr := &e.Children[0], &e.Children[1]

	if name := trackedName(h, base); name != "" {
		Walk(h, keyExpr)

		r := h.Tables[name]
		r.AccessKey(h.Sink, name, key.Of(keyExpr, false), e.Pos)

		return
	}

	Walk(h, base)
	Walk(h, keyExpr)
}

func walkTable(h Hooks, e *ir.Expr) {
	for i := range e.Pairs {
		p := &e.Pairs[i]

		if p.Key != nil {
			Walk(h, p.Key)
		}

		// A table tracked elsewhere, used as a nested literal's value,
		// stays alive rather than being wiped: the design accepts the
		// resulting false negative (a second live reference it can no
		// longer see) rather than flag every table-of-tables pattern.
		if name := trackedName(h, &p.Value); name != "" {
			continue
		}

		Walk(h, &p.Value)
	}
}

func walkCall(h Hooks, e *ir.Expr) {
	if len(e.Children) == 0 {
		return
	}

	callee := &e.Children[0]
	args := e.Children[1:]

	qualified, ok := builtin.QualifiedName(callee)
	model := builtin.None

	if ok {
		model = builtin.Classify(qualified)
	}

	if isTableModel(model) && len(args) >= 1 {
		if name := trackedName(h, &args[0]); name != "" {
			WalkAll(h, args[1:])

			r := h.Tables[name]
			builtin.Apply(h.Sink, r, model, builtin.Call{
				Pos:          e.Pos,
				Name:         name,
				Args:         args[1:],
				LoopExternal: h.LoopExternal != nil && h.LoopExternal(name),
				Suppress:     h.Suppress,
			})

			return
		}
	}

	Walk(h, callee)
	WalkAll(h, args)

	if model == builtin.None && h.OnExternalCall != nil {
		h.OnExternalCall(e.Pos)
	}
}

func walkInvoke(h Hooks, e *ir.Expr) {
	if len(e.Children) == 0 {
		return
	}

	receiver := &e.Children[0]
	args := e.Children[1:]

	if name := trackedName(h, receiver); name != "" {
		r := h.Tables[name]
		r.PotentiallyAllAccessed = e.Pos
		r.PotentiallyAllSet = e.Pos
	} else {
		Walk(h, receiver)
	}

	WalkAll(h, args)

	if h.OnExternalCall != nil {
		h.OnExternalCall(e.Pos)
	}
}

func isTableModel(m builtin.Model) bool {
	switch m {
	case builtin.Insert, builtin.Remove, builtin.Sort, builtin.Concat, builtin.Pairs, builtin.Ipairs, builtin.Next, builtin.Type:
		return true
	default:
		return false
	}
}

// trackedName returns e's bound local name if e is a bare [ir.Id] naming a
// currently tracked table, or "" otherwise.
func trackedName(h Hooks, e *ir.Expr) string {
	if e == nil || e.Tag != ir.Id || e.Binding == nil {
		return ""
	}

	if _, ok := h.Tables[e.Binding.Name]; !ok {
		return ""
	}

	return e.Binding.Name
}
