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

package engine_test

import (
	"testing"

	"fieldscope.dev/fieldscope/internal/config"
	"fieldscope.dev/fieldscope/internal/engine"
	"fieldscope.dev/fieldscope/ir"
	"fieldscope.dev/fieldscope/level"
	"fieldscope.dev/fieldscope/warn"
)

func at(line int) ir.Pos { return ir.Pos{Line: line} }

func runDefault(t *testing.T, ls *ir.LineScope) engine.Result {
	t.Helper()

	res, err := engine.Run(ls, config.DefaultFeatures(), config.DefaultBehavior(), level.ImprecisionStrict)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	return res
}

// local t = {}
// t.x = 1
func TestSetNeverReadEmitsW315(t *testing.T) {
	t.Parallel()

	tVar := &ir.Var{Name: "t"}

	ls := &ir.LineScope{
		Items: []ir.Item{
			{},
			{
				Tag: ir.Local,
				Pos: at(1),
				Lhs: []ir.Expr{{Tag: ir.Id, Binding: tVar}},
				Rhs: []ir.Expr{{Tag: ir.Table, Pos: at(1)}},
			},
			{
				Tag: ir.Set,
				Pos: at(2),
				Lhs: []ir.Expr{{
					Tag:      ir.Index,
					Pos:      at(2),
					Children: []ir.Expr{{Tag: ir.Id, Binding: tVar}, {Tag: ir.String, Lit: "x"}},
				}},
				Rhs: []ir.Expr{{Tag: ir.Number, Lit: "1", Pos: at(2)}},
			},
		},
	}

	res := runDefault(t, ls)

	if len(res.Warnings) != 1 || res.Warnings[0].Code != warn.UnusedSet {
		t.Fatalf("Warnings = %v, want one UnusedSet warning", res.Warnings)
	}

	if res.Ended != 1 {
		t.Fatalf("Ended = %d, want 1", res.Ended)
	}
}

// local t = {}
// print(t.x)
func TestAccessNeverSetEmitsW325(t *testing.T) {
	t.Parallel()

	tVar := &ir.Var{Name: "t"}
	printVar := &ir.Var{Name: "print", Global: true}

	ls := &ir.LineScope{
		Items: []ir.Item{
			{},
			{
				Tag: ir.Local,
				Pos: at(1),
				Lhs: []ir.Expr{{Tag: ir.Id, Binding: tVar}},
				Rhs: []ir.Expr{{Tag: ir.Table, Pos: at(1)}},
			},
			{
				Tag: ir.Eval,
				Pos: at(2),
				Rhs: []ir.Expr{{
					Tag: ir.Call,
					Pos: at(2),
					Children: []ir.Expr{
						{Tag: ir.Id, Binding: printVar},
						{
							Tag: ir.Index,
							Pos: at(2),
							Children: []ir.Expr{
								{Tag: ir.Id, Binding: tVar},
								{Tag: ir.String, Lit: "x"},
							},
						},
					},
				}},
			},
		},
	}

	res := runDefault(t, ls)

	if len(res.Warnings) != 1 || res.Warnings[0].Code != warn.UnsetAccess {
		t.Fatalf("Warnings = %v, want one UnsetAccess warning", res.Warnings)
	}
}

// local t = {}
// t.x = 1
// print(t.x)
// -- no warnings: set then read
func TestSetThenReadEmitsNothing(t *testing.T) {
	t.Parallel()

	tVar := &ir.Var{Name: "t"}
	printVar := &ir.Var{Name: "print", Global: true}

	ls := &ir.LineScope{
		Items: []ir.Item{
			{},
			{
				Tag: ir.Local,
				Pos: at(1),
				Lhs: []ir.Expr{{Tag: ir.Id, Binding: tVar}},
				Rhs: []ir.Expr{{Tag: ir.Table, Pos: at(1)}},
			},
			{
				Tag: ir.Set,
				Pos: at(2),
				Lhs: []ir.Expr{{
					Tag:      ir.Index,
					Pos:      at(2),
					Children: []ir.Expr{{Tag: ir.Id, Binding: tVar}, {Tag: ir.String, Lit: "x"}},
				}},
				Rhs: []ir.Expr{{Tag: ir.Number, Lit: "1", Pos: at(2)}},
			},
			{
				Tag: ir.Eval,
				Pos: at(3),
				Rhs: []ir.Expr{{
					Tag: ir.Call,
					Pos: at(3),
					Children: []ir.Expr{
						{Tag: ir.Id, Binding: printVar},
						{
							Tag: ir.Index,
							Pos: at(3),
							Children: []ir.Expr{
								{Tag: ir.Id, Binding: tVar},
								{Tag: ir.String, Lit: "x"},
							},
						},
					},
				}},
			},
		},
	}

	res := runDefault(t, ls)

	if len(res.Warnings) != 0 {
		t.Fatalf("Warnings = %v, want none", res.Warnings)
	}
}

// f(t)  -- passing a tracked table by value to an unknown function hands
// out a second reference the analyzer can no longer account for, so it is
// wiped immediately and nothing is left to flush at function exit.
func TestBareReferenceToTrackedTableWipesIt(t *testing.T) {
	t.Parallel()

	tVar := &ir.Var{Name: "t"}
	uVar := &ir.Var{Name: "u"}

	ls := &ir.LineScope{
		Items: []ir.Item{
			{},
			{
				Tag: ir.Local,
				Pos: at(1),
				Lhs: []ir.Expr{{Tag: ir.Id, Binding: tVar}},
				Rhs: []ir.Expr{{Tag: ir.Table, Pos: at(1)}},
			},
			{
				Tag: ir.Set,
				Pos: at(2),
				Lhs: []ir.Expr{{
					Tag:      ir.Index,
					Pos:      at(2),
					Children: []ir.Expr{{Tag: ir.Id, Binding: tVar}, {Tag: ir.String, Lit: "x"}},
				}},
				Rhs: []ir.Expr{{Tag: ir.Number, Lit: "1", Pos: at(2)}},
			},
			{
				Tag: ir.Eval,
				Pos: at(3),
				Rhs: []ir.Expr{{
					Tag: ir.Call,
					Pos: at(3),
					Children: []ir.Expr{
						{Tag: ir.Id, Binding: &ir.Var{Name: "f", Global: true}},
						{Tag: ir.Id, Binding: tVar},
					},
				}},
			},
			{
				Tag: ir.Local,
				Pos: at(4),
				Lhs: []ir.Expr{{Tag: ir.Id, Binding: uVar}},
				Rhs: []ir.Expr{{Tag: ir.Nil}},
			},
		},
	}

	res := runDefault(t, ls)

	if len(res.Warnings) != 0 {
		t.Fatalf("Warnings = %v, want none (t was wiped, not flushed)", res.Warnings)
	}

	if res.Ended != 0 || res.Wiped != 0 {
		t.Fatalf("Ended/Wiped = %d/%d, want 0/0: t was removed from tracking before function exit", res.Ended, res.Wiped)
	}
}

// A parameter that is itself a tracked table (aliased via a param name) is
// wiped rather than flushed at function exit, since the caller still holds
// a live reference to it.
func TestParameterTableIsWipedAtExit(t *testing.T) {
	t.Parallel()

	tVar := &ir.Var{Name: "t"}

	ls := &ir.LineScope{
		Params: []*ir.Var{{Name: "t"}},
		Items: []ir.Item{
			{},
			{
				Tag: ir.Local,
				Pos: at(1),
				Lhs: []ir.Expr{{Tag: ir.Id, Binding: tVar}},
				Rhs: []ir.Expr{{Tag: ir.Table, Pos: at(1)}},
			},
			{
				Tag: ir.Set,
				Pos: at(2),
				Lhs: []ir.Expr{{
					Tag:      ir.Index,
					Pos:      at(2),
					Children: []ir.Expr{{Tag: ir.Id, Binding: tVar}, {Tag: ir.String, Lit: "x"}},
				}},
				Rhs: []ir.Expr{{Tag: ir.Number, Lit: "1", Pos: at(2)}},
			},
		},
	}

	res := runDefault(t, ls)

	if len(res.Warnings) != 0 {
		t.Fatalf("Warnings = %v, want none (t's name is a reachable parameter)", res.Warnings)
	}

	if res.Wiped != 1 || res.Ended != 0 {
		t.Fatalf("Ended/Wiped = %d/%d, want 0/1", res.Ended, res.Wiped)
	}
}

// goto/label: the engine gives up and emits nothing for this function.
func TestGotoGivesUpWithNoWarnings(t *testing.T) {
	t.Parallel()

	tVar := &ir.Var{Name: "t"}

	ls := &ir.LineScope{
		Items: []ir.Item{
			{},
			{
				Tag: ir.Local,
				Pos: at(1),
				Lhs: []ir.Expr{{Tag: ir.Id, Binding: tVar}},
				Rhs: []ir.Expr{{Tag: ir.Table, Pos: at(1)}},
			},
			{
				Tag: ir.Set,
				Pos: at(2),
				Lhs: []ir.Expr{{
					Tag:      ir.Index,
					Pos:      at(2),
					Children: []ir.Expr{{Tag: ir.Id, Binding: tVar}, {Tag: ir.String, Lit: "x"}},
				}},
				Rhs: []ir.Expr{{Tag: ir.Number, Lit: "1", Pos: at(2)}},
			},
			{
				Tag:              ir.Noop,
				Pos:              at(3),
				ControlBlockType: ir.Goto,
			},
		},
	}

	res := runDefault(t, ls)

	if !res.GaveUp {
		t.Fatal("GaveUp = false, want true")
	}

	if len(res.Warnings) != 0 {
		t.Fatalf("Warnings = %v, want none once the engine gives up", res.Warnings)
	}
}

// A malformed item (unknown tag) is reported as an error, not a panic.
func TestMalformedItemReturnsError(t *testing.T) {
	t.Parallel()

	ls := &ir.LineScope{
		Items: []ir.Item{
			{},
			{Tag: ir.ItemTag(99), Pos: at(1)},
		},
	}

	_, err := engine.Run(ls, config.DefaultFeatures(), config.DefaultBehavior(), level.ImprecisionStrict)
	if err == nil {
		t.Fatal("Run() error = nil, want a malformed-input error")
	}
}

// Disabling a feature suppresses its emission without changing the other.
func TestFeatureTogglesSuppressEmission(t *testing.T) {
	t.Parallel()

	tVar := &ir.Var{Name: "t"}

	ls := func() *ir.LineScope {
		return &ir.LineScope{
			Items: []ir.Item{
				{},
				{
					Tag: ir.Local,
					Pos: at(1),
					Lhs: []ir.Expr{{Tag: ir.Id, Binding: tVar}},
					Rhs: []ir.Expr{{Tag: ir.Table, Pos: at(1)}},
				},
				{
					Tag: ir.Set,
					Pos: at(2),
					Lhs: []ir.Expr{{
						Tag:      ir.Index,
						Pos:      at(2),
						Children: []ir.Expr{{Tag: ir.Id, Binding: tVar}, {Tag: ir.String, Lit: "x"}},
					}},
					Rhs: []ir.Expr{{Tag: ir.Number, Lit: "1", Pos: at(2)}},
				},
			},
		}
	}

	features := config.NewBitMask(config.UnsetAccess) // UnusedSet disabled

	res, err := engine.Run(ls(), features, config.DefaultBehavior(), level.ImprecisionStrict)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(res.Warnings) != 0 {
		t.Fatalf("Warnings = %v, want none with UnusedSet disabled", res.Warnings)
	}

	if res.Ended != 1 {
		t.Fatalf("Ended = %d, want 1 (tracking still happens with emission suppressed)", res.Ended)
	}
}
