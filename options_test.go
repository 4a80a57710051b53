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

package fieldscope_test

import (
	"testing"

	"fieldscope.dev/fieldscope"
	"fieldscope.dev/fieldscope/ir"
	"fieldscope.dev/fieldscope/level"
)

func unsetAccessScope() *ir.LineScope {
	tVar := &ir.Var{Name: "t"}
	printVar := &ir.Var{Name: "print", Global: true}

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
}

func TestWithUnsetAccessDisabled(t *testing.T) {
	t.Parallel()

	e := fieldscope.New(fieldscope.WithUnsetAccess(false))

	warnings, err := e.AnalyzeFunction(unsetAccessScope())
	if err != nil {
		t.Fatalf("AnalyzeFunction() error = %v", err)
	}

	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none with W325 disabled", warnings)
	}
}

func TestWithImprecisionRelaxedIsAccepted(t *testing.T) {
	t.Parallel()

	// Relaxed round-trips through the option without erroring; the
	// behavioral difference it controls is exercised by the branch
	// engine's own tests.
	e := fieldscope.New(fieldscope.WithImprecision(level.ImprecisionRelaxed))

	if _, err := e.AnalyzeFunction(unusedSetScope()); err != nil {
		t.Fatalf("AnalyzeFunction() error = %v", err)
	}
}

func TestOptionsCompose(t *testing.T) {
	t.Parallel()

	e := fieldscope.New(
		fieldscope.WithUnusedSet(false),
		fieldscope.WithUnsetAccess(false),
	)

	warnings, err := e.AnalyzeFunction(unusedSetScope())
	if err != nil {
		t.Fatalf("AnalyzeFunction() error = %v", err)
	}

	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none with both features disabled", warnings)
	}
}

func TestOptionsLogValueGroupsEveryOption(t *testing.T) {
	t.Parallel()

	opts := fieldscope.Options{
		fieldscope.WithUnusedSet(false),
		fieldscope.WithUnsetAccess(true),
	}

	v := opts.LogValue()
	if v.Kind().String() != "Group" {
		t.Fatalf("LogValue().Kind() = %v, want Group", v.Kind())
	}

	if got := len(v.Group()); got != 2 {
		t.Fatalf("LogValue() group has %d attrs, want 2", got)
	}
}
