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

package branch_test

import (
	"testing"

	"fieldscope.dev/fieldscope/internal/branch"
	"fieldscope.dev/fieldscope/internal/key"
	"fieldscope.dev/fieldscope/internal/tablestate"
	"fieldscope.dev/fieldscope/ir"
	"fieldscope.dev/fieldscope/level"
	"fieldscope.dev/fieldscope/warn"
)

func pos(line int) ir.Pos { return ir.Pos{Line: line} }

func TestLoopExternalStrictIgnoresDeclarationSite(t *testing.T) {
	t.Parallel()

	e := branch.New(nil, nil, level.ImprecisionStrict)

	e.Tables.Declare("t", tablestate.New("t", pos(1)))
	e.DeclareLocal("t")

	e.OpenLoop()

	if !e.LoopExternal("t") {
		t.Fatal("LoopExternal(t) under Strict = false inside a loop, want true even for a loop-local declaration")
	}
}

func TestLoopExternalRelaxedExemptsLoopLocal(t *testing.T) {
	t.Parallel()

	e := branch.New(nil, nil, level.ImprecisionRelaxed)

	e.OpenLoop()
	e.DeclareLocal("t")
	e.Tables.Declare("t", tablestate.New("t", pos(2)))

	if e.LoopExternal("t") {
		t.Fatal("LoopExternal(t) under Relaxed = true for a table declared fresh inside the loop, want false")
	}
}

func TestLoopExternalRelaxedFlagsOuterDeclaration(t *testing.T) {
	t.Parallel()

	e := branch.New(nil, nil, level.ImprecisionRelaxed)

	e.DeclareLocal("t")
	e.Tables.Declare("t", tablestate.New("t", pos(1)))

	e.OpenLoop()

	if !e.LoopExternal("t") {
		t.Fatal("LoopExternal(t) under Relaxed = false for a table declared outside the loop, want true")
	}
}

func TestLoopExternalOutsideAnyLoopIsFalse(t *testing.T) {
	t.Parallel()

	for _, lvl := range []level.Imprecision{level.ImprecisionStrict, level.ImprecisionRelaxed} {
		e := branch.New(nil, nil, lvl)

		e.DeclareLocal("t")
		e.Tables.Declare("t", tablestate.New("t", pos(1)))

		if e.LoopExternal("t") {
			t.Fatalf("LoopExternal(t) under %v outside any loop = true, want false", lvl)
		}
	}
}

func TestCloseLoopDiscardsMutationsToOuterTables(t *testing.T) {
	t.Parallel()

	e := branch.New(nil, nil, level.ImprecisionStrict)

	e.DeclareLocal("t")
	e.Tables.Declare("t", tablestate.New("t", pos(1)))

	e.OpenLoop()
	e.Tables["t"].SetKey(e.Sink, "t", key.String("x"), pos(2), pos(2), false, false, nil)
	e.CloseLoop()

	if _, ok := e.Tables["t"].SetKeys[key.String("x")]; ok {
		t.Fatal("CloseLoop() kept a mutation to an outer table made inside the loop body")
	}
}

func TestCloseDoKeepsMutationsToOuterTables(t *testing.T) {
	t.Parallel()

	e := branch.New(nil, nil, level.ImprecisionStrict)

	e.DeclareLocal("t")
	e.Tables.Declare("t", tablestate.New("t", pos(1)))

	e.OpenDo()
	e.Tables["t"].SetKey(e.Sink, "t", key.String("x"), pos(2), pos(2), false, false, nil)
	e.CloseDo()

	if _, ok := e.Tables["t"].SetKeys[key.String("x")]; !ok {
		t.Fatal("CloseDo() discarded a mutation to an outer table, want it kept")
	}
}

func TestDeclareLocalShadowsAndRestores(t *testing.T) {
	t.Parallel()

	var sink warn.Slice
	e := branch.New(&sink, nil, level.ImprecisionStrict)

	e.DeclareLocal("t")
	outer := tablestate.New("t", pos(1))
	e.Tables.Declare("t", outer)
	outer.SetKey(&sink, "t", key.String("x"), pos(1), pos(1), false, false, nil)

	e.OpenDo()
	e.DeclareLocal("t") // shadow with a fresh local named "t"
	e.Tables.Declare("t", tablestate.New("t", pos(2)))
	e.CloseDo()

	if e.Tables["t"] != outer {
		t.Fatal("CloseDo() did not restore the shadowed outer record under \"t\"")
	}

	if len(sink) != 0 {
		t.Fatalf("sink = %v, want no warnings yet: the outer record is still open", sink)
	}
}

func TestGaveUpStopsNothingButIsObservable(t *testing.T) {
	t.Parallel()

	e := branch.New(nil, nil, level.ImprecisionStrict)

	if e.GaveUp() {
		t.Fatal("GaveUp() = true before SetGiveUp was ever called")
	}

	e.SetGiveUp()

	if !e.GaveUp() {
		t.Fatal("GaveUp() = false after SetGiveUp")
	}
}
