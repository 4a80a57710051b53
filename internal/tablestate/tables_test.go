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

package tablestate_test

import (
	"testing"

	"fieldscope.dev/fieldscope/internal/key"
	"fieldscope.dev/fieldscope/internal/tablestate"
	"fieldscope.dev/fieldscope/warn"
)

func TestAliasSharesRecord(t *testing.T) {
	t.Parallel()

	tbl := make(tablestate.Tables)
	r := tablestate.New("t", pos(1))
	tbl.Declare("t", r)

	if !tbl.Alias("t", "u") {
		t.Fatal("Alias(existing tracked name) = false, want true")
	}

	if tbl["u"] != tbl["t"] {
		t.Fatal("alias did not share the underlying record")
	}
}

func TestAliasOfUntrackedNameIsNoop(t *testing.T) {
	t.Parallel()

	tbl := make(tablestate.Tables)

	if tbl.Alias("missing", "u") {
		t.Fatal("Alias(untracked name) = true, want false")
	}

	if _, ok := tbl["u"]; ok {
		t.Fatal("Alias(untracked name) installed a record anyway")
	}
}

func TestEndLastAliasFlushes(t *testing.T) {
	t.Parallel()

	tbl := make(tablestate.Tables)
	r := tablestate.New("t", pos(1))
	tbl.Declare("t", r)

	var sink warn.Slice
	r.SetKey(&sink, "t", key.String("x"), pos(2), pos(2), false, false, nil)

	tbl.End(&sink, "t", nil)

	if len(sink) != 1 || sink[0].Code != warn.UnusedSet {
		t.Fatalf("End() sink = %v, want one UnusedSet warning", sink)
	}

	if _, ok := tbl["t"]; ok {
		t.Fatal("End() left the record tracked")
	}
}

func TestEndNonLastAliasDoesNotFlush(t *testing.T) {
	t.Parallel()

	tbl := make(tablestate.Tables)
	r := tablestate.New("t", pos(1))
	tbl.Declare("t", r)
	tbl.Alias("t", "u")

	var sink warn.Slice
	r.SetKey(&sink, "t", key.String("x"), pos(2), pos(2), false, false, nil)

	tbl.End(&sink, "t", nil)

	if len(sink) != 0 {
		t.Fatalf("End() on a non-last alias sink = %v, want no warnings yet", sink)
	}

	if _, ok := tbl["u"]; !ok {
		t.Fatal("End() on one alias removed the other alias's entry")
	}
}

func TestWipeDropsAllAliasesWithNoWarnings(t *testing.T) {
	t.Parallel()

	tbl := make(tablestate.Tables)
	r := tablestate.New("t", pos(1))
	tbl.Declare("t", r)
	tbl.Alias("t", "u")

	var sink warn.Slice
	r.SetKey(&sink, "t", key.String("x"), pos(2), pos(2), false, false, nil)

	tbl.Wipe("t")

	if len(sink) != 0 {
		t.Fatalf("Wipe() sink = %v, want no warnings", sink)
	}

	if _, ok := tbl["t"]; ok {
		t.Fatal("Wipe() left \"t\" tracked")
	}

	if _, ok := tbl["u"]; ok {
		t.Fatal("Wipe() left \"u\" tracked")
	}
}

func TestEndAllFlushesUnreferencedAndWipesReferenced(t *testing.T) {
	t.Parallel()

	tbl := make(tablestate.Tables)

	local := tablestate.New("local", pos(1))
	tbl.Declare("local", local)

	escaped := tablestate.New("escaped", pos(2))
	tbl.Declare("escaped", escaped)

	var sink warn.Slice
	local.SetKey(&sink, "local", key.String("x"), pos(3), pos(3), false, false, nil)
	escaped.SetKey(&sink, "escaped", key.String("y"), pos(4), pos(4), false, false, nil)

	externally := func(name string) bool { return name == "escaped" }

	ended, wiped := tbl.EndAll(&sink, nil, externally)

	if ended != 1 || wiped != 1 {
		t.Fatalf("EndAll() = (%d, %d), want (1, 1)", ended, wiped)
	}

	if len(sink) != 1 || sink[0].Name != "local" {
		t.Fatalf("sink = %v, want one warning for \"local\" only", sink)
	}

	if len(tbl) != 0 {
		t.Fatalf("tbl = %v, want empty after EndAll", tbl)
	}
}

func TestEndAllCountsSharedAliasesOnce(t *testing.T) {
	t.Parallel()

	tbl := make(tablestate.Tables)
	r := tablestate.New("t", pos(1))
	tbl.Declare("t", r)
	tbl.Alias("t", "u")

	var sink warn.Slice

	ended, wiped := tbl.EndAll(&sink, nil, nil)

	if ended != 1 || wiped != 0 {
		t.Fatalf("EndAll() = (%d, %d), want (1, 0) for one record with two aliases", ended, wiped)
	}
}

func TestCloneTablesPreservesAliasSharing(t *testing.T) {
	t.Parallel()

	tbl := make(tablestate.Tables)
	r := tablestate.New("t", pos(1))
	tbl.Declare("t", r)
	tbl.Alias("t", "u")

	c := tbl.Clone()

	if c["t"] != c["u"] {
		t.Fatal("Clone() broke alias sharing between \"t\" and \"u\"")
	}

	if c["t"] == tbl["t"] {
		t.Fatal("Clone() shared the record pointer with the original")
	}
}
