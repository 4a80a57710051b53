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

// Package warn defines the two warning codes emitted by the dataflow
// engine and its append-only, totally-ordered sink contract.
package warn

import (
	"cmp"
	"fmt"

	"fieldscope.dev/fieldscope/ir"
)

// Code is one of the two warning classes this engine emits.
type Code string

const (
	// UnusedSet ("315") is a value assigned to a table field that is never
	// subsequently read.
	UnusedSet Code = "315"

	// UnsetAccess ("325") is a read from a table field that was never
	// assigned.
	UnsetAccess Code = "325"
)

// Range is a source range, derived from the triggering node's position.
type Range struct {
	Line, Column       int
	EndLine, EndColumn int
}

// RangeOf derives a [Range] from an [ir.Pos].
func RangeOf(p ir.Pos) Range {
	return Range{Line: p.Line, Column: p.Column, EndLine: p.EndLine, EndColumn: p.EndColumn}
}

// Field is a table field name: either a numeric key or a string key, in
// the Key Normalizer's canonical form.
type Field struct {
	// Numeric is true if this field was reached through a numeric key.
	Numeric bool
	Number  float64
	Text    string
}

// String renders the field the way a message formatter would: numeric
// keys render as their numeric value, string keys render as themselves.
func (f Field) String() string {
	if f.Numeric {
		return formatNumber(f.Number)
	}

	return f.Text
}

func formatNumber(n float64) string {
	if i := int64(n); float64(i) == n {
		return fmt.Sprintf("%d", i)
	}

	return fmt.Sprintf("%g", n)
}

// Warning is one diagnostic record, carrying exactly the fields a caller
// needs to format either warning code.
type Warning struct {
	Code Code

	// Name is the tracked local's name at the point of emission.
	Name string

	Field Field

	// SetIsNil is populated for [UnusedSet] only: "nil " if the evicted set
	// stored a Nil value, "" otherwise.
	SetIsNil string

	Range Range
}

// Sink is an append-only, totally-ordered destination for warnings.
// Implementations may buffer per-function and flush; relative ordering
// within one function must match the item-processing order augmented by
// pending flushes emitted at scope exit.
type Sink interface {
	Emit(Warning)
}

// Slice is a [Sink] that accumulates into a slice and can sort itself into
// the engine's total order: (source_line, source_column, warning_code).
type Slice []Warning

// Emit implements [Sink].
func (s *Slice) Emit(w Warning) { *s = append(*s, w) }

// Less reports whether a sorts before b under the total order.
func Less(a, b Warning) bool {
	return compare(a, b) < 0
}

func compare(a, b Warning) int {
	if c := cmp.Compare(a.Range.Line, b.Range.Line); c != 0 {
		return c
	}

	if c := cmp.Compare(a.Range.Column, b.Range.Column); c != 0 {
		return c
	}

	return cmp.Compare(a.Code, b.Code)
}

// SortStable sorts s into the total order, preserving relative order of
// equal elements (so per-function flush order still breaks ties).
func (s Slice) SortStable() {
	// insertion sort: per-function batches are small, and stability under
	// the exact comparator matters more than asymptotic speed here.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && compare(s[j-1], s[j]) > 0; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
