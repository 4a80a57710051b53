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

// Package ir defines the linear item sequence and expression tree that a
// front-end collaborator (lexer, parser, scope/upvalue resolver) builds for
// one function, and that the engine package consumes.
//
// None of the types here are produced by this module. They are the input
// contract: a front-end for a dynamically-typed scripting language is
// expected to populate a [LineScope] per analyzed function (or top-level
// chunk) and hand it to [fieldscope.dev/fieldscope.Engine.AnalyzeFunction].
package ir

// Pos is a 1-based source position. Line and column are both 1-based; Offset
// and EndOffset are 0-based byte offsets, mirroring how most hand-written
// recursive-descent parsers for small languages report positions.
type Pos struct {
	Line, Column         int
	Offset, EndOffset     int
	EndLine, EndColumn    int
}

// ItemTag classifies a [Item].
type ItemTag uint8

const (
	Local ItemTag = iota
	Set
	Eval
	Noop
	Jump
	Cjump
)

func (t ItemTag) String() string {
	switch t {
	case Local:
		return "Local"
	case Set:
		return "Set"
	case Eval:
		return "Eval"
	case Noop:
		return "Noop"
	case Jump:
		return "Jump"
	case Cjump:
		return "Cjump"
	default:
		return "ItemTag(?)"
	}
}

// ControlBlockType classifies the syntactic node wrapped by a [Noop] item.
type ControlBlockType uint8

const (
	Do ControlBlockType = iota
	If
	While
	Fornum
	Forin
	Repeat
	Label
	Goto
	Return
)

func (c ControlBlockType) String() string {
	switch c {
	case Do:
		return "Do"
	case If:
		return "If"
	case While:
		return "While"
	case Fornum:
		return "Fornum"
	case Forin:
		return "Forin"
	case Repeat:
		return "Repeat"
	case Label:
		return "Label"
	case Goto:
		return "Goto"
	case Return:
		return "Return"
	default:
		return "ControlBlockType(?)"
	}
}

// IsLoop reports whether c is one of the looping control block types, the
// boundary the loop-external check in the branch engine walks up through.
func (c ControlBlockType) IsLoop() bool {
	switch c {
	case While, Fornum, Forin, Repeat:
		return true
	default:
		return false
	}
}

// ItemIndex is the 1-based position of an [Item] within [LineScope.Items]. It
// is the lookup key for the branch engine's merge slots and jump targets.
type ItemIndex int

// Invalid is the zero value's complement, used where no index applies.
const Invalid ItemIndex = 0

// Valid reports whether idx refers to a real item.
func (idx ItemIndex) Valid() bool { return idx != Invalid }

// LineScope describes one function (or top-level chunk) and the nested
// closures syntactically defined inside it.
type LineScope struct {
	// Items is the ordered, 1-indexed linear item sequence for this function.
	// Items[0] is unused; real items occupy indices 1..len(Items)-1, matching
	// the 1-based [ItemIndex] contract used by jump targets and merge slots.
	Items []Item

	// Params lists the function's declared parameters, in order.
	Params []*Var

	// SetUpvalues, AccessedUpvalues and MutatedUpvalues classify how this
	// function's *own* body affects variables captured from an *enclosing*
	// function (relevant when this LineScope is itself passed to the engine
	// as a nested closure's line-scope is folded into the outer tracker, see
	// the External Reference Tracker).
	SetUpvalues, AccessedUpvalues, MutatedUpvalues []*Var
}

// Item is one linear-IR instruction.
type Item struct {
	Tag ItemTag
	Pos Pos

	// Lhs/Rhs are populated for Local and Set.
	Lhs, Rhs []Expr

	// To is populated for Jump and Cjump: the destination [ItemIndex].
	To ItemIndex

	// Noop-only fields.
	ControlBlockType ControlBlockType
	ScopeEnd         bool
	IsElse           bool

	// Closures is the set of nested function line-scopes syntactically
	// defined within this item (e.g. a Function expression nested in Rhs).
	// The driver folds their upvalue sets into the External Reference
	// Tracker before processing the item itself.
	Closures []*LineScope
}
