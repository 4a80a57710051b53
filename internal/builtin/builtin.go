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

// Package builtin recognizes calls to the target language's standard
// library and supplies the transfer functions for the handful that observe
// or mutate a tracked table's shape: table.insert, table.remove,
// table.sort, table.concat, pairs, ipairs, next and type. Everything else
// that resolves to the standard library is classified as pure, letting the
// External Reference Tracker skip call-site invalidation for it without a
// dedicated transfer function.
package builtin

import "fieldscope.dev/fieldscope/ir"

// Model identifies which transfer function, if any, a recognized call uses.
type Model uint8

const (
	// None means the callee is not a recognized standard-library name; the
	// External Reference Tracker must treat the call conservatively.
	None Model = iota

	// Pure means the callee is a recognized standard-library name known to
	// never observe or mutate a table's shape, so call-site invalidation
	// can be skipped for every argument.
	Pure

	Insert
	Remove
	Sort
	Concat
	Pairs
	Ipairs
	Next
	Type
)

var catalogue = map[string]Model{
	"table.insert": Insert,
	"table.remove": Remove,
	"table.sort":   Sort,
	"table.concat": Concat,
	"pairs":        Pairs,
	"ipairs":       Ipairs,
	"next":         Next,
	"type":         Type,
}

// pureRoots are standard-library tables whose members never retain or
// mutate a table argument, aside from the qualified names covered above.
var pureRoots = []string{"string.", "math.", "os.", "io."}

// pureExact lists top-level globals known to be pure, plus a few members
// of the pure roots above named explicitly. io.lines, which keeps a handle
// alive across calls, is the one member of a pure root that isPure
// rejects.
var pureExact = map[string]bool{
	"tostring":  true,
	"tonumber":  true,
	"assert":    true,
	"select":    true,
	"rawequal":  true,
	"rawget":    true,
	"rawlen":    true,
	"io.write":  true,
	"io.read":   true,
	"io.open":   true,
	"io.close":  true,
	"os.time":   true,
	"os.date":   true,
	"os.clock":  true,
	"os.getenv": true,
}

// Classify dispatches on a call's qualified standard-library name, per the
// catalogue above. The classification is purely textual: a program that
// shadows table, pairs, ipairs, next or type with a local of the same name
// is not detected: a user's own "pairs" is modeled exactly like the real
// one, so its effect on a tracked table argument can be modeled wrongly.
func Classify(name string) Model {
	if m, ok := catalogue[name]; ok {
		return m
	}

	if isPure(name) {
		return Pure
	}

	return None
}

func isPure(name string) bool {
	if pureExact[name] {
		return true
	}

	if name == "io.lines" {
		return false
	}

	for _, root := range pureRoots {
		if len(name) > len(root) && name[:len(root)] == root {
			return true
		}
	}

	return false
}

// QualifiedName extracts the standard-library dispatch name from a call's
// callee expression: "pairs" for a bare [ir.Id], "table.insert" for
// Index(Id("table"), "insert"). It reports false for anything else (a
// computed callee, a method invocation, an Id with no binding).
//
// Like [Classify], which is purely textual, this does not check whether
// the identifier's binding actually resolves to the global standard
// library; it dispatches on spelling alone.
func QualifiedName(callee *ir.Expr) (string, bool) {
	if callee == nil {
		return "", false
	}

	switch callee.Tag {
	case ir.Id:
		if callee.Binding == nil {
			return "", false
		}

		return callee.Binding.Name, true

	case ir.Index:
		if len(callee.Children) != 2 {
			return "", false
		}

		base, keyExpr := callee.Children[0], callee.Children[1]
		if base.Tag != ir.Id || base.Binding == nil || keyExpr.Tag != ir.String {
			return "", false
		}

		return base.Binding.Name + "." + keyExpr.Lit, true

	default:
		return "", false
	}
}
