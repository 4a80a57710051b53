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

// Package key implements the Key Normalizer: canonicalizing a table
// key expression into a comparable, map-friendly [Key] value.
package key

import (
	"math"
	"strconv"

	"fieldscope.dev/fieldscope/ir"
)

// Key is the canonical form of a table key, suitable as a map key.
//
// The zero value is not a valid Key; use [Of] or [Variable].
type Key struct {
	// kind distinguishes numeric, string and variable keys.
	kind kind

	number float64
	text   string
}

type kind uint8

const (
	kindNumber kind = iota
	kindString
	kindVariable
)

// variableKey is the single canonical value standing in for every
// non-constant key; the table record tracks at most one such marker
// ([potentially-all], not a per-key entry), so all variable keys collapse
// to the same Key for map-identity purposes, though callers should prefer
// [Key.IsVariable] over comparing to this directly.
var variableKey = Key{kind: kindVariable}

// Variable returns the canonical "non-constant key" marker.
func Variable() Key { return variableKey }

// Number returns the canonical key for a numeric value n.
func Number(n float64) Key { return Key{kind: kindNumber, number: n} }

// String returns the canonical key for a string value s.
func String(s string) Key { return Key{kind: kindString, text: s} }

// IsVariable reports whether k is the non-constant marker.
func (k Key) IsVariable() bool { return k.kind == kindVariable }

// IsNumber reports whether k is a numeric key, returning its value.
func (k Key) IsNumber() (float64, bool) {
	return k.number, k.kind == kindNumber
}

// Text renders a string-keyed or numeric-keyed Key for diagnostics; it
// panics for the variable marker, which callers must check for first.
func (k Key) Text() string {
	switch k.kind {
	case kindNumber:
		return formatNumber(k.number)
	case kindString:
		return k.text
	default:
		panic("key: Text called on variable key")
	}
}

func formatNumber(n float64) string {
	if i := int64(n); float64(i) == n {
		return strconv.FormatInt(i, 10)
	}

	return strconv.FormatFloat(n, 'g', -1, 64)
}

// Of normalizes a key expression node.
//
// coercePositional selects the table.insert/table.remove coercion rule: a
// numeral string argument to those built-ins is coerced to its numeric
// form, matching the target language's runtime coercion for positional
// table operations. Everywhere else, a numeral string key stays a string
// key (Lua-family semantics: t["1"] and t[1] are distinct fields).
func Of(e *ir.Expr, coercePositional bool) Key {
	if e == nil {
		return variableKey
	}

	switch e.Tag {
	case ir.Number:
		if n, ok := parseNumber(e.Lit); ok {
			return Number(n)
		}

		return variableKey

	case ir.String:
		if coercePositional {
			if n, ok := parseNumber(e.Lit); ok {
				return Number(n)
			}
		}

		return String(e.Lit)

	default:
		return variableKey
	}
}

// parseNumber reports whether s round-trips to a finite number, and its
// value if so.
func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}

	return n, true
}
