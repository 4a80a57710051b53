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

package tablestate

import (
	"fieldscope.dev/fieldscope/internal/key"
	"fieldscope.dev/fieldscope/ir"
	"fieldscope.dev/fieldscope/warn"
)

// BranchSuppress reports whether a W315 eviction of owner's key k, whose set
// sits on source line, should be suppressed because an enclosing branch
// scope already held the same key at the same line before the branch was
// entered ("overwrites across branches are legitimate"). The Scope & Branch
// Engine supplies this.
type BranchSuppress func(owner string, k key.Key, line int) bool

// SetKey implements the set_key transition.
func (r *Record) SetKey(sink warn.Sink, name string, k key.Key, keyPos, valuePos ir.Pos, isNil, inInit bool, suppress BranchSuppress) {
	if k.IsVariable() {
		if !isNil {
			r.PotentiallyAllSet = keyPos
		}
		// A variable key with a Nil value is conservatively ignored.
		return
	}

	if inInit && isNil {
		return
	}

	if entry, ok := r.SetKeys[k]; ok && !inInit {
		r.evict(sink, k, entry, suppress)
		delete(r.SetKeys, k)
	}

	if entry, ok := r.MaybeSetKeys[k]; ok {
		r.evict(sink, k, entry, suppress)
		delete(r.MaybeSetKeys, k)
	}

	delete(r.AccessedKeys, k)

	r.SetKeys[k] = SetEntry{Owner: name, KeyPos: keyPos, ValuePos: valuePos, IsNil: isNil}
}

// AccessKey implements the access_key transition.
func (r *Record) AccessKey(sink warn.Sink, name string, k key.Key, node ir.Pos) {
	if k.IsVariable() {
		if !r.hasNonNilSet() && !hasPos(r.PotentiallyAllSet) {
			r.emitUnsetAccess(sink, name, k, node)
		}

		r.PotentiallyAllAccessed = node

		return
	}

	entry, haveEntry := r.SetKeys[k]
	if !haveEntry {
		entry, haveEntry = r.MaybeSetKeys[k]
	}

	switch {
	case !haveEntry && !hasPos(r.PotentiallyAllSet):
		r.emitUnsetAccess(sink, name, k, node)

	case haveEntry && entry.IsNil && !followsSet(r.PotentiallyAllSet, entry.KeyPos):
		r.emitUnsetAccess(sink, name, k, node)
	}

	r.AccessedKeys[k] = node
}

// followsSet reports whether the potentially-all-set marker at allSet comes
// at or after the set recorded at setPos, i.e. "follows it in program order".
func followsSet(allSet, setPos ir.Pos) bool {
	return hasPos(allSet) && allSet.Line >= setPos.Line
}

func (r *Record) hasNonNilSet() bool {
	for _, e := range r.SetKeys {
		if !e.IsNil {
			return true
		}
	}

	for _, e := range r.MaybeSetKeys {
		if !e.IsNil {
			return true
		}
	}

	return false
}

func (r *Record) emitUnsetAccess(sink warn.Sink, name string, k key.Key, node ir.Pos) {
	if sink == nil {
		return
	}

	sink.Emit(warn.Warning{
		Code:  warn.UnsetAccess,
		Name:  name,
		Field: fieldOf(k),
		Range: warn.RangeOf(node),
	})
}

// evict applies the W315 emission policy to a set entry being
// overwritten or otherwise discarded.
func (r *Record) evict(sink warn.Sink, k key.Key, entry SetEntry, suppress BranchSuppress) {
	if sink == nil {
		return
	}

	if pos, ok := r.AccessedKeys[k]; ok && pos.Line >= entry.KeyPos.Line {
		return
	}

	if hasPos(r.PotentiallyAllAccessed) && r.PotentiallyAllAccessed.Line >= entry.KeyPos.Line {
		return
	}

	if suppress != nil && suppress(entry.Owner, k, entry.KeyPos.Line) {
		return
	}

	sink.Emit(warn.Warning{
		Code:     warn.UnusedSet,
		Name:     entry.Owner,
		Field:    fieldOf(k),
		SetIsNil: nilText(entry.IsNil),
		Range:    warn.RangeOf(entry.KeyPos),
	})
}

// Flush evicts every remaining set/maybe-set entry through the W315
// policy, used when a record is [End]ed.
func (r *Record) Flush(sink warn.Sink, suppress BranchSuppress) {
	for k, entry := range r.SetKeys {
		r.evict(sink, k, entry, suppress)
	}

	for k, entry := range r.MaybeSetKeys {
		r.evict(sink, k, entry, suppress)
	}
}

func nilText(isNil bool) string {
	if isNil {
		return "nil "
	}

	return ""
}

func fieldOf(k key.Key) warn.Field {
	if k.IsVariable() {
		// The variable-key marker names no particular field.
		return warn.Field{}
	}

	if n, ok := k.IsNumber(); ok {
		return warn.Field{Numeric: true, Number: n}
	}

	return warn.Field{Text: k.Text()}
}
