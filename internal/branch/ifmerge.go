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

package branch

import (
	"fieldscope.dev/fieldscope/internal/key"
	"fieldscope.dev/fieldscope/internal/tablestate"
	"fieldscope.dev/fieldscope/ir"
)

// mergeSlot accumulates the closing scopes of every branch of one
// if/elseif/else statement, keyed by the item index all of them jump (or
// fall through) to.
type mergeSlot struct {
	baseline tablestate.Tables
	hasElse  bool
	normal   []*frame
	always   []*frame
}

// OpenIf opens a new if-branch scope. isElse marks the branch as the
// chain's terminal, condition-free else. Consecutive sibling branches of
// the same chain all restore to the same pre-chain baseline.
func (e *Engine) OpenIf(isElse bool) {
	var slot *mergeSlot

	if e.pendingChain != nil {
		slot = e.pendingChain
		e.pendingChain = nil
		e.Tables = slot.baseline.Clone()
	} else {
		slot = &mergeSlot{baseline: e.Tables.Clone()}
	}

	if isElse {
		slot.hasElse = true
	}

	e.stack = append(e.stack, &frame{kind: kindIf, isElse: isElse, saved: slot.baseline})
	e.chains = append(e.chains, slot)
}

// RecordJump remembers that the innermost (currently open) branch ends by
// jumping to to, skipping its remaining siblings.
func (e *Engine) RecordJump(to ir.ItemIndex) {
	if len(e.stack) == 0 {
		return
	}

	if f := e.top(); f.kind == kindIf {
		f.joinTarget = to
	}
}

// CloseIf closes the innermost if-branch scope, whose closing item sits at
// closerIndex, and returns the join index the branch converges at — either
// its own recorded jump target, or (for a branch with no jump, the chain's
// final branch) the item right after the closer.
func (e *Engine) CloseIf(closerIndex ir.ItemIndex) ir.ItemIndex {
	f := e.pop()
	e.closeLocals(f)

	slot := e.chains[len(e.chains)-1]
	e.chains = e.chains[:len(e.chains)-1]

	f.result = e.Tables

	if f.definitelyReturns {
		slot.always = append(slot.always, f)
	} else {
		slot.normal = append(slot.normal, f)
	}

	join := f.joinTarget
	if !join.Valid() {
		join = closerIndex + 1
	}

	e.merges[join] = slot
	e.pendingChain = slot

	return join
}

// MaybeMerge runs the pending merge, if any, whose join index is
// completedIndex+1 — "after the item whose index equals the join target
// minus one is processed, execute the merge".
func (e *Engine) MaybeMerge(completedIndex ir.ItemIndex) {
	join := completedIndex + 1

	slot, ok := e.merges[join]
	if !ok {
		return
	}

	delete(e.merges, join)

	if e.pendingChain == slot {
		e.pendingChain = nil
	}

	e.Tables = merge(slot)

	if len(e.stack) > 0 {
		if all, some := allReturn(slot); all && some {
			e.top().definitelyReturns = true
		}
	}
}

func allReturn(slot *mergeSlot) (all, some bool) {
	total := len(slot.normal) + len(slot.always)
	if !slot.hasElse {
		return false, total > 0
	}

	return len(slot.normal) == 0 && len(slot.always) > 0, len(slot.always) > 0
}

// merge reconciles every branch's closing state back into one table map,
// per the branch engine's demotion and accumulation rules.
func merge(slot *mergeSlot) tablestate.Tables {
	out := slot.baseline.Clone()

	participants := slot.normal
	if !slot.hasElse {
		participants = append(append([]*frame{}, participants...), &frame{result: slot.baseline})
	}

	names := make(map[string]bool)
	for name := range slot.baseline {
		names[name] = true
	}

	for name := range names {
		mergeName(out, name, participants, slot.always)
	}

	return out
}

func mergeName(out tablestate.Tables, name string, participants, always []*frame) {
	base, ok := out[name]
	if !ok {
		return
	}

	records := make([]*tablestate.Record, 0, len(participants))

	for _, p := range participants {
		r, ok := p.result[name]
		if !ok {
			// Wiped or ended on this path: the table's post-branch state
			// can no longer be accounted for precisely.
			delete(out, name)

			return
		}

		if !sameAliasSet(r.Aliases, base.Aliases) {
			delete(out, name)

			return
		}

		records = append(records, r)
	}

	merged := tablestate.New(name, base.DeclPos)
	merged.Aliases = base.Aliases
	merged.ShadowedAliases = base.ShadowedAliases

	for k := range collectKeys(records) {
		setCount := 0
		seen := false

		var last tablestate.SetEntry

		anyNil := false

		for _, r := range records {
			if e, ok := r.SetKeys[k]; ok {
				setCount++
				seen = true
				last = e
				anyNil = anyNil || e.IsNil

				continue
			}

			if e, ok := r.MaybeSetKeys[k]; ok {
				seen = true
				last = e
			}
		}

		switch {
		case setCount == len(records):
			entry := last
			entry.IsNil = anyNil
			merged.SetKeys[k] = entry
		case seen:
			merged.MaybeSetKeys[k] = last
		}
	}

	for _, r := range records {
		for k, pos := range r.AccessedKeys {
			if cur, ok := merged.AccessedKeys[k]; !ok || pos.Line > cur.Line {
				merged.AccessedKeys[k] = pos
			}
		}

		merged.PotentiallyAllSet = laterPos(merged.PotentiallyAllSet, r.PotentiallyAllSet)
		merged.PotentiallyAllAccessed = laterPos(merged.PotentiallyAllAccessed, r.PotentiallyAllAccessed)
	}

	for _, f := range always {
		r, ok := f.result[name]
		if !ok {
			continue
		}

		for k, pos := range r.AccessedKeys {
			if cur, ok := merged.AccessedKeys[k]; !ok || pos.Line > cur.Line {
				merged.AccessedKeys[k] = pos
			}
		}

		merged.PotentiallyAllAccessed = laterPos(merged.PotentiallyAllAccessed, r.PotentiallyAllAccessed)
	}

	out[name] = merged
}

func collectKeys(records []*tablestate.Record) map[key.Key]struct{} {
	keys := make(map[key.Key]struct{})

	for _, r := range records {
		for k := range r.SetKeys {
			keys[k] = struct{}{}
		}

		for k := range r.MaybeSetKeys {
			keys[k] = struct{}{}
		}
	}

	return keys
}

func sameAliasSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}

	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}

	return true
}

func laterPos(a, b ir.Pos) ir.Pos {
	if b.Line == 0 {
		return a
	}

	if a.Line == 0 || b.Line > a.Line {
		return b
	}

	return a
}
