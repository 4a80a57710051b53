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

import "fieldscope.dev/fieldscope/warn"

// Tables is the current-tables map: a name is a key iff it is in the
// Aliases of exactly one [Record] (the one-record-per-table invariant).
type Tables map[string]*Record

// Clone deep-copies every tracked record, for the save/restore contract
// used by the Scope & Branch Engine. Records shared through
// aliasing remain shared in the clone (the same *[Record] pointer is
// installed under each of its alias names), matching the original sharing
// topology.
func (t Tables) Clone() Tables {
	c := make(Tables, len(t))

	cloned := make(map[*Record]*Record, len(t))

	for name, r := range t {
		cr, ok := cloned[r]
		if !ok {
			cr = r.Clone()
			cloned[r] = cr
		}

		c[name] = cr
	}

	return c
}

// Declare installs a fresh record under name, per "a table record is
// created on a local assignment whose rhs is a Table literal".
func (t Tables) Declare(name string, r *Record) {
	t[name] = r
}

// Alias adds newName as an alias of existing's record. It is a
// no-op if existing is not tracked.
func (t Tables) Alias(existing, newName string) bool {
	r, ok := t[existing]
	if !ok {
		return false
	}

	r.Aliases[newName] = struct{}{}
	t[newName] = r

	return true
}

// End disposes of name's record: removes the alias, and if that was the
// last (non-shadowed) alias, flushes remaining sets through the W315
// policy and deletes the record from every remaining alias name, per
// end_table_variable.
func (t Tables) End(sink warn.Sink, name string, suppress BranchSuppress) {
	r, ok := t[name]
	if !ok {
		return
	}

	delete(r.Aliases, name)
	delete(t, name)

	if len(r.Aliases) > 0 || len(r.ShadowedAliases) > 0 {
		return
	}

	r.Flush(sink, suppress)
}

// Wipe drops name's record and every one of its current aliases from t
// with no warnings, per wipe. Used whenever the analyzer becomes
// uncertain about a table's state.
func (t Tables) Wipe(name string) {
	r, ok := t[name]
	if !ok {
		return
	}

	for alias := range r.Aliases {
		delete(t, alias)
	}
}

// EndAll disposes of every currently tracked table, in name order handled
// by the caller if determinism matters; used at function exit. It
// returns how many distinct records were flushed through the W315 policy
// (ended) versus dropped with no warnings because some alias is still
// externally reachable (wiped), for the driver's own [Stats] bookkeeping.
func (t Tables) EndAll(sink warn.Sink, suppress BranchSuppress, externallyReferenced func(name string) bool) (ended, wiped int) {
	seen := make(map[*Record]bool, len(t))

	for _, r := range t {
		if seen[r] {
			continue
		}
		seen[r] = true

		if anyAliasReferenced(r, externallyReferenced) {
			wiped++

			for alias := range r.Aliases {
				delete(t, alias)
			}

			continue
		}

		ended++

		r.Flush(sink, suppress)

		for alias := range r.Aliases {
			delete(t, alias)
		}
	}

	return ended, wiped
}

func anyAliasReferenced(r *Record, externallyReferenced func(name string) bool) bool {
	if externallyReferenced == nil {
		return false
	}

	for alias := range r.Aliases {
		if externallyReferenced(alias) {
			return true
		}
	}

	return false
}
