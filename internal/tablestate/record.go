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

// Package tablestate implements the per-table abstract record and its
// pure transitions: the Table State component of the engine.
package tablestate

import (
	"fieldscope.dev/fieldscope/internal/key"
	"fieldscope.dev/fieldscope/ir"
)

// SetEntry records a field known to have been written.
type SetEntry struct {
	// Owner is the alias name in effect at the point of the set.
	Owner string

	KeyPos   ir.Pos
	ValuePos ir.Pos
	IsNil    bool
}

// Record is the per-tracked-table abstract state.
type Record struct {
	SetKeys      map[key.Key]SetEntry
	MaybeSetKeys map[key.Key]SetEntry
	AccessedKeys map[key.Key]ir.Pos

	// PotentiallyAllSet/PotentiallyAllAccessed hold the position of the
	// node that caused the total-write/total-read marker, or the zero
	// [ir.Pos] (Line == 0) if absent.
	PotentiallyAllSet      ir.Pos
	PotentiallyAllAccessed ir.Pos

	Aliases         map[string]struct{}
	ShadowedAliases map[string]struct{}

	// DeclPos is the position of the table literal that created this
	// record; a merged record built at an if-join inherits it.
	DeclPos ir.Pos
}

// New creates a fresh record for a table literal at declPos, aliased to name.
func New(name string, declPos ir.Pos) *Record {
	return &Record{
		SetKeys:      make(map[key.Key]SetEntry),
		MaybeSetKeys: make(map[key.Key]SetEntry),
		AccessedKeys: make(map[key.Key]ir.Pos),
		Aliases:      map[string]struct{}{name: {}},
		DeclPos:      declPos,
	}
}

func hasPos(p ir.Pos) bool { return p.Line != 0 }

// Clone deep-copies r, for the Scope & Branch Engine's save/restore
// contract.
func (r *Record) Clone() *Record {
	c := &Record{
		SetKeys:                cloneEntries(r.SetKeys),
		MaybeSetKeys:            cloneEntries(r.MaybeSetKeys),
		AccessedKeys:            clonePos(r.AccessedKeys),
		PotentiallyAllSet:       r.PotentiallyAllSet,
		PotentiallyAllAccessed:  r.PotentiallyAllAccessed,
		Aliases:                cloneSet(r.Aliases),
		ShadowedAliases:         cloneSet(r.ShadowedAliases),
		DeclPos:                 r.DeclPos,
	}

	return c
}

func cloneEntries(m map[key.Key]SetEntry) map[key.Key]SetEntry {
	c := make(map[key.Key]SetEntry, len(m))
	for k, v := range m {
		c[k] = v
	}

	return c
}

func clonePos(m map[key.Key]ir.Pos) map[key.Key]ir.Pos {
	c := make(map[key.Key]ir.Pos, len(m))
	for k, v := range m {
		c[k] = v
	}

	return c
}

func cloneSet(m map[string]struct{}) map[string]struct{} {
	if m == nil {
		return nil
	}

	c := make(map[string]struct{}, len(m))
	for k := range m {
		c[k] = struct{}{}
	}

	return c
}
