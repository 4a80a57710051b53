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

// EvictAt runs the W315 policy against whatever is currently stored at k,
// without installing a replacement. It reports whether an entry existed.
// The Built-in Models use this for table.remove's index shift, where an
// entry is discarded rather than overwritten by a fresh assignment.
func (r *Record) EvictAt(sink warn.Sink, k key.Key, suppress BranchSuppress) bool {
	if entry, ok := r.SetKeys[k]; ok {
		r.evict(sink, k, entry, suppress)
		delete(r.SetKeys, k)
		delete(r.AccessedKeys, k)

		return true
	}

	if entry, ok := r.MaybeSetKeys[k]; ok {
		r.evict(sink, k, entry, suppress)
		delete(r.MaybeSetKeys, k)
		delete(r.AccessedKeys, k)

		return true
	}

	return false
}

// InstallSet directly installs entry at k, bypassing set_key's eviction and
// in-init handling. table.remove's index shift moves an existing entry
// rather than processing a fresh assignment, so the caller is responsible
// for evicting whatever previously sat at k.
func (r *Record) InstallSet(k key.Key, entry SetEntry) {
	r.SetKeys[k] = entry
	delete(r.AccessedKeys, k)
}

// MarkAccessed records pos as the access for key k without running the W325
// check, for built-ins (table.concat, pairs, ipairs, table.remove's shift)
// that read a field known to already hold a tracked value.
func (r *Record) MarkAccessed(k key.Key, pos ir.Pos) {
	r.AccessedKeys[k] = pos
}

// NonNilNumericSetCount counts definite, non-nil numeric set_keys entries,
// used to synthesize table.insert's implicit index.
func (r *Record) NonNilNumericSetCount() int {
	n := 0

	for k, e := range r.SetKeys {
		if e.IsNil {
			continue
		}

		if _, ok := k.IsNumber(); ok {
			n++
		}
	}

	return n
}

// MaxNonNilIntegerKey returns the largest integer-valued numeric key with a
// definite, non-nil set_keys entry, used by table.remove.
func (r *Record) MaxNonNilIntegerKey() (int, bool) {
	max := 0
	found := false

	for k, e := range r.SetKeys {
		if e.IsNil {
			continue
		}

		n, ok := k.IsNumber()
		if !ok {
			continue
		}

		iv := int(n)
		if float64(iv) != n {
			continue
		}

		if !found || iv > max {
			max = iv
			found = true
		}
	}

	return max, found
}
