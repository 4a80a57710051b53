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
	"fieldscope.dev/fieldscope/level"
)

// suppress implements [tablestate.BranchSuppress]: a W315 eviction of
// owner's key k at source line is suppressed if an enclosing, still-open
// if-branch's pre-branch snapshot already held the very same key at the
// very same line. That set didn't originate in the branch being
// overwritten — it predates the whole if-chain — so overwriting it on one
// path while leaving it alone on another is a legitimate, intentional
// difference between branches, not an unused write.
func (e *Engine) suppress(owner string, k key.Key, line int) bool {
	for i := len(e.stack) - 1; i >= 0; i-- {
		f := e.stack[i]
		if f.kind != kindIf || f.saved == nil {
			continue
		}

		r, ok := f.saved[owner]
		if !ok {
			continue
		}

		if entry, ok := r.SetKeys[k]; ok && entry.KeyPos.Line == line {
			return true
		}

		if entry, ok := r.MaybeSetKeys[k]; ok && entry.KeyPos.Line == line {
			return true
		}
	}

	return false
}

// LoopExternal reports whether name should be treated as loop-external for
// a built-in model call. Under [level.ImprecisionStrict], any loop
// anywhere on the stack is enough: a single simulated pass over the body
// can't rule out a different iteration's binding of name. Under
// [level.ImprecisionRelaxed], the scope stack is walked from innermost
// outward and name only counts as external if its declaring local is
// found on or past a loop boundary — a fresh per-iteration local never
// carries state across iterations regardless.
func (e *Engine) LoopExternal(name string) bool {
	if e.imprecision == level.ImprecisionStrict {
		for _, f := range e.stack {
			if f.kind == kindLoop {
				return true
			}
		}

		return false
	}

	for i := len(e.stack) - 1; i >= 0; i-- {
		f := e.stack[i]

		for _, l := range f.locals {
			if l.Name == name {
				return false
			}
		}

		if f.kind == kindLoop {
			return true
		}
	}

	return false
}
