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

import "fieldscope.dev/fieldscope/internal/tablestate"

// DeclareLocal registers a fresh local binding in the innermost scope. If
// name currently aliases a tracked table, that alias is shadowed rather
// than ended: the outer table keeps its state, hidden until this scope
// closes and the name is restored to it.
func (e *Engine) DeclareLocal(name string) {
	top := e.top()

	var shadowed *tablestate.Record

	if r, ok := e.Tables[name]; ok {
		delete(e.Tables, name)
		delete(r.Aliases, name)

		if r.ShadowedAliases == nil {
			r.ShadowedAliases = make(map[string]struct{})
		}

		r.ShadowedAliases[name] = struct{}{}
		shadowed = r
	}

	top.locals = append(top.locals, Local{Name: name, Shadowed: shadowed})
}

// closeLocals ends every local the frame declared, most-recently-declared
// first, and restores whatever alias each one shadowed.
func (e *Engine) closeLocals(f *frame) {
	for i := len(f.locals) - 1; i >= 0; i-- {
		l := f.locals[i]

		e.Tables.End(e.Sink, l.Name, e.suppress)

		if l.Shadowed != nil {
			delete(l.Shadowed.ShadowedAliases, l.Name)
			l.Shadowed.Aliases[l.Name] = struct{}{}
			e.Tables[l.Name] = l.Shadowed
		}
	}
}

func (e *Engine) top() *frame {
	return e.stack[len(e.stack)-1]
}
