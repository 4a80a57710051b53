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

// OpenDo pushes a scope for a Do block. Mutations inside it happen
// in-place on the live table map; only its own locals are cleaned up on
// close.
func (e *Engine) OpenDo() {
	e.stack = append(e.stack, &frame{kind: kindDo, saved: e.Tables.Clone()})
}

// CloseDo closes the innermost Do scope: ends its own locals, then leaves
// whatever it mutated on outer tables in place.
func (e *Engine) CloseDo() {
	f := e.pop()
	e.closeLocals(f)
	e.propagateReturn(f)
}

// OpenLoop pushes a scope for a While/Fornum/Forin/Repeat body, saving a
// snapshot of the pre-loop table map.
func (e *Engine) OpenLoop() {
	e.stack = append(e.stack, &frame{kind: kindLoop, saved: e.Tables.Clone()})
}

// CloseLoop closes the innermost loop scope: ends the loop's own locals
// against the mutated map (so unused writes made fresh each "iteration"
// are still flagged), then discards every mutation the body made to
// outer tables by restoring the pre-loop snapshot verbatim. This is the
// sole point at which loops affect precision; it trades the ability to
// observe a write that survives past the loop for never risking a false
// W315 off a write that might only live for one iteration.
func (e *Engine) CloseLoop() {
	f := e.pop()
	e.closeLocals(f)
	e.Tables = f.saved
}

func (e *Engine) pop() *frame {
	f := e.top()
	e.stack = e.stack[:len(e.stack)-1]

	return f
}

// propagateReturn marks the enclosing scope as definitely-returning when a
// Do block that has just closed definitely returned on every path through
// it — a Do block has no branching of its own, so its own return state
// passes straight through.
func (e *Engine) propagateReturn(f *frame) {
	if f.definitelyReturns && len(e.stack) > 0 {
		e.top().definitelyReturns = true
	}
}

// MarkReturn records that a Return item was processed in the current
// scope.
func (e *Engine) MarkReturn() {
	e.top().definitelyReturns = true
}
