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

// Package itemutil holds the helper shared across the engine's internal
// packages for reporting malformed input.
package itemutil

import (
	"fmt"
	"log/slog"

	"fieldscope.dev/fieldscope/ir"
)

// Malformed is the panic value raised when the input violates the contract
// described by the ir package: missing variable bindings, unknown item tags, mismatched
// scope_end. These indicate a bug in the front-end collaborator, not in the
// analyzed program, so they are never silently absorbed into a warning —
// they propagate out of [fieldscope.Engine.AnalyzeFunction] as an error
// wrapping ErrMalformedInput.
type Malformed struct {
	Index   ir.ItemIndex
	Message string
}

func (m Malformed) Error() string {
	return fmt.Sprintf("malformed input at item %d: %s", m.Index, m.Message)
}

// InternalError logs and panics with a [Malformed] value.
func InternalError(idx ir.ItemIndex, format string, args ...any) {
	m := Malformed{Index: idx, Message: fmt.Sprintf(format, args...)}

	slog.Error("fieldscope: internal error", slog.Int("item", int(idx)), slog.String("message", m.Message))

	panic(m)
}
