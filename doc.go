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

// Package fieldscope detects two classes of table-field misuse in a
// dynamically-typed scripting language by running a per-function
// dataflow analysis over a pre-built linear item sequence:
//
//   - W315: a table field is set but never subsequently read.
//   - W325: a table field is read but was never set.
//
// fieldscope is a library, not a command: it consumes [ir.LineScope]
// values, produced by an external front-end (lexer, parser, scope and
// upvalue resolver), and produces [warn.Warning] values. It never reads a
// file, a flag or an environment variable itself.
package fieldscope
