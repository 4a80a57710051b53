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

package fieldscope

import (
	"errors"
	"fmt"

	"fieldscope.dev/fieldscope/internal/engine"
	"fieldscope.dev/fieldscope/internal/itemutil"
	"fieldscope.dev/fieldscope/ir"
	"fieldscope.dev/fieldscope/warn"
)

// ErrMalformedInput is wrapped by the error returned from
// [Engine.AnalyzeFunction] when ls violates the front-end contract
// described in the ir package (missing variable bindings, unknown item
// tags, mismatched scope_end). It indicates a bug in the collaborator
// that built ls, not in the analyzed program.
var ErrMalformedInput = errors.New("fieldscope: malformed input")

// Engine runs the W315/W325 dataflow analysis with a fixed configuration,
// built once with [New] and reused across however many functions a
// collaborator has to analyze.
type Engine struct {
	opts *runOptions
}

// New creates an Engine configured by opts. It allows for programmatic
// configuration that is useful for integrating this engine into other
// tools; the zero-value options (no opts) enable both warning classes
// with the engine's most conservative, default behavior.
func New(opts ...Option) *Engine {
	return &Engine{opts: makeRunOptions(Options(opts))}
}

// AnalyzeFunction runs the dataflow analysis over one function (or
// top-level chunk) and returns its warnings sorted into the
// (source_line, source_column, warning_code) total order. A malformed ls
// is reported as an error wrapping [ErrMalformedInput] rather than a
// panic.
func (e *Engine) AnalyzeFunction(ls *ir.LineScope) ([]warn.Warning, error) {
	res, err := engine.Run(ls, e.opts.features, e.opts.behavior, e.opts.imprecision)
	if err != nil {
		var m itemutil.Malformed
		if errors.As(err, &m) {
			return nil, fmt.Errorf("%w: %s", ErrMalformedInput, m.Message)
		}

		return nil, err
	}

	return res.Warnings, nil
}

// Stats summarizes a batch of [Engine.AnalyzeFunctions] calls.
type Stats struct {
	// FunctionsAnalyzed is the number of line scopes processed.
	FunctionsAnalyzed int

	// GaveUp is the number of functions abandoned due to Goto/Label.
	GaveUp int

	// TablesEnded is the number of tracked tables flushed through the
	// W315 policy at function exit.
	TablesEnded int

	// TablesWiped is the number of tracked tables dropped with no
	// warnings at function exit because some alias of theirs escaped the
	// function (a parameter or a captured upvalue).
	TablesWiped int
}

// AnalyzeFunctions is a batch convenience over [Engine.AnalyzeFunction]:
// it analyzes every line scope in order and accumulates [Stats] alongside
// the combined, per-function-sorted warning list. It stops at the first
// malformed input and returns the error from that call; warnings and
// stats already accumulated are returned too.
func (e *Engine) AnalyzeFunctions(lss []*ir.LineScope) ([]warn.Warning, Stats, error) {
	var (
		all   []warn.Warning
		stats Stats
	)

	for _, ls := range lss {
		res, err := engine.Run(ls, e.opts.features, e.opts.behavior, e.opts.imprecision)
		if err != nil {
			var m itemutil.Malformed
			if errors.As(err, &m) {
				return all, stats, fmt.Errorf("%w: %s", ErrMalformedInput, m.Message)
			}

			return all, stats, err
		}

		stats.FunctionsAnalyzed++

		if res.GaveUp {
			stats.GaveUp++
		}

		stats.TablesEnded += res.Ended
		stats.TablesWiped += res.Wiped

		all = append(all, res.Warnings...)
	}

	return all, stats, nil
}
