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
	"flag"

	"fieldscope.dev/fieldscope/internal/config"
)

// RegisterFlags binds command-line flags for every [Option] this package
// exposes to flags, for an external CLI collaborator that wants to expose
// this engine's configuration without hand-writing its own flag.Value
// adapters. A nil flags defaults to flag.CommandLine; flags bound this way
// mutate e's own configuration in place as they are parsed.
func (e *Engine) RegisterFlags(flags *flag.FlagSet) {
	if flags == nil {
		flags = flag.CommandLine
	}

	r := e.opts

	flags.Var(boolValue[config.Features, *config.BitMask[config.Features]]{flags: &r.features, value: config.UnusedSet},
		"unused-set", "report table fields set but never read (W315)")
	flags.Var(boolValue[config.Features, *config.BitMask[config.Features]]{flags: &r.features, value: config.UnsetAccess},
		"unset-access", "report table fields read but never set (W325)")
	flags.Var(boolValue[config.Behavior, *config.BitMask[config.Behavior]]{flags: &r.behavior, value: config.LogGiveUp},
		"log-give-up", "log functions abandoned due to goto/label")
	flags.TextVar(&r.imprecision, "imprecision", r.imprecision, "loop imprecision level: strict or relaxed")
}
