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
	"fieldscope.dev/fieldscope/internal/config"
	"fieldscope.dev/fieldscope/level"
)

// runOptions holds the resolved configuration behind a [New] Engine.
type runOptions struct {
	features    config.BitMask[config.Features]
	behavior    config.BitMask[config.Behavior]
	imprecision level.Imprecision
}

func defaultRunOptions() *runOptions {
	return &runOptions{
		features: config.DefaultFeatures(),
		behavior: config.DefaultBehavior(),
	}
}

func makeRunOptions(opts Options) *runOptions {
	r := defaultRunOptions()
	opts.apply(r)

	return r
}
