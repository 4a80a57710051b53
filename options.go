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
	"log/slog"

	"fieldscope.dev/fieldscope/internal/config"
	"fieldscope.dev/fieldscope/level"
)

// Option configures specific behavior of a [New] Engine.
type Option interface {
	apply(r *runOptions)
	LogAttr() slog.Attr
}

// Options is a list of [Option] values that itself satisfies [Option].
type Options []Option

func (o Options) apply(r *runOptions) {
	for _, opt := range o {
		if opt == nil {
			continue
		}

		opt.apply(r)
	}
}

// LogAttr is for logging with [slog.Logger.LogAttrs].
func (o Options) LogAttr() slog.Attr { return slog.Any("options", o) }

// LogValue implements [slog.LogValuer].
func (o Options) LogValue() slog.Value {
	as := make([]slog.Attr, 0, len(o))
	as = appendOptions(as, o)

	return slog.GroupValue(as...)
}

func appendOptions(as []slog.Attr, o Options) []slog.Attr {
	for _, opt := range o {
		switch opt := opt.(type) {
		case nil:
			as = append(as, slog.String("nil", "<nil>"))

		case Options:
			as = appendOptions(as, opt)

		default:
			as = append(as, opt.LogAttr())
		}
	}

	return as
}

// WithUnusedSet configures whether W315 (a table field set but never
// read) is emitted. Enabled by default.
func WithUnusedSet(enabled bool) Option { return unusedSetOption{enabled: enabled} }

type unusedSetOption struct{ enabled bool }

func (o unusedSetOption) apply(r *runOptions) { r.features.Set(config.UnusedSet, o.enabled) }
func (o unusedSetOption) LogAttr() slog.Attr  { return slog.Bool("unused-set", o.enabled) }

// WithUnsetAccess configures whether W325 (a read of a table field that
// was never set) is emitted. Enabled by default.
func WithUnsetAccess(enabled bool) Option { return unsetAccessOption{enabled: enabled} }

type unsetAccessOption struct{ enabled bool }

func (o unsetAccessOption) apply(r *runOptions) { r.features.Set(config.UnsetAccess, o.enabled) }
func (o unsetAccessOption) LogAttr() slog.Attr  { return slog.Bool("unset-access", o.enabled) }

// WithLogGiveUp configures whether a function the engine gives up on due
// to Goto/Label is logged at slog.LevelWarn. Disabled by default.
func WithLogGiveUp(enabled bool) Option { return logGiveUpOption{enabled: enabled} }

type logGiveUpOption struct{ enabled bool }

func (o logGiveUpOption) apply(r *runOptions) { r.behavior.Set(config.LogGiveUp, o.enabled) }
func (o logGiveUpOption) LogAttr() slog.Attr  { return slog.Bool("log-give-up", o.enabled) }

// WithImprecision configures how eagerly a built-in model call inside a
// loop body collapses its receiver to potentially-all-set/accessed.
// [level.ImprecisionStrict] by default.
func WithImprecision(imprecision level.Imprecision) Option {
	return imprecisionOption{imprecision: imprecision}
}

type imprecisionOption struct{ imprecision level.Imprecision }

func (o imprecisionOption) apply(r *runOptions) { r.imprecision = o.imprecision }

func (o imprecisionOption) LogAttr() slog.Attr {
	text, err := o.imprecision.MarshalText()
	if err != nil {
		return slog.Any("imprecision", o.imprecision)
	}

	return slog.String("imprecision", string(text))
}
