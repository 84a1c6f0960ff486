// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rch

import (
	"github.com/bmatcuk/doublestar/v4"
	"go.chromium.org/luci/common/data/stringset"

	"github.com/riannucci/rcharchive/rch/rchdata"
)

// optionData is resolved once per call and never modified afterwards.
type optionData struct {
	encoding rchdata.Encoding
	level    int
	force    bool
	names    []string
}

// Option functions can be supplied to Pack, Inject and Unpack.
type Option func(*optionData)

// WithEncoding selects how Pack and Inject encode new blocks. level is only
// meaningful for rchdata.EncodingBZip2, and must be in [1, 9] for it.
//
// Defaults to rchdata.EncodingBZip2 at level 9.
func WithEncoding(enc rchdata.Encoding, level int) Option {
	return func(o *optionData) {
		o.encoding = enc
		o.level = level
	}
}

// WithForce makes Unpack extract blocks whose checksum doesn't verify. The
// failed verification is still reported in the Result.
func WithForce(force bool) Option {
	return func(o *optionData) {
		o.force = force
	}
}

// WithNames restricts Unpack to blocks whose stored name equals one of names,
// or matches one of them as a doublestar glob pattern.
func WithNames(names ...string) Option {
	return func(o *optionData) {
		o.names = append([]string(nil), names...)
	}
}

func resolveOptions(options []Option) (optionData, error) {
	opts := optionData{
		encoding: rchdata.EncodingBZip2,
		level:    rchdata.DefaultLevel,
	}
	for _, o := range options {
		o(&opts)
	}
	if err := opts.encoding.Valid(); err != nil {
		return opts, err
	}
	return opts, opts.encoding.ValidLevel(opts.level)
}

func (o optionData) nameMatcher() func(string) bool {
	if len(o.names) == 0 {
		return func(string) bool { return true }
	}
	exact := stringset.NewFromSlice(o.names...)
	return func(name string) bool {
		if exact.Has(name) {
			return true
		}
		for _, pattern := range o.names {
			if ok, _ := doublestar.Match(pattern, name); ok {
				return true
			}
		}
		return false
	}
}
