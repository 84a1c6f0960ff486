// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rchdata

import (
	"go.chromium.org/luci/common/errors"
)

// These are the error kinds produced by this package. Errors returned from
// this package wrap exactly one of them; use errors.Is to classify.
var (
	// ErrFormat indicates a missing or mismatched magic number. For the archive
	// header it is fatal. For a block header it is also how the end of the
	// archive is detected, since the format has no terminator or block count.
	ErrFormat = errors.New("rch: bad format")

	// ErrCodec indicates an unknown encoding id, or a payload which could not be
	// decoded.
	ErrCodec = errors.New("rch: codec failure")

	// ErrIntegrity indicates a checksum mismatch.
	ErrIntegrity = errors.New("rch: integrity check failed")
)
