// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rch

import (
	"github.com/riannucci/rcharchive/rch/rchdata"
)

// Status is the outcome recorded for one file in a Result.
type Status string

// Values of Status.
const (
	StatusPacked   Status = "Packed"
	StatusUnpacked Status = "Unpacked"
	StatusFailed   Status = "Failed"
	StatusChecked  Status = "Checked"
)

// Result describes what an operation did with one block. It carries no
// formatting; presenting it is up to the caller.
type Result struct {
	Name string

	// Size is the encoded payload length, as stored in the archive.
	Size     uint32
	Checksum uint32

	Encoding  rchdata.Encoding
	Algorithm string

	// Passed is the outcome of checksum verification. Pack always reports true.
	Passed bool

	// Timestamp is the block's reserved field, which RCH writers leave at 0.
	Timestamp uint32

	// Offset is the position of the block header within the archive.
	Offset int64

	Status Status

	// Err explains a failed verification or a Failed status.
	Err error
}

func blockResult(name string, offset int64, h *rchdata.BlockHeader, status Status, err error) Result {
	return Result{
		Name:      name,
		Size:      h.Length,
		Checksum:  h.Checksum,
		Encoding:  h.Encoding,
		Algorithm: h.Encoding.String(),
		Passed:    err == nil,
		Timestamp: h.Reserved,
		Offset:    offset,
		Status:    status,
		Err:       err,
	}
}
