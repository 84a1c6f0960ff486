// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rchdata

import (
	"fmt"
	"hash/crc32"
)

// Checksum computes the CRC-32 (IEEE, as used by zlib) of data.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// Verify returns true iff data has the expected checksum.
func Verify(data []byte, expected uint32) bool {
	return Checksum(data) == expected
}

// ErrMismatchedChecksum is returned from CheckChecksum if the checksum doesn't
// match up. It matches ErrIntegrity under errors.Is.
type ErrMismatchedChecksum struct {
	Nominal uint32
	Actual  uint32
}

func (e *ErrMismatchedChecksum) Error() string {
	return fmt.Sprintf("mismatched checksum: %08x expected %08x", e.Actual, e.Nominal)
}

// Is makes errors.Is(err, ErrIntegrity) hold.
func (e *ErrMismatchedChecksum) Is(target error) bool {
	return target == ErrIntegrity
}

// CheckChecksum is Verify for callers which treat a mismatch as fatal.
func CheckChecksum(data []byte, expected uint32) error {
	if actual := Checksum(data); actual != expected {
		return &ErrMismatchedChecksum{Nominal: expected, Actual: actual}
	}
	return nil
}
