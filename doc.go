// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package rcharchive implements the RCH archive container: a simple format
// which stores a sequence of named, independently encoded and checksummed
// payloads in a single file. Unlike solid archives, every block can be
// checked, extracted or removed on its own, and new blocks can be appended to
// an existing archive without rewriting it.
//
// It has a fairly basic format (all integers little-endian):
//   - archive header: magic "FR01", version (1), timestamp, 16 reserved bytes.
//   - zero or more blocks, each a block header followed by its payload.
//
// block headers start with the magic "FZ", followed by a 40 byte NUL padded
// name, a version field (1), a reserved field (0), the payload length, the
// payload checksum and the encoding id.
//
// There is no block count and no terminator. The archive ends at the first
// place where a block magic can't be read, so trailing garbage is ignored and
// a block whose magic got corrupted ends the archive early.
//
// Payloads are encoded as one of:
//   - 0: every byte complemented, then compressed with a 16-bit LZW coder.
//   - 1: every byte complemented.
//   - 2: bzip2, level 1 to 9.
//
// The checksum is a CRC-32. For bzip2 blocks it covers the original data; for
// the other two encodings it covers the stored bytes.
//
// See rch for the archive operations, rch/rchdata for the wire format and
// cmd/rch for the command line tool.
package rcharchive
