// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rchdata

import (
	"encoding/binary"
	"io"

	"go.chromium.org/luci/common/errors"
)

// Magic is the magic bytes which appear at the beginning of an RCH archive.
const Magic = "FR01"

// Version is the version of the RCH container format.
const Version uint32 = 1

// HeaderSize is the encoded size of the archive Header.
const HeaderSize = 4 + 4 + 4 + 16

// Header is the fixed archive header. Only the magic is validated on read; the
// remaining fields are carried so that a Header can be copied verbatim.
type Header struct {
	Version   uint32
	Timestamp uint32
	Reserved  [16]byte
}

// Write writes the encoded header to w.
func (h Header) Write(w io.Writer) error {
	buf := make([]byte, 0, HeaderSize)
	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint32(buf, h.Version)
	buf = binary.LittleEndian.AppendUint32(buf, h.Timestamp)
	buf = append(buf, h.Reserved[:]...)
	_, err := w.Write(buf)
	return err
}

// WriteHeader writes a fresh archive header (version 1, zero timestamp) to w.
func WriteHeader(w io.Writer) error {
	return Header{Version: Version}.Write(w)
}

// ReadHeader reads an archive header from r and checks its magic.
//
// A mismatched magic is reported as ErrFormat. A stream too short to hold the
// header returns the underlying io error.
func ReadHeader(r io.Reader) (h Header, err error) {
	buf := make([]byte, HeaderSize)
	if _, err = io.ReadFull(r, buf[:len(Magic)]); err != nil {
		return
	}
	if magic := string(buf[:len(Magic)]); magic != Magic {
		err = errors.Annotate(ErrFormat, "bad magic: %q", magic).Err()
		return
	}
	if _, err = io.ReadFull(r, buf[len(Magic):]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return
	}

	h.Version = binary.LittleEndian.Uint32(buf[4:])
	h.Timestamp = binary.LittleEndian.Uint32(buf[8:])
	copy(h.Reserved[:], buf[12:])
	return
}
