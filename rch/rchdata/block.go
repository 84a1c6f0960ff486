// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rchdata

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"go.chromium.org/luci/common/errors"
)

// BlockMagic is the magic bytes which prefix every block.
const BlockMagic = "FZ"

// Sizes of the fixed parts of a block.
const (
	// NameFieldSize is the width of the NUL padded name field.
	NameFieldSize = 40
	// MaxNameLen is the longest name which still leaves room for a terminator.
	MaxNameLen = NameFieldSize - 1
	// BlockHeaderSize is the encoded size of a BlockHeader.
	BlockHeaderSize = len(BlockMagic) + NameFieldSize + 5*4
)

// BlockVersion is the value of the per-block version field.
const BlockVersion uint32 = 1

// BlockHeader is used as the prefix to a block's payload.
//
// The raw name field and the two constant fields are kept as read, so that
// writing a BlockHeader obtained from Read reproduces the original bytes.
type BlockHeader struct {
	RawName [NameFieldSize]byte

	Version  uint32
	Reserved uint32

	// Length is the number of encoded payload bytes which follow the header.
	Length uint32

	// Checksum is the stored CRC-32. Whether it covers the encoded or decoded
	// payload depends on Encoding (see Encoding.ChecksumBasis).
	Checksum uint32

	// Encoding is the scheme used to encode the payload.
	Encoding Encoding
}

// NewBlockHeader returns the header for a payload of the given encoded length.
func NewBlockHeader(name string, length int, checksum uint32, enc Encoding) (BlockHeader, error) {
	if length < 0 || int64(length) > math.MaxUint32 {
		return BlockHeader{}, errors.Reason("payload of %d bytes exceeds the block size limit", length).Err()
	}
	field, _ := EncodeName(name)
	return BlockHeader{
		RawName:  field,
		Version:  BlockVersion,
		Length:   uint32(length),
		Checksum: checksum,
		Encoding: enc,
	}, nil
}

// Name returns the stored name, up to the first NUL.
func (b BlockHeader) Name() string {
	if i := bytes.IndexByte(b.RawName[:], 0); i >= 0 {
		return string(b.RawName[:i])
	}
	return string(b.RawName[:])
}

func (b BlockHeader) Write(w io.Writer) error {
	buf := make([]byte, 0, BlockHeaderSize)
	buf = append(buf, BlockMagic...)
	buf = append(buf, b.RawName[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, b.Version)
	buf = binary.LittleEndian.AppendUint32(buf, b.Reserved)
	buf = binary.LittleEndian.AppendUint32(buf, b.Length)
	buf = binary.LittleEndian.AppendUint32(buf, b.Checksum)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(b.Encoding))
	_, err := w.Write(buf)
	return err
}

// Read reads a block header from r.
//
// If the block magic is missing, either because it doesn't match or because
// the stream ended, the returned error wraps ErrFormat. A stream which ends
// after a valid magic but inside the rest of the header yields
// io.ErrUnexpectedEOF.
//
// The encoding id is not validated here; an unknown id only affects the block
// that carries it.
func (b *BlockHeader) Read(r io.Reader) error {
	magic := make([]byte, len(BlockMagic))
	switch _, err := io.ReadFull(r, magic); err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		return errors.Annotate(ErrFormat, "no block magic").Err()
	default:
		return err
	}
	if string(magic) != BlockMagic {
		return errors.Annotate(ErrFormat, "bad block magic: %q", magic).Err()
	}

	buf := make([]byte, BlockHeaderSize-len(BlockMagic))
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}

	copy(b.RawName[:], buf)
	fields := buf[NameFieldSize:]
	b.Version = binary.LittleEndian.Uint32(fields[0:])
	b.Reserved = binary.LittleEndian.Uint32(fields[4:])
	b.Length = binary.LittleEndian.Uint32(fields[8:])
	b.Checksum = binary.LittleEndian.Uint32(fields[12:])
	b.Encoding = Encoding(binary.LittleEndian.Uint32(fields[16:]))
	return nil
}

// ReadBlockHeader is a convenience wrapper for BlockHeader.Read.
func ReadBlockHeader(r io.Reader) (h BlockHeader, err error) {
	err = h.Read(r)
	return
}

// ReadPayload reads exactly length bytes of payload from r. A short stream is
// io.ErrUnexpectedEOF.
func ReadPayload(r io.Reader, length uint32) ([]byte, error) {
	return readExactly(r, int64(length))
}

// WriteBlock writes a complete block (header followed by payload) to w. The
// payload must already be encoded with enc.
func WriteBlock(w io.Writer, name string, payload []byte, checksum uint32, enc Encoding) (BlockHeader, error) {
	h, err := NewBlockHeader(name, len(payload), checksum, enc)
	if err != nil {
		return h, err
	}
	if err := h.Write(w); err != nil {
		return h, err
	}
	_, err = w.Write(payload)
	return h, err
}
