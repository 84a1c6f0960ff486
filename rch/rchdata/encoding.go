// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rchdata

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"go.chromium.org/luci/common/errors"

	"github.com/riannucci/rcharchive/rch/rchdata/lzw"
)

// Encoding indicates how a block's payload was transformed, as recorded in that
// block's BlockHeader.
type Encoding uint32

// These are the encodings known to the RCH format. The numeric values are part
// of the on-disk format.
const (
	// EncodingXORLZW complements every byte, then applies the lzw dictionary
	// coder.
	EncodingXORLZW Encoding = 0
	// EncodingXOR complements every byte.
	EncodingXOR Encoding = 1
	// EncodingBZip2 compresses with bzip2 at a level from 1 to 9.
	EncodingBZip2 Encoding = 2
)

// Compression levels accepted by EncodingBZip2.
const (
	MinLevel     = bzip2.BestSpeed
	MaxLevel     = bzip2.BestCompression
	DefaultLevel = bzip2.BestCompression
)

// ChecksumBasis says which bytes a block's stored checksum covers.
type ChecksumBasis int

// Values of ChecksumBasis.
const (
	// ChecksumDecoded means the checksum covers the payload before encoding.
	ChecksumDecoded ChecksumBasis = iota
	// ChecksumEncoded means the checksum covers the stored (encoded) bytes.
	ChecksumEncoded
)

// checksumBasis is fixed by archives already in the wild: bzip2 blocks carry
// the checksum of the original data, the XOR-based ones that of the encoded
// bytes.
var checksumBasis = map[Encoding]ChecksumBasis{
	EncodingXORLZW: ChecksumEncoded,
	EncodingXOR:    ChecksumEncoded,
	EncodingBZip2:  ChecksumDecoded,
}

var encodingNames = map[Encoding]string{
	EncodingXORLZW: "XOR255+LZW",
	EncodingXOR:    "XOR255",
	EncodingBZip2:  "BZIP2",
}

// Aliases accepted by ParseEncoding in addition to the display names.
var encodingAliases = map[string]Encoding{
	"strong":            EncodingBZip2,
	"invert":            EncodingXOR,
	"invert+dictionary": EncodingXORLZW,
}

func (e Encoding) String() string {
	if n, ok := encodingNames[e]; ok {
		return n
	}
	return "Unknown"
}

// Valid returns a nil err iff this Encoding is known.
func (e Encoding) Valid() error {
	if _, ok := checksumBasis[e]; ok {
		return nil
	}
	return errors.Annotate(ErrCodec, "unknown encoding %d", uint32(e)).Err()
}

// ParseEncoding accepts either the numeric id or the name of an encoding.
func ParseEncoding(s string) (Encoding, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.ParseUint(s, 10, 32); err == nil {
		e := Encoding(id)
		return e, e.Valid()
	}
	for e, n := range encodingNames {
		if strings.EqualFold(s, n) {
			return e, nil
		}
	}
	if e, ok := encodingAliases[strings.ToLower(s)]; ok {
		return e, nil
	}
	return 0, errors.Annotate(ErrCodec, "unknown encoding %q", s).Err()
}

// ChecksumBasis returns which bytes the checksum of a block in this encoding
// covers.
func (e Encoding) ChecksumBasis() (ChecksumBasis, error) {
	b, ok := checksumBasis[e]
	if !ok {
		return 0, e.Valid()
	}
	return b, nil
}

// BlockChecksum computes the checksum to store for a block, picking decoded or
// encoded according to the encoding's ChecksumBasis.
func (e Encoding) BlockChecksum(decoded, encoded []byte) (uint32, error) {
	b, err := e.ChecksumBasis()
	if err != nil {
		return 0, err
	}
	if b == ChecksumDecoded {
		return Checksum(decoded), nil
	}
	return Checksum(encoded), nil
}

// VerifyBlock checks a block's stored checksum against whichever of decoded or
// encoded the encoding's ChecksumBasis selects. A mismatch is an
// *ErrMismatchedChecksum.
func (e Encoding) VerifyBlock(decoded, encoded []byte, expected uint32) error {
	b, err := e.ChecksumBasis()
	if err != nil {
		return err
	}
	if b == ChecksumDecoded {
		return CheckChecksum(decoded, expected)
	}
	return CheckChecksum(encoded, expected)
}

// CheckBlock is VerifyBlock for callers which only hold the stored bytes. The
// payload is decoded only when the checksum covers the decoded form, so a
// decode failure (ErrCodec) is possible for those encodings alone.
func (e Encoding) CheckBlock(encoded []byte, expected uint32) error {
	b, err := e.ChecksumBasis()
	if err != nil {
		return err
	}
	if b == ChecksumEncoded {
		return CheckChecksum(encoded, expected)
	}
	decoded, err := e.Decode(encoded)
	if err != nil {
		return err
	}
	return CheckChecksum(decoded, expected)
}

// ValidLevel returns a nil err iff level can be used with this encoding.
func (e Encoding) ValidLevel(level int) error {
	if e == EncodingBZip2 && (level < MinLevel || level > MaxLevel) {
		return errors.Annotate(ErrCodec, "compression level %d not in [%d, %d]", level, MinLevel, MaxLevel).Err()
	}
	return nil
}

// Encode transforms payload. level is only used by EncodingBZip2.
func (e Encoding) Encode(payload []byte, level int) ([]byte, error) {
	switch e {
	case EncodingBZip2:
		if err := e.ValidLevel(level); err != nil {
			return nil, err
		}
		buf := bytes.Buffer{}
		zw, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: level})
		if err != nil {
			return nil, errors.Annotate(err, "bzip2 writer").Err()
		}
		if _, err := zw.Write(payload); err != nil {
			return nil, errors.Annotate(err, "bzip2 compress").Err()
		}
		if err := zw.Close(); err != nil {
			return nil, errors.Annotate(err, "bzip2 compress").Err()
		}
		return buf.Bytes(), nil

	case EncodingXOR:
		return invert(payload), nil

	case EncodingXORLZW:
		return lzw.Encode(invert(payload)), nil
	}
	return nil, e.Valid()
}

// Decode reverses Encode. Any failure wraps ErrCodec.
func (e Encoding) Decode(data []byte) ([]byte, error) {
	switch e {
	case EncodingBZip2:
		zr, err := bzip2.NewReader(bytes.NewReader(data), nil)
		if err != nil {
			return nil, errors.Annotate(ErrCodec, "bzip2 reader: %s", err).Err()
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, errors.Annotate(ErrCodec, "bzip2 decompress: %s", err).Err()
		}
		return out, nil

	case EncodingXOR:
		return invert(data), nil

	case EncodingXORLZW:
		// Encode emits no codes at all for an empty payload.
		if len(data) == 0 {
			return []byte{}, nil
		}
		out, err := lzw.Decode(data)
		if err != nil {
			return nil, errors.Annotate(ErrCodec, "%s", err).Err()
		}
		return invert(out), nil
	}
	return nil, e.Valid()
}

// invert returns a copy of data with every byte XOR'd with 0xFF.
func invert(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ 0xff
	}
	return out
}
