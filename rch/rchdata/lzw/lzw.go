// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package lzw implements the dictionary coder used by RCH's XOR255+LZW
// encoding.
//
// This is not the variable-width LZW of compress/lzw. Every code is written as
// a fixed 2-byte big-endian integer, the dictionary is seeded with the 256
// single bytes and grows until it holds 65536 codes, after which it is frozen
// (never reset) for the rest of the stream. There are no clear or end codes.
package lzw

import (
	"encoding/binary"

	"go.chromium.org/luci/common/errors"
)

// MaxCodes is the size of the code space.
const MaxCodes = 1 << 16

const (
	literalCodes = 256
	codeSize     = 2
)

var (
	// ErrEmpty is returned by Decode for an input without any codes.
	ErrEmpty = errors.New("lzw: no codes to decode")

	// ErrCorrupt is returned by Decode for a code stream which no encoder could
	// have produced.
	ErrCorrupt = errors.New("lzw: corrupt code stream")
)

// Encode compresses data. The result for empty data is empty.
func Encode(data []byte) []byte {
	if len(data) == 0 {
		return []byte{}
	}

	// dict maps (prefix code, next byte) to the code for the extended string.
	dict := make(map[uint32]uint16, min(len(data), MaxCodes-literalCodes))
	next := literalCodes

	out := make([]byte, 0, len(data))
	cur := uint16(data[0])
	for _, b := range data[1:] {
		key := uint32(cur)<<8 | uint32(b)
		if code, ok := dict[key]; ok {
			cur = code
			continue
		}
		out = binary.BigEndian.AppendUint16(out, cur)
		if next < MaxCodes {
			dict[key] = uint16(next)
			next++
		}
		cur = uint16(b)
	}
	return binary.BigEndian.AppendUint16(out, cur)
}

// decoder holds the dictionary as a parent-pointer trie: every code past the
// literals is its prefix code plus one suffix byte.
type decoder struct {
	prefix [MaxCodes]uint16
	suffix [MaxCodes]byte
	first  [MaxCodes]byte
	length [MaxCodes]int
	next   int
}

func newDecoder() *decoder {
	d := &decoder{next: literalCodes}
	for i := 0; i < literalCodes; i++ {
		d.suffix[i] = byte(i)
		d.first[i] = byte(i)
		d.length[i] = 1
	}
	return d
}

func (d *decoder) add(prefix uint16, b byte) {
	if d.next >= MaxCodes {
		return
	}
	d.prefix[d.next] = prefix
	d.suffix[d.next] = b
	d.first[d.next] = d.first[prefix]
	d.length[d.next] = d.length[prefix] + 1
	d.next++
}

// emit appends the string for code to out, filling it in back to front.
func (d *decoder) emit(out []byte, code uint16) []byte {
	n := d.length[code]
	start := len(out)
	out = append(out, make([]byte, n)...)
	for i := start + n - 1; i > start; i-- {
		out[i] = d.suffix[code]
		code = d.prefix[code]
	}
	out[start] = d.suffix[code]
	return out
}

// Decode expands a code stream produced by Encode.
func Decode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data)%codeSize != 0 {
		return nil, errors.Annotate(ErrCorrupt, "odd length %d", len(data)).Err()
	}

	prev := binary.BigEndian.Uint16(data)
	if prev >= literalCodes {
		return nil, errors.Annotate(ErrCorrupt, "first code %d is not a literal", prev).Err()
	}

	d := newDecoder()
	out := make([]byte, 0, len(data)*2)
	out = d.emit(out, prev)

	for i := codeSize; i < len(data); i += codeSize {
		code := binary.BigEndian.Uint16(data[i:])

		var first byte
		switch {
		case int(code) < d.next:
			first = d.first[code]
		case int(code) == d.next:
			// The string being defined by this very code: prev + prev[0].
			first = d.first[prev]
		default:
			return nil, errors.Annotate(ErrCorrupt, "code %d at offset %d, next is %d", code, i, d.next).Err()
		}

		d.add(prev, first)
		out = d.emit(out, code)
		prev = code
	}
	return out, nil
}
