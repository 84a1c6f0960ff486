// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rchdata

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"
)

// readExactly reads n bytes from r. The buffer grows with the data actually
// read, so a corrupt length can't force a huge allocation up front.
func readExactly(r io.Reader, n int64) ([]byte, error) {
	buf := bytes.Buffer{}
	buf.Grow(int(min(n, 64*1024)))
	if _, err := io.CopyN(&buf, r, n); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// SplitExt splits name into a root and an extension, where the extension
// starts at the final dot. Leading dots never start an extension, so
// ".profile" has none.
func SplitExt(name string) (root, ext string) {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 || strings.Trim(name[:dot], ".") == "" {
		return name, ""
	}
	return name[:dot], name[dot:]
}

// truncateBytes cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// EncodeName produces the fixed-width, NUL padded name field for a block, as
// well as the name a reader will decode from that field.
//
// Names which don't fit in MaxNameLen bytes are shortened, keeping the
// extension where possible.
func EncodeName(name string) (field [NameFieldSize]byte, stored string) {
	if i := strings.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	stored = name
	if len(stored) > MaxNameLen {
		root, ext := SplitExt(name)
		if len(ext) >= MaxNameLen {
			stored = truncateBytes(name, MaxNameLen)
		} else {
			stored = truncateBytes(root, MaxNameLen-len(ext)) + ext
		}
	}
	copy(field[:], stored)
	return
}
