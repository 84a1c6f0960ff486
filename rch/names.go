// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rch

import (
	"strings"
	"unicode/utf8"

	"go.chromium.org/luci/common/errors"

	"github.com/riannucci/rcharchive/rch/rchdata"
)

// MaxNameChars is the longest file name, in characters, that Unpack will
// create.
const MaxNameChars = 255

// SanitizeName turns a stored block name into a safe file name: any directory
// components (with either slash) are stripped, and names over MaxNameChars
// characters are shortened, keeping the extension.
//
// Names which reduce to nothing, "." or ".." are rejected.
func SanitizeName(name string) (string, error) {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	switch name {
	case "", ".", "..":
		return "", errors.Reason("unusable file name %q", name).Err()
	}

	if utf8.RuneCountInString(name) <= MaxNameChars {
		return name, nil
	}
	root, ext := rchdata.SplitExt(name)
	extChars := utf8.RuneCountInString(ext)
	if extChars >= MaxNameChars {
		return truncateChars(name, MaxNameChars), nil
	}
	return truncateChars(root, MaxNameChars-extChars) + ext, nil
}

func truncateChars(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}
