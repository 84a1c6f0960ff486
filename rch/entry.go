// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rch

import (
	"io"
	"os"
	"path/filepath"
)

// Entry is one payload to be packed into an archive.
type Entry struct {
	// Name is the logical name to store. It is shortened to fit the block's
	// name field if needed.
	Name string

	// Open returns the raw bytes of the entry. It is called exactly once.
	Open func() (io.ReadCloser, error)
}

// FileEntry packs the file at path under its base name.
func FileEntry(path string) Entry {
	return Entry{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// StreamEntry packs everything read from r under name. This is how data from
// stdin gets into an archive.
func StreamEntry(name string, r io.Reader) Entry {
	return Entry{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

func (e Entry) readAll() (data []byte, err error) {
	rc, err := e.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rc.Close(); err == nil {
			err = cerr
		}
	}()
	return io.ReadAll(rc)
}
