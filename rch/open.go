// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rch

import (
	"io"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/iotools"

	"github.com/riannucci/rcharchive/rch/rchdata"
)

// scanState tracks where a Reader is within the block sequence.
type scanState int

const (
	// Next will read a block header.
	stateExpectBlock scanState = iota
	// A block header was read; its payload is still unread.
	stateHaveHeader
	// A block header read failed with rchdata.ErrFormat.
	stateDone
)

// Reader walks the blocks of an archive in order.
//
// The format has no block count or terminator: the archive ends at the first
// position where a block magic can't be read. Reader reports that as io.EOF
// from Next, keeping the reason in EndReason.
type Reader struct {
	r *iotools.CountingReader

	// Header is the archive header, as read by Open.
	Header rchdata.Header

	state  scanState
	cur    rchdata.BlockHeader
	offset int64
	endErr error
}

// Open reads and validates the archive header from r. A bad magic is always
// fatal here, unlike in Next.
func Open(r io.Reader) (*Reader, error) {
	cr := &iotools.CountingReader{Reader: r}
	h, err := rchdata.ReadHeader(cr)
	if err != nil {
		return nil, errors.Annotate(err, "reading archive header").Err()
	}
	return &Reader{r: cr, Header: h}, nil
}

// Next advances to the next block and returns its header. If the previous
// block's payload wasn't read, it is skipped.
//
// At the end of the archive, Next returns io.EOF. A stream which ends inside a
// block header or payload is io.ErrUnexpectedEOF.
func (a *Reader) Next() (*rchdata.BlockHeader, error) {
	switch a.state {
	case stateDone:
		return nil, io.EOF
	case stateHaveHeader:
		if err := a.CopyPayload(io.Discard); err != nil {
			return nil, err
		}
	}

	a.offset = a.r.Count
	if err := a.cur.Read(a.r); err != nil {
		if errors.Is(err, rchdata.ErrFormat) {
			a.state = stateDone
			a.endErr = err
			return nil, io.EOF
		}
		return nil, errors.Annotate(err, "reading block header at offset %d", a.offset).Err()
	}
	a.state = stateHaveHeader
	return &a.cur, nil
}

// Offset returns the position in the stream of the current block's header or,
// after Next has returned io.EOF, of the place the archive ended.
func (a *Reader) Offset() int64 {
	return a.offset
}

// EndReason returns why the last block header read failed, once Next has
// returned io.EOF. Clean end of file and a corrupt block magic look the same
// to the format, so this is only informational.
func (a *Reader) EndReason() error {
	return a.endErr
}

// Payload reads the current block's payload.
func (a *Reader) Payload() ([]byte, error) {
	if a.state != stateHaveHeader {
		return nil, errors.New("no block header to read a payload for")
	}
	a.state = stateExpectBlock
	data, err := rchdata.ReadPayload(a.r, a.cur.Length)
	if err != nil {
		return nil, errors.Annotate(err, "reading %d byte payload of %q", a.cur.Length, a.cur.Name()).Err()
	}
	return data, nil
}

// CopyPayload streams the current block's payload to w without holding it in
// memory.
func (a *Reader) CopyPayload(w io.Writer) error {
	if a.state != stateHaveHeader {
		return errors.New("no block header to copy a payload for")
	}
	a.state = stateExpectBlock
	if _, err := io.CopyN(w, a.r, int64(a.cur.Length)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return errors.Annotate(err, "copying %d byte payload of %q", a.cur.Length, a.cur.Name()).Err()
	}
	return nil
}
