// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rch

import (
	"context"
	"io"
	"os"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/iotools"
	"go.chromium.org/luci/common/logging"

	"github.com/riannucci/rcharchive/rch/rchdata"
)

// Pack writes a new archive to w: the archive header, then one block per entry
// in the order given.
//
// The returned Results cover the entries written before any error.
func Pack(ctx context.Context, w io.Writer, entries []Entry, options ...Option) ([]Result, error) {
	opts, err := resolveOptions(options)
	if err != nil {
		return nil, err
	}

	cw := &iotools.CountingWriter{Writer: w}
	if err := rchdata.WriteHeader(cw); err != nil {
		return nil, errors.Annotate(err, "writing archive header").Err()
	}
	return writeEntries(ctx, cw, 0, entries, opts)
}

// PackFile is Pack to a newly created (or truncated) file at path. If packing
// fails the partial file is removed.
func PackFile(ctx context.Context, path string, entries []Entry, options ...Option) (ret []Result, err error) {
	ctx = logging.SetField(ctx, "archive", path)

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Annotate(err, "creating archive").Err()
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Annotate(cerr, "closing archive").Err()
		}
		if err != nil {
			if rerr := os.Remove(path); rerr != nil {
				logging.Warningf(ctx, "removing partial archive: %s", rerr)
			}
		}
	}()

	return Pack(ctx, f, entries, options...)
}

// Inject appends one block per entry to the existing archive at path, leaving
// the archive header and the existing blocks untouched.
//
// The archive header is validated before anything is written. If appending
// fails part way, the file is truncated back to its original size.
func Inject(ctx context.Context, path string, entries []Entry, options ...Option) (ret []Result, err error) {
	ctx = logging.SetField(ctx, "archive", path)

	opts, err := resolveOptions(options)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Annotate(err, "opening archive").Err()
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Annotate(cerr, "closing archive").Err()
		}
	}()

	if _, err := rchdata.ReadHeader(f); err != nil {
		return nil, errors.Annotate(err, "reading archive header").Err()
	}
	end, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Annotate(err, "seeking to end of archive").Err()
	}
	logging.Debugf(ctx, "appending %d entries at offset %d", len(entries), end)

	ret, err = writeEntries(ctx, &iotools.CountingWriter{Writer: f}, end, entries, opts)
	if err != nil {
		if terr := f.Truncate(end); terr != nil {
			logging.Errorf(ctx, "restoring archive to %d bytes: %s", end, terr)
		}
		return ret, err
	}
	return ret, nil
}

// writeEntries writes a block per entry to cw, which sits base bytes into the
// archive. Each Result records the offset its block was written at.
func writeEntries(ctx context.Context, cw *iotools.CountingWriter, base int64, entries []Entry, opts optionData) ([]Result, error) {
	ret := make([]Result, 0, len(entries))
	for _, ent := range entries {
		if err := ctx.Err(); err != nil {
			return ret, err
		}
		res, err := packEntry(ctx, cw, base+cw.Count, ent, opts)
		if err != nil {
			return ret, errors.Annotate(err, "packing %q", ent.Name).Err()
		}
		ret = append(ret, res)
	}
	logging.Infof(ctx, "packed %d entries, archive now %d bytes", len(ret), base+cw.Count)
	return ret, nil
}

func packEntry(ctx context.Context, w io.Writer, offset int64, ent Entry, opts optionData) (Result, error) {
	raw, err := ent.readAll()
	if err != nil {
		return Result{}, errors.Annotate(err, "reading input").Err()
	}
	encoded, err := opts.encoding.Encode(raw, opts.level)
	if err != nil {
		return Result{}, err
	}
	sum, err := opts.encoding.BlockChecksum(raw, encoded)
	if err != nil {
		return Result{}, err
	}

	h, err := rchdata.WriteBlock(w, ent.Name, encoded, sum, opts.encoding)
	if err != nil {
		return Result{}, errors.Annotate(err, "writing block").Err()
	}
	if stored := h.Name(); stored != ent.Name {
		logging.Warningf(ctx, "name %q stored as %q", ent.Name, stored)
	}
	logging.Debugf(ctx, "packed %q at offset %d: %d -> %d bytes (%s)", h.Name(), offset, len(raw), h.Length, opts.encoding)
	return blockResult(h.Name(), offset, &h, StatusPacked, nil), nil
}
