// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rch

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/riannucci/rcharchive/rch/rchdata"
)

// Destination receives the files extracted by Unpack.
type Destination interface {
	// Create returns a writer for the file called name, which has already been
	// through SanitizeName.
	Create(name string) (io.WriteCloser, error)
}

type dirDestination string

// Dir extracts files into the directory root, which is created if it doesn't
// exist. Existing files of the same name are overwritten.
func Dir(root string) Destination {
	return dirDestination(root)
}

func (d dirDestination) Create(name string) (io.WriteCloser, error) {
	if err := os.MkdirAll(string(d), 0777); err != nil {
		return nil, errors.Annotate(err, "making output dir").Err()
	}
	return os.Create(filepath.Join(string(d), name))
}

type streamDestination struct {
	w io.Writer
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// Stream writes the bytes of every extracted file, one after the other, to w.
// This is how archive contents get to stdout.
func Stream(w io.Writer) Destination {
	return streamDestination{w}
}

func (s streamDestination) Create(string) (io.WriteCloser, error) {
	return nopWriteCloser{s.w}, nil
}

// Unpack extracts the blocks of the archive read from r into dest.
//
// A block which fails to decode, or whose checksum doesn't verify (unless
// WithForce is given), gets a StatusFailed Result and nothing is written for
// it; the remaining blocks are still processed. Blocks excluded by WithNames
// produce no Result at all.
//
// I/O errors, on either side, abort the unpack. The Results gathered so far are
// returned alongside the error.
func Unpack(ctx context.Context, r io.Reader, dest Destination, options ...Option) ([]Result, error) {
	opts, err := resolveOptions(options)
	if err != nil {
		return nil, err
	}
	match := opts.nameMatcher()

	a, err := Open(r)
	if err != nil {
		return nil, err
	}

	var ret []Result
	for {
		if err := ctx.Err(); err != nil {
			return ret, err
		}
		h, err := a.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ret, err
		}
		if !match(h.Name()) {
			logging.Debugf(ctx, "skipping %q", h.Name())
			continue
		}
		res, err := unpackBlock(ctx, a, h, dest, opts.force)
		if err != nil {
			return ret, err
		}
		ret = append(ret, res)
	}
	logging.Debugf(ctx, "archive ended at offset %d: %s", a.Offset(), a.EndReason())
	return ret, nil
}

// UnpackFile is Unpack for the archive at path.
func UnpackFile(ctx context.Context, path string, dest Destination, options ...Option) ([]Result, error) {
	ctx = logging.SetField(ctx, "archive", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotate(err, "opening archive").Err()
	}
	defer f.Close()
	return Unpack(ctx, f, dest, options...)
}

// unpackBlock only returns an error for I/O failures; everything wrong with the
// block itself ends up in the Result. Results carry the sanitized name, or the
// stored one if it can't be sanitized.
func unpackBlock(ctx context.Context, a *Reader, h *rchdata.BlockHeader, dest Destination, force bool) (Result, error) {
	name, offset := h.Name(), a.Offset()
	payload, err := a.Payload()
	if err != nil {
		return Result{}, err
	}
	fname, nameErr := SanitizeName(name)
	if nameErr != nil {
		fname = name
	}

	decoded, err := h.Encoding.Decode(payload)
	if err != nil {
		logging.Warningf(ctx, "%q: %s", name, err)
		return blockResult(fname, offset, h, StatusFailed, err), nil
	}

	verifyErr := h.Encoding.VerifyBlock(decoded, payload, h.Checksum)
	if verifyErr != nil {
		if !force {
			logging.Warningf(ctx, "%q: %s", name, verifyErr)
			return blockResult(fname, offset, h, StatusFailed, verifyErr), nil
		}
		logging.Warningf(ctx, "%q: %s (extracting anyway)", name, verifyErr)
	}

	if nameErr != nil {
		logging.Warningf(ctx, "%q: %s", name, nameErr)
		res := blockResult(fname, offset, h, StatusFailed, nameErr)
		res.Passed = verifyErr == nil
		return res, nil
	}

	if err := writeFile(dest, fname, decoded); err != nil {
		return Result{}, errors.Annotate(err, "writing %q", fname).Err()
	}
	logging.Debugf(ctx, "unpacked %q to %q (%d bytes)", name, fname, len(decoded))
	return blockResult(fname, offset, h, StatusUnpacked, verifyErr), nil
}

func writeFile(dest Destination, name string, data []byte) (err error) {
	w, err := dest.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = w.Write(data)
	return
}
