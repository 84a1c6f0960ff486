// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rch

import (
	"context"
	"io"
	"os"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
)

// Check verifies every block of the archive read from r without extracting
// anything. Every block gets a StatusChecked Result; Passed and Err carry the
// outcome of verification.
//
// Only encodings whose checksum covers the original data are decoded. Results
// carry the name Unpack would extract the block as.
func Check(ctx context.Context, r io.Reader) ([]Result, error) {
	a, err := Open(r)
	if err != nil {
		return nil, err
	}

	var ret []Result
	failed := 0
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
		payload, err := a.Payload()
		if err != nil {
			return ret, err
		}
		verr := h.Encoding.CheckBlock(payload, h.Checksum)
		if verr != nil {
			failed++
			logging.Warningf(ctx, "%q: %s", h.Name(), verr)
		}
		name := h.Name()
		if fname, err := SanitizeName(name); err == nil {
			name = fname
		}
		ret = append(ret, blockResult(name, a.Offset(), h, StatusChecked, verr))
	}
	logging.Infof(ctx, "checked %d blocks, %d failed", len(ret), failed)
	return ret, nil
}

// CheckFile is Check for the archive at path.
func CheckFile(ctx context.Context, path string) ([]Result, error) {
	ctx = logging.SetField(ctx, "archive", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotate(err, "opening archive").Err()
	}
	defer f.Close()
	return Check(ctx, f)
}
