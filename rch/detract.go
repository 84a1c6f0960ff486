// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rch

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.chromium.org/luci/common/data/stringset"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
)

// DetractResult reports which of the names given to Detract were removed.
// Both lists keep the order the names were requested in.
type DetractResult struct {
	Removed  []string
	NotFound []string
}

// Detract removes every block whose stored name is in names.
//
// If outputPath is not empty, the archive at archivePath is first copied to
// outputPath and the copy is modified; otherwise archivePath is modified in
// place. An outputPath naming the archive itself is the same as none.
//
// Either way the new contents are written to a temporary file next to the
// target which is then renamed over it, so an interrupted Detract leaves the
// target untouched. If no block matched, the target is not rewritten.
//
// Requesting a name twice reports the second request as not found, since the
// first one already removed every block of that name.
func Detract(ctx context.Context, archivePath, outputPath string, names []string) (ret DetractResult, err error) {
	target := archivePath
	if outputPath != "" {
		same, err := sameFile(archivePath, outputPath)
		if err != nil {
			return ret, err
		}
		if !same {
			if err := copyFile(archivePath, outputPath); err != nil {
				return ret, errors.Annotate(err, "copying archive to %q", outputPath).Err()
			}
			target = outputPath
		}
	}
	ctx = logging.SetField(ctx, "archive", target)

	requested := stringset.NewFromSlice(names...)
	matched := stringset.New(requested.Len())
	if requested.Len() > 0 {
		if err := rewriteWithout(ctx, target, requested, matched); err != nil {
			return ret, err
		}
	}

	reported := stringset.New(len(names))
	for _, name := range names {
		if reported.Add(name) && matched.Has(name) {
			ret.Removed = append(ret.Removed, name)
		} else {
			ret.NotFound = append(ret.NotFound, name)
		}
	}
	logging.Infof(ctx, "removed %d names, %d not found", len(ret.Removed), len(ret.NotFound))
	return ret, nil
}

// rewriteWithout copies the archive at path, minus the blocks named in drop, to
// a temporary file and replaces path with it. The names of the dropped blocks
// are added to matched. If nothing was dropped, path is left alone.
func rewriteWithout(ctx context.Context, path string, drop, matched stringset.Set) (err error) {
	src, err := os.Open(path)
	if err != nil {
		return errors.Annotate(err, "opening archive").Err()
	}
	defer func() {
		if src != nil {
			src.Close()
		}
	}()
	st, err := src.Stat()
	if err != nil {
		return errors.Annotate(err, "statting archive").Err()
	}

	a, err := Open(src)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Annotate(err, "creating temp file").Err()
	}
	tmpName := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
		}
		if err != nil || matched.Len() == 0 {
			if rerr := os.Remove(tmpName); rerr != nil && !os.IsNotExist(rerr) {
				logging.Warningf(ctx, "removing %q: %s", tmpName, rerr)
			}
		}
	}()

	if err := a.Header.Write(tmp); err != nil {
		return errors.Annotate(err, "writing archive header").Err()
	}

	kept := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		h, err := a.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if name := h.Name(); drop.Has(name) {
			matched.Add(name)
			logging.Debugf(ctx, "dropping %q at offset %d", name, a.Offset())
			continue
		}
		if err := h.Write(tmp); err != nil {
			return errors.Annotate(err, "writing block header").Err()
		}
		if err := a.CopyPayload(tmp); err != nil {
			return err
		}
		kept++
	}

	if matched.Len() == 0 {
		logging.Debugf(ctx, "no blocks matched; leaving archive as is")
		return nil
	}

	if err := tmp.Chmod(st.Mode().Perm()); err != nil {
		return errors.Annotate(err, "setting temp file mode").Err()
	}
	if err := tmp.Sync(); err != nil {
		return errors.Annotate(err, "syncing temp file").Err()
	}
	err = tmp.Close()
	tmp = nil
	if err != nil {
		return errors.Annotate(err, "closing temp file").Err()
	}
	src.Close()
	src = nil

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Annotate(err, "replacing archive").Err()
	}
	if err := syncDir(filepath.Dir(path)); err != nil {
		logging.Warningf(ctx, "syncing %q: %s", filepath.Dir(path), err)
	}
	logging.Debugf(ctx, "rewrote archive with %d blocks", kept)
	return nil
}

// sameFile returns true if dst already exists and is the file at src, in
// which case copying src to dst would truncate it.
func sameFile(src, dst string) (bool, error) {
	srcSt, err := os.Stat(src)
	if err != nil {
		return false, errors.Annotate(err, "statting archive").Err()
	}
	dstSt, err := os.Stat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Annotate(err, "statting %q", dst).Err()
	}
	return os.SameFile(srcSt, dstSt), nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	st, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, st.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
