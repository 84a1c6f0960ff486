// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package rch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.chromium.org/luci/common/errors"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/riannucci/rcharchive/rch/rchdata"
)

var allEncodings = []rchdata.Encoding{
	rchdata.EncodingXORLZW,
	rchdata.EncodingXOR,
	rchdata.EncodingBZip2,
}

func writeInputs(dir string, n int) (paths []string, contents map[string]string) {
	contents = make(map[string]string, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("file-%03d.txt", i)
		data := strings.Repeat(fmt.Sprintf("line %d of %s\n", i, name), i+1)
		path := filepath.Join(dir, name)
		So(os.WriteFile(path, []byte(data), 0666), ShouldBeNil)
		paths = append(paths, path)
		contents[name] = data
	}
	return
}

func readDir(dir string) map[string]string {
	ents, err := os.ReadDir(dir)
	So(err, ShouldBeNil)
	ret := make(map[string]string, len(ents))
	for _, ent := range ents {
		data, err := os.ReadFile(filepath.Join(dir, ent.Name()))
		So(err, ShouldBeNil)
		ret[ent.Name()] = string(data)
	}
	return ret
}

func TestPack(t *testing.T) {
	t.Parallel()

	Convey("Pack", t, func() {
		ctx := context.Background()

		Convey("round trips", func() {
			for _, enc := range allEncodings {
				for _, n := range []int{0, 1, 100} {
					Convey(fmt.Sprintf("%d files with %s", n, enc), func() {
						in, out := t.TempDir(), t.TempDir()
						paths, contents := writeInputs(in, n)
						entries := make([]Entry, len(paths))
						for i, p := range paths {
							entries[i] = FileEntry(p)
						}

						archive := filepath.Join(t.TempDir(), "out.rch")
						packed, err := PackFile(ctx, archive, entries, WithEncoding(enc, 1))
						So(err, ShouldBeNil)
						So(packed, ShouldHaveLength, n)
						for i, res := range packed {
							So(res.Name, ShouldEqual, filepath.Base(paths[i]))
							So(res.Status, ShouldEqual, StatusPacked)
							So(res.Passed, ShouldBeTrue)
							So(res.Algorithm, ShouldEqual, enc.String())
						}

						unpacked, err := UnpackFile(ctx, archive, Dir(out))
						So(err, ShouldBeNil)
						So(unpacked, ShouldHaveLength, n)
						for i, res := range unpacked {
							So(res.Name, ShouldEqual, packed[i].Name)
							So(res.Status, ShouldEqual, StatusUnpacked)
							So(res.Passed, ShouldBeTrue)
							So(res.Checksum, ShouldEqual, packed[i].Checksum)
						}
						So(readDir(out), ShouldResemble, contents)
					})
				}
			}
		})

		Convey("a.txt with XOR255", func() {
			buf := &bytes.Buffer{}
			packed, err := Pack(ctx, buf, []Entry{memEntry("a.txt", "hello")},
				WithEncoding(rchdata.EncodingXOR, 0))
			So(err, ShouldBeNil)
			So(packed, ShouldResemble, []Result{{
				Name:      "a.txt",
				Size:      5,
				Checksum:  0x22cf41e9,
				Encoding:  rchdata.EncodingXOR,
				Algorithm: "XOR255",
				Passed:    true,
				Offset:    rchdata.HeaderSize,
				Status:    StatusPacked,
			}})
			So(buf.Len(), ShouldEqual, rchdata.HeaderSize+rchdata.BlockHeaderSize+5)
			So(buf.Bytes()[:4], ShouldResemble, []byte("FR01"))

			archive := buf.Bytes()

			out := &bytes.Buffer{}
			unpacked, err := Unpack(ctx, bytes.NewReader(archive), Stream(out))
			So(err, ShouldBeNil)
			So(out.String(), ShouldEqual, "hello")
			So(unpacked, ShouldHaveLength, 1)
			So(unpacked[0].Status, ShouldEqual, StatusUnpacked)

			checked, err := Check(ctx, bytes.NewReader(archive))
			So(err, ShouldBeNil)
			So(checked, ShouldHaveLength, 1)
			So(checked[0].Passed, ShouldBeTrue)
			So(checked[0].Status, ShouldEqual, StatusChecked)
			So(checked[0].Err, ShouldBeNil)
		})

		Convey("results record block offsets", func() {
			buf := &bytes.Buffer{}
			entries := []Entry{memEntry("a", "hello"), memEntry("b", "hi"), memEntry("c", "")}
			packed, err := Pack(ctx, buf, entries, WithEncoding(rchdata.EncodingXOR, 0))
			So(err, ShouldBeNil)
			want := []int64{
				rchdata.HeaderSize,
				int64(rchdata.HeaderSize + rchdata.BlockHeaderSize + 5),
				int64(rchdata.HeaderSize + 2*rchdata.BlockHeaderSize + 5 + 2),
			}
			offsets := func(results []Result) (ret []int64) {
				for _, res := range results {
					ret = append(ret, res.Offset)
				}
				return
			}
			So(offsets(packed), ShouldResemble, want)

			checked, err := Check(ctx, bytes.NewReader(buf.Bytes()))
			So(err, ShouldBeNil)
			So(offsets(checked), ShouldResemble, want)

			unpacked, err := Unpack(ctx, bytes.NewReader(buf.Bytes()), Stream(io.Discard))
			So(err, ShouldBeNil)
			So(offsets(unpacked), ShouldResemble, want)
		})

		Convey("defaults to bzip2", func() {
			buf := &bytes.Buffer{}
			packed, err := Pack(ctx, buf, []Entry{memEntry("x", "hello")})
			So(err, ShouldBeNil)
			So(packed[0].Encoding, ShouldEqual, rchdata.EncodingBZip2)
			So(packed[0].Checksum, ShouldEqual, rchdata.Checksum([]byte("hello")))
		})

		Convey("long names are shortened", func() {
			buf := &bytes.Buffer{}
			long := strings.Repeat("n", 50) + ".txt"
			packed, err := Pack(ctx, buf, []Entry{memEntry(long, "data")})
			So(err, ShouldBeNil)
			So(packed[0].Name, ShouldEqual, strings.Repeat("n", 35)+".txt")
		})

		Convey("bad options", func() {
			_, err := Pack(ctx, &bytes.Buffer{}, nil, WithEncoding(rchdata.EncodingBZip2, 10))
			So(err, ShouldWrap, rchdata.ErrCodec)
			_, err = Pack(ctx, &bytes.Buffer{}, nil, WithEncoding(rchdata.Encoding(5), 1))
			So(err, ShouldWrap, rchdata.ErrCodec)
		})

		Convey("PackFile removes the archive on failure", func() {
			archive := filepath.Join(t.TempDir(), "out.rch")
			_, err := PackFile(ctx, archive, []Entry{
				memEntry("ok", "data"),
				FileEntry(filepath.Join(t.TempDir(), "missing")),
			})
			So(errors.Is(err, fs.ErrNotExist), ShouldBeTrue)
			_, err = os.Stat(archive)
			So(errors.Is(err, fs.ErrNotExist), ShouldBeTrue)
		})
	})
}

func TestInject(t *testing.T) {
	t.Parallel()

	Convey("Inject", t, func() {
		ctx := context.Background()
		archive := filepath.Join(t.TempDir(), "a.rch")
		_, err := PackFile(ctx, archive, []Entry{memEntry("one", "1")})
		So(err, ShouldBeNil)

		Convey("appends blocks", func() {
			st, err := os.Stat(archive)
			So(err, ShouldBeNil)
			injected, err := Inject(ctx, archive, []Entry{
				memEntry("two", "22"),
				memEntry("three", "333"),
			}, WithEncoding(rchdata.EncodingXORLZW, 0))
			So(err, ShouldBeNil)
			So(injected, ShouldHaveLength, 2)
			So(injected[0].Status, ShouldEqual, StatusPacked)
			So(injected[0].Offset, ShouldEqual, st.Size())
			So(injected[1].Offset, ShouldEqual, st.Size()+int64(rchdata.BlockHeaderSize)+int64(injected[0].Size))

			out := &bytes.Buffer{}
			unpacked, err := UnpackFile(ctx, archive, Stream(out))
			So(err, ShouldBeNil)
			So(out.String(), ShouldEqual, "122333")
			names := []string{}
			for _, res := range unpacked {
				names = append(names, res.Name)
			}
			So(names, ShouldResemble, []string{"one", "two", "three"})
			So(unpacked[0].Encoding, ShouldEqual, rchdata.EncodingBZip2)
			So(unpacked[1].Encoding, ShouldEqual, rchdata.EncodingXORLZW)
		})

		Convey("leaves the archive alone on failure", func() {
			before, err := os.ReadFile(archive)
			So(err, ShouldBeNil)
			_, err = Inject(ctx, archive, []Entry{
				memEntry("two", "22"),
				FileEntry(filepath.Join(t.TempDir(), "missing")),
			})
			So(err, ShouldNotBeNil)
			after, err := os.ReadFile(archive)
			So(err, ShouldBeNil)
			So(after, ShouldResemble, before)
		})

		Convey("refuses a non-archive", func() {
			other := filepath.Join(t.TempDir(), "notes.txt")
			So(os.WriteFile(other, []byte("just some text"), 0666), ShouldBeNil)
			_, err := Inject(ctx, other, []Entry{memEntry("two", "22")})
			So(err, ShouldWrap, rchdata.ErrFormat)
			data, err := os.ReadFile(other)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "just some text")
		})

		Convey("refuses a missing file", func() {
			_, err := Inject(ctx, filepath.Join(t.TempDir(), "nope.rch"), []Entry{memEntry("two", "22")})
			So(errors.Is(err, fs.ErrNotExist), ShouldBeTrue)
		})
	})
}
