// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package lzw

import (
	"bytes"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func codes(cs ...uint16) []byte {
	out := make([]byte, 0, len(cs)*2)
	for _, c := range cs {
		out = append(out, byte(c>>8), byte(c))
	}
	return out
}

func TestLZW(t *testing.T) {
	t.Parallel()

	Convey("LZW", t, func() {
		Convey("Encode", func() {
			Convey("empty", func() {
				So(Encode(nil), ShouldResemble, []byte{})
			})

			Convey("single byte", func() {
				So(Encode([]byte("A")), ShouldResemble, codes('A'))
			})

			Convey("ABABABA", func() {
				So(Encode([]byte("ABABABA")), ShouldResemble, codes('A', 'B', 256, 258))
			})

			Convey("self reference", func() {
				So(Encode([]byte("aaaaaaa")), ShouldResemble, codes('a', 256, 257, 'a'))
			})

			Convey("TOBEORNOT", func() {
				So(Encode([]byte("TOBEORNOTTOBEORTOBEORNOT")), ShouldResemble, codes(
					'T', 'O', 'B', 'E', 'O', 'R', 'N', 'O', 'T',
					256, 258, 260, 265, 259, 261, 263))
			})
		})

		Convey("Decode", func() {
			Convey("known streams", func() {
				out, err := Decode(codes('A', 'B', 256, 258))
				So(err, ShouldBeNil)
				So(string(out), ShouldEqual, "ABABABA")

				out, err = Decode(codes('a', 256, 257, 'a'))
				So(err, ShouldBeNil)
				So(string(out), ShouldEqual, "aaaaaaa")
			})

			Convey("empty", func() {
				_, err := Decode(nil)
				So(err, ShouldEqual, ErrEmpty)
			})

			Convey("odd length", func() {
				_, err := Decode([]byte{0, 'A', 0})
				So(err, ShouldWrap, ErrCorrupt)
			})

			Convey("first code must be a literal", func() {
				_, err := Decode(codes(256))
				So(err, ShouldWrap, ErrCorrupt)
			})

			Convey("code from the future", func() {
				_, err := Decode(codes('A', 'B', 300))
				So(err, ShouldWrap, ErrCorrupt)
				So(err.Error(), ShouldContainSubstring, "code 300 at offset 4, next is 257")
			})
		})

		Convey("round trip", func() {
			check := func(in []byte) {
				out, err := Decode(Encode(in))
				So(err, ShouldBeNil)
				So(bytes.Equal(out, in), ShouldBeTrue)
			}

			Convey("single byte", func() {
				check([]byte{0})
				check([]byte{0xff})
			})

			Convey("every byte value", func() {
				in := make([]byte, 0, 512)
				for i := 0; i < 512; i++ {
					in = append(in, byte(i*7))
				}
				check(in)
			})

			Convey("long runs", func() {
				check(bytes.Repeat([]byte{'z'}, 100000))
			})

			Convey("past the dictionary ceiling", func() {
				in := make([]byte, 300000)
				rand.New(rand.NewSource(1)).Read(in)
				// Give the frozen dictionary something to match against.
				in = append(in, in[:50000]...)

				enc := Encode(in)
				// Every code but the last adds a dictionary entry.
				So(len(enc)/2-1, ShouldBeGreaterThan, MaxCodes-literalCodes)
				check(in)
			})

			Convey("mixed text", func() {
				check(bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 5000))
			})
		})
	})
}
