// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/riannucci/rcharchive/rch"
)

const tableWidth = 120

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// printResults renders results as a fixed width table.
func printResults(w io.Writer, results []rch.Result) {
	fmt.Fprintf(w, "%-40s %10s %10s %12s %12s %10s %20s\n",
		"Filename", "Size", "CRC32", "Encoding", "CRC Passed", "Timestamp", "Status")
	fmt.Fprintln(w, strings.Repeat("=", tableWidth))
	for _, r := range results {
		fmt.Fprintf(w, "%-40s %10d %10d %12s %12s %10d %20s\n",
			r.Name, r.Size, r.Checksum, r.Algorithm, yesNo(r.Passed), r.Timestamp, r.Status)
	}
}

// printErrors lists the reason for every result which carries one.
func printErrors(w io.Writer, results []rch.Result) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s: %s\n", r.Name, r.Err)
		}
	}
}

func printDetract(w io.Writer, archive string, res rch.DetractResult) {
	if len(res.Removed) > 0 {
		fmt.Fprintf(w, "Files successfully removed from the archive %q: %s\n",
			archive, strings.Join(res.Removed, ", "))
	}
	if len(res.NotFound) > 0 {
		fmt.Fprintf(w, "Files not found in the archive %q and could not be removed: %s\n",
			archive, strings.Join(res.NotFound, ", "))
		return
	}
	fmt.Fprintf(w, "All specified files were successfully removed from the archive %q.\n", archive)
}
