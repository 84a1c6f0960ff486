// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build windows
// +build windows

package rch

// syncDir is a no-op; directories can't be opened for Sync on windows.
func syncDir(dir string) error {
	return nil
}
