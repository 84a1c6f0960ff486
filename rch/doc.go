// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package rch implements the operations on RCH archives: Pack, Inject, Unpack,
// Check and Detract, as well as a Reader for walking an archive's blocks.
//
// Every operation returns one Result per file it handled, and leaves
// presentation of those Results to the caller.
package rch
