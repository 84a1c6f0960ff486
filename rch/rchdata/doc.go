// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package rchdata implements IO routines for reading and writing the pieces of
// the RCH archive format: the archive header, block headers and payloads, the
// per-block encodings and the CRC-32 integrity checks.
package rchdata
