// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package failure classifies errors raised by an HTTP transport into a
// small closed set of kinds: Timeout, Socket, Protocol and Resolution.
//
// An error that fits none of these kinds is classified as Not. A task
// reports classified errors to its failure handler, but lets errors of
// kind Not escape to the caller, because they indicate a programming or
// environment problem rather than a condition the caller can recover
// from.
package failure
