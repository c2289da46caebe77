// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for the deadline a transport sets
// on a single HTTP call.
//
// A task has no timeout of its own. Any deadline comes from the
// transport's timeout policy, or from a deadline on the task context,
// whichever expires first.
package timeout
