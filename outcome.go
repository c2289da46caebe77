// Copyright 2026 The asynchttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package asynchttp

// An Outcome identifies how a task ended, and thus which of its handlers
// fired.
type Outcome int

const (
	// Success identifies a task whose transport produced a response.
	// Any HTTP status code counts as success: the task did its job if
	// the server answered at all.
	//
	// When a task fires its success handler, the task's response is
	// set and its failure error is nil.
	Success Outcome = iota
	// Failure identifies a task whose transport returned an error of a
	// known kind (see package failure).
	//
	// When a task fires its failure handler, the task's error is set
	// and its response is nil. Errors of unknown kind do not produce a
	// Failure outcome; they are returned from Task.Run instead.
	Failure
	// Cancelled identifies a task that was cancelled before it started
	// running, typically because the executor holding it shut down.
	Cancelled
	// outcomeSentinel provides the total number of outcomes typed as an
	// Outcome.
	outcomeSentinel

	// numOutcomes provides the total number of outcomes typed as an int.
	numOutcomes = int(outcomeSentinel)
)

var outcomeNames = []string{
	"Success",
	"Failure",
	"Cancelled",
}

// Outcomes returns a slice containing all outcomes a task can have.
func Outcomes() []Outcome {
	return []Outcome{
		Success,
		Failure,
		Cancelled,
	}
}

// Name returns the name of the outcome.
func (o Outcome) Name() string {
	return outcomeNames[int(o)]
}

// String returns the name of the outcome.
func (o Outcome) String() string {
	return o.Name()
}
