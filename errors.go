// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package coalescent

import "errors"

// Fatal errors: the simulator's state should be discarded, not resumed.
var (
	ErrBadParameter      = errors.New("bad parameter")
	ErrUnsortedPopModels = errors.New("population models are not sorted by start time")
	ErrBadPopModel       = errors.New("invalid population model")
	ErrNoMemory          = errors.New("out of memory")
	ErrInvariant         = errors.New("simulator invariant violated")
)

// ErrMaxMemoryExceeded is a fatal error distinguished from [ErrNoMemory]: it
// reflects a caller-configured budget, not the process actually running out
// of memory.
var ErrMaxMemoryExceeded = errors.New("max memory exceeded")

// ErrPaused is returned by [Simulator.Run] when a deadline or step cap is
// reached before the simulation completes. It is not a failure: the
// simulator's state remains fully consistent and Run can be called again to
// resume.
var ErrPaused = errors.New("simulation paused: deadline or step cap reached")
