package debug

import (
	"fmt"
	"runtime"
)

// Assert panics when truth is false. It guards invariants whose violation is a
// bug in this program, never bad input from a peer: peers get errors.
//
// NOTE: originally stolen from
// https://github.com/golang/go/blob/eaa7d9ff86b35c72cc35bd7c14b349fa414c392f/src/go/types/errors.go#L18
func Assert(truth bool, msg ...string) {
	// NOTE: in certain cases it feels unreasonable and redundant to specify msg
	if len(msg) > 1 {
		panic("invalid assert args")
	}
	if !truth {
		text := "assertion failed"
		if len(msg) == 1 {
			text = fmt.Sprintf("assertion failed: %s", msg[0])
		}
		// include information about the assertion location. due to
		// panic recovery, this location is otherwise buried in the
		// middle of the panicking stack.
		if _, file, line, ok := runtime.Caller(1); ok {
			text = fmt.Sprintf("%s:%d: %s", file, line, text)
		}
		panic(text)
	}
}
