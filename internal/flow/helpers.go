package flow

import "fmt"

// panicf reports a fatal internal-invariant violation. The core transforms
// treat shape mismatches and out-of-range indices as programmer errors and
// fail fast rather than returning an error the caller cannot act on.
func panicf(format string, v ...interface{}) {
	panic(fmt.Sprintf(format, v...))
}
