//go:build !((linux && cgo) || windows || darwin)

package audio

import (
	"time"
)

// OutputAvailable indicates whether speaker output is supported in this build.
// Speaker output requires CGO for native sound libraries.
const OutputAvailable = false

// Output is a placeholder for builds without cgo.
type Output struct{}

// OpenOutput always fails when cgo is disabled.
func OpenOutput(g *Graph, buffer time.Duration) (*Output, error) {
	return nil, ErrOutputUnavailable
}

// Close is a no-op when cgo is disabled.
func (o *Output) Close() error {
	return nil
}
