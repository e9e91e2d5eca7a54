//go:build (linux && cgo) || windows || darwin

package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2/speaker"
)

// OutputAvailable indicates whether speaker output is supported in this build.
const OutputAvailable = true

// Output plays a graph on the system speaker.
type Output struct {
	closeOnce sync.Once
}

// OpenOutput initializes the speaker at the graph's sample rate and starts
// streaming the graph's destination. Only one output can be open at a time.
func OpenOutput(g *Graph, buffer time.Duration) (*Output, error) {
	if buffer <= 0 {
		buffer = time.Second / 10
	}
	if err := speaker.Init(g.rate, g.rate.N(buffer)); err != nil {
		return nil, fmt.Errorf("failed to init speaker: %w", err)
	}
	speaker.Play(g)
	return &Output{}, nil
}

// Close stops the speaker. It is safe to call more than once.
func (o *Output) Close() error {
	o.closeOnce.Do(func() {
		speaker.Clear()
		speaker.Close()
	})
	return nil
}
