package audio

import (
	"github.com/gopxl/beep/v2"
)

// Source feeds a beep.Streamer into the graph. The streamer can be swapped
// while the graph is running; the topology downstream stays as it is.
type Source struct {
	node
	s beep.Streamer
}

// CreateSource creates an unconnected source producing silence.
func (g *Graph) CreateSource() *Source {
	s := &Source{}
	s.init(g, s)
	return s
}

// SetStreamer replaces the streamer the source reads from. nil means silence.
func (s *Source) SetStreamer(st beep.Streamer) {
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	s.s = st
}

// Streaming reports whether the source still has a streamer that has not run dry.
func (s *Source) Streaming() bool {
	s.g.mu.Lock()
	defer s.g.mu.Unlock()
	return s.s != nil
}

func (s *Source) render(samples [][2]float64) {
	if s.s == nil {
		clear(samples)
		return
	}
	n, ok := s.s.Stream(samples)
	clear(samples[n:])
	if !ok {
		s.s = nil
	}
}
