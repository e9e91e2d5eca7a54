// Package audio provides the processing graph the equalizer is wired into:
// a source node fed by the media element, peaking filter nodes and a
// destination sink. The graph is pull based; the speaker (or a test) streams
// from the Graph, which renders the destination and everything upstream.
//
//	[Source] -> [Peaking 60Hz] -> ... -> [Peaking 16kHz] -> [Destination] -> speaker
package audio

import (
	"errors"
	"slices"
	"sync"

	"github.com/gopxl/beep/v2"
)

var (
	ErrForeignNode       = errors.New("node belongs to another graph")
	ErrCycle             = errors.New("connection would create a cycle")
	ErrOutputUnavailable = errors.New("audio output is not available in this build")
)

// DefaultSampleRate is the rate the graph renders at unless configured otherwise.
const DefaultSampleRate = beep.SampleRate(44100)

// Node is a vertex in the processing graph.
type Node interface {
	// Connect routes this node's output into dst.
	Connect(dst Node) error
	// Disconnect removes every connection to and from this node.
	Disconnect()
}

// PeakingFilter boosts or cuts a band around its center frequency.
type PeakingFilter interface {
	Node
	Frequency() float64
	Q() float64
	Gain() float64
	SetGain(db float64)
}

// Context is the host capability the equalizer builds on.
type Context interface {
	CreatePeakingFilter(freqHz, q float64) PeakingFilter
	Destination() Node
}

// vertex is implemented by every node type of this package.
type vertex interface {
	Node
	base() *node
	render(samples [][2]float64)
}

// Graph owns all nodes and serializes rendering against graph mutations.
// It is a beep.Streamer producing the destination's output.
type Graph struct {
	mu    sync.Mutex
	rate  beep.SampleRate
	frame uint64
	dest  *destination
}

var _ Context = (*Graph)(nil)
var _ beep.Streamer = (*Graph)(nil)

// NewGraph creates an empty graph rendering at rate.
func NewGraph(rate beep.SampleRate) *Graph {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	g := &Graph{rate: rate}
	g.dest = &destination{}
	g.dest.init(g, g.dest)
	return g
}

// SampleRate returns the rate the graph renders at.
func (g *Graph) SampleRate() beep.SampleRate {
	return g.rate
}

// Destination returns the sink node.
func (g *Graph) Destination() Node {
	return g.dest
}

// Lock blocks rendering until Unlock. Node methods must not be called while
// holding the lock.
func (g *Graph) Lock() {
	g.mu.Lock()
}

func (g *Graph) Unlock() {
	g.mu.Unlock()
}

// Stream renders the next block of the destination. It never runs dry; an
// unconnected destination yields silence.
func (g *Graph) Stream(samples [][2]float64) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.frame++
	g.dest.output(samples)
	return len(samples), true
}

func (g *Graph) Err() error {
	return nil
}

// node holds the connection state shared by all vertex types.
type node struct {
	g       *Graph
	self    vertex
	inputs  []vertex
	outputs []vertex

	mix        [][2]float64
	cache      [][2]float64
	renderedAt uint64
}

func (n *node) init(g *Graph, self vertex) {
	n.g = g
	n.self = self
}

func (n *node) base() *node {
	return n
}

func (n *node) Connect(dst Node) error {
	v, ok := dst.(vertex)
	if !ok || v.base().g != n.g {
		return ErrForeignNode
	}

	n.g.mu.Lock()
	defer n.g.mu.Unlock()

	if slices.Contains(n.outputs, v) {
		return nil
	}
	if v == n.self || reaches(v, n.self) {
		return ErrCycle
	}
	n.outputs = append(n.outputs, v)
	v.base().inputs = append(v.base().inputs, n.self)
	return nil
}

func (n *node) Disconnect() {
	n.g.mu.Lock()
	defer n.g.mu.Unlock()

	for _, out := range n.outputs {
		ob := out.base()
		ob.inputs = slices.DeleteFunc(ob.inputs, func(v vertex) bool { return v == n.self })
	}
	for _, in := range n.inputs {
		ib := in.base()
		ib.outputs = slices.DeleteFunc(ib.outputs, func(v vertex) bool { return v == n.self })
	}
	n.inputs = nil
	n.outputs = nil
}

// reaches reports whether target is downstream of from. Must hold g.mu.
func reaches(from, target vertex) bool {
	for _, out := range from.base().outputs {
		if out == target || reaches(out, target) {
			return true
		}
	}
	return false
}

// output renders the node once per frame; nodes feeding several outputs
// replay the cached block instead of advancing twice. Must hold g.mu.
func (n *node) output(samples [][2]float64) {
	if n.renderedAt == n.g.frame && len(n.cache) == len(samples) {
		copy(samples, n.cache)
		return
	}
	n.self.render(samples)
	if len(n.outputs) > 1 {
		n.cache = append(n.cache[:0], samples...)
		n.renderedAt = n.g.frame
	}
}

// pull sums all inputs into samples. Must hold g.mu.
func (n *node) pull(samples [][2]float64) {
	if len(n.inputs) == 0 {
		clear(samples)
		return
	}

	n.inputs[0].base().output(samples)
	if len(n.inputs) == 1 {
		return
	}

	if cap(n.mix) < len(samples) {
		n.mix = make([][2]float64, len(samples))
	}
	mix := n.mix[:len(samples)]
	for _, in := range n.inputs[1:] {
		in.base().output(mix)
		for i := range samples {
			samples[i][0] += mix[i][0]
			samples[i][1] += mix[i][1]
		}
	}
}

// connected reports the current outputs of a node, for inspection.
func (n *node) connected() []vertex {
	n.g.mu.Lock()
	defer n.g.mu.Unlock()
	return slices.Clone(n.outputs)
}

// destination is the graph's sink.
type destination struct {
	node
}

func (d *destination) render(samples [][2]float64) {
	d.pull(samples)
}

// Outputs returns the nodes n is connected to. Nodes from other packages
// have no outputs.
func Outputs(n Node) []Node {
	v, ok := n.(vertex)
	if !ok {
		return nil
	}
	out := v.base().connected()
	nodes := make([]Node, len(out))
	for i, o := range out {
		nodes[i] = o
	}
	return nodes
}
