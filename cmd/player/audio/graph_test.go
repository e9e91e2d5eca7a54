package audio

import (
	"errors"
	"math"
	"testing"

	"github.com/gopxl/beep/v2"
)

// rampStreamer emits its running sample index on both channels, limit samples long.
type rampStreamer struct {
	pos   int
	limit int
}

func (r *rampStreamer) Stream(samples [][2]float64) (int, bool) {
	if r.pos >= r.limit {
		return 0, false
	}
	n := 0
	for i := range samples {
		if r.pos >= r.limit {
			break
		}
		samples[i][0] = float64(r.pos)
		samples[i][1] = float64(r.pos)
		r.pos++
		n++
	}
	return n, true
}

func (r *rampStreamer) Err() error { return nil }

// sineStreamer emits an endless sine wave at freq.
type sineStreamer struct {
	freq float64
	rate beep.SampleRate
	pos  int
}

func (s *sineStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := math.Sin(2 * math.Pi * s.freq * float64(s.pos) / float64(s.rate))
		samples[i][0] = v
		samples[i][1] = v
		s.pos++
	}
	return len(samples), true
}

func (s *sineStreamer) Err() error { return nil }

func render(g *Graph, n int) [][2]float64 {
	out := make([][2]float64, n)
	g.Stream(out)
	return out
}

func peak(samples [][2]float64) float64 {
	m := 0.0
	for _, s := range samples {
		m = max(m, math.Abs(s[0]))
	}
	return m
}

func TestGraph_UnconnectedIsSilent(t *testing.T) {
	g := NewGraph(DefaultSampleRate)
	out := make([][2]float64, 64)
	for i := range out {
		out[i] = [2]float64{1, 1}
	}
	n, ok := g.Stream(out)
	if n != 64 || !ok {
		t.Fatalf("Stream() = (%d, %v), want (64, true)", n, ok)
	}
	if p := peak(out); p != 0 {
		t.Errorf("peak = %v, want 0", p)
	}
}

func TestGraph_SourceToDestination(t *testing.T) {
	g := NewGraph(DefaultSampleRate)
	src := g.CreateSource()
	src.SetStreamer(&rampStreamer{limit: 10})
	if err := src.Connect(g.Destination()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	out := render(g, 16)
	for i := range 10 {
		if out[i][0] != float64(i) {
			t.Errorf("sample %d = %v, want %d", i, out[i][0], i)
		}
	}
	for i := 10; i < 16; i++ {
		if out[i][0] != 0 {
			t.Errorf("sample %d after end = %v, want 0", i, out[i][0])
		}
	}

	render(g, 4)
	if src.Streaming() {
		t.Error("Streaming() = true after the streamer ran dry")
	}
}

func TestGraph_MixesInputs(t *testing.T) {
	g := NewGraph(DefaultSampleRate)
	a := g.CreateSource()
	b := g.CreateSource()
	a.SetStreamer(&rampStreamer{limit: 100})
	b.SetStreamer(&rampStreamer{limit: 100})
	_ = a.Connect(g.Destination())
	_ = b.Connect(g.Destination())

	out := render(g, 8)
	for i := range out {
		if want := 2 * float64(i); out[i][0] != want {
			t.Errorf("sample %d = %v, want %v", i, out[i][0], want)
		}
	}
}

func TestGraph_FanOutRendersSourceOnce(t *testing.T) {
	g := NewGraph(DefaultSampleRate)
	src := g.CreateSource()
	ramp := &rampStreamer{limit: 100}
	src.SetStreamer(ramp)

	f1 := g.CreatePeakingFilter(1000, 1)
	f2 := g.CreatePeakingFilter(2000, 1)
	_ = src.Connect(f1)
	_ = src.Connect(f2)
	_ = f1.Connect(g.Destination())
	_ = f2.Connect(g.Destination())

	render(g, 8)
	if ramp.pos != 8 {
		t.Errorf("source advanced %d samples for one 8-sample block, want 8", ramp.pos)
	}
}

func TestGraph_ConnectErrors(t *testing.T) {
	g := NewGraph(DefaultSampleRate)
	other := NewGraph(DefaultSampleRate)

	f1 := g.CreatePeakingFilter(100, 1)
	f2 := g.CreatePeakingFilter(200, 1)

	if err := f1.Connect(other.Destination()); !errors.Is(err, ErrForeignNode) {
		t.Errorf("Connect(foreign) error = %v, want ErrForeignNode", err)
	}
	if err := f1.Connect(f1); !errors.Is(err, ErrCycle) {
		t.Errorf("Connect(self) error = %v, want ErrCycle", err)
	}
	if err := f1.Connect(f2); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := f1.Connect(f2); err != nil {
		t.Errorf("duplicate Connect() error = %v, want nil", err)
	}
	if got := len(Outputs(f1)); got != 1 {
		t.Errorf("len(Outputs(f1)) = %d after duplicate connect, want 1", got)
	}
	if err := f2.Connect(f1); !errors.Is(err, ErrCycle) {
		t.Errorf("Connect(back edge) error = %v, want ErrCycle", err)
	}
}

func TestNode_DisconnectIsIdempotent(t *testing.T) {
	g := NewGraph(DefaultSampleRate)
	src := g.CreateSource()
	f := g.CreatePeakingFilter(1000, 1)
	src.SetStreamer(&rampStreamer{limit: 100})
	_ = src.Connect(f)
	_ = f.Connect(g.Destination())

	f.Disconnect()
	f.Disconnect()

	if got := Outputs(src); len(got) != 0 {
		t.Errorf("source still has %d outputs after filter disconnect", len(got))
	}
	if got := Outputs(f); len(got) != 0 {
		t.Errorf("filter still has %d outputs after disconnect", len(got))
	}
	if p := peak(render(g, 32)); p != 0 {
		t.Errorf("peak after disconnect = %v, want 0", p)
	}
}

func TestPeakingFilter_Gain(t *testing.T) {
	const center = 1000.0
	rate := DefaultSampleRate

	tests := []struct {
		name    string
		signal  float64
		gain    float64
		wantMin float64
		wantMax float64
	}{
		{"flat passes through", center, 0, 0.99, 1.01},
		{"boost at center", center, 12, 3.8, 4.2},
		{"cut at center", center, -12, 0.23, 0.27},
		{"boost far from center", 20, 12, 0.95, 1.1},
	}

	for _, tt := range tests {
		g := NewGraph(rate)
		src := g.CreateSource()
		src.SetStreamer(&sineStreamer{freq: tt.signal, rate: rate})
		f := g.CreatePeakingFilter(center, 1)
		f.SetGain(tt.gain)
		_ = src.Connect(f)
		_ = f.Connect(g.Destination())

		render(g, int(rate)/2) // settle
		p := peak(render(g, int(rate)/2))
		if p < tt.wantMin || p > tt.wantMax {
			t.Errorf("%s: peak = %.3f, want in [%.2f, %.2f]", tt.name, p, tt.wantMin, tt.wantMax)
		}
		if f.Gain() != tt.gain {
			t.Errorf("%s: Gain() = %v, want %v", tt.name, f.Gain(), tt.gain)
		}
	}
}

func TestPeakingFilter_Parameters(t *testing.T) {
	g := NewGraph(0)
	if g.SampleRate() != DefaultSampleRate {
		t.Errorf("SampleRate() = %v, want %v", g.SampleRate(), DefaultSampleRate)
	}
	f := g.CreatePeakingFilter(310, 1)
	if f.Frequency() != 310 || f.Q() != 1 || f.Gain() != 0 {
		t.Errorf("filter = (%v Hz, Q %v, %v dB), want (310 Hz, Q 1, 0 dB)", f.Frequency(), f.Q(), f.Gain())
	}
}
