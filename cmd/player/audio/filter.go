package audio

import (
	"math"
)

// peakingFilter is a second-order IIR peaking equalizer per the Audio EQ
// Cookbook. Coefficients are recomputed lazily when the gain changes.
type peakingFilter struct {
	node
	freq float64
	q    float64
	gain float64

	// Per-channel filter state
	x1, x2 [2]float64
	y1, y2 [2]float64

	coeffGain          float64
	coeffValid         bool
	b0, b1, b2, a1, a2 float64
}

// CreatePeakingFilter creates an unconnected peaking filter at 0 dB.
func (g *Graph) CreatePeakingFilter(freqHz, q float64) PeakingFilter {
	f := &peakingFilter{freq: freqHz, q: q}
	f.init(g, f)
	return f
}

func (f *peakingFilter) Frequency() float64 {
	return f.freq
}

func (f *peakingFilter) Q() float64 {
	return f.q
}

func (f *peakingFilter) Gain() float64 {
	f.g.mu.Lock()
	defer f.g.mu.Unlock()
	return f.gain
}

// SetGain takes effect with the next rendered block.
func (f *peakingFilter) SetGain(db float64) {
	f.g.mu.Lock()
	defer f.g.mu.Unlock()
	f.gain = db
}

func (f *peakingFilter) calcCoeffs() {
	if f.coeffValid && f.coeffGain == f.gain {
		return
	}
	f.coeffGain = f.gain
	f.coeffValid = true

	a := math.Pow(10, f.gain/40)
	w0 := 2 * math.Pi * f.freq / float64(f.g.rate)
	sinW0, cosW0 := math.Sincos(w0)
	alpha := sinW0 / (2 * f.q)

	a0 := 1 + alpha/a
	f.b0 = (1 + alpha*a) / a0
	f.b1 = (-2 * cosW0) / a0
	f.b2 = (1 - alpha*a) / a0
	f.a1 = (-2 * cosW0) / a0
	f.a2 = (1 - alpha/a) / a0
}

func (f *peakingFilter) render(samples [][2]float64) {
	f.pull(samples)
	f.calcCoeffs()

	for i := range samples {
		for ch := range 2 {
			x := samples[i][ch]
			y := f.b0*x + f.b1*f.x1[ch] + f.b2*f.x2[ch] - f.a1*f.y1[ch] - f.a2*f.y2[ch]
			f.x2[ch] = f.x1[ch]
			f.x1[ch] = x
			f.y2[ch] = f.y1[ch]
			f.y1[ch] = y
			samples[i][ch] = y
		}
	}
}
