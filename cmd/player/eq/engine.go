// Package eq implements the 10-band graphic equalizer: the band table, the
// built-in presets and the Engine that realizes a gain vector as a chain of
// peaking filters in an audio graph.
package eq

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/gigurra/tunes/cmd/player/audio"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Engine owns one peaking filter per band, wired in series between a source
// node and the graph destination:
//
//	source -> [60Hz] -> [170Hz] -> ... -> [16kHz] -> destination
type Engine struct {
	mu sync.Mutex

	ctx     audio.Context
	source  audio.Node
	bands   []Band
	filters []audio.PeakingFilter
	gains   []float64

	disconnected bool
}

// NewEngine builds the equalizer chain for the standard band table.
func NewEngine(ctx audio.Context, source audio.Node) (*Engine, error) {
	return NewEngineWithBands(ctx, source, Bands())
}

// NewEngineWithBands builds the chain for an arbitrary band table. With no
// bands the source is connected straight to the destination.
func NewEngineWithBands(ctx audio.Context, source audio.Node, bands []Band) (*Engine, error) {
	e := &Engine{
		ctx:     ctx,
		source:  source,
		bands:   slices.Clone(bands),
		filters: make([]audio.PeakingFilter, len(bands)),
		gains:   make([]float64, len(bands)),
	}

	for i, b := range bands {
		f := ctx.CreatePeakingFilter(b.CenterHz, Q)
		f.SetGain(0)
		e.filters[i] = f
	}

	if err := e.connect(); err != nil {
		e.Disconnect()
		return nil, err
	}
	return e, nil
}

func (e *Engine) connect() error {
	if len(e.filters) == 0 {
		if err := e.source.Connect(e.ctx.Destination()); err != nil {
			return fmt.Errorf("failed to connect source to destination: %w", err)
		}
		return nil
	}

	for i := 1; i < len(e.filters); i++ {
		if err := e.filters[i-1].Connect(e.filters[i]); err != nil {
			return fmt.Errorf("failed to chain band %d: %w", i, err)
		}
	}
	if err := e.source.Connect(e.filters[0]); err != nil {
		return fmt.Errorf("failed to connect source: %w", err)
	}
	if err := e.filters[len(e.filters)-1].Connect(e.ctx.Destination()); err != nil {
		return fmt.Errorf("failed to connect destination: %w", err)
	}
	return nil
}

// Bands returns the engine's band table.
func (e *Engine) Bands() []Band {
	return slices.Clone(e.bands)
}

// NumBands returns the number of bands.
func (e *Engine) NumBands() int {
	return len(e.bands)
}

// SetGain sets the gain of one band in dB. The value is not clamped.
func (e *Engine) SetGain(band int, db float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if band < 0 || band >= len(e.filters) {
		return fmt.Errorf("%w: band %d out of range [0, %d)", ErrInvalidArgument, band, len(e.filters))
	}
	e.gains[band] = db
	e.filters[band].SetGain(db)
	return nil
}

// Gain returns the gain of one band in dB.
func (e *Engine) Gain(band int) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if band < 0 || band >= len(e.gains) {
		return 0, fmt.Errorf("%w: band %d out of range [0, %d)", ErrInvalidArgument, band, len(e.gains))
	}
	return e.gains[band], nil
}

// Gains returns a snapshot of the whole gain vector.
func (e *Engine) Gains() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.gains)
}

// ApplyPreset replaces every band gain with the preset's curve. Unknown
// names reset to flat.
func (e *Engine) ApplyPreset(name string) {
	p := Preset(name)
	if !p.Known() {
		slog.Warn("unknown equalizer preset, resetting to flat", "preset", name)
		p = PresetFlat
	}
	e.apply(PresetGains(p, len(e.bands)))
}

// Reset sets all bands to 0 dB.
func (e *Engine) Reset() {
	e.apply(PresetGains(PresetFlat, len(e.bands)))
}

// apply swaps in a complete gain vector; readers of Gains never see a mix of
// the old and new vectors.
func (e *Engine) apply(gains []float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	copy(e.gains, gains)
	for i, f := range e.filters {
		f.SetGain(gains[i])
	}
}

// Disconnect tears the chain out of the graph. It is safe to call more than once.
func (e *Engine) Disconnect() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disconnected {
		return
	}
	e.disconnected = true

	if len(e.filters) == 0 {
		e.source.Disconnect()
		return
	}
	for _, f := range e.filters {
		if f != nil {
			f.Disconnect()
		}
	}
}
