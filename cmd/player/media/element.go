// Package media implements playback.Element on top of beep: it resolves a
// track source to a local file, decodes it and feeds it into the source
// node of an audio graph.
package media

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gigurra/tunes/cmd/player/audio"
	"github.com/gigurra/tunes/cmd/player/playback"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
)

var (
	ErrNoSource = errors.New("no source loaded")
	ErrClosed   = errors.New("element closed")
)

// DefaultTickInterval is how often position updates are reported while playing.
const DefaultTickInterval = 250 * time.Millisecond

var _ playback.Element = (*Element)(nil)

// Resolver maps a track source to a local file path.
type Resolver interface {
	Resolve(ctx context.Context, src string) (string, error)
}

// Element plays one source at a time through an audio.Source node.
//
// Callbacks registered with Load are never invoked while the graph lock is
// held; the ones raised from the render path run on their own goroutine.
type Element struct {
	mu sync.Mutex

	graph    *audio.Graph
	out      *audio.Source
	resolver Resolver
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	load    uint64
	src     string
	ev      playback.Events
	stream  beep.StreamSeekCloser
	format  beep.Format
	ctrl    *beep.Ctrl
	vol     *effects.Volume
	level   float64
	paused  bool
	seekTo  time.Duration
	seeks   uint64
	waiters []func(error)
	loading bool
	stopped chan struct{}
	closed  bool
}

// New creates an element writing into out, which must belong to graph.
// A nil resolver uses NewFetcher().
func New(graph *audio.Graph, out *audio.Source, resolver Resolver) *Element {
	if resolver == nil {
		resolver = NewFetcher()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Element{
		graph:    graph,
		out:      out,
		resolver: resolver,
		interval: DefaultTickInterval,
		ctx:      ctx,
		cancel:   cancel,
		level:    1,
	}
}

// SetTickInterval changes how often TimeUpdate fires. It applies from the next Play.
func (e *Element) SetTickInterval(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if d > 0 {
		e.interval = d
	}
}

// Load drops whatever was playing and remembers src. Nothing is fetched or
// decoded until Play.
func (e *Element) Load(src string, ev playback.Events) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.releaseLocked()
	e.load++
	e.src = src
	e.ev = ev
	e.paused = false
	e.seekTo = 0
	e.seeks = 0
	e.waiters = nil
	e.loading = false
}

// Play starts or resumes playback. started is called once the audio is
// actually flowing, or with the error that prevented it.
func (e *Element) Play(started func(error)) {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()
		started(ErrClosed)
		return
	}
	if e.src == "" {
		e.mu.Unlock()
		started(ErrNoSource)
		return
	}

	e.paused = false
	if e.stream == nil {
		e.waiters = append(e.waiters, started)
		if !e.loading {
			e.loading = true
			go e.decode(e.load, e.src)
		}
		e.mu.Unlock()
		return
	}

	e.resumeLocked()
	e.mu.Unlock()
	started(nil)
}

func (e *Element) decode(load uint64, src string) {
	stream, format, err := e.open(src)

	e.mu.Lock()
	if load != e.load || e.closed {
		e.mu.Unlock()
		if stream != nil {
			stream.Close()
		}
		slog.Debug("discarding decoded stream for abandoned load", "src", src)
		return
	}

	waiters := e.waiters
	e.waiters = nil
	e.loading = false
	ev := e.ev

	if err != nil {
		e.mu.Unlock()
		slog.Warn("failed to open track", "src", src, "error", err)
		for _, w := range waiters {
			w(err)
		}
		if ev.Error != nil {
			ev.Error(err)
		}
		return
	}

	e.stream = stream
	e.format = format
	if e.seekTo > 0 {
		_ = stream.Seek(min(format.SampleRate.N(e.seekTo), stream.Len()))
	}
	e.attachLocked()
	if !e.paused {
		e.startTickerLocked()
	}
	duration := format.SampleRate.D(stream.Len())
	e.mu.Unlock()

	if ev.LoadedMetadata != nil {
		ev.LoadedMetadata(duration)
	}
	for _, w := range waiters {
		w(nil)
	}
}

func (e *Element) open(src string) (beep.StreamSeekCloser, beep.Format, error) {
	path, err := e.resolver.Resolve(e.ctx, src)
	if err != nil {
		return nil, beep.Format{}, err
	}
	return Decode(path)
}

// attachLocked builds the streamer chain for the current stream and hands it
// to the output node:
//
//	stream -> resample -> volume -> ctrl -> ended callback
func (e *Element) attachLocked() {
	var s beep.Streamer = e.stream
	if rate := e.graph.SampleRate(); e.format.SampleRate != rate {
		s = beep.Resample(4, e.format.SampleRate, rate, s)
	}
	e.vol = &effects.Volume{Streamer: s, Base: 2}
	setLevel(e.vol, e.level)
	e.ctrl = &beep.Ctrl{Streamer: e.vol, Paused: e.paused}

	load := e.load
	e.out.SetStreamer(beep.Seq(e.ctrl, beep.Callback(func() {
		// Runs inside the render path with the graph locked.
		go e.ended(load)
	})))
}

func (e *Element) resumeLocked() {
	if !e.out.Streaming() {
		e.attachLocked()
	}
	e.graph.Lock()
	e.ctrl.Paused = false
	e.graph.Unlock()
	e.startTickerLocked()
}

func (e *Element) ended(load uint64) {
	e.mu.Lock()
	if load != e.load || e.closed {
		e.mu.Unlock()
		return
	}
	e.paused = true
	e.stopTickerLocked()
	ev := e.ev
	e.mu.Unlock()

	if ev.Ended != nil {
		ev.Ended()
	}
}

// Pause stops the audio where it is.
func (e *Element) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.paused = true
	e.stopTickerLocked()
	if e.ctrl != nil {
		e.graph.Lock()
		e.ctrl.Paused = true
		e.graph.Unlock()
	}
}

// Seek moves the play position, clamped to the stream length. Before the
// stream is decoded the position is remembered and applied afterwards.
func (e *Element) Seek(position time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	position = max(position, 0)
	e.seeks++
	if e.stream == nil {
		e.seekTo = position
		return
	}

	n := min(e.format.SampleRate.N(position), e.stream.Len())
	e.graph.Lock()
	err := e.stream.Seek(n)
	e.graph.Unlock()
	if err != nil {
		slog.Warn("seek failed", "src", e.src, "position", position, "error", err)
		return
	}
	if !e.out.Streaming() {
		// The chain ran dry at the end of the track; hook it up again.
		e.attachLocked()
	}
}

// SetVolume sets the linear output level in [0, 1].
func (e *Element) SetVolume(level float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.level = level
	if e.vol != nil {
		e.graph.Lock()
		setLevel(e.vol, level)
		e.graph.Unlock()
	}
}

// Position returns the current play position.
func (e *Element) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positionLocked()
}

func (e *Element) positionLocked() time.Duration {
	if e.stream == nil {
		return 0
	}
	e.graph.Lock()
	pos := e.stream.Position()
	e.graph.Unlock()
	return e.format.SampleRate.D(pos)
}

// Close stops playback and releases the decoder. Further Play calls fail
// with ErrClosed.
func (e *Element) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.load++
	e.cancel()
	return e.releaseLocked()
}

func (e *Element) releaseLocked() error {
	e.stopTickerLocked()
	e.out.SetStreamer(nil)
	var err error
	if e.stream != nil {
		err = e.stream.Close()
	}
	e.stream = nil
	e.ctrl = nil
	e.vol = nil
	return err
}

func (e *Element) startTickerLocked() {
	if e.stopped != nil || e.ev.TimeUpdate == nil {
		return
	}
	stop := make(chan struct{})
	e.stopped = stop
	go e.tick(e.load, e.interval, stop)
}

func (e *Element) stopTickerLocked() {
	if e.stopped != nil {
		close(e.stopped)
		e.stopped = nil
	}
}

func (e *Element) tick(load uint64, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.mu.Lock()
			if load != e.load {
				e.mu.Unlock()
				return
			}
			pos, seeks := e.positionLocked(), e.seeks
			update := e.ev.TimeUpdate
			e.mu.Unlock()
			update(pos, seeks)
		}
	}
}

func setLevel(v *effects.Volume, level float64) {
	v.Silent = level <= 0
	if v.Silent {
		v.Volume = 0
		return
	}
	v.Volume = math.Log2(level)
}
