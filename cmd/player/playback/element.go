package playback

import (
	"time"
)

// Events are the callbacks an Element reports through for one loaded source.
// Every Load gets a fresh set; an Element must stop using the previous set
// once a new source is loaded, and the Controller ignores late calls anyway.
type Events struct {
	// TimeUpdate reports the play position. seeks is how many Seek calls the
	// element had applied since Load when position was sampled.
	TimeUpdate     func(position time.Duration, seeks uint64)
	LoadedMetadata func(duration time.Duration)
	Ended          func()
	// Error reports a failure of the loaded source, including one that
	// also fails a pending Play.
	Error          func(err error)
}

// Element is the host media element the Controller drives.
type Element interface {
	// Load replaces the source and resets the position. It does not start playback.
	Load(src string, ev Events)
	// Play starts or resumes playback asynchronously. started is called
	// exactly once with the outcome.
	Play(started func(err error))
	Pause()
	Seek(position time.Duration)
	// SetVolume sets the output level in [0, 1].
	SetVolume(level float64)
	// Close releases the source and stops all event delivery.
	Close() error
}
