package playback

import (
	"errors"
	"time"

	"github.com/gigurra/tunes/cmd/player/catalog"
)

var (
	ErrNoTrackLoaded       = errors.New("no track loaded")
	ErrPlaybackStartFailed = errors.New("playback start failed")
)

// State is the controller's position in the playback state machine.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateEnded   State = "ended"
	StateErrored State = "errored"
)

// Session is a snapshot of the controller's state.
type Session struct {
	Track     *catalog.Track
	State     State
	IsPlaying bool
	Position  time.Duration
	Duration  time.Duration // 0 until the media metadata is known
	Volume    float64       // [0, 1]
	Err       error         // last start or media error, set in StateErrored
}
