package eq

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// Band is one equalizer band, addressed by its index in the band table.
type Band struct {
	CenterHz float64
}

func (b Band) String() string {
	if b.CenterHz >= 1000 {
		return fmt.Sprintf("%gk", b.CenterHz/1000)
	}
	return fmt.Sprintf("%g", b.CenterHz)
}

var bands = [...]Band{
	{60}, {170}, {310}, {600}, {1000}, {3000}, {6000}, {12000}, {14000}, {16000},
}

// NumBands is the size of the band table.
const NumBands = len(bands)

// Gain limits the UI keeps slider values within. The engine itself passes
// any value through.
const (
	MinGain = -12.0
	MaxGain = 12.0
)

// Quality factor of every band filter.
const Q = 1.0

// Bands returns a copy of the band table in ascending frequency order.
func Bands() []Band {
	return slices.Clone(bands[:])
}

// ClampGain limits db to [MinGain, MaxGain].
func ClampGain(db float64) float64 {
	return lo.Clamp(db, MinGain, MaxGain)
}
