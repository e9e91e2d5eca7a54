package eq

// Preset names a built-in gain curve.
type Preset string

const (
	PresetFlat        Preset = "flat"
	PresetBassBoost   Preset = "bass-boost"
	PresetTrebleBoost Preset = "treble-boost"
	PresetVocalBoost  Preset = "vocal-boost"
)

// Presets lists the built-in presets in display order.
func Presets() []Preset {
	return []Preset{PresetFlat, PresetBassBoost, PresetTrebleBoost, PresetVocalBoost}
}

// Known reports whether p is a built-in preset.
func (p Preset) Known() bool {
	switch p {
	case PresetFlat, PresetBassBoost, PresetTrebleBoost, PresetVocalBoost:
		return true
	}
	return false
}

// presetGain is the gain of band i under p. Unknown presets are flat.
func presetGain(p Preset, i int) float64 {
	switch p {
	case PresetBassBoost:
		switch {
		case i < 3:
			return 7
		case i < 5:
			return 3
		}
	case PresetTrebleBoost:
		switch {
		case i > 6:
			return 7
		case i > 4:
			return 3
		}
	case PresetVocalBoost:
		if i > 2 && i < 6 {
			return 5
		}
	}
	return 0
}

// PresetGains returns the gain vector p produces for n bands.
func PresetGains(p Preset, n int) []float64 {
	gains := make([]float64, n)
	for i := range gains {
		gains[i] = presetGain(p, i)
	}
	return gains
}
