package main

import (
	"runtime/debug"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/tunes/cmd/player"
	"github.com/spf13/cobra"
)

func main() {
	boa.CmdT[boa.NoParams]{
		Use:     "tunes",
		Short:   "Terminal music player with a 10-band equalizer",
		Version: appVersion(),
		SubCmds: []*cobra.Command{
			player.PlayCmd(),
			player.LsCmd(),
			player.PresetsCmd(),
			player.ConfigCmd(),
		},
	}.Run()
}

func appVersion() string {
	bi, hasBuilInfo := debug.ReadBuildInfo()
	if !hasBuilInfo {
		return "unknown-(no build info)"
	}

	versionString := bi.Main.Version
	if versionString == "" {
		versionString = "unknown-(no version)"
	}

	return versionString
}
