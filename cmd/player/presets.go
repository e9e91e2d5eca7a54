package player

import (
	"fmt"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/tunes/cmd/common"
	"github.com/gigurra/tunes/cmd/player/eq"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type PresetsParams struct{}

func PresetsCmd() *cobra.Command {
	return boa.CmdT[PresetsParams]{
		Use:         "presets",
		Short:       "Show the equalizer bands and presets",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *PresetsParams, cmd *cobra.Command, args []string) {
			renderPresets()
		},
	}.ToCobra()
}

func renderPresets() {
	bands := eq.Bands()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	header := table.Row{"Preset"}
	for _, b := range bands {
		header = append(header, b.String())
	}
	t.AppendHeader(header)

	for _, p := range eq.Presets() {
		row := table.Row{string(p)}
		for _, g := range eq.PresetGains(p, len(bands)) {
			row = append(row, gainColor(g)(fmt.Sprintf("%+g", g)))
		}
		t.AppendRow(row)
	}

	t.SetColumnConfigs(lo.Times(len(bands), func(i int) table.ColumnConfig {
		return table.ColumnConfig{Number: i + 2, Align: text.AlignRight}
	}))
	t.Render()

	fmt.Printf("\nBands are peaking filters with Q=%g. Gains are in dB, sliders range %+g to %+g.\n", eq.Q, eq.MinGain, eq.MaxGain)
}

func gainColor(g float64) func(a ...interface{}) string {
	switch {
	case g > 0:
		return text.FgGreen.Sprint
	case g < 0:
		return text.FgYellow.Sprint
	default:
		return text.FgHiBlack.Sprint
	}
}
