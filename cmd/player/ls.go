package player

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/tunes/cmd/common"
	"github.com/gigurra/tunes/cmd/player/common/config"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

type LsParams struct {
	Catalog string `pos:"true" optional:"true" help:"Catalog JSON file or music directory (defaults to the configured catalog)"`
	Artist  string `short:"a" long:"artist" optional:"true" help:"Only list tracks by this artist id"`
	JSON    bool   `long:"json" help:"Output as JSON"`
}

func LsCmd() *cobra.Command {
	return boa.CmdT[LsParams]{
		Use:         "ls",
		Aliases:     []string{"list"},
		Short:       "List the tracks of a catalog",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *LsParams, cmd *cobra.Command, args []string) {
			if err := runLs(params); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func runLs(params *LsParams) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cat, path, err := loadCatalog(params.Catalog, params.Artist, cfg)
	if err != nil {
		return err
	}

	if params.JSON {
		data, err := json.MarshalIndent(cat.Tracks(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if cat.Len() == 0 {
		fmt.Printf("No tracks found in %s\n", path)
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetAllowedRowLength(common.TermWidth())

	t.AppendHeader(table.Row{"ID", "Title", "Artist", "Source"})
	for _, track := range cat.Tracks() {
		t.AppendRow(table.Row{
			track.ID,
			track.Title,
			track.ArtistID,
			text.FgHiBlack.Sprint(track.SourceURL),
		})
	}
	t.Render()

	fmt.Printf("\n%d tracks, %d artists. Play with: tunes play %s\n", cat.Len(), len(cat.Artists()), path)
	return nil
}
