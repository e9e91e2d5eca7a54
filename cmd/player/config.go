package player

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/tunes/cmd/common"
	"github.com/gigurra/tunes/cmd/player/common/config"
	"github.com/spf13/cobra"
)

type ConfigParams struct {
	Init bool `long:"init" help:"Write a default config file if there is none"`
}

func ConfigCmd() *cobra.Command {
	return boa.CmdT[ConfigParams]{
		Use:         "config",
		Short:       "Show the effective configuration",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *ConfigParams, cmd *cobra.Command, args []string) {
			if err := runConfig(params); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func runConfig(params *ConfigParams) error {
	path := config.ConfigPath()

	if params.Init {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.Save(config.DefaultConfig()); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("# %s\n%s\n", path, data)
	return nil
}
