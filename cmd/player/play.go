package player

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gen2brain/beeep"
	"github.com/gigurra/tunes/cmd/common"
	"github.com/gigurra/tunes/cmd/player/audio"
	"github.com/gigurra/tunes/cmd/player/catalog"
	"github.com/gigurra/tunes/cmd/player/common/config"
	"github.com/gigurra/tunes/cmd/player/eq"
	"github.com/gigurra/tunes/cmd/player/media"
	"github.com/gigurra/tunes/cmd/player/screen"
	"github.com/gigurra/tunes/cmd/player/tui"
	"github.com/gopxl/beep/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type PlayParams struct {
	Catalog       string  `pos:"true" optional:"true" help:"Catalog JSON file or music directory (defaults to the configured catalog)"`
	Track         string  `short:"t" long:"track" optional:"true" help:"Id of the track to start with (default: random)"`
	Artist        string  `short:"a" long:"artist" optional:"true" help:"Only play tracks by this artist id"`
	Preset        string  `short:"p" long:"preset" optional:"true" help:"Equalizer preset" alts:"flat,bass-boost,treble-boost,vocal-boost" strict:"false"`
	Volume        float64 `long:"volume" optional:"true" help:"Volume between 0 and 1 (default: from config)" default:"-1"`
	ExcludeRecent int     `long:"exclude-recent" optional:"true" help:"How many recent tracks to avoid when picking the next one, 0 for the whole history (default: from config)" default:"-1"`
	NoAutoAdvance bool    `long:"no-auto-advance" help:"Stop when a track ends instead of picking the next one"`
	Watch         bool    `short:"w" long:"watch" help:"Reload a music directory catalog when its files change"`
	Notify        bool    `long:"notify" help:"Show a desktop notification on every track change"`
}

func PlayCmd() *cobra.Command {
	return boa.CmdT[PlayParams]{
		Use:   "play",
		Short: "Play a catalog in the terminal player",
		Long: `Play tracks from a catalog with a 10-band equalizer.

The catalog is a JSON file (an array of {id, title, artistId, url, imageUrl})
or a directory of .mp3/.wav files, where each file's parent directory is its
artist. Tracks are picked at random, avoiding recently played ones.

Controls:
  SPACE       Play / pause
  n / p       Next / previous track
  ←/→         Seek 5 seconds
  +/-         Volume
  [ ] ↑ ↓     Select band, adjust gain
  TAB         Next equalizer preset
  q           Quit`,
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *PlayParams, cmd *cobra.Command, args []string) {
			if err := runPlay(params); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func runPlay(params *PlayParams) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts, err := screenOptions(params, cfg)
	if err != nil {
		return err
	}

	cat, path, err := loadCatalog(params.Catalog, params.Artist, cfg)
	if err != nil {
		return err
	}
	var first *catalog.Track
	if params.Track != "" {
		if first, err = cat.Get(catalog.ID(params.Track)); err != nil {
			return err
		}
	}

	if !audio.OutputAvailable {
		return fmt.Errorf("%w: rebuild with cgo enabled", audio.ErrOutputUnavailable)
	}

	// The TUI owns the terminal; logs go to a file.
	closeLog, err := redirectLog()
	if err != nil {
		return err
	}
	defer closeLog()

	graph := audio.NewGraph(beep.SampleRate(cfg.Audio.SampleRate))
	out, err := audio.OpenOutput(graph, time.Duration(cfg.Audio.BufferMs)*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to open audio output: %w", err)
	}
	defer out.Close()

	notifier := &tui.Notifier{}
	if params.Notify || cfg.Notify.Enabled {
		notifier.OnTrackChanged = notifyTrack
	}
	opts.Listener = notifier

	source := graph.CreateSource()
	scr, err := screen.New(graph, media.New(graph, source, nil), source, cat, opts)
	if err != nil {
		return err
	}
	defer scr.Close()

	if first != nil {
		err = scr.Open(first)
	} else {
		err = scr.Next()
	}
	if err != nil {
		return err
	}

	if params.Watch {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go watchCatalog(ctx, path, params.Artist, scr, notifier)
	}

	slog.Info("player started", "catalog", path, "tracks", cat.Len())
	return tui.Run(scr, notifier)
}

func screenOptions(params *PlayParams, cfg *config.Config) (screen.Options, error) {
	opts := screen.DefaultOptions()
	opts.Volume = cfg.Playback.VolumeOrDefault()
	opts.Preset = cfg.Playback.Preset
	opts.ExcludeRecent = cfg.Playback.ExcludeRecent
	opts.AutoAdvance = cfg.Playback.AutoAdvanceOrDefault() && !params.NoAutoAdvance

	if params.Volume >= 0 {
		opts.Volume = params.Volume
	}
	opts.Volume = lo.Clamp(opts.Volume, 0, 1)
	if params.ExcludeRecent >= 0 {
		opts.ExcludeRecent = params.ExcludeRecent
	}
	if params.Preset != "" {
		if !eq.Preset(params.Preset).Known() {
			names := lo.Map(eq.Presets(), func(p eq.Preset, _ int) string { return string(p) })
			return opts, fmt.Errorf("unknown preset %q, available: %s", params.Preset, strings.Join(names, ", "))
		}
		opts.Preset = params.Preset
	}
	return opts, nil
}

func watchCatalog(ctx context.Context, path, artist string, scr *screen.Screen, n *tui.Notifier) {
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		slog.Warn("catalog watch needs a directory", "path", path)
		return
	}
	err := catalog.Watch(ctx, path, catalog.DefaultDebounce, func(c *catalog.Catalog) {
		c, err := narrow(c, artist)
		if err != nil {
			slog.Warn("ignoring reloaded catalog", "error", err)
			return
		}
		scr.SetCatalog(c)
		n.CatalogChanged(c)
	})
	if err != nil && ctx.Err() == nil {
		slog.Error("catalog watch stopped", "error", err)
	}
}

func notifyTrack(track *catalog.Track) {
	go func() {
		if err := beeep.Notify("Now playing", track.Title, ""); err != nil {
			slog.Debug("desktop notification failed", "error", err)
		}
	}()
}

func redirectLog() (func(), error) {
	dir := common.CacheDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "tunes.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(f, nil)))
	return func() {
		slog.SetDefault(prev)
		f.Close()
	}, nil
}
