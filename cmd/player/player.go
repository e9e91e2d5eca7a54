// Package player holds the tunes commands.
package player

import (
	"errors"
	"fmt"

	"github.com/gigurra/tunes/cmd/player/catalog"
	"github.com/gigurra/tunes/cmd/player/common/config"
)

var ErrNoCatalog = errors.New("no catalog given")

// loadCatalog loads the catalog named on the command line, falling back to
// the configured one, and narrows it to one artist when asked.
func loadCatalog(path, artist string, cfg *config.Config) (*catalog.Catalog, string, error) {
	if path == "" {
		path = cfg.Catalog
	}
	if path == "" {
		return nil, "", fmt.Errorf("%w: pass a catalog file or music directory, or set \"catalog\" in %s", ErrNoCatalog, config.ConfigPath())
	}

	cat, err := catalog.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load catalog: %w", err)
	}
	cat, err = narrow(cat, artist)
	if err != nil {
		return nil, "", err
	}
	return cat, path, nil
}

func narrow(cat *catalog.Catalog, artist string) (*catalog.Catalog, error) {
	if artist == "" {
		return cat, nil
	}
	tracks := cat.ByArtist(catalog.ID(artist))
	if len(tracks) == 0 {
		return nil, fmt.Errorf("no tracks by artist %q", artist)
	}
	return catalog.New(tracks)
}
