// Package catalog holds the read-only track catalog the player picks from.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var (
	ErrTrackNotFound = errors.New("track not found")
	ErrDuplicateID   = errors.New("duplicate track id")
	ErrMissingSource = errors.New("track has no source url")
)

// SupportedExtensions lists the audio formats the media element can decode.
var SupportedExtensions = []string{".mp3", ".wav"}

// namespace for track ids derived from file paths, so rescans keep identity.
var trackNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("tunes:track"))

// Catalog is a finite, randomly indexable sequence of tracks.
type Catalog struct {
	tracks []*Track
	byID   map[ID]*Track
}

// New builds a catalog from tracks, keeping their order.
func New(tracks []*Track) (*Catalog, error) {
	c := &Catalog{
		tracks: make([]*Track, 0, len(tracks)),
		byID:   make(map[ID]*Track, len(tracks)),
	}
	for _, t := range tracks {
		if t == nil {
			continue
		}
		if t.SourceURL == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingSource, t)
		}
		if _, exists := c.byID[t.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, t.ID)
		}
		c.byID[t.ID] = t
		c.tracks = append(c.tracks, t)
	}
	return c, nil
}

// Load reads a catalog from a JSON file or scans a directory of audio files.
func Load(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return ScanDir(path)
	}
	return LoadFile(path)
}

// LoadFile reads a JSON array of tracks. Relative local source paths are
// resolved against the file's directory.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tracks []*Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for _, t := range tracks {
		if t != nil && isRelativeLocal(t.SourceURL) {
			t.SourceURL = filepath.Join(base, filepath.FromSlash(t.SourceURL))
		}
	}
	return New(tracks)
}

// ScanDir builds a catalog from the audio files below dir. The parent
// directory name becomes the artist, the file name the title.
func ScanDir(dir string) (*Catalog, error) {
	var tracks []*Track
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSupported(path) {
			return nil
		}
		t, err := trackFromFile(dir, path)
		if err != nil {
			return err
		}
		tracks = append(tracks, t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(tracks, func(a, b *Track) int {
		return strings.Compare(a.SourceURL, b.SourceURL)
	})
	return New(tracks)
}

// IsSupported reports whether path has a decodable audio extension.
func IsSupported(path string) bool {
	return lo.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(path)))
}

func trackFromFile(root, path string) (*Track, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)

	artist := "unknown"
	if dir := filepath.Dir(rel); dir != "." {
		artist = filepath.Base(dir)
	}

	return &Track{
		ID:        ID(uuid.NewSHA1(trackNamespace, []byte(rel)).String()),
		Title:     strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel)),
		ArtistID:  ID(artist),
		SourceURL: path,
	}, nil
}

func isRelativeLocal(src string) bool {
	if src == "" || strings.Contains(src, "://") {
		return false
	}
	return !filepath.IsAbs(filepath.FromSlash(src))
}

// Tracks returns the catalog's tracks in order. The slice is a copy; the
// tracks themselves are shared.
func (c *Catalog) Tracks() []*Track {
	if c == nil {
		return nil
	}
	return slices.Clone(c.tracks)
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tracks)
}

// At returns the track at index i.
func (c *Catalog) At(i int) *Track {
	return c.tracks[i]
}

// Get looks up a track by id.
func (c *Catalog) Get(id ID) (*Track, error) {
	if c != nil {
		if t, ok := c.byID[id]; ok {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrTrackNotFound, id)
}

// ByArtist returns the tracks of one artist in catalog order.
func (c *Catalog) ByArtist(artist ID) []*Track {
	if c == nil {
		return nil
	}
	return lo.Filter(c.tracks, func(t *Track, _ int) bool {
		return t.ArtistID == artist
	})
}

// Artists returns the distinct artist ids in order of first appearance.
func (c *Catalog) Artists() []ID {
	if c == nil {
		return nil
	}
	return lo.Uniq(lo.Map(c.tracks, func(t *Track, _ int) ID {
		return t.ArtistID
	}))
}
