package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID identifies a track. Catalog files may carry ids as JSON numbers or strings.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Track is an immutable catalog entry. The playback core only ever holds
// pointers to tracks owned by a Catalog.
type Track struct {
	ID         ID     `json:"id"`
	Title      string `json:"title"`
	ArtistID   ID     `json:"artistId"`
	SourceURL  string `json:"sourceUrl"`
	ArtworkURL string `json:"artworkUrl,omitempty"`
}

// trackJSON accepts the short field names used by older catalog files.
type trackJSON struct {
	ID         ID     `json:"id"`
	Title      string `json:"title"`
	ArtistID   ID     `json:"artistId"`
	SourceURL  string `json:"sourceUrl"`
	URL        string `json:"url"`
	ArtworkURL string `json:"artworkUrl"`
	ImageURL   string `json:"imageUrl"`
}

func (t *Track) UnmarshalJSON(data []byte) error {
	var raw trackJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Track{
		ID:         raw.ID,
		Title:      raw.Title,
		ArtistID:   raw.ArtistID,
		SourceURL:  firstNonEmpty(raw.SourceURL, raw.URL),
		ArtworkURL: firstNonEmpty(raw.ArtworkURL, raw.ImageURL),
	}
	return nil
}

// Same reports whether both tracks refer to the same catalog entry.
func (t *Track) Same(other *Track) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t == other || t.ID == other.ID
}

func (t *Track) String() string {
	if t == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s (%s)", t.Title, t.ID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
