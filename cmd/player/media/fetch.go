package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gigurra/tunes/cmd/common"
)

// Fetcher turns a track source into a local file. Local paths and file://
// URLs are used as they are; http(s) URLs are downloaded once into Dir.
type Fetcher struct {
	Dir    string
	Client *http.Client
}

// NewFetcher returns a fetcher caching into the user's asset cache dir.
func NewFetcher() *Fetcher {
	return &Fetcher{
		Dir:    common.AssetCacheDir(),
		Client: http.DefaultClient,
	}
}

// Resolve returns a local path holding the audio for src.
func (f *Fetcher) Resolve(ctx context.Context, src string) (string, error) {
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain paths, including Windows drive letters.
		return src, nil
	}

	switch u.Scheme {
	case "file":
		return filepath.FromSlash(u.Path), nil
	case "http", "https":
		return f.download(ctx, u)
	default:
		return "", fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, u.Scheme)
	}
}

// CachePath is where a downloaded copy of u is kept.
func (f *Fetcher) CachePath(u *url.URL) string {
	sum := sha256.Sum256([]byte(u.String()))
	return filepath.Join(f.Dir, hex.EncodeToString(sum[:16])+strings.ToLower(path.Ext(u.Path)))
}

func (f *Fetcher) download(ctx context.Context, u *url.URL) (string, error) {
	dst := f.CachePath(u)
	if _, err := os.Stat(dst); err == nil {
		return dst, nil
	}

	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	slog.Info("downloading track", "url", u.Redacted(), "dst", dst)
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download %s: %s", u.Redacted(), resp.Status)
	}

	tmp, err := os.CreateTemp(f.Dir, ".download-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to download %s: %w", u.Redacted(), err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	return dst, nil
}
