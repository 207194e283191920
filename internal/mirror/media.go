package mirror

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/wifstudio/catalog-mirror/internal/airtable"
	"github.com/wifstudio/catalog-mirror/pkg/config"
)

// MediaMaterializer downloads remote media into the local media directory.
// Files are keyed by filename only: a file that already exists is reused
// without re-fetching or content comparison, so two different remote images
// sharing a filename collide and the second is skipped. Callers depend on
// filename stability, so this stays filename-addressed rather than
// content-addressed.
type MediaMaterializer struct {
	httpClient   *http.Client
	dir          string
	publicPrefix string
}

// MediaOption configures optional materializer behavior.
type MediaOption func(*MediaMaterializer)

// WithMediaHTTPClient overrides the default HTTP client.
func WithMediaHTTPClient(client *http.Client) MediaOption {
	return func(m *MediaMaterializer) {
		if client != nil {
			m.httpClient = client
		}
	}
}

// NewMediaMaterializer builds a materializer for the configured directory.
func NewMediaMaterializer(cfg config.MediaConfig, opts ...MediaOption) *MediaMaterializer {
	m := &MediaMaterializer{
		httpClient:   &http.Client{Timeout: cfg.FetchTimeout},
		dir:          cfg.Dir,
		publicPrefix: cfg.PublicPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Materialize ensures each reference is present locally and returns its
// web-relative path, in input order. A failed fetch omits that reference;
// the combined error carries every failure for the caller to log.
func (m *MediaMaterializer) Materialize(ctx context.Context, refs []airtable.Attachment) ([]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating media dir %q: %w", m.dir, err)
	}

	var paths []string
	var errs error

	for _, ref := range refs {
		filename, err := deriveFilename(ref)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		localPath := filepath.Join(m.dir, filename)
		if _, statErr := os.Stat(localPath); statErr != nil {
			if !os.IsNotExist(statErr) {
				errs = multierr.Append(errs, fmt.Errorf("stat %q: %w", localPath, statErr))
				continue
			}
			if fetchErr := m.fetch(ctx, ref.URL, localPath); fetchErr != nil {
				errs = multierr.Append(errs, fetchErr)
				continue
			}
		}

		paths = append(paths, path.Join(m.publicPrefix, filename))
	}

	return paths, errs
}

func (m *MediaMaterializer) fetch(ctx context.Context, rawURL, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("building media request for %q: %w", rawURL, err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %q: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %q: status %d", rawURL, resp.StatusCode)
	}

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("creating %q: %w", localPath, err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(localPath)
		return fmt.Errorf("writing %q: %w", localPath, err)
	}
	return f.Close()
}

// deriveFilename prefers the supplied filename and falls back to the final
// path segment of the URL.
func deriveFilename(ref airtable.Attachment) (string, error) {
	if ref.Filename != "" {
		if name := filepath.Base(ref.Filename); name != "." && name != string(filepath.Separator) {
			return name, nil
		}
	}

	parsed, err := url.Parse(ref.URL)
	if err != nil {
		return "", fmt.Errorf("parsing media url %q: %w", ref.URL, err)
	}
	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("media url %q has no usable filename", ref.URL)
	}
	return name, nil
}
